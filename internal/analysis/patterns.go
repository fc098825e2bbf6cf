package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// ComboPattern is an ordered card-name sequence that recurred identically
// across two or more distinct turns.
type ComboPattern struct {
	CardNames   []string
	Occurrences int
	Turns       []int
	IsThreat    bool
}

const (
	// patternKeySep joins card names into a pattern key. Card names coming
	// from the game client never contain it.
	patternKeySep = "||"

	// minPatternOccurrences is how many turns a sequence must recur in
	// before it counts as a pattern.
	minPatternOccurrences = 2

	// threatOccurrences is the recurrence count at which a pattern is
	// classified as a threat.
	threatOccurrences = 3
)

// DetectComboPatterns compares per-turn play sequences across the whole
// history and returns the recurring ones, sorted by occurrence count
// descending. Patterns with equal counts are ordered by their first
// occurrence turn so output is stable.
func (t *PlayTracker) DetectComboPatterns() []ComboPattern {
	sequences := t.DetectSequences(-1)

	type patternAccum struct {
		cardNames []string
		turns     []int
	}

	accum := make(map[string]*patternAccum)
	for _, seq := range sequences {
		names := make([]string, len(seq.Events))
		for i, event := range seq.Events {
			names[i] = event.CardName
		}

		key := strings.Join(names, patternKeySep)
		entry, ok := accum[key]
		if !ok {
			entry = &patternAccum{cardNames: names}
			accum[key] = entry
		}
		entry.turns = append(entry.turns, seq.Turn)
	}

	var patterns []ComboPattern
	for _, entry := range accum {
		if len(entry.turns) < minPatternOccurrences {
			continue
		}

		// Sequences arrive turn-ascending, so turns are already sorted.
		patterns = append(patterns, ComboPattern{
			CardNames:   entry.cardNames,
			Occurrences: len(entry.turns),
			Turns:       entry.turns,
			IsThreat:    len(entry.turns) >= threatOccurrences,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Occurrences != patterns[j].Occurrences {
			return patterns[i].Occurrences > patterns[j].Occurrences
		}
		return patterns[i].Turns[0] < patterns[j].Turns[0]
	})

	return patterns
}

// Warnings renders mined combo patterns as human-readable strings for the
// assist layer. Threat patterns carry a distinct marker. An empty history
// yields an empty slice.
func (t *PlayTracker) Warnings() []string {
	patterns := t.DetectComboPatterns()

	warnings := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		combo := strings.Join(pattern.CardNames, " → ")
		if pattern.IsThreat {
			warnings = append(warnings, fmt.Sprintf("[THREAT] Opponent combo: %s (seen %d times)", combo, pattern.Occurrences))
		} else {
			warnings = append(warnings, fmt.Sprintf("Recurring play: %s (seen %d times)", combo, pattern.Occurrences))
		}
	}

	return warnings
}
