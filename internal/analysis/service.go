package analysis

import (
	"fmt"
	"strings"
	"sync"

	"github.com/duelware/insight/internal/events"
	"github.com/duelware/insight/internal/knowledge"
)

// Analyzer drives the combo pipeline incrementally: each observed play is
// recorded, patterns are re-mined, and newly detected patterns or threat
// transitions are published to the dispatcher. Detected threats are also
// written to the knowledge store as combo insights for later games.
//
// The dispatcher and store are both optional; a nil collaborator simply
// skips that output.
//
// The analyzer serializes access to its tracker, so it is safe to share
// between a feed watcher and query callers.
type Analyzer struct {
	mu         sync.Mutex
	tracker    *PlayTracker
	dispatcher *events.Dispatcher
	store      *knowledge.Store

	// occurrences seen per pattern key at last observation, used to
	// detect first occurrences and threat transitions.
	seen map[string]int
}

// NewAnalyzer creates an analyzer over a fresh play tracker.
func NewAnalyzer(dispatcher *events.Dispatcher, store *knowledge.Store) *Analyzer {
	return &Analyzer{
		tracker:    NewPlayTracker(),
		dispatcher: dispatcher,
		store:      store,
		seen:       make(map[string]int),
	}
}

// ObservePlay records one play event and publishes any analysis changes it
// caused.
func (a *Analyzer) ObservePlay(event PlayEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tracker.RecordPlay(event)
	a.republish()
}

// ObservePlays records a batch of play events, then publishes changes once.
func (a *Analyzer) ObservePlays(batch []PlayEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tracker.RecordPlays(batch)
	a.republish()
}

// History returns a copy of the recorded play history.
func (a *Analyzer) History() []PlayEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.PlayHistory()
}

// Sequences returns the current per-turn play sequences.
func (a *Analyzer) Sequences() []PlaySequence {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.DetectSequences(-1)
}

// Patterns returns the current mined combo patterns.
func (a *Analyzer) Patterns() []ComboPattern {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.DetectComboPatterns()
}

// FrequentCards returns the most-played cards.
func (a *Analyzer) FrequentCards(limit int) []CardFrequency {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.FrequentCards(limit)
}

// Warnings returns the current human-readable warnings.
func (a *Analyzer) Warnings() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracker.Warnings()
}

// Reset clears the tracker and detection state for a new game.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tracker.Clear()
	a.seen = make(map[string]int)
}

func (a *Analyzer) republish() {
	for _, pattern := range a.tracker.DetectComboPatterns() {
		key := strings.Join(pattern.CardNames, patternKeySep)
		previous := a.seen[key]
		a.seen[key] = pattern.Occurrences

		if previous == 0 {
			a.dispatch(events.Event{
				Type: events.TypePatternDetected,
				Payload: events.PatternDetectedEvent{
					CardNames:   pattern.CardNames,
					Occurrences: pattern.Occurrences,
					Turns:       pattern.Turns,
				},
			})
		}

		if pattern.IsThreat && previous < threatOccurrences {
			a.onThreat(pattern)
		}
	}
}

func (a *Analyzer) onThreat(pattern ComboPattern) {
	combo := strings.Join(pattern.CardNames, " → ")
	warning := fmt.Sprintf("[THREAT] Opponent combo: %s (seen %d times)", combo, pattern.Occurrences)

	a.dispatch(events.Event{
		Type: events.TypeThreatRaised,
		Payload: events.ThreatRaisedEvent{
			CardNames:   pattern.CardNames,
			Occurrences: pattern.Occurrences,
			Warning:     warning,
		},
	})

	if a.store == nil {
		return
	}

	// More recurrences mean the opponent leans harder on the combo.
	importance := 0.5 + 0.1*float64(pattern.Occurrences)
	entry := a.store.Save(knowledge.Input{
		Type:       knowledge.EntryCombo,
		Content:    fmt.Sprintf("Opponent repeatedly plays %s", combo),
		Importance: importance,
		Tags:       append([]string{"combo", "threat"}, pattern.CardNames...),
	})

	a.dispatch(events.Event{
		Type: events.TypeKnowledgeSaved,
		Payload: events.KnowledgeSavedEvent{
			EntryID:    entry.ID,
			EntryType:  string(entry.Type),
			Importance: entry.Importance,
		},
	})
}

func (a *Analyzer) dispatch(event events.Event) {
	if a.dispatcher != nil {
		a.dispatcher.Dispatch(event)
	}
}
