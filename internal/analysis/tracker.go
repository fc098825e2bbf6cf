// Package analysis observes opponent play events and detects recurring
// tactical patterns across turns.
package analysis

import (
	"sort"
	"time"
)

// PlayType classifies a single observed play action.
type PlayType string

// Play types reported by the game observation layer.
const (
	PlaySummon    PlayType = "summon"
	PlayEffect    PlayType = "effect"
	PlayAttack    PlayType = "attack"
	PlayBlock     PlayType = "block"
	PlayTrigger   PlayType = "trigger"
	PlayIntercept PlayType = "intercept"
)

// PlayEvent is a single observed card play. Events are immutable once
// recorded; the tracker never modifies them.
type PlayEvent struct {
	CardID     string    `json:"card_id"`
	CardName   string    `json:"card_name"`
	Turn       int       `json:"turn"`
	Timestamp  time.Time `json:"timestamp"`
	Type       PlayType  `json:"type"`
	TargetID   string    `json:"target_id,omitempty"`
	TargetName string    `json:"target_name,omitempty"`
}

// PlaySequence is the time-ordered set of plays within one turn.
// Only turns with at least two plays produce a sequence.
type PlaySequence struct {
	Turn     int
	Events   []PlayEvent
	Duration time.Duration
}

// minSequenceEvents is the smallest turn group that counts as a sequence.
const minSequenceEvents = 2

// PlayTracker is an append-only chronological record of play events for one
// analysis session (one opponent, one game). It is not safe for concurrent
// use; callers sharing a tracker must serialize access externally.
type PlayTracker struct {
	events []PlayEvent
}

// NewPlayTracker creates an empty play tracker.
func NewPlayTracker() *PlayTracker {
	return &PlayTracker{}
}

// RecordPlay appends an event to the log. Field values are recorded as-is;
// legality checks belong to the rules engine upstream.
func (t *PlayTracker) RecordPlay(event PlayEvent) {
	t.events = append(t.events, event)
}

// RecordPlays appends a batch of events in order.
func (t *PlayTracker) RecordPlays(events []PlayEvent) {
	t.events = append(t.events, events...)
}

// PlayHistory returns a copy of all recorded events in insertion order.
// Mutating the returned slice does not affect the tracker.
func (t *PlayTracker) PlayHistory() []PlayEvent {
	history := make([]PlayEvent, len(t.events))
	copy(history, t.events)
	return history
}

// RecentPlays returns all events within an inclusive window of turnsBack
// turns ending at currentTurn.
func (t *PlayTracker) RecentPlays(currentTurn, turnsBack int) []PlayEvent {
	cutoff := currentTurn - turnsBack + 1

	var recent []PlayEvent
	for _, event := range t.events {
		if event.Turn >= cutoff {
			recent = append(recent, event)
		}
	}
	return recent
}

// CardPlayCount returns how many times a card with the exact given name has
// been played.
func (t *PlayTracker) CardPlayCount(cardName string) int {
	count := 0
	for _, event := range t.events {
		if event.CardName == cardName {
			count++
		}
	}
	return count
}

// CardFrequency pairs a card name with its play count.
type CardFrequency struct {
	CardName string
	Count    int
}

// DefaultFrequentCardLimit caps FrequentCards results when callers pass a
// non-positive limit.
const DefaultFrequentCardLimit = 5

// FrequentCards returns the most-played card names, sorted by play count
// descending. Cards with equal counts keep first-seen order so results are
// reproducible across runs.
func (t *PlayTracker) FrequentCards(limit int) []CardFrequency {
	if limit <= 0 {
		limit = DefaultFrequentCardLimit
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for i, event := range t.events {
		if _, seen := counts[event.CardName]; !seen {
			firstSeen[event.CardName] = i
			order = append(order, event.CardName)
		}
		counts[event.CardName]++
	}

	frequencies := make([]CardFrequency, 0, len(order))
	for _, name := range order {
		frequencies = append(frequencies, CardFrequency{CardName: name, Count: counts[name]})
	}

	sort.SliceStable(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return firstSeen[frequencies[i].CardName] < firstSeen[frequencies[j].CardName]
	})

	if len(frequencies) > limit {
		frequencies = frequencies[:limit]
	}
	return frequencies
}

// Clear empties the log.
func (t *PlayTracker) Clear() {
	t.events = nil
}

// DetectSequences groups the full play history by turn and emits one
// PlaySequence per turn that has at least two events. The currentTurn
// argument is accepted for interface compatibility with callers that track
// it; detection always scans the entire history.
//
// Sequences are sorted by turn ascending and each sequence's events by
// timestamp ascending, so output is deterministic regardless of delivery
// order at the input boundary.
func (t *PlayTracker) DetectSequences(currentTurn int) []PlaySequence {
	_ = currentTurn

	byTurn := make(map[int][]PlayEvent)
	for _, event := range t.events {
		byTurn[event.Turn] = append(byTurn[event.Turn], event)
	}

	var sequences []PlaySequence
	for turn, group := range byTurn {
		if len(group) < minSequenceEvents {
			continue
		}

		events := make([]PlayEvent, len(group))
		copy(events, group)
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.Before(events[j].Timestamp)
		})

		sequences = append(sequences, PlaySequence{
			Turn:     turn,
			Events:   events,
			Duration: events[len(events)-1].Timestamp.Sub(events[0].Timestamp),
		})
	}

	sort.Slice(sequences, func(i, j int) bool {
		return sequences[i].Turn < sequences[j].Turn
	})

	return sequences
}
