package analysis

import (
	"testing"
	"time"

	"github.com/duelware/insight/internal/events"
	"github.com/duelware/insight/internal/knowledge"
)

// captureObserver collects every dispatched event.
type captureObserver struct {
	received []events.Event
}

func (o *captureObserver) OnEvent(event events.Event) error {
	o.received = append(o.received, event)
	return nil
}

func (o *captureObserver) Name() string { return "capture" }

func (o *captureObserver) ShouldHandle(string) bool { return true }

func (o *captureObserver) ofType(eventType string) []events.Event {
	var matched []events.Event
	for _, event := range o.received {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestAnalyzer_PublishesPatternOnce(t *testing.T) {
	observer := &captureObserver{}
	dispatcher := events.NewDispatcher()
	dispatcher.Register(observer)
	analyzer := NewAnalyzer(dispatcher, nil)

	combo := func(turn int) {
		for i, name := range []string{"DangerousCard", "ComboCard"} {
			analyzer.ObservePlay(playAt(name, turn, timeOffset(turn, i), PlaySummon))
		}
	}

	combo(1)
	if got := observer.ofType(events.TypePatternDetected); len(got) != 0 {
		t.Fatalf("Expected no pattern event from a single turn, got %d", len(got))
	}

	combo(3)
	detected := observer.ofType(events.TypePatternDetected)
	if len(detected) != 1 {
		t.Fatalf("Expected exactly 1 pattern:detected event, got %d", len(detected))
	}
	payload, ok := events.Payload[events.PatternDetectedEvent](detected[0])
	if !ok {
		t.Fatal("Expected a PatternDetectedEvent payload")
	}
	if payload.Occurrences != 2 {
		t.Errorf("Expected 2 occurrences, got %d", payload.Occurrences)
	}

	// A third recurrence raises a threat but no second detection event.
	combo(5)
	if got := observer.ofType(events.TypePatternDetected); len(got) != 1 {
		t.Errorf("Expected pattern:detected to fire once, got %d", len(got))
	}
	threats := observer.ofType(events.TypeThreatRaised)
	if len(threats) != 1 {
		t.Fatalf("Expected 1 threat:raised event, got %d", len(threats))
	}

	// Further recurrences do not re-raise the threat.
	combo(7)
	if got := observer.ofType(events.TypeThreatRaised); len(got) != 1 {
		t.Errorf("Expected threat:raised to fire once, got %d", len(got))
	}
}

func TestAnalyzer_SeedsKnowledgeOnThreat(t *testing.T) {
	store := knowledge.NewStore(knowledge.NewMemoryPort())
	analyzer := NewAnalyzer(nil, store)

	for _, turn := range []int{1, 3, 5} {
		for i, name := range []string{"DangerousCard", "ComboCard"} {
			analyzer.ObservePlay(playAt(name, turn, timeOffset(turn, i), PlaySummon))
		}
	}

	entries := store.Search(knowledge.Query{Type: knowledge.EntryCombo})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 combo entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Importance < 0.79 || entry.Importance > 0.81 {
		t.Errorf("Expected importance near 0.8 for 3 occurrences, got %v", entry.Importance)
	}
	found := false
	for _, tag := range entry.Tags {
		if tag == "threat" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a threat tag, got %v", entry.Tags)
	}
}

func TestAnalyzer_Reset(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	analyzer.ObservePlay(playAt("Card", 1, 0, PlaySummon))
	analyzer.Reset()

	if len(analyzer.History()) != 0 {
		t.Error("Expected empty tracker after Reset")
	}
}

func timeOffset(turn, index int) time.Duration {
	return time.Duration(turn)*time.Minute + time.Duration(index)*time.Second
}
