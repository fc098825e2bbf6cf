package events

import (
	"errors"
	"testing"
)

// stubObserver records the events it receives.
type stubObserver struct {
	name     string
	accepts  string
	received []Event
	fail     bool
}

func (o *stubObserver) OnEvent(event Event) error {
	o.received = append(o.received, event)
	if o.fail {
		return errors.New("handler failure")
	}
	return nil
}

func (o *stubObserver) Name() string { return o.name }

func (o *stubObserver) ShouldHandle(eventType string) bool {
	return o.accepts == "" || o.accepts == eventType
}

func TestDispatcher_Dispatch(t *testing.T) {
	dispatcher := NewDispatcher()
	observer := &stubObserver{name: "all"}
	dispatcher.Register(observer)

	dispatcher.Dispatch(Event{Type: TypePatternDetected, Payload: PatternDetectedEvent{Occurrences: 2}})

	if len(observer.received) != 1 {
		t.Fatalf("Expected 1 event delivered, got %d", len(observer.received))
	}
	if observer.received[0].Type != TypePatternDetected {
		t.Errorf("Expected %s, got %s", TypePatternDetected, observer.received[0].Type)
	}
}

func TestDispatcher_FiltersByType(t *testing.T) {
	dispatcher := NewDispatcher()
	threats := &stubObserver{name: "threats", accepts: TypeThreatRaised}
	dispatcher.Register(threats)

	dispatcher.Dispatch(Event{Type: TypePatternDetected})
	dispatcher.Dispatch(Event{Type: TypeThreatRaised})

	if len(threats.received) != 1 {
		t.Fatalf("Expected filtered observer to receive 1 event, got %d", len(threats.received))
	}
}

func TestDispatcher_ObserverErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewDispatcher()
	failing := &stubObserver{name: "failing", fail: true}
	healthy := &stubObserver{name: "healthy"}
	dispatcher.Register(failing)
	dispatcher.Register(healthy)

	dispatcher.Dispatch(Event{Type: TypeKnowledgeSaved})

	if len(healthy.received) != 1 {
		t.Error("Expected delivery to continue past a failing observer")
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	dispatcher := NewDispatcher()
	observer := &stubObserver{name: "gone"}
	dispatcher.Register(observer)
	dispatcher.Unregister(observer)

	dispatcher.Dispatch(Event{Type: TypeThreatRaised})

	if len(observer.received) != 0 {
		t.Error("Expected no delivery after Unregister")
	}
	if dispatcher.ObserverCount() != 0 {
		t.Errorf("Expected 0 observers, got %d", dispatcher.ObserverCount())
	}
}

func TestPayload(t *testing.T) {
	event := Event{Type: TypeThreatRaised, Payload: ThreatRaisedEvent{Occurrences: 3}}

	payload, ok := Payload[ThreatRaisedEvent](event)
	if !ok {
		t.Fatal("Expected typed payload extraction to succeed")
	}
	if payload.Occurrences != 3 {
		t.Errorf("Expected occurrences 3, got %d", payload.Occurrences)
	}

	if _, ok := Payload[PatternDetectedEvent](event); ok {
		t.Error("Expected mismatched payload type to fail")
	}
}
