// Package events distributes analysis events to registered observers so the
// AI and UI layers can react without polling the engine.
package events

import (
	"log"
	"sync"
)

// Event is a single analysis event delivered to observers.
type Event struct {
	// Type is the event type (e.g. "pattern:detected", "threat:raised").
	Type string

	// Payload carries the typed event data; see messages.go for the
	// payload struct matching each event type.
	Payload any
}

// Observer is notified of dispatched events. Implementations decide which
// event types they care about through ShouldHandle.
type Observer interface {
	// OnEvent is called when an event is dispatched. Returning an error
	// logs the failure but does not stop delivery to other observers.
	OnEvent(event Event) error

	// Name returns a human-readable name for logging.
	Name() string

	// ShouldHandle reports whether this observer wants the event type.
	ShouldHandle(eventType string) bool
}

// Dispatcher fans events out to registered observers. Thread-safe for
// concurrent use.
type Dispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{observers: make([]Observer, 0)}
}

// Register adds an observer. It will receive all future events its
// ShouldHandle accepts.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	log.Printf("[Dispatcher] Registered observer: %s", observer.Name())
}

// Unregister removes an observer.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			log.Printf("[Dispatcher] Unregistered observer: %s", observer.Name())
			return
		}
	}
}

// Dispatch delivers an event to all registered observers sequentially, in
// registration order. Observer errors are logged and delivery continues.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[Dispatcher] Observer %s failed to handle event %s: %v",
				observer.Name(), event.Type, err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Clear removes all registered observers.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = make([]Observer, 0)
}

// Payload extracts a typed payload from an event. Returns the zero value
// and false if the payload is not of the expected type.
func Payload[T any](event Event) (T, bool) {
	var zero T
	if event.Payload == nil {
		return zero, false
	}
	typed, ok := event.Payload.(T)
	return typed, ok
}
