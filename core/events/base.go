package events

import "time"

// Kind names an event type, namespaced with a dot ("session.error").
type Kind string

// Event is the value the transport hands to the orchestrator's event loop.
type Event interface {
	Kind() Kind
	// Timestamp is the construction instant of the event, not the instant
	// the underlying wire message was received.
	Timestamp() time.Time
}

// Base carries what every event shares. Embed it and build it with NewBase;
// the zero value has no kind and reports a zero timestamp.
type Base struct {
	kind       Kind
	occurredAt time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, occurredAt: time.Now()}
}

func (b Base) Kind() Kind { return b.kind }

func (b Base) Timestamp() time.Time { return b.occurredAt }
