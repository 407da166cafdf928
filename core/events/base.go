package events

import "time"

// Kind names an event type, namespaced as documented in the package comment.
type Kind string

// Event is implemented by every event in this package through [Base].
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time common to all events. Embed it and
// construct it with [NewBase].
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp is the moment the event was constructed, not dispatched.
func (b Base) Timestamp() time.Time {
	return b.timestamp
}
