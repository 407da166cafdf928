package events

import "github.com/remylabs/remy-core/core/realtime"

// KindSessionReady identifies session readiness.
const KindSessionReady Kind = "session.ready"

// SessionReady marks the connection as established and configured.
type SessionReady struct{ Base }

func NewSessionReady() SessionReady {
	return SessionReady{Base: NewBase(KindSessionReady)}
}

// KindSessionStateChanged identifies conversation state transitions.
const KindSessionStateChanged Kind = "session.state_changed"

// SessionStateChanged carries the new conversation state.
type SessionStateChanged struct {
	Base
	State realtime.ConversationState
}

func NewSessionStateChanged(state realtime.ConversationState) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), State: state}
}

// KindSessionError identifies surfaced errors.
const KindSessionError Kind = "session.error"

// SessionError carries an error surfaced to the presentation layer.
type SessionError struct {
	Base
	Err error
}

func NewSessionError(err error) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Err: err}
}

// KindDebugMessage identifies diagnostic messages.
const KindDebugMessage Kind = "debug.message"

// DebugMessage carries diagnostic text.
type DebugMessage struct {
	Base
	Message string
}

func NewDebugMessage(message string) DebugMessage {
	return DebugMessage{Base: NewBase(KindDebugMessage), Message: message}
}
