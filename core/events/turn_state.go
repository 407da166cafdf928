package events

import "github.com/remylabs/remy-core/core/realtime"

// KindTurnStarted identifies turn creation.
const KindTurnStarted Kind = "turn_state.started"

// TurnStarted marks the beginning of a new assistant turn.
type TurnStarted struct {
	Base
	Turn realtime.Turn
}

func NewTurnStarted(turn realtime.Turn) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), Turn: turn}
}

// KindTurnCompleted identifies normal turn completion.
const KindTurnCompleted Kind = "turn_state.completed"

// TurnCompleted marks the current turn as finished.
type TurnCompleted struct {
	Base
	Turn realtime.Turn
}

func NewTurnCompleted(turn realtime.Turn) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), Turn: turn}
}

// KindTurnFailed identifies remote-reported turn failure.
const KindTurnFailed Kind = "turn_state.failed"

// TurnFailed marks the current turn as failed; the session stays usable.
type TurnFailed struct {
	Base
	Turn realtime.Turn
}

func NewTurnFailed(turn realtime.Turn) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), Turn: turn}
}

// KindTurnCancelled identifies turn cancellation.
const KindTurnCancelled Kind = "turn_state.cancelled"

// TurnCancelled marks cancellation of the current turn.
type TurnCancelled struct {
	Base
	Turn realtime.Turn
}

func NewTurnCancelled(turn realtime.Turn) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), Turn: turn}
}
