package realtime

import "github.com/remylabs/remy-core/core/emotions"

// ConnectOptions holds the callbacks fired by the client's event-handling
// goroutine. All callbacks are optional.
type ConnectOptions struct {
	ReadyCallback         func()
	AudioCallback         func(frame []byte)
	TranscriptCallback    func(text string, final bool)
	AssistantTextCallback func(text string)
	EmotionCallback       func(emotion emotions.Emotion)
	StateCallback         func(state ConversationState)
	TurnCallback          func(turn Turn)
	ErrorCallback         func(err error)
	DebugCallback         func(message string)
}

type ConnectOption func(*ConnectOptions)

// WithReadyCallback registers a callback fired once the session has been
// configured and accepts audio.
func WithReadyCallback(callback func()) ConnectOption {
	return func(o *ConnectOptions) { o.ReadyCallback = callback }
}

// WithAudioCallback registers a callback for synthesized speech frames.
func WithAudioCallback(callback func(frame []byte)) ConnectOption {
	return func(o *ConnectOptions) { o.AudioCallback = callback }
}

// WithTranscriptCallback registers a callback for transcriptions of the
// user's speech, interim and final.
func WithTranscriptCallback(callback func(text string, final bool)) ConnectOption {
	return func(o *ConnectOptions) { o.TranscriptCallback = callback }
}

// WithAssistantTextCallback registers a callback for the assistant's
// sentence-level response text.
func WithAssistantTextCallback(callback func(text string)) ConnectOption {
	return func(o *ConnectOptions) { o.AssistantTextCallback = callback }
}

// WithEmotionCallback registers a callback for detected emotions.
func WithEmotionCallback(callback func(emotion emotions.Emotion)) ConnectOption {
	return func(o *ConnectOptions) { o.EmotionCallback = callback }
}

// WithStateCallback registers a callback for conversation state transitions.
func WithStateCallback(callback func(state ConversationState)) ConnectOption {
	return func(o *ConnectOptions) { o.StateCallback = callback }
}

// WithTurnCallback registers a callback fired on every turn status change.
func WithTurnCallback(callback func(turn Turn)) ConnectOption {
	return func(o *ConnectOptions) { o.TurnCallback = callback }
}

// WithErrorCallback registers a callback for transport and remote errors.
func WithErrorCallback(callback func(err error)) ConnectOption {
	return func(o *ConnectOptions) { o.ErrorCallback = callback }
}

// WithDebugCallback registers a callback for diagnostic messages.
func WithDebugCallback(callback func(message string)) ConnectOption {
	return func(o *ConnectOptions) { o.DebugCallback = callback }
}
