package orchestration

import (
	"context"

	"github.com/remylabs/remy-core/core/audio"
	"github.com/remylabs/remy-core/core/emotions"
	"github.com/remylabs/remy-core/core/realtime"
)

type OrchestratorOption func(*Orchestrator)

// RealtimeClient is the conversational service facade the orchestrator
// drives. *realtime.Client satisfies it; tests substitute their own.
type RealtimeClient interface {
	Connect(ctx context.Context, opts ...realtime.ConnectOption) error
	SendAudio(frame []byte) error
	SendText(text string) error
	Speak(text string) error
	CancelActiveTurn() error
	ClearContext() error
	Snapshot() realtime.Session
	Close() error
}

// WithRealtimeClient overrides the conversational service client. Without
// this option the orchestrator builds one from its session configuration.
func WithRealtimeClient(client RealtimeClient) OrchestratorOption {
	return func(o *Orchestrator) { o.client = client }
}

// WithSessionConfig overrides the session configuration used to build the
// default client and to size the audio pipelines.
func WithSessionConfig(cfg realtime.SessionConfig) OrchestratorOption {
	return func(o *Orchestrator) { o.sessionConfig = cfg }
}

// WithAudioInput sets the capture device. Without it the session runs
// without a microphone; text input still works.
func WithAudioInput(device audio.InputDevice) OrchestratorOption {
	return func(o *Orchestrator) { o.inputDevice = device }
}

// WithAudioOutput sets the playback device. Without it synthesized audio is
// discarded; transcripts and text still flow.
func WithAudioOutput(device audio.OutputDevice) OrchestratorOption {
	return func(o *Orchestrator) { o.outputDevice = device }
}

// WithLevelSmoothing overrides the loudness smoothing factor in [0, 1).
func WithLevelSmoothing(smoothing float64) OrchestratorOption {
	return func(o *Orchestrator) { o.levelSmoothing = smoothing }
}

// RunOptions holds the presentation-layer callbacks for one session run. All
// callbacks are optional and are invoked from the orchestrator's dispatch
// goroutine, one at a time.
type RunOptions struct {
	onReady             func()
	onStateChanged      func(state realtime.ConversationState)
	onInputLevel        func(level float64)
	onOutputLevel       func(level float64)
	onInterimTranscript func(transcript string)
	onTranscript        func(transcript string)
	onResponseText      func(segment string)
	onEmotion           func(emotion emotions.Emotion)
	onTurnStarted       func(turn realtime.Turn)
	onTurnEnded         func(turn realtime.Turn)
	onError             func(err error)
	onDebug             func(message string)
}

type RunOption func(*RunOptions)

// WithReadyCallback fires once the session accepts audio.
func WithReadyCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onReady = callback }
}

// WithStateChangedCallback fires on every conversation state transition.
func WithStateChangedCallback(callback func(state realtime.ConversationState)) RunOption {
	return func(o *RunOptions) { o.onStateChanged = callback }
}

// WithInputLevelCallback fires with the smoothed microphone loudness,
// normalized to [0, 1], once per captured frame.
func WithInputLevelCallback(callback func(level float64)) RunOption {
	return func(o *RunOptions) { o.onInputLevel = callback }
}

// WithOutputLevelCallback fires with the smoothed playback loudness.
func WithOutputLevelCallback(callback func(level float64)) RunOption {
	return func(o *RunOptions) { o.onOutputLevel = callback }
}

// WithInterimTranscriptCallback fires with interim transcription snapshots
// of the user's ongoing utterance.
func WithInterimTranscriptCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onInterimTranscript = callback }
}

// WithTranscriptCallback fires with the terminal transcript of each
// utterance.
func WithTranscriptCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onTranscript = callback }
}

// WithResponseTextCallback fires with sentence-level pieces of the
// assistant's response as synthesis reaches them.
func WithResponseTextCallback(callback func(segment string)) RunOption {
	return func(o *RunOptions) { o.onResponseText = callback }
}

// WithEmotionCallback fires with each detected emotion.
func WithEmotionCallback(callback func(emotion emotions.Emotion)) RunOption {
	return func(o *RunOptions) { o.onEmotion = callback }
}

// WithTurnStartedCallback fires when a new assistant turn begins.
func WithTurnStartedCallback(callback func(turn realtime.Turn)) RunOption {
	return func(o *RunOptions) { o.onTurnStarted = callback }
}

// WithTurnEndedCallback fires when a turn reaches a terminal status.
func WithTurnEndedCallback(callback func(turn realtime.Turn)) RunOption {
	return func(o *RunOptions) { o.onTurnEnded = callback }
}

// WithErrorCallback fires with surfaced errors; the session stays in the
// nearest well-defined state.
func WithErrorCallback(callback func(err error)) RunOption {
	return func(o *RunOptions) { o.onError = callback }
}

// WithDebugCallback fires with diagnostic messages.
func WithDebugCallback(callback func(message string)) RunOption {
	return func(o *RunOptions) { o.onDebug = callback }
}
