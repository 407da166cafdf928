// Package orchestration wires the capture pipeline, the realtime
// conversational client and the playback pipeline into one full-duplex
// spoken-conversation session.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/remylabs/remy-core/core/audio"
	"github.com/remylabs/remy-core/core/emotions"
	"github.com/remylabs/remy-core/core/events"
	"github.com/remylabs/remy-core/core/realtime"
)

// defaultLevelSmoothing keeps visualized loudness stable without hiding
// speech onsets.
const defaultLevelSmoothing = 0.3

// eventQueueDepth bounds the dispatch queue. Dispatch never blocks the audio
// or protocol goroutines; when a slow consumer falls this far behind, new
// events are dropped.
const eventQueueDepth = 256

// Orchestrator runs one spoken conversation: microphone frames stream to the
// remote service, synthesized speech streams back to the speaker, and typed
// events describing the session flow to the presentation layer.
//
// Contract: call Run at most once per orchestrator instance.
type Orchestrator struct {
	sessionConfig  realtime.SessionConfig
	levelSmoothing float64

	client       RealtimeClient
	inputDevice  audio.InputDevice
	outputDevice audio.OutputDevice

	capture      *audio.CapturePipeline
	playback     *audio.PlaybackPipeline
	inputLevels  *audio.LevelMonitor
	outputLevels *audio.LevelMonitor

	ready   atomic.Bool
	started atomic.Bool

	emit         eventEmitter
	eventQueue   chan events.Event
	dispatchStop chan struct{}
	dispatchDone chan struct{}

	closeOnce   sync.Once
	baseContext context.Context
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sessionConfig:  realtime.DefaultSessionConfig(),
		levelSmoothing: defaultLevelSmoothing,
		emit:           noopEventEmitter,
		baseContext:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		o.client = realtime.NewClient(o.sessionConfig)
	}

	o.capture = audio.NewCapturePipeline(o.sessionConfig.Input,
		audio.WithCaptureErrorCallback(func(err error) {
			o.publish(events.NewSessionError(err))
		}),
	)
	o.playback = audio.NewPlaybackPipeline(o.sessionConfig.Output,
		audio.WithPlaybackErrorCallback(func(err error) {
			o.publish(events.NewSessionError(err))
		}),
	)
	o.inputLevels = audio.NewLevelMonitor(o.levelSmoothing)
	o.outputLevels = audio.NewLevelMonitor(o.levelSmoothing)

	return o
}

// Run connects the session and starts the audio pipelines. It returns once
// the session is established; the conversation itself runs on background
// goroutines until ctx is cancelled or Close is called.
func (o *Orchestrator) Run(ctx context.Context, opts ...RunOption) error {
	if !o.started.CompareAndSwap(false, true) {
		return errors.New("orchestrator already running")
	}

	runOptions := RunOptions{}
	for _, opt := range opts {
		opt(&runOptions)
	}
	o.emit = newCallbackEventEmitter(runOptions)

	o.baseContext = ctx
	o.eventQueue = make(chan events.Event, eventQueueDepth)
	o.dispatchStop = make(chan struct{})
	o.dispatchDone = make(chan struct{})
	go o.dispatchLoop()

	if o.outputDevice != nil {
		if err := o.playback.Start(o.outputDevice); err != nil {
			return fmt.Errorf("failed to start playback: %w", err)
		}
	}

	if err := o.client.Connect(ctx,
		realtime.WithReadyCallback(o.onSessionReady),
		realtime.WithAudioCallback(o.onAssistantAudio),
		realtime.WithStateCallback(o.onStateChanged),
		realtime.WithTranscriptCallback(o.onTranscript),
		realtime.WithAssistantTextCallback(func(segment string) {
			o.publish(events.NewAssistantTextSegment(segment))
		}),
		realtime.WithEmotionCallback(func(emotion emotions.Emotion) {
			o.publish(events.NewEmotionDetected(emotion))
		}),
		realtime.WithTurnCallback(o.onTurn),
		realtime.WithErrorCallback(func(err error) {
			o.publish(events.NewSessionError(err))
		}),
		realtime.WithDebugCallback(func(message string) {
			o.publish(events.NewDebugMessage(message))
		}),
	); err != nil {
		o.playback.Stop()
		close(o.dispatchStop)
		<-o.dispatchDone
		o.dispatchStop = nil
		return fmt.Errorf("failed to connect session: %w", err)
	}

	if o.inputDevice != nil {
		if err := o.capture.Start(o.inputDevice, o.onCapturedFrame); err != nil {
			o.recordError(fmt.Errorf("failed to start capture: %w", err))
			o.publish(events.NewSessionError(err))
		}
	}

	go func() {
		<-ctx.Done()
		o.Close()
	}()

	return nil
}

// Close tears the session down: capture first so no more audio is sent, then
// playback, then the connection. Idempotent.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.ready.Store(false)
		o.capture.Stop()
		o.playback.Stop()

		if err := o.client.Close(); err != nil {
			o.recordError(fmt.Errorf("failed to close session client: %w", err))
		}

		if o.dispatchStop != nil {
			close(o.dispatchStop)
			<-o.dispatchDone
		}
	})
}

// SendText submits a typed user message into the conversation.
func (o *Orchestrator) SendText(text string) error {
	return o.client.SendText(text)
}

// Speak has the assistant voice the given text verbatim.
func (o *Orchestrator) Speak(text string) error {
	return o.client.Speak(text)
}

// CancelTurn interrupts the in-flight assistant response, discarding queued
// playback immediately.
func (o *Orchestrator) CancelTurn() error {
	o.playback.Flush()
	return o.client.CancelActiveTurn()
}

// ClearConversation wipes the server-side conversation history.
func (o *Orchestrator) ClearConversation() error {
	return o.client.ClearContext()
}

// Session returns a point-in-time snapshot of session state.
func (o *Orchestrator) Session() realtime.Session {
	return o.client.Snapshot()
}

// InputLevel returns the smoothed microphone loudness in [0, 1].
func (o *Orchestrator) InputLevel() float64 { return o.inputLevels.Level() }

// OutputLevel returns the smoothed playback loudness in [0, 1].
func (o *Orchestrator) OutputLevel() float64 { return o.outputLevels.Level() }

// onCapturedFrame runs on the capture goroutine once per microphone frame.
func (o *Orchestrator) onCapturedFrame(frame []byte) {
	level := o.inputLevels.Update(frame)
	o.publish(events.NewAudioLevelUpdated(audio.DirectionInput, level))

	// Frames captured before the session is ready have nowhere to go.
	if !o.ready.Load() {
		return
	}
	if err := o.client.SendAudio(frame); err != nil && !errors.Is(err, realtime.ErrNotReady) {
		o.recordError(fmt.Errorf("failed to send audio frame: %w", err))
	}
}

func (o *Orchestrator) onSessionReady() {
	o.ready.Store(true)
	o.publish(events.NewSessionReady())
}

func (o *Orchestrator) onAssistantAudio(frame []byte) {
	o.playback.Enqueue(frame)
	level := o.outputLevels.Update(frame)
	o.publish(events.NewAudioLevelUpdated(audio.DirectionOutput, level))
}

// onStateChanged runs on the client's event goroutine. The flush happens
// here, synchronously, so queued assistant audio is gone before the client
// even sends the cancel for a barge-in.
func (o *Orchestrator) onStateChanged(state realtime.ConversationState) {
	if state == realtime.ConversationListening {
		o.playback.Flush()
		o.outputLevels.Reset()
	}
	o.publish(events.NewSessionStateChanged(state))
}

func (o *Orchestrator) onTranscript(transcript string, final bool) {
	if final {
		o.publish(events.NewUserTranscriptFinal(transcript))
		return
	}
	o.publish(events.NewUserTranscriptInterim(transcript))
}

func (o *Orchestrator) onTurn(turn realtime.Turn) {
	switch turn.Status {
	case realtime.TurnCreated:
		o.publish(events.NewTurnStarted(turn))
	case realtime.TurnCompleted:
		o.publish(events.NewTurnCompleted(turn))
	case realtime.TurnFailed:
		o.publish(events.NewTurnFailed(turn))
	case realtime.TurnCanceled:
		o.publish(events.NewTurnCancelled(turn))
	}
}

// publish hands an event to the dispatch goroutine. It never blocks; when
// the queue is full the event is dropped so a stalled consumer cannot back
// up the audio path.
func (o *Orchestrator) publish(event events.Event) {
	select {
	case o.eventQueue <- event:
	default:
		logger.Warn("event queue full, dropping event", "kind", string(event.Kind()))
	}
}

// dispatchLoop serializes callback invocation. On shutdown it drains what is
// already queued before returning.
func (o *Orchestrator) dispatchLoop() {
	defer close(o.dispatchDone)

	for {
		select {
		case event := <-o.eventQueue:
			o.emit(event)
		case <-o.dispatchStop:
			for {
				select {
				case event := <-o.eventQueue:
					o.emit(event)
				default:
					return
				}
			}
		}
	}
}

func (o *Orchestrator) recordError(err error) {
	logger.Error(err.Error())
	span := trace.SpanFromContext(o.baseContext)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
