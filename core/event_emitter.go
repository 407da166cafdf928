package orchestration

import (
	"github.com/remylabs/remy-core/core/audio"
	"github.com/remylabs/remy-core/core/events"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newCallbackEventEmitter translates typed events into the run callbacks.
// Events without a registered callback are dropped.
func newCallbackEventEmitter(opts RunOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.SessionReady:
			if opts.onReady != nil {
				opts.onReady()
			}
		case events.SessionStateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(typedEvent.State)
			}
		case events.SessionError:
			if opts.onError != nil {
				opts.onError(typedEvent.Err)
			}
		case events.AudioLevelUpdated:
			switch typedEvent.Direction {
			case audio.DirectionInput:
				if opts.onInputLevel != nil {
					opts.onInputLevel(typedEvent.Level)
				}
			case audio.DirectionOutput:
				if opts.onOutputLevel != nil {
					opts.onOutputLevel(typedEvent.Level)
				}
			}
		case events.UserTranscriptInterim:
			if opts.onInterimTranscript != nil {
				opts.onInterimTranscript(typedEvent.Transcript)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Transcript)
			}
		case events.AssistantTextSegment:
			if opts.onResponseText != nil {
				opts.onResponseText(typedEvent.Segment)
			}
		case events.EmotionDetected:
			if opts.onEmotion != nil {
				opts.onEmotion(typedEvent.Emotion)
			}
		case events.TurnStarted:
			if opts.onTurnStarted != nil {
				opts.onTurnStarted(typedEvent.Turn)
			}
		case events.TurnCompleted:
			if opts.onTurnEnded != nil {
				opts.onTurnEnded(typedEvent.Turn)
			}
		case events.TurnFailed:
			if opts.onTurnEnded != nil {
				opts.onTurnEnded(typedEvent.Turn)
			}
		case events.TurnCancelled:
			if opts.onTurnEnded != nil {
				opts.onTurnEnded(typedEvent.Turn)
			}
		case events.DebugMessage:
			if opts.onDebug != nil {
				opts.onDebug(typedEvent.Message)
			}
		}
	}
}
