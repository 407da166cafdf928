package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/remylabs/remy-core/core/emotions"
)

// handleEvent is the single entry point for inbound events; it runs on the
// read-loop goroutine, so handlers mutate session state without racing each
// other. Callbacks are always invoked with the session mutex released.
func (c *Client) handleEvent(envelope Envelope) {
	switch envelope.EventType {
	case EventChatCreated:
		c.handleChatCreated()
	case EventChatUpdated:
		c.handleChatUpdated(envelope.Data)
	case EventConversationChatCreated:
		c.handleTurnCreated(envelope.Data)
	case EventConversationChatInProgress:
		c.handleTurnStatus(envelope.Data, TurnInProgress)
	case EventConversationChatCompleted:
		c.handleTurnFinished(envelope.Data, TurnCompleted)
	case EventConversationChatFailed:
		c.handleTurnFailed(envelope.Data)
	case EventConversationChatCanceled:
		c.handleTurnFinished(envelope.Data, TurnCanceled)
	case EventConversationAudioDelta:
		c.handleAudioDelta(envelope.Data)
	case EventConversationAudioSentenceStart:
		c.handleSentenceStart(envelope.Data)
	case EventConversationAudioCompleted:
		c.handleAudioCompleted()
	case EventConversationMessageDelta:
		c.handleMessageDelta(envelope.Data)
	case EventConversationAudioTranscriptUpdate:
		c.handleTranscriptUpdate(envelope.Data)
	case EventConversationAudioTranscriptCompleted:
		c.handleTranscriptCompleted(envelope.Data)
	case EventInputAudioBufferSpeechStarted:
		c.handleSpeechStarted()
	case EventInputAudioBufferSpeechStopped:
		c.handleSpeechStopped()
	case EventError:
		c.handleError(envelope.Data)
	default:
		// Includes acknowledgements with no state effect (cleared buffers,
		// completed messages) and kinds introduced by newer servers.
		logger.Debug("ignoring event", "event_type", string(envelope.EventType))
	}
}

// handleChatCreated answers the server's hello with the session
// configuration. Readiness comes later, with chat.updated.
func (c *Client) handleChatCreated() {
	c.debug("session created, sending configuration")
	if err := c.sendSessionConfiguration(); err != nil {
		logger.Error("failed to configure session", "error", err)
		if c.options.ErrorCallback != nil {
			c.options.ErrorCallback(fmt.Errorf("failed to configure session: %w", err))
		}
	}
}

func (c *Client) handleChatUpdated(raw json.RawMessage) {
	var data chatUpdatedData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse session acknowledgement", "error", err)
	}

	c.sessionMu.Lock()
	c.session.ConnectionState = ConnectionReady
	c.session.ConversationState = ConversationIdle
	if data.ChatConfig.ConversationID != "" {
		c.session.ConversationID = data.ChatConfig.ConversationID
	}
	c.sessionMu.Unlock()

	c.debug("session ready")
	if c.options.ReadyCallback != nil {
		c.options.ReadyCallback()
	}
	if c.options.StateCallback != nil {
		c.options.StateCallback(ConversationIdle)
	}
}

// handleTurnCreated opens a new assistant turn. If a prior turn is still
// live the server has superseded it, so it is marked canceled first; there
// is never more than one non-terminal turn.
func (c *Client) handleTurnCreated(raw json.RawMessage) {
	var data turnData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse turn data", "error", err)
		return
	}

	var superseded *Turn
	turn := Turn{ID: data.ID, Status: TurnCreated}

	c.sessionMu.Lock()
	if prior := c.session.ActiveTurn; prior != nil && !prior.Terminal() {
		prior.Status = TurnCanceled
		superseded = &Turn{ID: prior.ID, Status: TurnCanceled}
	}
	c.session.ActiveTurn = &turn
	c.session.ConversationState = ConversationThinking
	c.sessionMu.Unlock()

	if c.options.TurnCallback != nil {
		if superseded != nil {
			c.options.TurnCallback(*superseded)
		}
		c.options.TurnCallback(turn)
	}
	if c.options.StateCallback != nil {
		c.options.StateCallback(ConversationThinking)
	}
}

func (c *Client) handleTurnStatus(raw json.RawMessage, status TurnStatus) {
	var data turnData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse turn data", "error", err)
		return
	}

	var updated *Turn
	c.sessionMu.Lock()
	if turn := c.session.ActiveTurn; turn != nil && !turn.Terminal() && (data.ID == "" || turn.ID == data.ID) {
		turn.Status = status
		updated = &Turn{ID: turn.ID, Status: status}
	}
	c.sessionMu.Unlock()

	if updated != nil && c.options.TurnCallback != nil {
		c.options.TurnCallback(*updated)
	}
}

// handleTurnFinished closes the active turn and returns the conversation to
// idle. Completions for turns already terminal (superseded, or closed by the
// end of their audio) are dropped.
func (c *Client) handleTurnFinished(raw json.RawMessage, status TurnStatus) {
	var data turnData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse turn data", "error", err)
		return
	}

	var finished *Turn
	c.sessionMu.Lock()
	if turn := c.session.ActiveTurn; turn != nil && !turn.Terminal() && (data.ID == "" || turn.ID == data.ID) {
		turn.Status = status
		finished = &Turn{ID: turn.ID, Status: status}
		c.session.ConversationState = ConversationIdle
	}
	c.session.AssistantSpeaking = false
	c.sessionMu.Unlock()

	if finished == nil {
		return
	}
	if c.options.TurnCallback != nil {
		c.options.TurnCallback(*finished)
	}
	if c.options.StateCallback != nil {
		c.options.StateCallback(ConversationIdle)
	}
}

func (c *Client) handleTurnFailed(raw json.RawMessage) {
	c.handleTurnFinished(raw, TurnFailed)
	if c.options.ErrorCallback != nil {
		c.options.ErrorCallback(fmt.Errorf("assistant turn failed"))
	}
}

// handleAudioDelta delivers a synthesized speech frame. The first frame of a
// turn moves the conversation to speaking.
func (c *Client) handleAudioDelta(raw json.RawMessage) {
	var data audioDeltaData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse audio delta", "error", err)
		return
	}

	frame, err := base64.StdEncoding.DecodeString(data.payload())
	if err != nil {
		logger.Warn("dropping undecodable audio delta", "error", err)
		return
	}
	if len(frame) == 0 {
		return
	}

	c.sessionMu.Lock()
	startedSpeaking := !c.session.AssistantSpeaking
	c.session.AssistantSpeaking = true
	if startedSpeaking {
		c.session.ConversationState = ConversationSpeaking
	}
	c.sessionMu.Unlock()

	if startedSpeaking && c.options.StateCallback != nil {
		c.options.StateCallback(ConversationSpeaking)
	}
	if c.options.AudioCallback != nil {
		c.options.AudioCallback(frame)
	}
}

// handleSentenceStart surfaces the sentence text and retunes the assistant's
// voice to match the sentence's own emotional content.
func (c *Client) handleSentenceStart(raw json.RawMessage) {
	var data contentData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse sentence start", "error", err)
		return
	}
	if data.Content == "" {
		return
	}

	if c.options.AssistantTextCallback != nil {
		c.options.AssistantTextCallback(data.Content)
	}

	if emotion, ok := emotions.Detect(data.Content); ok {
		if c.options.EmotionCallback != nil {
			c.options.EmotionCallback(emotion)
		}
		if err := c.UpdateTone(emotion); err != nil {
			logger.Warn("failed to update tone", "error", err)
		}
	}
}

// handleAudioCompleted closes the turn when its audio ends; the dedicated
// completion event that follows finds the turn already terminal and is a
// no-op.
func (c *Client) handleAudioCompleted() {
	var finished *Turn
	c.sessionMu.Lock()
	if turn := c.session.ActiveTurn; turn != nil && !turn.Terminal() {
		turn.Status = TurnCompleted
		finished = &Turn{ID: turn.ID, Status: TurnCompleted}
	}
	c.session.AssistantSpeaking = false
	idle := !c.session.UserSpeaking
	if idle {
		c.session.ConversationState = ConversationIdle
	}
	c.sessionMu.Unlock()

	if finished != nil && c.options.TurnCallback != nil {
		c.options.TurnCallback(*finished)
	}
	if idle && c.options.StateCallback != nil {
		c.options.StateCallback(ConversationIdle)
	}
}

func (c *Client) handleMessageDelta(raw json.RawMessage) {
	var data contentData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse message delta", "error", err)
		return
	}
	if data.Content == "" {
		return
	}

	if emotion, ok := emotions.Detect(data.Content); ok && c.options.EmotionCallback != nil {
		c.options.EmotionCallback(emotion)
	}
}

// handleSpeechStarted is the barge-in point. The speaking flag is read and
// cleared under one lock acquisition so concurrent speech_started events
// produce exactly one cancel. The state callback fires before the cancel is
// sent, letting the playback side flush before more deltas can arrive.
func (c *Client) handleSpeechStarted() {
	c.sessionMu.Lock()
	c.session.UserSpeaking = true
	interrupted := c.session.AssistantSpeaking
	c.session.AssistantSpeaking = false
	c.session.ConversationState = ConversationListening
	c.sessionMu.Unlock()

	if c.options.StateCallback != nil {
		c.options.StateCallback(ConversationListening)
	}

	if interrupted {
		c.debug("user barge-in, canceling assistant turn")
		if err := c.CancelActiveTurn(); err != nil {
			logger.Warn("failed to cancel interrupted turn", "error", err)
		}
	}
}

func (c *Client) handleSpeechStopped() {
	c.sessionMu.Lock()
	c.session.UserSpeaking = false
	c.session.ConversationState = ConversationThinking
	c.sessionMu.Unlock()

	if c.options.StateCallback != nil {
		c.options.StateCallback(ConversationThinking)
	}
}

func (c *Client) handleTranscriptUpdate(raw json.RawMessage) {
	var data transcriptData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse transcript update", "error", err)
		return
	}
	if data.Content == "" {
		return
	}

	if c.options.TranscriptCallback != nil {
		c.options.TranscriptCallback(data.Content, false)
	}
}

// handleTranscriptCompleted finalizes the user's utterance. The recognizer's
// own emotion tag wins when present; otherwise keyword detection over the
// transcript fills in. The resulting tone, filtered through the empathy
// mapping, is pushed to the synthesis side for the upcoming response.
func (c *Client) handleTranscriptCompleted(raw json.RawMessage) {
	var data transcriptData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse transcript", "error", err)
		return
	}
	if data.Content == "" {
		return
	}

	emotion := emotions.Neutral
	detected := false
	if tag := data.emotionTag(); tag != "" {
		emotion = emotions.ParseEmotion(tag)
		detected = true
	} else {
		emotion, detected = emotions.Detect(data.Content)
	}

	c.sessionMu.Lock()
	c.session.LastUserEmotion = emotion
	c.sessionMu.Unlock()

	if detected {
		if c.options.EmotionCallback != nil {
			c.options.EmotionCallback(emotion)
		}
		if err := c.UpdateTone(c.cfg.Empathy.Respond(emotion)); err != nil {
			logger.Warn("failed to update tone", "error", err)
		}
	}

	if c.options.TranscriptCallback != nil {
		c.options.TranscriptCallback(data.Content, true)
	}
}

func (c *Client) handleError(raw json.RawMessage) {
	var data errorData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("failed to parse error event", "error", err)
		return
	}

	logger.Error("remote error", "code", data.Code, "msg", data.Msg)
	if c.options.ErrorCallback != nil {
		c.options.ErrorCallback(fmt.Errorf("remote error %d: %s", data.Code, data.Msg))
	}
}
