package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/remylabs/remy-core/core/emotions"
	"github.com/remylabs/remy-core/internal/utils"
)

func (c *Client) sendEvent(eventType EventType, data any) error {
	envelope := Envelope{
		ID:        uuid.NewString()[:8],
		EventType: eventType,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", eventType, err)
		}
		envelope.Data = raw
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.WriteJSON(envelope); err != nil {
		return fmt.Errorf("failed to send %s: %w", eventType, err)
	}
	return nil
}

// sendSessionConfiguration pushes the full session setup: audio formats, the
// turn-detection window, and recognizer behavior.
func (c *Client) sendSessionConfiguration() error {
	update := sessionUpdateData{
		ChatConfig: &chatConfigData{
			AutoSaveHistory: true,
			UserID:          c.cfg.UserID,
		},
		InputAudio: &inputAudioData{
			Format:     "pcm",
			Codec:      "pcm",
			SampleRate: c.cfg.Input.SampleRate,
			Channel:    c.cfg.Input.Channels,
			BitDepth:   16,
		},
		OutputAudio: &outputAudioData{
			Codec: "pcm",
			PCMConfig: pcmConfigData{
				SampleRate:  c.cfg.Output.SampleRate,
				FrameSizeMS: int(c.cfg.Output.ChunkDuration.Milliseconds()),
			},
		},
		TurnDetection: &turnDetectionData{
			Type:              string(c.cfg.VAD.Mode),
			SilenceDurationMS: int(c.cfg.VAD.SilenceDuration.Milliseconds()),
			PrefixPaddingMS:   int(c.cfg.VAD.PrefixPadding.Milliseconds()),
		},
		ASRConfig: &asrConfigData{
			StreamMode:    "output_no_stream",
			EnableEmotion: c.cfg.ASR.DetectEmotion,
			EnableDDC:     c.cfg.ASR.SmoothFillers,
			EnablePunc:    c.cfg.ASR.AddPunctuation,
		},
	}
	if c.cfg.SpeechRate != 0 {
		update.OutputAudio.SpeechRate = utils.Ptr(c.cfg.SpeechRate)
	}
	if c.cfg.LoudnessRate != 0 {
		update.OutputAudio.LoudnessRate = utils.Ptr(c.cfg.LoudnessRate)
	}
	return c.sendEvent(EventChatUpdate, update)
}

// SendAudio streams one captured frame to the recognizer. Frames sent before
// the session is ready would be silently discarded server-side, so they are
// rejected here instead.
func (c *Client) SendAudio(frame []byte) error {
	c.sessionMu.RLock()
	ready := c.session.ConnectionState == ConnectionReady
	c.sessionMu.RUnlock()
	if !ready {
		return ErrNotReady
	}

	return c.sendEvent(EventInputAudioBufferAppend, appendAudioData{
		Delta: base64.StdEncoding.EncodeToString(frame),
	})
}

// CommitInput marks the utterance as finished. Only needed outside server
// turn detection.
func (c *Client) CommitInput() error {
	return c.sendEvent(EventInputAudioBufferComplete, nil)
}

// ClearInputBuffer drops audio the recognizer has buffered but not
// processed.
func (c *Client) ClearInputBuffer() error {
	return c.sendEvent(EventInputAudioBufferClear, nil)
}

// CancelActiveTurn asks the server to abandon the in-flight response. The
// turn's canceled confirmation arrives asynchronously.
func (c *Client) CancelActiveTurn() error {
	return c.sendEvent(EventConversationChatCancel, nil)
}

// ClearContext wipes the server-side conversation history.
func (c *Client) ClearContext() error {
	return c.sendEvent(EventConversationClear, nil)
}

// SendText submits a typed user message, entering the same response cycle as
// spoken input.
func (c *Client) SendText(text string) error {
	return c.sendEvent(EventConversationMessageCreate, messageCreateData{
		Role:        "user",
		ContentType: "text",
		Content:     text,
	})
}

// Speak has the assistant voice the given text verbatim, without a model
// round trip.
func (c *Client) Speak(text string) error {
	return c.sendEvent(EventInputTextGenerateAudio, generateAudioData{
		Mode: "text",
		Text: text,
	})
}

// UpdateTone retunes the synthesis voice toward the given emotion. Voices
// without multi-tone support treat this as a no-op server-side.
func (c *Client) UpdateTone(tone emotions.Emotion) error {
	return c.sendEvent(EventChatUpdate, sessionUpdateData{
		OutputAudio: &outputAudioData{
			Codec: "pcm",
			PCMConfig: pcmConfigData{
				SampleRate:  c.cfg.Output.SampleRate,
				FrameSizeMS: int(c.cfg.Output.ChunkDuration.Milliseconds()),
			},
			EmotionConfig: &emotionConfigData{Emotion: tone.WireName()},
		},
	})
}
