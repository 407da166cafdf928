package realtime

import "encoding/json"

// EventType enumerates the wire protocol's event kinds. Inbound kinds not in
// this enumeration are logged and ignored so newer server versions cannot
// fault the state machine.
type EventType string

// Inbound event types.
const (
	EventChatCreated                          EventType = "chat.created"
	EventChatUpdated                          EventType = "chat.updated"
	EventConversationChatCreated              EventType = "conversation.chat.created"
	EventConversationChatInProgress           EventType = "conversation.chat.in_progress"
	EventConversationChatCompleted            EventType = "conversation.chat.completed"
	EventConversationChatFailed               EventType = "conversation.chat.failed"
	EventConversationChatCanceled             EventType = "conversation.chat.canceled"
	EventConversationChatRequiresAction       EventType = "conversation.chat.requires_action"
	EventConversationAudioDelta               EventType = "conversation.audio.delta"
	EventConversationAudioSentenceStart       EventType = "conversation.audio.sentence_start"
	EventConversationAudioCompleted           EventType = "conversation.audio.completed"
	EventConversationMessageDelta             EventType = "conversation.message.delta"
	EventConversationMessageCompleted         EventType = "conversation.message.completed"
	EventConversationAudioTranscriptUpdate    EventType = "conversation.audio_transcript.update"
	EventConversationAudioTranscriptCompleted EventType = "conversation.audio_transcript.completed"
	EventConversationCleared                  EventType = "conversation.cleared"
	EventInputAudioBufferCompleted            EventType = "input_audio_buffer.completed"
	EventInputAudioBufferCleared              EventType = "input_audio_buffer.cleared"
	EventInputAudioBufferSpeechStarted        EventType = "input_audio_buffer.speech_started"
	EventInputAudioBufferSpeechStopped        EventType = "input_audio_buffer.speech_stopped"
	EventError                                EventType = "error"
)

// Outbound event types.
const (
	EventChatUpdate                EventType = "chat.update"
	EventInputAudioBufferAppend    EventType = "input_audio_buffer.append"
	EventInputAudioBufferComplete  EventType = "input_audio_buffer.complete"
	EventInputAudioBufferClear     EventType = "input_audio_buffer.clear"
	EventConversationChatCancel    EventType = "conversation.chat.cancel"
	EventConversationClear         EventType = "conversation.clear"
	EventConversationMessageCreate EventType = "conversation.message.create"
	EventInputTextGenerateAudio    EventType = "input_text.generate_audio"
)

// Envelope is the wire framing shared by both directions.
type Envelope struct {
	ID        string          `json:"id"`
	EventType EventType       `json:"event_type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type chatUpdatedData struct {
	ChatConfig struct {
		ConversationID string `json:"conversation_id"`
	} `json:"chat_config"`
}

type turnData struct {
	ID string `json:"id"`
}

// audioDeltaData accepts audio under either the content or the delta key;
// the server has used both.
type audioDeltaData struct {
	Content string `json:"content"`
	Delta   string `json:"delta"`
}

func (d audioDeltaData) payload() string {
	if d.Content != "" {
		return d.Content
	}
	return d.Delta
}

type contentData struct {
	Content string `json:"content"`
}

type transcriptData struct {
	Content      string `json:"content"`
	Emotion      string `json:"emotion"`
	UserEmotion  string `json:"user_emotion"`
	VoiceEmotion string `json:"voice_emotion"`
}

// emotionTag returns the first emotion tag the recognizer supplied, if any.
func (d transcriptData) emotionTag() string {
	for _, tag := range []string{d.Emotion, d.UserEmotion, d.VoiceEmotion} {
		if tag != "" {
			return tag
		}
	}
	return ""
}

type errorData struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type chatConfigData struct {
	AutoSaveHistory bool   `json:"auto_save_history"`
	UserID          string `json:"user_id"`
}

type inputAudioData struct {
	Format     string `json:"format"`
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channel    int    `json:"channel"`
	BitDepth   int    `json:"bit_depth"`
}

type pcmConfigData struct {
	SampleRate  int `json:"sample_rate"`
	FrameSizeMS int `json:"frame_size_ms"`
}

type emotionConfigData struct {
	Emotion string `json:"emotion"`
}

type outputAudioData struct {
	Codec         string             `json:"codec"`
	PCMConfig     pcmConfigData      `json:"pcm_config"`
	SpeechRate    *int               `json:"speech_rate,omitempty"`
	LoudnessRate  *int               `json:"loudness_rate,omitempty"`
	EmotionConfig *emotionConfigData `json:"emotion_config,omitempty"`
}

type turnDetectionData struct {
	Type              string `json:"type"`
	SilenceDurationMS int    `json:"silence_duration_ms"`
	PrefixPaddingMS   int    `json:"prefix_padding_ms"`
}

type asrConfigData struct {
	StreamMode    string `json:"stream_mode"`
	EnableEmotion bool   `json:"enable_emotion"`
	EnableDDC     bool   `json:"enable_ddc"`
	EnablePunc    bool   `json:"enable_punc"`
}

type sessionUpdateData struct {
	ChatConfig    *chatConfigData    `json:"chat_config,omitempty"`
	InputAudio    *inputAudioData    `json:"input_audio,omitempty"`
	OutputAudio   *outputAudioData   `json:"output_audio,omitempty"`
	TurnDetection *turnDetectionData `json:"turn_detection,omitempty"`
	ASRConfig     *asrConfigData     `json:"asr_config,omitempty"`
}

type appendAudioData struct {
	Delta string `json:"delta"`
}

type messageCreateData struct {
	Role        string `json:"role"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type generateAudioData struct {
	Mode string `json:"mode"`
	Text string `json:"text"`
}
