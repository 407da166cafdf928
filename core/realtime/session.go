package realtime

import (
	"time"

	"github.com/remylabs/remy-core/core/audio"
	"github.com/remylabs/remy-core/core/emotions"
)

// ConnectionState tracks the transport-level lifecycle of a session.
type ConnectionState string

const (
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnecting   ConnectionState = "connecting"
	// ConnectionConnected means the transport is open but the session has
	// not been configured yet.
	ConnectionConnected ConnectionState = "connected"
	ConnectionReady     ConnectionState = "ready"
)

// ConversationState tracks what the conversation is doing while the
// connection is ready.
type ConversationState string

const (
	ConversationIdle      ConversationState = "idle"
	ConversationListening ConversationState = "listening"
	ConversationThinking  ConversationState = "thinking"
	ConversationSpeaking  ConversationState = "speaking"
)

type TurnStatus string

const (
	TurnCreated    TurnStatus = "created"
	TurnInProgress TurnStatus = "in_progress"
	TurnCompleted  TurnStatus = "completed"
	TurnFailed     TurnStatus = "failed"
	TurnCanceled   TurnStatus = "canceled"
)

// Turn is one assistant response cycle. At most one non-terminal turn exists
// per session.
type Turn struct {
	ID     string
	Status TurnStatus
}

func (t Turn) Terminal() bool {
	switch t.Status {
	case TurnCompleted, TurnFailed, TurnCanceled:
		return true
	}
	return false
}

// Session is the state of one connection lifetime. It is mutated only by the
// client's event-handling goroutine; everything else observes it through
// callbacks or [Client.Snapshot].
type Session struct {
	ConnectionState   ConnectionState
	ConversationState ConversationState

	// ConversationID is issued by the server and stable across turns.
	ConversationID string

	ActiveTurn *Turn

	AssistantSpeaking bool
	UserSpeaking      bool

	// LastUserEmotion is informational; the empathy mapping derives the
	// assistant's tone from it.
	LastUserEmotion emotions.Emotion
}

// VADMode selects how utterance boundaries are detected.
type VADMode string

const (
	// VADModeServer lets the server detect speech boundaries for free
	// conversation.
	VADModeServer VADMode = "server_vad"
	// VADModeClientInterrupt leaves gating to the client (push-to-talk);
	// the client must commit the input buffer explicitly.
	VADModeClientInterrupt VADMode = "client_interrupt"
)

type VADConfig struct {
	Mode            VADMode
	SilenceDuration time.Duration
	PrefixPadding   time.Duration
}

// ASRConfig tunes the remote recognizer. The all-false zero value is treated
// as unset and replaced with the defaults, which enable every option.
type ASRConfig struct {
	DetectEmotion  bool
	SmoothFillers  bool
	AddPunctuation bool
}

// SessionConfig is the immutable configuration a client is constructed with.
type SessionConfig struct {
	URL         string
	AccessToken string
	UserID      string

	Input  audio.Config
	Output audio.Config

	VAD VADConfig
	ASR ASRConfig

	// SpeechRate and LoudnessRate bias synthesis speed and volume around
	// the voice profile's defaults; zero means unchanged.
	SpeechRate   int
	LoudnessRate int

	Empathy emotions.EmpathyMapping

	PingInterval time.Duration
	PongTimeout  time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		UserID: "remy_companion_user",
		Input:  audio.DefaultConfig(),
		Output: audio.DefaultConfig(),
		VAD: VADConfig{
			Mode:            VADModeServer,
			SilenceDuration: 500 * time.Millisecond,
			PrefixPadding:   600 * time.Millisecond,
		},
		ASR: ASRConfig{
			DetectEmotion:  true,
			SmoothFillers:  true,
			AddPunctuation: true,
		},
		Empathy:      emotions.DefaultEmpathyMapping(),
		PingInterval: 30 * time.Second,
		PongTimeout:  10 * time.Second,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	defaults := DefaultSessionConfig()
	if c.UserID == "" {
		c.UserID = defaults.UserID
	}
	if c.Input.SampleRate == 0 {
		c.Input = defaults.Input
	}
	if c.Output.SampleRate == 0 {
		c.Output = defaults.Output
	}
	if c.VAD.Mode == "" {
		c.VAD.Mode = defaults.VAD.Mode
	}
	if c.VAD.SilenceDuration == 0 {
		c.VAD.SilenceDuration = defaults.VAD.SilenceDuration
	}
	if c.VAD.PrefixPadding == 0 {
		c.VAD.PrefixPadding = defaults.VAD.PrefixPadding
	}
	if c.ASR == (ASRConfig{}) {
		c.ASR = defaults.ASR
	}
	if c.Empathy == nil {
		c.Empathy = defaults.Empathy
	}
	if c.PingInterval == 0 {
		c.PingInterval = defaults.PingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = defaults.PongTimeout
	}
	return c
}
