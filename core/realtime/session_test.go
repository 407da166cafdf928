package realtime

import (
	"testing"
	"time"
)

func TestTurnTerminal(t *testing.T) {
	for _, status := range []TurnStatus{TurnCompleted, TurnFailed, TurnCanceled} {
		if !(Turn{Status: status}).Terminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []TurnStatus{TurnCreated, TurnInProgress} {
		if (Turn{Status: status}).Terminal() {
			t.Fatalf("expected %s not to be terminal", status)
		}
	}
}

func TestConfigDefaultsFillMissingFields(t *testing.T) {
	cfg := SessionConfig{URL: "wss://example.test/chat"}.withDefaults()

	if cfg.UserID == "" {
		t.Fatalf("expected default user id")
	}
	if cfg.Input.SampleRate != 24000 {
		t.Fatalf("expected default input sample rate 24000, got %d", cfg.Input.SampleRate)
	}
	if cfg.VAD.Mode != VADModeServer {
		t.Fatalf("expected server turn detection, got %s", cfg.VAD.Mode)
	}
	if cfg.VAD.SilenceDuration != 500*time.Millisecond {
		t.Fatalf("expected 500ms silence window, got %s", cfg.VAD.SilenceDuration)
	}
	if !cfg.ASR.DetectEmotion || !cfg.ASR.SmoothFillers || !cfg.ASR.AddPunctuation {
		t.Fatalf("expected recognizer options enabled by default, got %+v", cfg.ASR)
	}
	if cfg.Empathy == nil {
		t.Fatalf("expected default empathy mapping")
	}
	if cfg.PingInterval != 30*time.Second || cfg.PongTimeout != 10*time.Second {
		t.Fatalf("expected default keepalive timings, got %s/%s", cfg.PingInterval, cfg.PongTimeout)
	}
}

func TestConfigDefaultsKeepExplicitValues(t *testing.T) {
	cfg := SessionConfig{
		URL:          "wss://example.test/chat",
		UserID:       "someone",
		ASR:          ASRConfig{DetectEmotion: true},
		PingInterval: time.Second,
	}.withDefaults()

	if cfg.UserID != "someone" {
		t.Fatalf("expected explicit user id kept, got %s", cfg.UserID)
	}
	if !cfg.ASR.DetectEmotion || cfg.ASR.SmoothFillers || cfg.ASR.AddPunctuation {
		t.Fatalf("expected explicit recognizer options kept, got %+v", cfg.ASR)
	}
	if cfg.PingInterval != time.Second {
		t.Fatalf("expected explicit ping interval kept, got %s", cfg.PingInterval)
	}
}

func TestSnapshotIsIndependentOfSession(t *testing.T) {
	c := NewClient(SessionConfig{URL: "wss://example.test/chat"})
	c.session.ActiveTurn = &Turn{ID: "turn-1", Status: TurnInProgress}
	c.session.ConversationState = ConversationThinking

	snapshot := c.Snapshot()
	if snapshot.ActiveTurn == nil || snapshot.ActiveTurn.ID != "turn-1" {
		t.Fatalf("expected snapshot to carry the active turn, got %+v", snapshot.ActiveTurn)
	}

	snapshot.ActiveTurn.Status = TurnCompleted
	if c.session.ActiveTurn.Status != TurnInProgress {
		t.Fatalf("expected session unaffected by snapshot mutation, got %s", c.session.ActiveTurn.Status)
	}
}
