package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/remylabs/remy-core/core/emotions"
	"github.com/remylabs/remy-core/core/realtime"
)

func TestLoadRequiresCredentials(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatalf("expected error for missing access token")
	}
	if !strings.Contains(err.Error(), "access_token") {
		t.Fatalf("expected access_token error, got %v", err)
	}
}

func TestLoadDefaultsWithEnvCredentials(t *testing.T) {
	t.Setenv("REMY_SERVICE_ACCESS_TOKEN", "token")
	t.Setenv("REMY_SERVICE_BOT_ID", "bot-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Audio.SampleRate != 24000 || cfg.Audio.Channels != 1 || cfg.Audio.ChunkDurationMS != 100 {
		t.Fatalf("expected default audio format, got %+v", cfg.Audio)
	}
	if cfg.VAD.Mode != "server_vad" || cfg.VAD.SilenceDurationMS != 500 || cfg.VAD.PrefixPaddingMS != 600 {
		t.Fatalf("expected default turn detection, got %+v", cfg.VAD)
	}
	if cfg.Keepalive.PingIntervalMS != 30_000 || cfg.Keepalive.PongTimeoutMS != 10_000 {
		t.Fatalf("expected default keepalive, got %+v", cfg.Keepalive)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remy.yaml")
	contents := `
service:
  base_url: wss://example.test/v1/chat
  access_token: file-token
  bot_id: bot-2
  voice_id: voice-7
audio:
  sample_rate: 16000
  chunk_duration_ms: 40
vad:
  silence_duration_ms: 700
voice:
  speech_rate: 10
  empathy:
    angry: sad
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.AccessToken != "file-token" || cfg.Service.BotID != "bot-2" {
		t.Fatalf("expected file credentials, got %+v", cfg.Service)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.ChunkDurationMS != 40 {
		t.Fatalf("expected file audio overrides, got %+v", cfg.Audio)
	}
	// Fields the file omits keep their defaults.
	if cfg.Audio.Channels != 1 || cfg.VAD.PrefixPaddingMS != 600 {
		t.Fatalf("expected defaults for omitted fields, got %+v / %+v", cfg.Audio, cfg.VAD)
	}
	if cfg.VAD.SilenceDurationMS != 700 {
		t.Fatalf("expected file silence duration, got %d", cfg.VAD.SilenceDurationMS)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remy.yaml")
	contents := `
service:
  access_token: file-token
  bot_id: bot-2
audio:
  sample_rate: 16000
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("REMY_SERVICE_ACCESS_TOKEN", "env-token")
	t.Setenv("REMY_AUDIO_SAMPLE_RATE", "48000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service.AccessToken != "env-token" {
		t.Fatalf("expected env token to win, got %q", cfg.Service.AccessToken)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Fatalf("expected env sample rate to win, got %d", cfg.Audio.SampleRate)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.Service.BaseURL = "https://example.test" }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"too many channels", func(c *Config) { c.Audio.Channels = 3 }},
		{"chunk too short", func(c *Config) { c.Audio.ChunkDurationMS = 5 }},
		{"smoothing out of range", func(c *Config) { c.Audio.LevelSmoothing = 1 }},
		{"unknown vad mode", func(c *Config) { c.VAD.Mode = "psychic" }},
		{"zero ping interval", func(c *Config) { c.Keepalive.PingIntervalMS = 0 }},
		{"unknown empathy emotion", func(c *Config) { c.Voice.Empathy = map[string]string{"grumpy": "sad"} }},
	}

	for _, tc := range cases {
		cfg := Default()
		cfg.Service.AccessToken = "token"
		cfg.Service.BotID = "bot-1"
		tc.mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("expected validation error for %s", tc.name)
		}
	}
}

func TestServiceURLCarriesBotAndVoice(t *testing.T) {
	cfg := Default()
	cfg.Service.BotID = "bot-42"
	cfg.Service.VoiceID = "voice-7"

	url := cfg.ServiceURL()
	if !strings.Contains(url, "bot_id=bot-42") || !strings.Contains(url, "voice_id=voice-7") {
		t.Fatalf("expected bot and voice query parameters, got %q", url)
	}
}

func TestSessionConfigConversion(t *testing.T) {
	cfg := Default()
	cfg.Service.AccessToken = "token"
	cfg.Service.BotID = "bot-1"
	cfg.Voice.SpeechRate = 15
	cfg.Voice.Empathy = map[string]string{"angry": "sad"}

	session := cfg.SessionConfig()
	if session.AccessToken != "token" {
		t.Fatalf("expected access token carried over, got %q", session.AccessToken)
	}
	if session.Input.SampleRate != 24000 || session.Input.ChunkDuration != 100*time.Millisecond {
		t.Fatalf("expected default audio format, got %+v", session.Input)
	}
	if session.VAD.Mode != realtime.VADModeServer || session.VAD.SilenceDuration != 500*time.Millisecond {
		t.Fatalf("expected server turn detection, got %+v", session.VAD)
	}
	if session.SpeechRate != 15 {
		t.Fatalf("expected speech rate 15, got %d", session.SpeechRate)
	}
	if got := session.Empathy.Respond(emotions.Angry); got != emotions.Sad {
		t.Fatalf("expected configured empathy override, got %s", got)
	}
	// Unconfigured entries keep the default mapping.
	if got := session.Empathy.Respond(emotions.Surprised); got != emotions.Happy {
		t.Fatalf("expected default surprise mapping, got %s", got)
	}
	if session.PingInterval != 30*time.Second || session.PongTimeout != 10*time.Second {
		t.Fatalf("expected default keepalive, got %s/%s", session.PingInterval, session.PongTimeout)
	}
}
