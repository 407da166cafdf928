// Package config loads the companion's configuration from a YAML file with
// environment overrides, and converts it into the session and audio
// configuration the core packages consume.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/remylabs/remy-core/core/audio"
	"github.com/remylabs/remy-core/core/emotions"
	"github.com/remylabs/remy-core/core/realtime"
)

type ServiceConfig struct {
	BaseURL     string `yaml:"base_url"`
	AccessToken string `yaml:"access_token"`
	BotID       string `yaml:"bot_id"`
	VoiceID     string `yaml:"voice_id"`
	UserID      string `yaml:"user_id"`
}

type AudioConfig struct {
	SampleRate      int     `yaml:"sample_rate"`
	Channels        int     `yaml:"channels"`
	ChunkDurationMS int     `yaml:"chunk_duration_ms"`
	LevelSmoothing  float64 `yaml:"level_smoothing"`
}

type VADConfig struct {
	Mode              string `yaml:"mode"`
	SilenceDurationMS int    `yaml:"silence_duration_ms"`
	PrefixPaddingMS   int    `yaml:"prefix_padding_ms"`
}

type ASRConfig struct {
	DetectEmotion  bool `yaml:"detect_emotion"`
	SmoothFillers  bool `yaml:"smooth_fillers"`
	AddPunctuation bool `yaml:"add_punctuation"`
}

type VoiceConfig struct {
	SpeechRate   int               `yaml:"speech_rate"`
	LoudnessRate int               `yaml:"loudness_rate"`
	Empathy      map[string]string `yaml:"empathy"`
}

type KeepaliveConfig struct {
	PingIntervalMS int `yaml:"ping_interval_ms"`
	PongTimeoutMS  int `yaml:"pong_timeout_ms"`
}

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Audio     AudioConfig     `yaml:"audio"`
	VAD       VADConfig       `yaml:"vad"`
	ASR       ASRConfig       `yaml:"asr"`
	Voice     VoiceConfig     `yaml:"voice"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
}

func Default() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL: "wss://ws.coze.cn/v1/chat",
			UserID:  "remy_companion_user",
		},
		Audio: AudioConfig{
			SampleRate:      audio.DefaultSampleRate,
			Channels:        audio.DefaultChannels,
			ChunkDurationMS: int(audio.DefaultChunkDuration.Milliseconds()),
			LevelSmoothing:  0.3,
		},
		VAD: VADConfig{
			Mode:              string(realtime.VADModeServer),
			SilenceDurationMS: 500,
			PrefixPaddingMS:   600,
		},
		ASR: ASRConfig{
			DetectEmotion:  true,
			SmoothFillers:  true,
			AddPunctuation: true,
		},
		Keepalive: KeepaliveConfig{
			PingIntervalMS: 30_000,
			PongTimeoutMS:  10_000,
		},
	}
}

// Load reads the YAML file at path, if any, on top of the defaults, then
// applies environment overrides and validates the result. An empty path
// loads defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Service.BaseURL, "REMY_SERVICE_BASE_URL")
	overrideString(&cfg.Service.AccessToken, "REMY_SERVICE_ACCESS_TOKEN")
	overrideString(&cfg.Service.BotID, "REMY_SERVICE_BOT_ID")
	overrideString(&cfg.Service.VoiceID, "REMY_SERVICE_VOICE_ID")
	overrideString(&cfg.Service.UserID, "REMY_SERVICE_USER_ID")
	overrideInt(&cfg.Audio.SampleRate, "REMY_AUDIO_SAMPLE_RATE")
	overrideInt(&cfg.Audio.Channels, "REMY_AUDIO_CHANNELS")
	overrideInt(&cfg.Audio.ChunkDurationMS, "REMY_AUDIO_CHUNK_DURATION_MS")
	overrideFloat(&cfg.Audio.LevelSmoothing, "REMY_AUDIO_LEVEL_SMOOTHING")
	overrideString(&cfg.VAD.Mode, "REMY_VAD_MODE")
	overrideInt(&cfg.VAD.SilenceDurationMS, "REMY_VAD_SILENCE_DURATION_MS")
	overrideInt(&cfg.VAD.PrefixPaddingMS, "REMY_VAD_PREFIX_PADDING_MS")
	overrideBool(&cfg.ASR.DetectEmotion, "REMY_ASR_DETECT_EMOTION")
	overrideBool(&cfg.ASR.SmoothFillers, "REMY_ASR_SMOOTH_FILLERS")
	overrideBool(&cfg.ASR.AddPunctuation, "REMY_ASR_ADD_PUNCTUATION")
	overrideInt(&cfg.Voice.SpeechRate, "REMY_VOICE_SPEECH_RATE")
	overrideInt(&cfg.Voice.LoudnessRate, "REMY_VOICE_LOUDNESS_RATE")
	overrideInt(&cfg.Keepalive.PingIntervalMS, "REMY_KEEPALIVE_PING_INTERVAL_MS")
	overrideInt(&cfg.Keepalive.PongTimeoutMS, "REMY_KEEPALIVE_PONG_TIMEOUT_MS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.Service.BaseURL == "" {
		return errors.New("service.base_url must not be empty")
	}
	if parsed, err := url.Parse(cfg.Service.BaseURL); err != nil || (parsed.Scheme != "ws" && parsed.Scheme != "wss") {
		return errors.New("service.base_url must be a ws:// or wss:// URL")
	}
	if cfg.Service.AccessToken == "" {
		return errors.New("service.access_token must not be empty")
	}
	if cfg.Service.BotID == "" {
		return errors.New("service.bot_id must not be empty")
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.Channels < 1 || cfg.Audio.Channels > 2 {
		return errors.New("audio.channels must be 1 or 2")
	}
	if cfg.Audio.ChunkDurationMS < 10 || cfg.Audio.ChunkDurationMS > 1000 {
		return errors.New("audio.chunk_duration_ms must be between 10 and 1000")
	}
	if cfg.Audio.LevelSmoothing < 0 || cfg.Audio.LevelSmoothing >= 1 {
		return errors.New("audio.level_smoothing must be in [0, 1)")
	}
	switch realtime.VADMode(cfg.VAD.Mode) {
	case realtime.VADModeServer, realtime.VADModeClientInterrupt:
	default:
		return fmt.Errorf("vad.mode must be %q or %q", realtime.VADModeServer, realtime.VADModeClientInterrupt)
	}
	if cfg.VAD.SilenceDurationMS <= 0 {
		return errors.New("vad.silence_duration_ms must be positive")
	}
	if cfg.VAD.PrefixPaddingMS < 0 {
		return errors.New("vad.prefix_padding_ms must not be negative")
	}
	if cfg.Keepalive.PingIntervalMS <= 0 {
		return errors.New("keepalive.ping_interval_ms must be positive")
	}
	if cfg.Keepalive.PongTimeoutMS <= 0 {
		return errors.New("keepalive.pong_timeout_ms must be positive")
	}
	for user := range cfg.Voice.Empathy {
		if emotions.ParseEmotion(user) == emotions.Neutral && !strings.EqualFold(user, "neutral") {
			return fmt.Errorf("voice.empathy has unknown emotion %q", user)
		}
	}
	return nil
}

// ServiceURL assembles the websocket endpoint with the bot and voice
// selection as query parameters.
func (c Config) ServiceURL() string {
	parsed, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return c.Service.BaseURL
	}
	query := parsed.Query()
	query.Set("bot_id", c.Service.BotID)
	if c.Service.VoiceID != "" {
		query.Set("voice_id", c.Service.VoiceID)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// AudioFormat returns the PCM format shared by both pipeline directions.
func (c Config) AudioFormat() audio.Config {
	return audio.Config{
		SampleRate:    c.Audio.SampleRate,
		Channels:      c.Audio.Channels,
		ChunkDuration: time.Duration(c.Audio.ChunkDurationMS) * time.Millisecond,
	}
}

// EmpathyMapping converts the configured empathy table, falling back to the
// default mapping when none is configured.
func (c Config) EmpathyMapping() emotions.EmpathyMapping {
	if len(c.Voice.Empathy) == 0 {
		return emotions.DefaultEmpathyMapping()
	}
	mapping := emotions.DefaultEmpathyMapping()
	for user, tone := range c.Voice.Empathy {
		mapping[emotions.ParseEmotion(user)] = emotions.ParseEmotion(tone)
	}
	return mapping
}

// SessionConfig converts the loaded configuration into the realtime
// session's form.
func (c Config) SessionConfig() realtime.SessionConfig {
	format := c.AudioFormat()
	return realtime.SessionConfig{
		URL:         c.ServiceURL(),
		AccessToken: c.Service.AccessToken,
		UserID:      c.Service.UserID,
		Input:       format,
		Output:      format,
		VAD: realtime.VADConfig{
			Mode:            realtime.VADMode(c.VAD.Mode),
			SilenceDuration: time.Duration(c.VAD.SilenceDurationMS) * time.Millisecond,
			PrefixPadding:   time.Duration(c.VAD.PrefixPaddingMS) * time.Millisecond,
		},
		ASR: realtime.ASRConfig{
			DetectEmotion:  c.ASR.DetectEmotion,
			SmoothFillers:  c.ASR.SmoothFillers,
			AddPunctuation: c.ASR.AddPunctuation,
		},
		SpeechRate:   c.Voice.SpeechRate,
		LoudnessRate: c.Voice.LoudnessRate,
		Empathy:      c.EmpathyMapping(),
		PingInterval: time.Duration(c.Keepalive.PingIntervalMS) * time.Millisecond,
		PongTimeout:  time.Duration(c.Keepalive.PongTimeoutMS) * time.Millisecond,
	}
}
