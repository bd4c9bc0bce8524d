package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voicechat/internal/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ErrMissingAPIKey means the selected model provider has no credential.
var ErrMissingAPIKey = errors.New("model API key is not configured")

// Config stores runtime configuration for the voice chat app.
type Config struct {
	Model        ModelConfig
	Conversation ConversationConfig
	Deepgram     DeepgramConfig
	Audio        AudioConfig
	Rules        RulesConfig
	Session      SessionConfig
	Log          LogConfig
	Sentry       SentryConfig
}

type ModelConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Name     string
	Timeout  time.Duration
}

type ConversationConfig struct {
	SystemInstruction string
	// Greeting seeds the history. Empty disables it.
	Greeting string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type RulesConfig struct {
	Path string
}

type SessionConfig struct {
	ChunkSize      int
	StreamingGrace time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type SentryConfig struct {
	DSN         string
	Environment string
}

// Load resolves configuration from environment variables and defaults. The
// returned Config is usable even when err is ErrMissingAPIKey.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	provider := strings.ToLower(envOrDefault("VOICECHAT_MODEL_PROVIDER", ProviderGemini))
	model, err := loadModel(provider)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Model: model,
		Conversation: ConversationConfig{
			SystemInstruction: envOrDefault("VOICECHAT_SYSTEM_INSTRUCTION", domain.DefaultSystemInstruction),
			Greeting:          greeting(),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    firstNonEmpty(os.Getenv("VOICECHAT_LANGUAGE"), os.Getenv("DEEPGRAM_LANGUAGE"), "en-US"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("VOICECHAT_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("VOICECHAT_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("VOICECHAT_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("VOICECHAT_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("VOICECHAT_CHANNELS", 1),
		},
		Rules: RulesConfig{
			Path: envOrDefault("VOICECHAT_RULES_FILE", filepath.Join(home, ".config", "voicechat", "vocabulary.rules")),
		},
		Session: SessionConfig{
			ChunkSize:      envOrDefaultInt("VOICECHAT_AUDIO_CHUNK_SIZE", 4096),
			StreamingGrace: envOrDefaultMillis("VOICECHAT_STREAMING_GRACE_MS", time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envOrDefault("VOICECHAT_LOG_LEVEL", "info")),
			Format: strings.ToLower(envOrDefault("VOICECHAT_LOG_FORMAT", "text")),
			File:   strings.TrimSpace(os.Getenv("VOICECHAT_LOG_FILE")),
		},
		Sentry: SentryConfig{
			DSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
			Environment: envOrDefault("VOICECHAT_ENV", "development"),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}

	if cfg.Model.APIKey == "" {
		return cfg, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, cfg.Model.Provider)
	}
	return cfg, nil
}

func loadModel(provider string) (ModelConfig, error) {
	model := ModelConfig{
		Provider: provider,
		Timeout:  envOrDefaultMillis("VOICECHAT_MODEL_TIMEOUT_MS", time.Minute),
	}
	if model.Timeout <= 0 {
		model.Timeout = time.Minute
	}

	switch provider {
	case ProviderGemini:
		model.APIKey = firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY"))
		model.BaseURL = strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
		model.Name = envOrDefault("VOICECHAT_MODEL", "gemini-2.5-flash")
	case ProviderOpenAI:
		model.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		model.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
		model.Name = envOrDefault("VOICECHAT_MODEL", "gpt-4o-mini")
	default:
		return ModelConfig{}, fmt.Errorf("unsupported model provider %q", provider)
	}
	return model, nil
}

// greeting returns the configured greeting. "-" disables it.
func greeting() string {
	value, ok := os.LookupEnv("VOICECHAT_GREETING")
	if !ok || strings.TrimSpace(value) == "" {
		return domain.DefaultGreeting
	}
	if strings.TrimSpace(value) == "-" {
		return ""
	}
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// envOrDefaultMillis reads a non-negative millisecond count.
func envOrDefaultMillis(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Millisecond
}
