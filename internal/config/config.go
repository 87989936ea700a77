package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cearley/zsh-llm-suggestions/internal/appdirs"
)

// Config is resolved once at process start and handed to constructors.
// Backends never read the environment themselves.
type Config struct {
	OpenAI    OpenAIConfig    `toml:"openai"`
	Highlight HighlightConfig `toml:"highlight"`
	Log       LogConfig       `toml:"log"`
}

type OpenAIConfig struct {
	// APIKeyEnv names the environment variable holding the API key. The
	// remedy text printed on failure quotes this name verbatim.
	APIKeyEnv      string `toml:"api_key_env"`
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type HighlightConfig struct {
	Disabled bool `toml:"disabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

const (
	// EnvDisableHighlight opts out of terminal markdown rendering.
	EnvDisableHighlight = "ZSH_LLM_DISABLE_HIGHLIGHT"
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "ZSH_LLM_LOG_LEVEL"
)

func Default() Config {
	return Config{
		OpenAI: OpenAIConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			Model:          "gpt-4-1106-preview",
			BaseURL:        "https://api.openai.com",
			TimeoutSeconds: 30,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads the config file when present, fills defaults, and applies
// environment overrides. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("could not read config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse %s: %w", path, err)
	}

	cfg.normalize()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := Default()
	if strings.TrimSpace(c.OpenAI.APIKeyEnv) == "" {
		c.OpenAI.APIKeyEnv = defaults.OpenAI.APIKeyEnv
	}
	if strings.TrimSpace(c.OpenAI.Model) == "" {
		c.OpenAI.Model = defaults.OpenAI.Model
	}
	if strings.TrimSpace(c.OpenAI.BaseURL) == "" {
		c.OpenAI.BaseURL = defaults.OpenAI.BaseURL
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaults.OpenAI.TimeoutSeconds
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaults.Log.Level
	}
}

func (c *Config) applyEnv() {
	if truthy(os.Getenv(EnvDisableHighlight)) {
		c.Highlight.Disabled = true
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Log.Level = level
	}
}

func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the process logger. The driver logs to stderr so stdout
// stays reserved for the single result line the shell widget consumes.
func NewLogger(c Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel()}))
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
