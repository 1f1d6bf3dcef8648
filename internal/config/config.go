// Package config loads the immutable application configuration from the
// environment (plus an optional .env file) and manages the persisted
// settings file for user preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Env var names read by Load.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvElevenLabsKey = "ELEVENLABS_API_KEY"
	EnvAssistantName = "ASSISTANT_NAME"
	EnvVoiceName     = "VOICE_NAME"
	EnvLanguage      = "DEFAULT_LANGUAGE"
	EnvDataDir       = "ANGLO_DATA_DIR"
)

// Defaults applied when the corresponding env var is unset.
const (
	DefaultAssistantName = "Edward"
	DefaultVoiceName     = "Adam"
	DefaultLanguage      = "en-US"
	DefaultDataDir       = "data"
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxHistory    = 15
)

// Option configures Load.
type Option func(*Config)

// WithDataDir overrides the data directory.
func WithDataDir(dir string) Option {
	return func(c *Config) { c.DataDir = dir }
}

// WithModel overrides the chat model name.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// Config is an immutable snapshot of the application configuration.
// Load it once at startup; all components read from it, none write.
type Config struct {
	OpenAIKey     string
	ElevenLabsKey string

	AssistantName string
	VoiceName     string
	Language      string
	Model         string
	MaxHistory    int

	DataDir      string
	AudioDir     string
	CacheDir     string
	HistoryFile  string
	SettingsFile string
	LogFile      string
}

// Load reads the .env file (if present) and the environment into a Config.
// Settings previously persisted by the user override the env defaults.
func Load(opts ...Option) *Config {
	_ = godotenv.Load()

	c := &Config{
		OpenAIKey:     os.Getenv(EnvOpenAIKey),
		ElevenLabsKey: os.Getenv(EnvElevenLabsKey),
		AssistantName: envOr(EnvAssistantName, DefaultAssistantName),
		VoiceName:     envOr(EnvVoiceName, DefaultVoiceName),
		Language:      envOr(EnvLanguage, DefaultLanguage),
		Model:         DefaultModel,
		MaxHistory:    DefaultMaxHistory,
		DataDir:       envOr(EnvDataDir, DefaultDataDir),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.AudioDir = filepath.Join(c.DataDir, "audio")
	c.CacheDir = filepath.Join(c.DataDir, "cache")
	c.HistoryFile = filepath.Join(c.DataDir, "conversation_history.json")
	c.SettingsFile = filepath.Join(c.DataDir, "settings.env")
	c.LogFile = filepath.Join(c.DataDir, "anglo.log")

	// Persisted user preferences win over env defaults.
	if s, err := LoadSettings(c.SettingsFile); err == nil {
		s.ApplyTo(c)
	}

	return c
}

// Validate reports every missing required key in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.ElevenLabsKey == "" {
		missing = append(missing, EnvElevenLabsKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// EnsureDirs creates the data directories Config points at.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.AudioDir, c.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// LanguageCode returns the two-letter ISO 639-1 code for the configured
// language tag ("en-US" -> "en").
func (c *Config) LanguageCode() string {
	code, _, _ := strings.Cut(c.Language, "-")
	return strings.ToLower(code)
}

// ErrNoSettings is returned by LoadSettings when the file does not exist.
var ErrNoSettings = errors.New("settings file does not exist")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
