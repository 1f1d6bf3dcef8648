package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Settings file keys.
const (
	settingAssistantName = "ASSISTANT_NAME"
	settingVoiceName     = "VOICE_NAME"
	settingLanguage      = "DEFAULT_LANGUAGE"
)

// Settings holds the user preferences persisted between runs. The file
// is a flat key=value list in dotenv format so it can be edited by hand.
type Settings struct {
	AssistantName string
	VoiceName     string
	Language      string
}

// SettingsFrom snapshots the adjustable preferences out of a Config.
func SettingsFrom(c *Config) Settings {
	return Settings{
		AssistantName: c.AssistantName,
		VoiceName:     c.VoiceName,
		Language:      c.Language,
	}
}

// LoadSettings reads the settings file. Returns ErrNoSettings when the
// file is absent, which callers treat as "no saved preferences yet".
func LoadSettings(path string) (Settings, error) {
	if _, err := os.Stat(path); err != nil {
		return Settings{}, ErrNoSettings
	}

	kv, err := godotenv.Read(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	return Settings{
		AssistantName: kv[settingAssistantName],
		VoiceName:     kv[settingVoiceName],
		Language:      kv[settingLanguage],
	}, nil
}

// Save writes the settings to path in dotenv format.
func (s Settings) Save(path string) error {
	kv := map[string]string{
		settingAssistantName: s.AssistantName,
		settingVoiceName:     s.VoiceName,
		settingLanguage:      s.Language,
	}
	if err := godotenv.Write(kv, path); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// ApplyTo copies the non-empty preferences onto a Config.
func (s Settings) ApplyTo(c *Config) {
	if s.AssistantName != "" {
		c.AssistantName = s.AssistantName
	}
	if s.VoiceName != "" {
		c.VoiceName = s.VoiceName
	}
	if s.Language != "" {
		c.Language = s.Language
	}
}
