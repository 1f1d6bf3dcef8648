package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Default voice name used when nothing is configured.
const DefaultVoice = "Adam"

// Model used for synthesis requests.
const DefaultModel = "eleven_monolingual_v2"

// Output format requested from the API. The player expects MP3.
const outputFormat = "mp3_44100_128"

const defaultBaseURL = "https://api.elevenlabs.io"

// Limits on voice cloning sample files, per the API.
const (
	minCloneSamples = 1
	maxCloneSamples = 25
)

// VoiceSettings tunes how the synthesized voice sounds.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the tuning used out of the box.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.7,
		SimilarityBoost: 0.8,
		Style:           0.5,
		UseSpeakerBoost: true,
	}
}

// Voice is one entry from the ElevenLabs voice catalog.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ClientOption configures the ElevenLabs client.
type ClientOption func(*Client)

// WithModel sets the synthesis model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithVoiceSettings overrides the default voice tuning.
func WithVoiceSettings(vs VoiceSettings) ClientOption {
	return func(c *Client) {
		c.settings = vs
	}
}

// WithHTTPTimeout sets the HTTP client timeout for synthesis requests.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// Client handles text-to-speech synthesis via the ElevenLabs API.
// The zero value is not usable; use NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	settings   VoiceSettings
	voiceID    string
	voiceName  string
	httpClient *http.Client
	log        *logger.Logger
}

var _ domain.Synthesizer = (*Client)(nil)

// NewClient creates an ElevenLabs TTS client. The voice starts unresolved;
// call ResolveVoice before the first Synthesize.
func NewClient(apiKey string, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tts: %w", domain.ErrMissingAPIKey)
	}

	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		model:    DefaultModel,
		settings: DefaultVoiceSettings(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// VoiceName returns the resolved voice name, or "" before ResolveVoice.
func (c *Client) VoiceName() string { return c.voiceName }

// VoiceID returns the resolved voice ID, or "" before ResolveVoice.
func (c *Client) VoiceID() string { return c.voiceID }

// Settings returns the current voice tuning.
func (c *Client) Settings() VoiceSettings { return c.settings }

// SetSettings replaces the voice tuning for subsequent requests.
func (c *Client) SetSettings(vs VoiceSettings) { c.settings = vs }

// Synthesize converts text to MP3 audio bytes using the resolved voice.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.voiceID == "" {
		return nil, fmt.Errorf("tts: no voice resolved: %w", domain.ErrVoiceNotFound)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, c.voiceID, outputFormat)

	body, err := json.Marshal(struct {
		Text          string        `json:"text"`
		ModelID       string        `json:"model_id"`
		VoiceSettings VoiceSettings `json:"voice_settings"`
	}{
		Text:          text,
		ModelID:       c.model,
		VoiceSettings: c.settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	c.log.Debug("tts: synthesizing %d chars with voice %s", len(text), c.voiceName)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, string(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	c.log.Debug("tts: got %d bytes of audio", len(audio))
	return audio, nil
}

// Voices lists the voices available to the account.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voices error %d: %s", resp.StatusCode, string(msg))
	}

	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding voices: %w", err)
	}
	return out.Voices, nil
}

// ResolveVoice looks up the named voice in the account catalog and makes
// it the active voice. Matching is case-insensitive. When the name is not
// found the first available voice is used instead, so the assistant still
// speaks; with an empty catalog it returns ErrVoiceNotFound.
func (c *Client) ResolveVoice(ctx context.Context, name string) (Voice, error) {
	voices, err := c.Voices(ctx)
	if err != nil {
		return Voice{}, err
	}
	if len(voices) == 0 {
		return Voice{}, fmt.Errorf("tts: voice catalog is empty: %w", domain.ErrVoiceNotFound)
	}

	for _, v := range voices {
		if strings.EqualFold(v.Name, name) {
			c.voiceID = v.ID
			c.voiceName = v.Name
			return v, nil
		}
	}

	fallback := voices[0]
	c.log.Warn("tts: voice %q not found, falling back to %q", name, fallback.Name)
	c.voiceID = fallback.ID
	c.voiceName = fallback.Name
	return fallback, nil
}

// Clone creates a new voice from 1 to 25 local audio sample files and
// returns it. The new voice is not made active; call ResolveVoice or use
// the returned ID.
func (c *Client) Clone(ctx context.Context, name, description string, samplePaths []string) (Voice, error) {
	if len(samplePaths) < minCloneSamples || len(samplePaths) > maxCloneSamples {
		return Voice{}, fmt.Errorf("tts: cloning needs %d to %d sample files, got %d",
			minCloneSamples, maxCloneSamples, len(samplePaths))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", name); err != nil {
		return Voice{}, fmt.Errorf("building clone request: %w", err)
	}
	if description != "" {
		if err := mw.WriteField("description", description); err != nil {
			return Voice{}, fmt.Errorf("building clone request: %w", err)
		}
	}
	for _, path := range samplePaths {
		if err := attachSample(mw, path); err != nil {
			return Voice{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return Voice{}, fmt.Errorf("building clone request: %w", err)
	}

	c.log.Info("tts: cloning voice %q from %d samples", name, len(samplePaths))

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/voices/add", &buf)
	if err != nil {
		return Voice{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Voice{}, fmt.Errorf("clone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return Voice{}, fmt.Errorf("clone error %d: %s", resp.StatusCode, string(msg))
	}

	var out struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Voice{}, fmt.Errorf("decoding clone response: %w", err)
	}
	return Voice{ID: out.VoiceID, Name: name, Category: "cloned"}, nil
}

func attachSample(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening sample %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("building clone request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading sample %s: %w", path, err)
	}
	return nil
}
