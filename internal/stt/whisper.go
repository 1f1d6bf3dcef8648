// Package stt provides the speech-to-text adapter backed by the OpenAI
// Whisper API.
package stt

import (
	"context"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Option configures the Transcriber.
type Option func(*Transcriber)

// WithLanguage sets the ISO 639-1 language hint sent with each request.
func WithLanguage(code string) Option {
	return func(t *Transcriber) { t.language = code }
}

// Compile-time interface check.
var _ domain.Transcriber = (*Transcriber)(nil)

// Transcriber sends recorded WAV files to the Whisper API. Single
// attempt per request; failures surface to the caller unretried.
type Transcriber struct {
	client   openai.Client
	language string
	log      *logger.Logger
}

// New creates a Transcriber. Fails with domain.ErrMissingAPIKey when the
// key is empty — no request is ever attempted without one.
func New(apiKey string, log *logger.Logger, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stt: %w", domain.ErrMissingAPIKey)
	}

	t := &Transcriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		log:    log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SetLanguage changes the language hint for subsequent requests.
func (t *Transcriber) SetLanguage(code string) { t.language = code }

// Transcribe uploads the WAV file and returns the cleaned transcription.
// Returns domain.ErrEmptyTranscription when nothing intelligible remains
// after whisper artifacts are stripped.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("stt: opening recording: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModelWhisper1,
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	t.log.Debug("stt: transcribing %s", wavPath)

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("stt: transcription request: %w", err)
	}

	text := CleanTranscription(resp.Text)
	if text == "" {
		return "", domain.ErrEmptyTranscription
	}

	t.log.Debug("stt: heard %q", text)
	return text, nil
}
