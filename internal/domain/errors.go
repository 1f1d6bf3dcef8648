package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrMissingAPIKey      = errors.New("API key is not configured")
	ErrNoSpeechDetected   = errors.New("no speech detected")
	ErrEmptyTranscription = errors.New("transcription is empty")
	ErrRecordingAborted   = errors.New("recording aborted")
	ErrAudioDevice        = errors.New("audio device unavailable")
	ErrVoiceNotFound      = errors.New("voice not found")
)
