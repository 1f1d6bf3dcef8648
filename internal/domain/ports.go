package domain

import "context"

// Transcriber converts a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Responder generates the assistant's reply to the user's text.
type Responder interface {
	Respond(ctx context.Context, userText string) (string, error)
}

// Synthesizer converts reply text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
