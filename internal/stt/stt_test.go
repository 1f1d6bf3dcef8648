package stt

import (
	"errors"
	"testing"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

func TestNewRequiresAPIKey(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)

	_, err := New("", log)
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	if _, err := New("sk-test", log); err != nil {
		t.Fatalf("unexpected error with key set: %v", err)
	}
}

func TestCleanTranscription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Hello there.", "Hello there."},
		{"leading and trailing space", "  what time is it  ", "what time is it"},
		{"newlines collapsed", "first line\nsecond line", "first line second line"},
		{"blank audio marker", "[BLANK_AUDIO]", ""},
		{"marker inside text", "Hello [BLANK_AUDIO] world", "Hello world"},
		{"silence marker", "(silence)", ""},
		{"env annotation", "Hello (keyboard clicking) there", "Hello there"},
		{"bracketed annotation", "[laughter] very funny", "very funny"},
		{"hallucinated thank you", "Thank you.", ""},
		{"hallucinated you", "you", ""},
		{"hallucination case insensitive", "thank you.", ""},
		{"hallucination inside real text kept", "Thank you. That helps a lot.", "Thank you. That helps a lot."},
		{"timestamp prefix", "[00:00:00.000 --> 00:00:05.000] hello", "hello"},
		{"empty", "", ""},
		{"only whitespace", "   \n  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTranscription(tt.in); got != tt.want {
				t.Errorf("CleanTranscription(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
