// Package domain holds the conversation data model shared across layers.
package domain

import (
	"sync"
	"time"
)

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is a single utterance in the conversation. Turns are immutable
// once appended to a Transcript.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the ordered, append-only record of the conversation.
// Safe for concurrent use: the UI goroutine reads it while a turn
// goroutine appends.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records a turn. The timestamp is set here so callers can't
// accidentally reorder history.
func (t *Transcript) Append(speaker Speaker, text string) Turn {
	turn := Turn{Speaker: speaker, Text: text, Timestamp: time.Now()}

	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()

	return turn
}

// Turns returns a copy of all recorded turns in order.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of recorded turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the most recent turn and true, or a zero Turn and false
// when the transcript is empty.
func (t *Transcript) Last() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Clear discards all turns.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.turns = nil
	t.mu.Unlock()
}
