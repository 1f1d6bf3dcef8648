package brain

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Exchange is one completed user/assistant turn pair.
type Exchange struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Mood      string    `json:"mood,omitempty"`
	At        time.Time `json:"at"`
}

// History is the bounded conversation memory, persisted to a JSON file
// between runs. The system prompt is never part of it. Safe for
// concurrent use.
type History struct {
	mu        sync.Mutex
	max       int // exchanges kept; older ones fall off
	path      string
	exchanges []Exchange
}

// NewHistory creates a history bounded to max exchanges. path may be
// empty to disable persistence. max <= 0 falls back to 15.
func NewHistory(max int, path string) *History {
	if max <= 0 {
		max = 15
	}
	return &History{max: max, path: path}
}

// Load reads previously persisted exchanges. A missing file is not an
// error — it just means a fresh conversation.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading history: %w", err)
	}

	var exchanges []Exchange
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return fmt.Errorf("parsing history: %w", err)
	}

	h.mu.Lock()
	h.exchanges = exchanges
	h.trimLocked()
	h.mu.Unlock()
	return nil
}

// Append records a completed exchange, evicting the oldest beyond max.
func (h *History) Append(ex Exchange) {
	h.mu.Lock()
	h.exchanges = append(h.exchanges, ex)
	h.trimLocked()
	h.mu.Unlock()
}

// Tail returns copies of the most recent n exchanges, oldest first.
func (h *History) Tail(n int) []Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > len(h.exchanges) {
		n = len(h.exchanges)
	}
	out := make([]Exchange, n)
	copy(out, h.exchanges[len(h.exchanges)-n:])
	return out
}

// Len returns the number of retained exchanges.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.exchanges)
}

// Save persists the retained exchanges to disk. No-op without a path.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	data, err := json.MarshalIndent(h.exchanges, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Clear discards all exchanges and removes the persisted file.
func (h *History) Clear() error {
	h.mu.Lock()
	h.exchanges = nil
	h.mu.Unlock()

	if h.path == "" {
		return nil
	}
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing history file: %w", err)
	}
	return nil
}

// trimLocked drops the oldest exchanges beyond max. Caller holds h.mu.
func (h *History) trimLocked() {
	if len(h.exchanges) > h.max {
		h.exchanges = h.exchanges[len(h.exchanges)-h.max:]
	}
}
