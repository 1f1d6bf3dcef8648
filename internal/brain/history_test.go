package brain

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3, "")

	for i := 0; i < 10; i++ {
		h.Append(Exchange{User: fmt.Sprintf("q%d", i), Assistant: fmt.Sprintf("a%d", i), At: time.Now()})
	}

	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}

	tail := h.Tail(3)
	if tail[0].User != "q7" || tail[2].User != "q9" {
		t.Fatalf("unexpected tail: %v", tail)
	}
}

func TestHistoryTailShorterThanAsked(t *testing.T) {
	h := NewHistory(10, "")
	h.Append(Exchange{User: "hello", Assistant: "hi"})

	tail := h.Tail(5)
	if len(tail) != 1 {
		t.Fatalf("tail len = %d, want 1", len(tail))
	}
}

func TestHistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := NewHistory(5, path)
	h.Append(Exchange{User: "hello", Assistant: "hi there", Mood: MoodNeutral, At: time.Now()})
	h.Append(Exchange{User: "how are you", Assistant: "doing well", Mood: MoodHappy, At: time.Now()})
	if err := h.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewHistory(5, path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d exchanges, want 2", loaded.Len())
	}
	tail := loaded.Tail(1)
	if tail[0].Assistant != "doing well" || tail[0].Mood != MoodHappy {
		t.Fatalf("unexpected last exchange: %+v", tail[0])
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h := NewHistory(5, filepath.Join(t.TempDir(), "missing.json"))
	if err := h.Load(); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d", h.Len())
	}
}

func TestHistoryLoadTrimsOverMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	big := NewHistory(100, path)
	for i := 0; i < 20; i++ {
		big.Append(Exchange{User: fmt.Sprintf("q%d", i), Assistant: "a"})
	}
	if err := big.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	small := NewHistory(4, path)
	if err := small.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if small.Len() != 4 {
		t.Fatalf("loaded %d exchanges, want 4", small.Len())
	}
	if small.Tail(1)[0].User != "q19" {
		t.Fatalf("expected newest exchange retained, got %+v", small.Tail(1)[0])
	}
}

func TestHistoryClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := NewHistory(5, path)
	h.Append(Exchange{User: "hello", Assistant: "hi"})
	if err := h.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("history not empty after clear")
	}

	// The file is gone, so a fresh load sees nothing.
	again := NewHistory(5, path)
	if err := again.Load(); err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if again.Len() != 0 {
		t.Fatalf("expected empty history after clear, got %d", again.Len())
	}
}
