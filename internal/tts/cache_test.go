package tts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/easimeng/anglo/internal/logger"
)

func testLog() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

func TestCacheMemoryRoundTrip(t *testing.T) {
	c := NewCache("adam", "", false, testLog())

	if _, ok := c.Get("hello"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	audio := []byte{0x01, 0x02, 0x03}
	c.Put("hello", audio)

	got, ok := c.Get("hello")
	if !ok || !bytes.Equal(got, audio) {
		t.Fatalf("Get = (%v, %v), want (%v, true)", got, ok, audio)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestCacheVoiceIsolation(t *testing.T) {
	dir := t.TempDir()
	a := NewCache("adam", dir, true, testLog())
	b := NewCache("rachel", dir, true, testLog())

	a.Put("hello", []byte("adam-audio"))

	if _, ok := b.Get("hello"); ok {
		t.Fatal("voice b should not see voice a's entries")
	}
	if !a.Has("hello") {
		t.Fatal("voice a lost its own entry")
	}
}

func TestCacheDiskPersistence(t *testing.T) {
	dir := t.TempDir()
	audio := []byte("mp3-bytes")

	warm := NewCache("adam", dir, true, testLog())
	warm.Put("hello", audio)

	// A fresh cache over the same dir reads the previous run's entries.
	cold := NewCache("adam", dir, true, testLog())
	got, ok := cold.Get("hello")
	if !ok || !bytes.Equal(got, audio) {
		t.Fatalf("disk read = (%v, %v), want (%v, true)", got, ok, audio)
	}

	// The disk hit is promoted to memory.
	if cold.Len() != 1 {
		t.Errorf("Len = %d after promotion, want 1", cold.Len())
	}
}

func TestCacheNoPersistStillReadsDisk(t *testing.T) {
	dir := t.TempDir()

	writer := NewCache("adam", dir, true, testLog())
	writer.Put("old", []byte("from-last-run"))

	c := NewCache("adam", dir, false, testLog())

	if _, ok := c.Get("old"); !ok {
		t.Fatal("existing disk entry should be readable with persist off")
	}

	c.Put("new", []byte("memory-only"))
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("disk grew to %d entries with persist off, want 1", len(entries))
	}
}

func TestCacheClearKeepsDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewCache("adam", dir, true, testLog())
	c.Put("hello", []byte("x"))

	c.Clear()
	if c.Len() != 0 {
		t.Fatal("memory tier not cleared")
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if len(matches) != 1 {
		t.Fatalf("disk tier has %d files after Clear, want 1", len(matches))
	}
	if !c.Has("hello") {
		t.Fatal("disk entry should survive Clear")
	}
}
