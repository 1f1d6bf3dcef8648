package tts

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/easimeng/anglo/internal/logger"
)

// Cache is a thread-safe two-tier store (in-memory + filesystem) for
// synthesized audio. Keys are sha256(voice + ":" + text), so switching
// voice naturally misses until the voice is switched back.
//
// The disk layer is always read when dir is set, even with persist=false;
// that gives a warm start from previous runs without growing the cache
// directory.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte // key -> MP3 bytes

	voice   string
	dir     string // disk layer directory, "" = memory only
	persist bool   // write new entries to disk
	log     *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an audio cache for the given voice. dir may be empty
// to disable the disk layer entirely.
func NewCache(voice, dir string, persist bool, log *logger.Logger) *Cache {
	c := &Cache{
		entries: make(map[string][]byte),
		voice:   voice,
		dir:     dir,
		persist: persist,
		log:     log,
	}
	if dir != "" && persist {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("cache: creating %s: %v", dir, err)
		}
	}
	return c
}

// Get returns cached audio for the text, checking memory then disk.
// A disk hit is promoted to memory.
func (c *Cache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.RLock()
	audio, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return audio, true
	}

	if c.dir != "" {
		if audio, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.entries[key] = audio
			c.mu.Unlock()
			c.hits.Add(1)
			c.log.Debug("cache: disk hit (%d bytes)", len(audio))
			return audio, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores audio for the text. Memory always; disk when persist is on.
func (c *Cache) Put(text string, audio []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.entries[key] = audio
	c.mu.Unlock()

	if c.dir != "" && c.persist {
		if err := os.WriteFile(c.path(key), audio, 0o644); err != nil {
			c.log.Error("cache: disk write: %v", err)
		}
	}
}

// Has reports whether audio for the text is cached in either tier.
func (c *Cache) Has(text string) bool {
	key := c.key(text)

	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return true
	}
	if c.dir == "" {
		return false
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts since creation or the last Clear.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear empties the in-memory tier. Disk entries stay.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// SetVoice changes the voice baked into new keys. Existing entries stay
// valid; they just stop matching until the voice is switched back.
func (c *Cache) SetVoice(voice string) {
	c.mu.Lock()
	c.voice = voice
	c.mu.Unlock()
}

func (c *Cache) key(text string) string {
	c.mu.RLock()
	voice := c.voice
	c.mu.RUnlock()
	sum := sha256.Sum256([]byte(voice + ":" + text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".mp3")
}
