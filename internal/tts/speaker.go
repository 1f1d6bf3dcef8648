package tts

import (
	"context"
	"sync"
	"time"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Priority orders queued utterances. Higher value speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // idle chatter, canned filler
	PriorityNormal                   // assistant replies
	PriorityHigh                     // prompts that need attention
	PriorityCritical                 // errors
)

// request is a queued utterance waiting to be spoken.
type request struct {
	text     string
	priority Priority
	queuedAt time.Time
}

// audioPlayer is the playback surface the speaker drives.
type audioPlayer interface {
	Play(mp3Data []byte) error
	Stop()
}

// SpeakerOption configures the Speaker.
type SpeakerOption func(*Speaker)

// WithQueueCapacity sets the wakeup channel capacity.
func WithQueueCapacity(n int) SpeakerOption {
	return func(s *Speaker) {
		s.wake = make(chan struct{}, n)
	}
}

// WithCache sets the audio cache. Without one, every utterance hits the
// synthesizer.
func WithCache(c *Cache) SpeakerOption {
	return func(s *Speaker) {
		s.cache = c
	}
}

// Speaker serializes all speech output: queue, synthesize, play, one
// utterance at a time, highest priority first. Queueing anything at
// PriorityNormal or above drops stale PriorityLow items.
type Speaker struct {
	synth  domain.Synthesizer
	player audioPlayer
	cache  *Cache
	log    *logger.Logger

	mu          sync.Mutex
	queue       []request
	wake        chan struct{}
	speaking    bool
	interrupted bool
	lastSpoken  string
}

// NewSpeaker creates a speech dispatcher. Call Start before Say.
func NewSpeaker(synth domain.Synthesizer, player audioPlayer, log *logger.Logger, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		synth:  synth,
		player: player,
		log:    log,
		wake:   make(chan struct{}, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Say queues text to be spoken at the given priority. Non-blocking.
func (s *Speaker) Say(text string, priority Priority) {
	if text == "" {
		return
	}

	s.mu.Lock()
	if priority >= PriorityNormal {
		s.dropLowLocked()
	}
	s.queue = append(s.queue, request{text: text, priority: priority, queuedAt: time.Now()})
	n := len(s.queue)
	s.mu.Unlock()

	s.log.Debug("speaker: queued (priority=%d, queued=%d): %s", priority, n, clip(text, 60))

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dropLowLocked removes all PriorityLow items. Caller holds s.mu.
func (s *Speaker) dropLowLocked() {
	n := 0
	for _, r := range s.queue {
		if r.priority > PriorityLow {
			s.queue[n] = r
			n++
		}
	}
	if dropped := len(s.queue) - n; dropped > 0 {
		s.log.Debug("speaker: dropped %d stale low-priority items", dropped)
	}
	s.queue = s.queue[:n]
}

// IsSpeaking reports whether an utterance is being synthesized or played.
func (s *Speaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// QueueLen returns the number of pending utterances.
func (s *Speaker) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// LastSpoken returns the most recently spoken substantial utterance.
// Short acknowledgments don't count.
func (s *Speaker) LastSpoken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSpoken
}

// Interrupt clears the queue and stops playback mid-utterance.
func (s *Speaker) Interrupt() {
	s.mu.Lock()
	s.queue = s.queue[:0]
	s.interrupted = true
	s.mu.Unlock()

	s.player.Stop()
	s.log.Debug("speaker: interrupted")
}

// Start launches the processing goroutine. Returns immediately.
func (s *Speaker) Start(ctx context.Context) {
	go s.loop(ctx)
	s.log.Info("speaker started")
}

func (s *Speaker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.log.Info("speaker stopped")
			return
		case <-s.wake:
			s.drain(ctx)
		}
	}
}

// drain speaks queued utterances until the queue is empty.
func (s *Speaker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		s.interrupted = false
		s.mu.Unlock()

		req, ok := s.dequeue()
		if !ok {
			return
		}

		s.mu.Lock()
		s.speaking = true
		s.mu.Unlock()

		s.speak(ctx, req)

		s.mu.Lock()
		if len(req.text) > 20 {
			s.lastSpoken = req.text
		}
		s.speaking = false
		s.mu.Unlock()
	}
}

// dequeue removes and returns the highest priority pending utterance.
func (s *Speaker) dequeue() (request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return request{}, false
	}
	best := 0
	for i, r := range s.queue {
		if r.priority > s.queue[best].priority {
			best = i
		}
	}
	req := s.queue[best]
	s.queue = append(s.queue[:best], s.queue[best+1:]...)
	return req, true
}

func (s *Speaker) speak(ctx context.Context, req request) {
	waited := time.Since(req.queuedAt).Round(time.Millisecond)
	s.log.Debug("speaker: speaking (priority=%d, waited=%s): %s", req.priority, waited, clip(req.text, 60))

	audio, err := s.synthesize(ctx, req.text)
	if err != nil {
		s.log.Error("speaker: synthesis failed: %v", err)
		return
	}

	s.mu.Lock()
	aborted := s.interrupted
	s.mu.Unlock()
	if aborted {
		return
	}

	if err := s.player.Play(audio); err != nil {
		s.log.Error("speaker: playback failed: %v", err)
	}
}

// synthesize goes through the cache when one is configured.
func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.cache != nil {
		if audio, ok := s.cache.Get(text); ok {
			return audio, nil
		}
	}
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(text, audio)
	}
	return audio, nil
}

// Prefetch synthesizes the given texts in background goroutines and
// caches the results, skipping anything already cached. Non-blocking.
// Call it with text that will likely be spoken soon, so playback starts
// instantly when Say runs.
func (s *Speaker) Prefetch(ctx context.Context, texts ...string) {
	if s.cache == nil {
		return
	}
	for _, text := range texts {
		if text == "" || s.cache.Has(text) {
			continue
		}
		go func(t string) {
			audio, err := s.synth.Synthesize(ctx, t)
			if err != nil {
				s.log.Error("prefetch: synthesis failed: %v", err)
				return
			}
			s.cache.Put(t, audio)
			s.log.Debug("prefetch: cached %d bytes for: %s", len(audio), clip(t, 50))
		}(text)
	}
}

// clip shortens a string for logging.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
