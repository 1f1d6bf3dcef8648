package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeSynth returns predictable audio and records calls.
type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + text), nil
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakePlayer records what was played, optionally blocking until released.
type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	block   chan struct{} // when set, Play waits on it
	stopped bool
}

func (p *fakePlayer) Play(audio []byte) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.played = append(p.played, string(audio))
	p.mu.Unlock()
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

func (p *fakePlayer) playedTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.played))
	copy(out, p.played)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSpeakerSaysQueuedText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth := &fakeSynth{}
	player := &fakePlayer{}
	s := NewSpeaker(synth, player, testLog())
	s.Start(ctx)

	s.Say("hello there", PriorityNormal)

	waitFor(t, func() bool { return len(player.playedTexts()) == 1 })
	if got := player.playedTexts()[0]; got != "audio:hello there" {
		t.Fatalf("played %q", got)
	}
}

func TestSpeakerPriorityOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth := &fakeSynth{}
	release := make(chan struct{})
	player := &fakePlayer{block: release}
	s := NewSpeaker(synth, player, testLog())
	s.Start(ctx)

	// First item occupies the player; the rest queue up behind it.
	s.Say("first", PriorityNormal)
	waitFor(t, s.IsSpeaking)

	s.Say("normal", PriorityNormal)
	s.Say("critical", PriorityCritical)
	s.Say("high", PriorityHigh)
	waitFor(t, func() bool { return s.QueueLen() == 3 })

	player.block = nil
	close(release)

	waitFor(t, func() bool { return len(player.playedTexts()) == 4 })
	got := player.playedTexts()
	want := []string{"audio:first", "audio:critical", "audio:high", "audio:normal"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("play order = %v, want %v", got, want)
		}
	}
}

func TestSpeakerNormalFlushesLow(t *testing.T) {
	s := NewSpeaker(&fakeSynth{}, &fakePlayer{}, testLog())

	// Not started, so the queue just accumulates.
	s.Say("idle chatter", PriorityLow)
	s.Say("more chatter", PriorityLow)
	s.Say("actual reply", PriorityNormal)

	if n := s.QueueLen(); n != 1 {
		t.Fatalf("queue len = %d after Normal enqueue, want 1", n)
	}
}

func TestSpeakerInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth := &fakeSynth{}
	release := make(chan struct{})
	player := &fakePlayer{block: release}
	s := NewSpeaker(synth, player, testLog())
	s.Start(ctx)

	s.Say("long reply that will be cut off", PriorityNormal)
	waitFor(t, s.IsSpeaking)
	s.Say("queued behind", PriorityNormal)

	s.Interrupt()

	player.mu.Lock()
	stopped := player.stopped
	player.mu.Unlock()
	if !stopped {
		t.Fatal("player.Stop not called")
	}
	if s.QueueLen() != 0 {
		t.Fatal("queue not cleared by Interrupt")
	}
	close(release)
}

func TestSpeakerUsesCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth := &fakeSynth{}
	player := &fakePlayer{}
	cache := NewCache("adam", "", false, testLog())
	s := NewSpeaker(synth, player, testLog(), WithCache(cache))
	s.Start(ctx)

	s.Say("repeat me", PriorityNormal)
	waitFor(t, func() bool { return len(player.playedTexts()) == 1 })
	s.Say("repeat me", PriorityNormal)
	waitFor(t, func() bool { return len(player.playedTexts()) == 2 })

	if n := synth.callCount(); n != 1 {
		t.Fatalf("synthesizer called %d times, want 1 (second hit from cache)", n)
	}
}

func TestSpeakerPrefetch(t *testing.T) {
	synth := &fakeSynth{}
	cache := NewCache("adam", "", false, testLog())
	s := NewSpeaker(synth, &fakePlayer{}, testLog(), WithCache(cache))

	s.Prefetch(context.Background(), "one", "two", "")

	waitFor(t, func() bool { return cache.Len() == 2 })
	if !cache.Has("one") || !cache.Has("two") {
		t.Fatal("prefetched texts missing from cache")
	}

	// Already cached texts are skipped.
	s.Prefetch(context.Background(), "one")
	time.Sleep(20 * time.Millisecond)
	if n := synth.callCount(); n != 2 {
		t.Fatalf("synthesizer called %d times, want 2", n)
	}
}

func TestSpeakerSynthFailureSkipsPlayback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth := &fakeSynth{err: errors.New("boom")}
	player := &fakePlayer{}
	s := NewSpeaker(synth, player, testLog())
	s.Start(ctx)

	s.Say("doomed", PriorityNormal)
	waitFor(t, func() bool { return synth.callCount() == 1 })
	time.Sleep(20 * time.Millisecond)

	if len(player.playedTexts()) != 0 {
		t.Fatal("playback should be skipped when synthesis fails")
	}
	if s.IsSpeaking() {
		t.Fatal("speaker stuck in speaking state")
	}
}

func TestSpeakerLastSpoken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	player := &fakePlayer{}
	s := NewSpeaker(&fakeSynth{}, player, testLog())
	s.Start(ctx)

	long := fmt.Sprintf("this is a substantial reply about %s", "operating systems")
	s.Say(long, PriorityNormal)
	waitFor(t, func() bool { return s.LastSpoken() == long })

	// Short acks don't replace it.
	s.Say("Okay.", PriorityLow)
	waitFor(t, func() bool { return len(player.playedTexts()) == 2 })
	if s.LastSpoken() != long {
		t.Fatalf("LastSpoken = %q, want the long reply", s.LastSpoken())
	}
}
