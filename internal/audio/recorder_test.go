package audio

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
	"github.com/easimeng/anglo/internal/vad"
)

func loudFrame() []int16 {
	f := make([]int16, FrameSamples)
	for i := range f {
		f[i] = int16(0.5 * 32767 * math.Sin(2*math.Pi*float64(i)/32))
	}
	return f
}

func quietFrame() []int16 {
	return make([]int16, FrameSamples)
}

func feed(frames ...[]int16) <-chan []int16 {
	ch := make(chan []int16, len(frames))
	for _, f := range frames {
		ch <- f
	}
	return ch
}

func newTestRecorder(opts ...RecorderOption) *Recorder {
	det := vad.New(
		vad.WithThreshold(0.05),
		vad.WithStartFrames(2),
		vad.WithHangoverFrames(3),
	)
	return NewRecorder(det, logger.New(logger.LevelOff, nil), opts...)
}

func TestRecordCapturesUtteranceWithPreroll(t *testing.T) {
	rec := newTestRecorder(WithPreroll(100 * time.Millisecond)) // 5 frames

	var frames [][]int16
	for i := 0; i < 10; i++ {
		frames = append(frames, quietFrame())
	}
	for i := 0; i < 8; i++ {
		frames = append(frames, loudFrame())
	}
	for i := 0; i < 5; i++ {
		frames = append(frames, quietFrame())
	}

	take, err := rec.Record(context.Background(), feed(frames...), nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// Speech start fires on the 2nd loud frame. The take holds the
	// 5-frame preroll (whose newest entry is the 1st loud frame), the
	// start frame, the 6 remaining loud frames, and 3 hangover frames.
	wantFrames := 5 + 1 + 6 + 3
	if got := len(take) / FrameSamples; got != wantFrames {
		t.Fatalf("take has %d frames, want %d", got, wantFrames)
	}
}

func TestRecordNoSpeechTimesOut(t *testing.T) {
	rec := newTestRecorder(WithListenTimeout(200 * time.Millisecond)) // 10 frames

	var frames [][]int16
	for i := 0; i < 20; i++ {
		frames = append(frames, quietFrame())
	}

	_, err := rec.Record(context.Background(), feed(frames...), nil)
	if !errors.Is(err, domain.ErrNoSpeechDetected) {
		t.Fatalf("expected ErrNoSpeechDetected, got %v", err)
	}
}

func TestRecordStopAbandonsBuffer(t *testing.T) {
	rec := newTestRecorder()

	ch := make(chan []int16)
	stop := make(chan struct{})
	close(stop)

	take, err := rec.Record(context.Background(), ch, stop)
	if !errors.Is(err, domain.ErrRecordingAborted) {
		t.Fatalf("expected ErrRecordingAborted, got %v", err)
	}
	if take != nil {
		t.Fatalf("expected abandoned buffer, got %d samples", len(take))
	}
}

func TestRecordContextCancel(t *testing.T) {
	rec := newTestRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rec.Record(ctx, make(chan []int16), nil)
	if !errors.Is(err, domain.ErrRecordingAborted) {
		t.Fatalf("expected ErrRecordingAborted, got %v", err)
	}
}

func TestRecordMaxDurationCap(t *testing.T) {
	// 200 ms cap = 10 frames; the speaker never stops talking.
	rec := newTestRecorder(WithMaxDuration(200 * time.Millisecond))

	var frames [][]int16
	for i := 0; i < 40; i++ {
		frames = append(frames, loudFrame())
	}

	take, err := rec.Record(context.Background(), feed(frames...), nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := len(take) / FrameSamples; got < 10 || got > 11 {
		t.Fatalf("take has %d frames, want ~10 (max duration cap)", got)
	}
}

func TestRecordClosedSourceIsDeviceError(t *testing.T) {
	rec := newTestRecorder()

	ch := make(chan []int16)
	close(ch)

	_, err := rec.Record(context.Background(), ch, nil)
	if !errors.Is(err, domain.ErrAudioDevice) {
		t.Fatalf("expected ErrAudioDevice, got %v", err)
	}
}
