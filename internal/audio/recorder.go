package audio

import (
	"context"
	"time"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
	"github.com/easimeng/anglo/internal/vad"
)

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithMaxDuration caps the length of a single take.
func WithMaxDuration(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.maxDuration = d }
}

// WithListenTimeout sets how long the recorder waits for speech to
// start before giving up.
func WithListenTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.listenTimeout = d }
}

// WithPreroll sets how much audio before the speech-start decision is
// kept at the head of the take.
func WithPreroll(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.preroll = d }
}

// Recorder turns a raw frame stream into a single speech take, gated by
// the voice activity detector. One Record call is one utterance.
type Recorder struct {
	det *vad.Detector
	log *logger.Logger

	preroll       time.Duration
	maxDuration   time.Duration
	listenTimeout time.Duration
}

// NewRecorder creates a recorder around the given detector.
func NewRecorder(det *vad.Detector, log *logger.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		det:           det,
		log:           log,
		preroll:       500 * time.Millisecond,
		maxDuration:   30 * time.Second,
		listenTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// frameDuration is the wall-clock length of one capture frame.
const frameDuration = time.Second * FrameSamples / SampleRate

// Record consumes frames until the detector closes a speech segment,
// the max duration is hit, or the caller stops it. Returns the recorded
// samples including the preroll.
//
// Errors:
//   - domain.ErrNoSpeechDetected — listen timeout expired while idle.
//   - domain.ErrRecordingAborted — stop closed or ctx cancelled; the
//     buffer is abandoned.
func (r *Recorder) Record(ctx context.Context, frames <-chan []int16, stop <-chan struct{}) ([]int16, error) {
	r.det.Reset()

	prerollFrames := int(r.preroll / frameDuration)
	maxFrames := int(r.maxDuration / frameDuration)
	listenFrames := int(r.listenTimeout / frameDuration)

	ring := newFrameRing(prerollFrames)
	var take []int16
	idleFrames := 0
	recording := false

	for {
		select {
		case <-ctx.Done():
			return nil, domain.ErrRecordingAborted
		case <-stop:
			r.log.Debug("recorder: stopped by user, abandoning %d samples", len(take))
			return nil, domain.ErrRecordingAborted
		case frame, ok := <-frames:
			if !ok {
				return nil, domain.ErrAudioDevice
			}

			ev := r.det.Process(frame)

			if !recording {
				switch ev {
				case vad.EventSpeechStart:
					recording = true
					for _, f := range ring.Drain() {
						take = append(take, f...)
					}
					take = append(take, frame...)
					r.log.Debug("recorder: speech started (preroll=%d samples)", len(take)-len(frame))
				default:
					ring.Push(frame)
					idleFrames++
					if idleFrames >= listenFrames {
						r.log.Debug("recorder: no speech within %s", r.listenTimeout)
						return nil, domain.ErrNoSpeechDetected
					}
				}
				continue
			}

			take = append(take, frame...)

			if ev == vad.EventSpeechEnd {
				r.log.Debug("recorder: speech ended (%d samples, %s)",
					len(take), time.Duration(len(take))*time.Second/SampleRate)
				return take, nil
			}

			if len(take) >= maxFrames*FrameSamples {
				r.log.Debug("recorder: max duration reached (%s)", r.maxDuration)
				return take, nil
			}
		}
	}
}
