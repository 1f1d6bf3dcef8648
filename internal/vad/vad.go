// Package vad implements energy-based voice activity detection.
//
// The Detector classifies fixed-size PCM frames as speech or silence by
// comparing their RMS energy against a threshold, and runs a small state
// machine on top so that transient noise doesn't open a recording and a
// short pause mid-sentence doesn't close one:
//
//	idle      — below threshold; requires several consecutive speech
//	            frames before a segment opens (debounce).
//	listening — segment open, frames are speech.
//	trailing  — segment open but the last frame was silent; the segment
//	            stays open for the hangover window in case speech resumes.
package vad

import "math"

// Event signals a segment boundary crossing.
type Event int

const (
	// EventNone — no boundary crossed on this frame.
	EventNone Event = iota
	// EventSpeechStart — a speech segment just opened.
	EventSpeechStart
	// EventSpeechEnd — the open segment closed after the hangover expired.
	EventSpeechEnd
)

// state is the detector's position in the segment lifecycle.
type state int

const (
	stateIdle state = iota
	stateListening
	stateTrailing
)

// Defaults tuned for 16 kHz mono capture with 20 ms frames.
const (
	// DefaultThreshold is the RMS energy (normalised to [0,1]) above
	// which a frame counts as speech.
	DefaultThreshold = 0.015
	// DefaultStartFrames is the consecutive speech frames required to
	// open a segment.
	DefaultStartFrames = 3
	// DefaultHangoverFrames is the consecutive silent frames tolerated
	// before an open segment closes. 50 frames of 20 ms ≈ 1 s.
	DefaultHangoverFrames = 50
)

// Option configures the Detector.
type Option func(*Detector)

// WithThreshold sets the RMS speech threshold, normalised to [0,1].
func WithThreshold(t float64) Option {
	return func(d *Detector) { d.threshold = t }
}

// WithStartFrames sets how many consecutive speech frames open a segment.
func WithStartFrames(n int) Option {
	return func(d *Detector) { d.startFrames = n }
}

// WithHangoverFrames sets how many consecutive silent frames close a segment.
func WithHangoverFrames(n int) Option {
	return func(d *Detector) { d.hangoverFrames = n }
}

// Detector is the frame classifier. Not safe for concurrent use; feed it
// frames from a single goroutine.
type Detector struct {
	threshold      float64
	startFrames    int
	hangoverFrames int

	state      state
	speechRun  int // consecutive speech frames while idle
	silenceRun int // consecutive silent frames while trailing
}

// New creates a Detector with the default tuning.
func New(opts ...Option) *Detector {
	d := &Detector{
		threshold:      DefaultThreshold,
		startFrames:    DefaultStartFrames,
		hangoverFrames: DefaultHangoverFrames,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.startFrames < 1 {
		d.startFrames = 1
	}
	if d.hangoverFrames < 1 {
		d.hangoverFrames = 1
	}
	return d
}

// Process classifies one frame and advances the state machine.
func (d *Detector) Process(frame []int16) Event {
	speech := RMS(frame) >= d.threshold

	switch d.state {
	case stateIdle:
		if !speech {
			d.speechRun = 0
			return EventNone
		}
		d.speechRun++
		if d.speechRun >= d.startFrames {
			d.state = stateListening
			d.speechRun = 0
			return EventSpeechStart
		}
		return EventNone

	case stateListening:
		if speech {
			return EventNone
		}
		d.state = stateTrailing
		d.silenceRun = 1
		if d.silenceRun >= d.hangoverFrames {
			d.state = stateIdle
			d.silenceRun = 0
			return EventSpeechEnd
		}
		return EventNone

	default: // stateTrailing
		if speech {
			// Speech resumed inside the hangover window.
			d.state = stateListening
			d.silenceRun = 0
			return EventNone
		}
		d.silenceRun++
		if d.silenceRun >= d.hangoverFrames {
			d.state = stateIdle
			d.silenceRun = 0
			return EventSpeechEnd
		}
		return EventNone
	}
}

// Active reports whether a speech segment is currently open.
func (d *Detector) Active() bool {
	return d.state != stateIdle
}

// Reset returns the detector to idle, discarding any open segment
// without emitting EventSpeechEnd.
func (d *Detector) Reset() {
	d.state = stateIdle
	d.speechRun = 0
	d.silenceRun = 0
}

// RMS returns the root-mean-square energy of a frame, normalised so a
// full-scale square wave is 1.0. An empty frame has zero energy.
func RMS(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range frame {
		v := float64(s) / 32768.0
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(frame)))
}
