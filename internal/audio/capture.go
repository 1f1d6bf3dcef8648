// Package audio provides microphone capture, the record-until-silence
// recorder, WAV file encoding, and MP3 playback.
package audio

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Capture parameters. 16 kHz mono s16 is what the Whisper API expects
// and what the VAD is tuned for.
const (
	SampleRate    = 16000
	FrameSamples  = 320 // 20 ms @ 16 kHz
	frameQueueCap = 64
)

// Microphone captures 20 ms mono int16 frames from the default capture
// device via miniaudio.
type Microphone struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	log    *logger.Logger

	frames chan []int16
	drops  atomic.Int64
	rem    []int16 // partial frame carried between device callbacks
}

// NewMicrophone initialises the capture device. The device starts
// delivering frames only after Start is called.
func NewMicrophone(log *logger.Logger) (*Microphone, error) {
	mCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(_ string) {})
	if err != nil {
		return nil, domain.ErrAudioDevice
	}

	m := &Microphone{
		ctx:    mCtx,
		log:    log,
		frames: make(chan []int16, frameQueueCap),
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.SampleRate = SampleRate
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = 1
	devCfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_ []byte, raw []byte, _ uint32) {
			m.onData(raw)
		},
	}

	device, err := malgo.InitDevice(mCtx.Context, devCfg, callbacks)
	if err != nil {
		_ = mCtx.Uninit()
		mCtx.Free()
		return nil, domain.ErrAudioDevice
	}
	m.device = device

	log.Debug("microphone initialized (rate=%d, frame=%d samples)", SampleRate, FrameSamples)
	return m, nil
}

// onData slices the raw capture buffer into fixed-size frames. Frames
// are dropped, not blocked on, when the consumer falls behind — the
// drop counter makes that visible in the debug log.
func (m *Microphone) onData(raw []byte) {
	n := len(raw) / 2
	for i := 0; i < n; i++ {
		m.rem = append(m.rem, int16(binary.LittleEndian.Uint16(raw[i*2:i*2+2])))
	}

	for len(m.rem) >= FrameSamples {
		frame := make([]int16, FrameSamples)
		copy(frame, m.rem[:FrameSamples])
		k := copy(m.rem, m.rem[FrameSamples:])
		m.rem = m.rem[:k]

		select {
		case m.frames <- frame:
		default:
			m.drops.Add(1)
		}
	}
}

// Frames returns the capture frame channel.
func (m *Microphone) Frames() <-chan []int16 { return m.frames }

// Start begins capturing.
func (m *Microphone) Start() error {
	if err := m.device.Start(); err != nil {
		m.log.Error("microphone start failed: %v", err)
		return domain.ErrAudioDevice
	}
	m.log.Debug("microphone capture started")
	return nil
}

// Stop pauses capturing. The device can be started again.
func (m *Microphone) Stop() {
	_ = m.device.Stop()
	if d := m.drops.Swap(0); d > 0 {
		m.log.Debug("microphone: dropped %d frames during capture", d)
	}
}

// Close releases the capture device and audio context.
func (m *Microphone) Close() {
	m.device.Uninit()
	_ = m.ctx.Uninit()
	m.ctx.Free()
}
