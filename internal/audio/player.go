package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Playback parameters matching the synthesis output format
// (mp3_44100_128 decodes to 44.1 kHz stereo s16).
const (
	playbackRate     = 44100
	playbackChannels = 2
)

// Player decodes MP3 audio and plays it through the system output
// device via oto. One oto context serves the whole process.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initialises the system audio output. Returns an error when
// the output device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   playbackRate,
		ChannelCount: playbackChannels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, domain.ErrAudioDevice
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", playbackRate, playbackChannels)
	return &Player{ctx: ctx, log: log}, nil
}

// Play decodes and plays MP3 data synchronously. Blocks until playback
// finishes or Stop is called.
func (p *Player) Play(mp3Data []byte) error {
	pcm, err := decodeMP3(mp3Data)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// decodeMP3 decodes MP3 bytes into interleaved stereo s16 PCM at the
// playback rate.
func decodeMP3(data []byte) ([]byte, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	var pcm bytes.Buffer
	if _, err := io.Copy(&pcm, dec); err != nil {
		return nil, fmt.Errorf("reading mp3 stream: %w", err)
	}

	if sr := dec.SampleRate(); sr != playbackRate {
		return resamplePCM16(pcm.Bytes(), sr, playbackRate), nil
	}
	return pcm.Bytes(), nil
}

// resamplePCM16 linearly resamples interleaved stereo s16le PCM.
func resamplePCM16(in []byte, inRate, outRate int) []byte {
	nFrames := len(in) / 4 // 2 channels × 2 bytes
	if nFrames == 0 || inRate == outRate {
		return in
	}

	outFrames := nFrames * outRate / inRate
	out := make([]byte, outFrames*4)

	sample := func(frame, ch int) int16 {
		return int16(binary.LittleEndian.Uint16(in[frame*4+ch*2:]))
	}

	for i := 0; i < outFrames; i++ {
		src := i * inRate / outRate
		next := src + 1
		if next >= nFrames {
			next = nFrames - 1
		}
		frac := float64(i*inRate%outRate) / float64(outRate)
		for ch := 0; ch < 2; ch++ {
			a := float64(sample(src, ch))
			b := float64(sample(next, ch))
			v := int16(a + (b-a)*frac)
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(v))
		}
	}
	return out
}
