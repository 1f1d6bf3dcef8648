package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")

	samples := make([]int16, SampleRate/10) // 100 ms
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	if err := WriteWAV(path, samples); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Format.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", buf.Format.SampleRate, SampleRate)
	}
	if buf.Format.NumChannels != 1 {
		t.Errorf("channels = %d, want 1", buf.Format.NumChannels)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i := 0; i < len(samples); i += 997 {
		if int16(buf.Data[i]) != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], samples[i])
		}
	}
}
