package audio

// frameRing is a fixed-capacity ring of audio frames used as the
// recorder's preroll buffer: while the detector is still idle the most
// recent frames are retained here, so the first syllables spoken before
// the speech-start decision are not clipped from the take.
type frameRing struct {
	frames [][]int16
	head   int
	size   int
}

func newFrameRing(capacity int) *frameRing {
	if capacity < 1 {
		capacity = 1
	}
	return &frameRing{frames: make([][]int16, capacity)}
}

// Push adds a frame, evicting the oldest when full.
func (r *frameRing) Push(frame []int16) {
	r.frames[r.head] = frame
	r.head = (r.head + 1) % len(r.frames)
	if r.size < len(r.frames) {
		r.size++
	}
}

// Drain returns the buffered frames oldest-first and empties the ring.
func (r *frameRing) Drain() [][]int16 {
	out := make([][]int16, 0, r.size)
	start := (r.head - r.size + len(r.frames)) % len(r.frames)
	for i := 0; i < r.size; i++ {
		out = append(out, r.frames[(start+i)%len(r.frames)])
	}
	r.head = 0
	r.size = 0
	for i := range r.frames {
		r.frames[i] = nil
	}
	return out
}

// Len returns the number of buffered frames.
func (r *frameRing) Len() int { return r.size }
