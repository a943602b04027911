package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Tap passes audio through unchanged while keeping the latest mono samples
// Stream runs on the speaker goroutine; Snapshot may be called from any goroutine
type Tap struct {
	streamer beep.Streamer

	mu    sync.Mutex
	ring  []float64
	write int
	total uint64
}

// NewTap wraps s, retaining the last size samples
func NewTap(s beep.Streamer, size int) *Tap {
	return &Tap{
		streamer: s,
		ring:     make([]float64, size),
	}
}

func (t *Tap) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.streamer.Stream(samples)
	if n == 0 {
		return n, ok
	}

	t.mu.Lock()
	size := len(t.ring)
	for i := 0; i < n; i++ {
		t.ring[t.write] = (samples[i][0] + samples[i][1]) * 0.5
		t.write++
		if t.write == size {
			t.write = 0
		}
	}
	t.total += uint64(n)
	t.mu.Unlock()
	return n, ok
}

func (t *Tap) Err() error { return t.streamer.Err() }

// Snapshot copies the retained samples oldest-first into dst, growing it as needed
func (t *Tap) Snapshot(dst []float64) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.ring)
	if cap(dst) < size {
		dst = make([]float64, size)
	}
	dst = dst[:size]
	n := copy(dst, t.ring[t.write:])
	copy(dst[n:], t.ring[:t.write])
	return dst
}

// Samples returns the number of samples seen since creation
func (t *Tap) Samples() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
