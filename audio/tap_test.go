package audio

import (
	"sync"
	"testing"

	"github.com/gopxl/beep"
)

// counter emits samples 1, 2, 3 ... on both channels
type counter struct{ next float64 }

func (c *counter) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		c.next++
		samples[i] = [2]float64{c.next, c.next}
	}
	return len(samples), true
}

func (c *counter) Err() error { return nil }

func TestTapPassesThrough(t *testing.T) {
	tap := NewTap(&counter{}, 8)
	buf := make([][2]float64, 4)
	n, ok := tap.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("got %d %v", n, ok)
	}
	if buf[3][0] != 4 {
		t.Errorf("samples altered: %v", buf)
	}
}

func TestTapSnapshotOrder(t *testing.T) {
	tap := NewTap(&counter{}, 4)
	buf := make([][2]float64, 3)
	tap.Stream(buf) // 1..3
	tap.Stream(buf) // 4..6, wraps

	got := tap.Snapshot(nil)
	want := []float64{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot %v, want %v", got, want)
		}
	}
	if tap.Samples() != 6 {
		t.Errorf("sample count %d", tap.Samples())
	}
}

func TestTapMixesToMono(t *testing.T) {
	stereo := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 0}
		}
		return len(samples), true
	})
	tap := NewTap(stereo, 2)
	tap.Stream(make([][2]float64, 2))
	if s := tap.Snapshot(nil); s[0] != 0.5 || s[1] != 0.5 {
		t.Errorf("expected mono average, got %v", s)
	}
}

func TestTapEndOfStream(t *testing.T) {
	tap := NewTap(beep.Take(3, &counter{}), 4)
	buf := make([][2]float64, 8)
	n, _ := tap.Stream(buf)
	if n != 3 {
		t.Fatalf("expected 3 samples, got %d", n)
	}
	if n, ok := tap.Stream(buf); n != 0 || ok {
		t.Errorf("expected exhausted stream, got %d %v", n, ok)
	}
	if tap.Samples() != 3 {
		t.Errorf("sample count %d", tap.Samples())
	}
}

func TestTapConcurrentSnapshot(t *testing.T) {
	tap := NewTap(&counter{}, 256)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		buf := make([][2]float64, 64)
		for range 500 {
			tap.Stream(buf)
		}
	}()
	go func() {
		defer wg.Done()
		var dst []float64
		for range 500 {
			dst = tap.Snapshot(dst)
			for i := 1; i < len(dst); i++ {
				if dst[i] != 0 && dst[i] != dst[i-1]+1 {
					t.Errorf("torn snapshot at %d: %f after %f", i, dst[i], dst[i-1])
					return
				}
			}
		}
	}()
	wg.Wait()
}
