package pool

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lixenwraith/beat-runner/entity"
)

func newCubePool(prefill, hardCap int) *Pool[*entity.Cube] {
	return New("cube", entity.NewCube, prefill, hardCap)
}

func checkConservation(t *testing.T, p *Pool[*entity.Cube]) {
	t.Helper()
	if p.ActiveCount()+p.FreeCount() != p.Created() {
		t.Fatalf("conservation broken: active=%d free=%d created=%d",
			p.ActiveCount(), p.FreeCount(), p.Created())
	}
}

func TestPrefill(t *testing.T) {
	p := newCubePool(5, 10)
	if p.Created() != 5 || p.FreeCount() != 5 || p.ActiveCount() != 0 {
		t.Fatalf("unexpected prefill stats: %+v", p.Stats())
	}

	clamped := newCubePool(20, 4)
	if clamped.Created() != 4 {
		t.Errorf("prefill should clamp to cap, got %d", clamped.Created())
	}
}

func TestAcquirePrefersFreeThenGrows(t *testing.T) {
	p := newCubePool(2, 4)

	a, recycled := p.Acquire()
	if recycled {
		t.Fatal("first acquire should not recycle")
	}
	if a.State != entity.StateActive {
		t.Errorf("acquired entity should be active, got %v", a.State)
	}
	p.Acquire()
	if p.Created() != 2 {
		t.Errorf("free list should be used before growing, created=%d", p.Created())
	}

	p.Acquire()
	if p.Created() != 3 {
		t.Errorf("pool should grow below cap, created=%d", p.Created())
	}
	checkConservation(t, p)
}

// TestAcquireAtCapRecyclesOldest verifies the exhaustion fallback
func TestAcquireAtCapRecyclesOldest(t *testing.T) {
	p := newCubePool(3, 3)

	first, _ := p.Acquire()
	first.Activate(0, time.Second, 0)
	first.Collected = true
	second, _ := p.Acquire()
	second.Activate(1, 2*time.Second, 0)
	p.Acquire()

	got, recycled := p.Acquire()
	if !recycled {
		t.Fatal("expected recycle at cap")
	}
	if got.ID != first.ID {
		t.Fatalf("expected oldest (id %d), got id %d", first.ID, got.ID)
	}
	if got.State != entity.StateActive {
		t.Errorf("recycled entity should be active, got %v", got.State)
	}
	if got.Collected || got.BeatTime != 0 {
		t.Errorf("recycled entity kept stale spawn state: %+v", got)
	}

	// Recycled entity moves to the back of the order
	oldest, _ := p.Oldest()
	if oldest.ID != second.ID {
		t.Errorf("expected next oldest id %d, got %d", second.ID, oldest.ID)
	}
	if p.Stats().Recycled != 1 {
		t.Errorf("expected 1 recycle, got %d", p.Stats().Recycled)
	}
	checkConservation(t, p)
}

func TestReleaseResetsAndIsIdempotent(t *testing.T) {
	p := newCubePool(1, 2)

	c, _ := p.Acquire()
	c.Activate(2, time.Second, 0)
	c.Collected = true

	if !p.Release(c) {
		t.Fatal("release of active entity should succeed")
	}
	if c.State != entity.StatePooled || c.Collected || c.Lane != 0 {
		t.Errorf("release did not reset entity: %+v", c)
	}
	if p.Release(c) {
		t.Error("second release should be a no-op")
	}
	if p.Owns(c) {
		t.Error("released entity still owned by active set")
	}
	checkConservation(t, p)
}

func TestReleaseForeignEntity(t *testing.T) {
	p := newCubePool(1, 1)
	mine, _ := p.Acquire()

	other := newCubePool(1, 1)
	stranger, _ := other.Acquire()
	if stranger.ID != mine.ID {
		t.Fatalf("pools should number from the same base: %d vs %d", stranger.ID, mine.ID)
	}

	if p.Release(stranger) {
		t.Error("pool must not accept an entity it never handed out")
	}
	if !p.Owns(mine) || mine.State != entity.StateActive {
		t.Errorf("own entity evicted: owns=%v state=%v", p.Owns(mine), mine.State)
	}
	if p.Owns(stranger) || !other.Owns(stranger) {
		t.Error("foreign entity ownership leaked across pools")
	}
	checkConservation(t, p)
	checkConservation(t, other)
}

// TestConservationUnderRandomOps exercises acquire/release sequences below the cap
func TestConservationUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	p := newCubePool(4, 16)
	var live []*entity.Cube

	for i := 0; i < 2000; i++ {
		if len(live) < p.Cap() && (len(live) == 0 || rng.IntN(2) == 0) {
			c, recycled := p.Acquire()
			if recycled {
				t.Fatal("should never recycle below cap")
			}
			live = append(live, c)
		} else {
			idx := rng.IntN(len(live))
			if !p.Release(live[idx]) {
				t.Fatalf("release failed at op %d", i)
			}
			live = append(live[:idx], live[idx+1:]...)
		}
		checkConservation(t, p)
		if p.ActiveCount() != len(live) {
			t.Fatalf("active count %d, tracked %d", p.ActiveCount(), len(live))
		}
	}
}

func TestAppendActiveAllowsReleaseDuringIteration(t *testing.T) {
	p := newCubePool(0, 8)
	for range 5 {
		p.Acquire()
	}

	var buf []*entity.Cube
	for _, c := range p.AppendActive(buf[:0]) {
		p.Release(c)
	}
	if p.ActiveCount() != 0 || p.FreeCount() != 5 {
		t.Errorf("expected all released, got %+v", p.Stats())
	}
}

func TestReleaseAll(t *testing.T) {
	p := newCubePool(0, 4)
	for range 4 {
		p.Acquire()
	}
	p.ReleaseAll()
	if p.ActiveCount() != 0 || p.FreeCount() != 4 {
		t.Errorf("expected empty active set, got %+v", p.Stats())
	}
}
