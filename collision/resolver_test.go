package collision

import (
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/beat-runner/entity"
)

// place activates e in lane at world z, with x on the default 3-lane track
func place[T entity.Entity](e T, lane int, z float64) T {
	b := e.Common()
	b.Activate(lane, 0, 0)
	b.X = (float64(lane) - 1) * 3
	b.Z = z
	return e
}

func centrePlayer() Player {
	return Player{X: 0, Z: 0, Lane: 1}
}

func TestCollectCubeOnce(t *testing.T) {
	r := NewResolver(DefaultConfig())
	c := place(entity.NewCube(1), 1, -1.5)

	out, err := r.Resolve(centrePlayer(), []*entity.Cube{c}, nil, nil, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Kind != OutcomeCollected || out[0].Entity != c {
		t.Fatalf("expected one collect, got %+v", out)
	}
	if !c.Collected {
		t.Error("collected flag not set")
	}

	out, _ = r.Resolve(centrePlayer(), []*entity.Cube{c}, nil, nil, time.Second+16*time.Millisecond)
	if len(out) != 0 {
		t.Errorf("cube collected twice: %+v", out)
	}
}

func TestCubeOutOfReach(t *testing.T) {
	r := NewResolver(DefaultConfig())
	far := place(entity.NewCube(1), 1, -2.5)
	side := place(entity.NewCube(2), 0, 0)

	out, _ := r.Resolve(centrePlayer(), []*entity.Cube{far, side}, nil, nil, 0)
	if len(out) != 0 {
		t.Errorf("expected no collects, got %+v", out)
	}
}

func TestObstacleCollisionStartsCooldown(t *testing.T) {
	r := NewResolver(DefaultConfig())
	a := place(entity.NewObstacle(1), 1, -1)
	b := place(entity.NewObstacle(2), 1, -0.5)

	out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{a, b}, nil, 5*time.Second)
	if len(out) != 1 || out[0].Kind != OutcomeCollided || out[0].Entity != a {
		t.Fatalf("expected exactly one collision, got %+v", out)
	}
	if !r.CoolingDown(6 * time.Second) {
		t.Error("cooldown should hold 1s after a hit")
	}

	// Second obstacle is still in range but suppressed by cooldown
	out, _ = r.Resolve(centrePlayer(), nil, []*entity.Obstacle{b}, nil, 6*time.Second)
	for _, o := range out {
		if o.Kind == OutcomeCollided {
			t.Fatalf("collision inside cooldown: %+v", out)
		}
	}

	out, _ = r.Resolve(centrePlayer(), nil, []*entity.Obstacle{b}, nil, 7*time.Second)
	if len(out) != 1 || out[0].Kind != OutcomeCollided {
		t.Errorf("collision should resume after cooldown, got %+v", out)
	}
}

func TestCloseCallFiresOnce(t *testing.T) {
	r := NewResolver(DefaultConfig())
	o := place(entity.NewObstacle(1), 1, 3)

	out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{o}, nil, 0)
	if len(out) != 1 || out[0].Kind != OutcomeCloseCall {
		t.Fatalf("expected close call, got %+v", out)
	}

	// Obstacle keeps receding through the window over several frames
	for i := 1; i <= 10; i++ {
		o.Z = 3 + float64(i)*0.05
		out, _ = r.Resolve(centrePlayer(), nil, []*entity.Obstacle{o}, nil, time.Duration(i)*16*time.Millisecond)
		if len(out) != 0 {
			t.Fatalf("close call repeated on frame %d", i)
		}
	}
}

func TestCloseCallRequiresPassedSameLane(t *testing.T) {
	r := NewResolver(DefaultConfig())
	ahead := place(entity.NewObstacle(1), 1, -3)
	otherLane := place(entity.NewObstacle(2), 2, 3)

	out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{ahead, otherLane}, nil, 0)
	if len(out) != 0 {
		t.Errorf("no close call expected, got %+v", out)
	}
}

func TestCloseCallNotGatedByCooldown(t *testing.T) {
	r := NewResolver(DefaultConfig())
	hit := place(entity.NewObstacle(1), 1, -1)
	r.Resolve(centrePlayer(), nil, []*entity.Obstacle{hit}, nil, 0)

	passed := place(entity.NewObstacle(2), 1, 2.5)
	out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{passed}, nil, 100*time.Millisecond)
	if len(out) != 1 || out[0].Kind != OutcomeCloseCall {
		t.Errorf("close call should fire during collision cooldown, got %+v", out)
	}
}

// TestCloseCallUsesLateralPosition checks the vehicle's x, not its target lane
func TestCloseCallUsesLateralPosition(t *testing.T) {
	// Still physically in lane 0 while steering toward lane 1
	r := NewResolver(DefaultConfig())
	o := place(entity.NewObstacle(1), 1, 3)
	out, _ := r.Resolve(Player{X: -3, Lane: 1}, nil, []*entity.Obstacle{o}, nil, 0)
	if len(out) != 0 {
		t.Errorf("steering into a passed obstacle's lane paid %+v", out)
	}

	// Still physically in lane 1 while steering away to lane 0
	r = NewResolver(DefaultConfig())
	o = place(entity.NewObstacle(2), 1, 3)
	out, _ = r.Resolve(Player{X: 0, Lane: 0}, nil, []*entity.Obstacle{o}, nil, 0)
	if len(out) != 1 || out[0].Kind != OutcomeCloseCall {
		t.Errorf("expected close call for obstacle passing at the vehicle's x, got %+v", out)
	}
}

func TestOverlapDuringCooldownIsNotCloseCall(t *testing.T) {
	r := NewResolver(DefaultConfig())
	hit := place(entity.NewObstacle(1), 1, -1)
	r.Resolve(centrePlayer(), nil, []*entity.Obstacle{hit}, nil, 0)

	// Second obstacle drives straight through the player while cooling
	o := place(entity.NewObstacle(2), 1, -1)
	for i := 0; i <= 10; i++ {
		o.Z = -1 + float64(i)*0.5
		now := time.Second + time.Duration(i)*50*time.Millisecond
		out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{o}, nil, now)
		if len(out) != 0 {
			t.Fatalf("overlap at z=%.1f produced %+v", o.Z, out)
		}
	}
	if o.Collided {
		t.Error("obstacle collided inside cooldown")
	}
}

func TestCollidedObstacleNeverCloseCalls(t *testing.T) {
	r := NewResolver(DefaultConfig())
	o := place(entity.NewObstacle(1), 1, -1)
	r.Resolve(centrePlayer(), nil, []*entity.Obstacle{o}, nil, 0)

	o.Z = 2
	out, _ := r.Resolve(centrePlayer(), nil, []*entity.Obstacle{o}, nil, 50*time.Millisecond)
	if len(out) != 0 {
		t.Errorf("collided obstacle produced %+v", out)
	}
}

func TestPortalEntered(t *testing.T) {
	r := NewResolver(DefaultConfig())
	p := place(entity.NewPortal(1), 1, -3.5)

	out, _ := r.Resolve(centrePlayer(), nil, nil, []*entity.Portal{p}, 0)
	if len(out) != 1 || out[0].Kind != OutcomePortalEntered {
		t.Fatalf("expected portal entry, got %+v", out)
	}
	out, _ = r.Resolve(centrePlayer(), nil, nil, []*entity.Portal{p}, time.Millisecond)
	if len(out) != 0 {
		t.Error("portal entered twice")
	}
}

func TestEvaluationOrder(t *testing.T) {
	r := NewResolver(DefaultConfig())
	c := place(entity.NewCube(1), 1, 0)
	o := place(entity.NewObstacle(2), 1, 0.5)
	p := place(entity.NewPortal(3), 1, 1)

	out, _ := r.Resolve(centrePlayer(), []*entity.Cube{c}, []*entity.Obstacle{o}, []*entity.Portal{p}, 0)
	want := []OutcomeKind{OutcomeCollected, OutcomeCollided, OutcomePortalEntered}
	if len(out) != len(want) {
		t.Fatalf("got %d outcomes, want %d: %+v", len(out), len(want), out)
	}
	for i, k := range want {
		if out[i].Kind != k {
			t.Errorf("outcome %d is %v, want %v", i, out[i].Kind, k)
		}
	}
}

func TestInvalidLaneRejected(t *testing.T) {
	r := NewResolver(DefaultConfig())
	good := place(entity.NewCube(1), 1, 0)
	bad := place(entity.NewObstacle(2), 3, 0)

	out, err := r.Resolve(centrePlayer(), []*entity.Cube{good}, []*entity.Obstacle{bad}, nil, 0)
	if !errors.Is(err, ErrInvalidLane) {
		t.Fatalf("expected ErrInvalidLane, got %v", err)
	}
	if out != nil || good.Collected {
		t.Error("rejected frame must not resolve anything")
	}

	if _, err := r.Resolve(Player{Lane: -1}, nil, nil, nil, 0); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("player lane -1 should be rejected, got %v", err)
	}
}

func TestInactiveEntitiesIgnored(t *testing.T) {
	r := NewResolver(DefaultConfig())
	c := entity.NewCube(1) // Pooled, lane 0, z 0
	c.X = 0
	out, _ := r.Resolve(centrePlayer(), []*entity.Cube{c}, nil, nil, 0)
	if len(out) != 0 {
		t.Errorf("pooled cube resolved: %+v", out)
	}
}

func TestMissedOutcome(t *testing.T) {
	c := place(entity.NewCube(7), 2, 12)
	m := Missed(c, time.Second)
	if m.Kind != OutcomeMissed || m.Lane != 2 || m.Entity != c {
		t.Errorf("unexpected missed outcome %+v", m)
	}
}
