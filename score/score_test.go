package score

import (
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/beat-runner/collision"
)

func outcome(k collision.OutcomeKind) collision.Outcome {
	return collision.Outcome{Kind: k}
}

// TestStreakScoresBeforeRollover pins the streak ordering on five collects
func TestStreakScoresBeforeRollover(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 5 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	got := s.Snapshot()
	if got.Score != 500 || got.Multiplier != 2 || got.MultiplierProgress != 0 {
		t.Errorf("got {%d %d %d}, want {500 2 0}", got.Score, got.Multiplier, got.MultiplierProgress)
	}
	if got.CubesCollected != 5 {
		t.Errorf("cubes collected %d, want 5", got.CubesCollected)
	}

	// Sixth cube scores at the doubled multiplier
	s.Apply(outcome(collision.OutcomeCollected))
	if s.Score() != 700 {
		t.Errorf("sixth cube score %d, want 700", s.Score())
	}
}

func TestCollisionClampsAtZero(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 3 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	if s.Score() != 300 {
		t.Fatalf("setup score %d", s.Score())
	}
	s.Apply(outcome(collision.OutcomeCollided))
	if s.Score() != 0 {
		t.Errorf("score %d after penalty, want 0", s.Score())
	}
	if s.Snapshot().Collisions != 1 {
		t.Error("collision not counted")
	}
}

func TestCollisionPenaltyAboveZero(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 10 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	// 5×100 + 5×200
	if s.Score() != 1500 {
		t.Fatalf("setup score %d", s.Score())
	}
	s.Apply(outcome(collision.OutcomeCollided))
	if s.Score() != 1000 {
		t.Errorf("score %d after penalty, want 1000", s.Score())
	}
}

// TestMultiplierFollowsStreakLength checks min(max, 2^floor(N/threshold)) for every N
func TestMultiplierFollowsStreakLength(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	prev := 1
	for n := 1; n <= 40; n++ {
		s.Apply(outcome(collision.OutcomeCollected))
		want := min(cfg.MaxMultiplier, 1<<(n/cfg.MultiplierThreshold))
		if s.Multiplier() != want {
			t.Fatalf("after %d collects multiplier %d, want %d", n, s.Multiplier(), want)
		}
		if s.Multiplier() < prev {
			t.Fatalf("multiplier decreased within streak at %d", n)
		}
		prev = s.Multiplier()
	}
}

func TestMaxMultiplierRoundsToPowerOfTwo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMultiplier = 6
	s := NewState(cfg)
	for range 40 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	if s.Multiplier() != 4 {
		t.Errorf("multiplier %d, want 4 with cap 6", s.Multiplier())
	}
}

func TestProgressRollsOverAtCap(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 20 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	snap := s.Snapshot()
	if snap.Multiplier != 8 || snap.MultiplierProgress != 0 {
		t.Errorf("at cap got multiplier %d progress %d", snap.Multiplier, snap.MultiplierProgress)
	}
}

// TestBreakStreakResets checks misses and collisions from arbitrary states
func TestBreakStreakResets(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	advancing := []collision.OutcomeKind{collision.OutcomeCollected, collision.OutcomeCloseCall}
	breaking := []collision.OutcomeKind{collision.OutcomeMissed, collision.OutcomeCollided}

	for trial := 0; trial < 200; trial++ {
		s := NewState(DefaultConfig())
		for range rng.IntN(30) {
			s.Apply(outcome(advancing[rng.IntN(2)]))
		}
		before := s.Score()
		k := breaking[rng.IntN(2)]
		s.Apply(outcome(k))

		snap := s.Snapshot()
		if snap.Multiplier != 1 || snap.MultiplierProgress != 0 {
			t.Fatalf("%v left multiplier %d progress %d", k, snap.Multiplier, snap.MultiplierProgress)
		}
		if k == collision.OutcomeMissed && snap.Score != before {
			t.Fatalf("miss changed score %d -> %d", before, snap.Score)
		}
		if snap.Score < 0 {
			t.Fatalf("negative score %d", snap.Score)
		}
	}
}

func TestCloseCallAdvancesStreak(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 5 {
		s.Apply(outcome(collision.OutcomeCloseCall))
	}
	snap := s.Snapshot()
	if snap.Score != 250 || snap.Multiplier != 2 || snap.CloseCalls != 5 {
		t.Errorf("unexpected close-call state %+v", snap)
	}
	if snap.CubesCollected != 0 {
		t.Error("close calls must not count as collected cubes")
	}
}

func TestPortalDoesNotScore(t *testing.T) {
	s := NewState(DefaultConfig())
	if s.Apply(outcome(collision.OutcomePortalEntered)) {
		t.Error("portal entry should not change score state")
	}
	if s.Snapshot() != (Snapshot{Multiplier: 1}) {
		t.Errorf("state changed: %+v", s.Snapshot())
	}
}

func TestReset(t *testing.T) {
	s := NewState(DefaultConfig())
	for range 7 {
		s.Apply(outcome(collision.OutcomeCollected))
	}
	s.Reset()
	if s.Snapshot() != (Snapshot{Multiplier: 1}) {
		t.Errorf("reset state %+v", s.Snapshot())
	}
}
