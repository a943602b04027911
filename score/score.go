package score

import (
	"math/bits"

	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/parameter"
)

// Config holds scoring values
type Config struct {
	CubeValue           int `toml:"cube_value"`
	MultiplierThreshold int `toml:"multiplier_threshold"`
	MaxMultiplier       int `toml:"max_multiplier"`
	CollisionPenalty    int `toml:"collision_penalty"`
	CloseCallBonus      int `toml:"close_call_bonus"`
}

// DefaultConfig returns the stock values
func DefaultConfig() Config {
	return Config{
		CubeValue:           parameter.ScoreCubeValue,
		MultiplierThreshold: parameter.ScoreMultiplierThreshold,
		MaxMultiplier:       parameter.ScoreMaxMultiplier,
		CollisionPenalty:    parameter.ScoreCollisionPenalty,
		CloseCallBonus:      parameter.ScoreCloseCallBonus,
	}
}

// Snapshot is a copy of score state for UI and spectators
type Snapshot struct {
	Score              int `json:"score"`
	Multiplier         int `json:"multiplier"`
	MultiplierProgress int `json:"multiplier_progress"`
	CubesCollected     int `json:"cubes_collected"`
	CloseCalls         int `json:"close_calls"`
	Collisions         int `json:"collisions"`
	Misses             int `json:"misses"`
}

// State is the score and multiplier state machine
//
// Streak rule: an outcome that advances progress scores at the current multiplier,
// then increments progress, then doubles the multiplier on reaching the threshold
type State struct {
	cfg  Config
	snap Snapshot
}

// NewState creates a state at zero score, multiplier 1
func NewState(cfg Config) *State {
	if cfg.MultiplierThreshold < 1 {
		cfg.MultiplierThreshold = 1
	}
	if cfg.MaxMultiplier < 1 {
		cfg.MaxMultiplier = 1
	}
	// Round down so doubling lands exactly on the cap
	cfg.MaxMultiplier = 1 << (bits.Len(uint(cfg.MaxMultiplier)) - 1)
	s := &State{cfg: cfg}
	s.Reset()
	return s
}

// Apply transitions state for one outcome and reports whether anything changed
func (s *State) Apply(o collision.Outcome) bool {
	switch o.Kind {
	case collision.OutcomeCollected:
		s.snap.Score += s.cfg.CubeValue * s.snap.Multiplier
		s.snap.CubesCollected++
		s.advance()

	case collision.OutcomeCloseCall:
		s.snap.Score += s.cfg.CloseCallBonus
		s.snap.CloseCalls++
		s.advance()

	case collision.OutcomeMissed:
		s.snap.Misses++
		s.breakStreak()

	case collision.OutcomeCollided:
		s.snap.Score = max(0, s.snap.Score-s.cfg.CollisionPenalty)
		s.snap.Collisions++
		s.breakStreak()

	default:
		return false
	}
	return true
}

// advance increments progress and doubles the multiplier on rollover, capped at MaxMultiplier
func (s *State) advance() {
	s.snap.MultiplierProgress++
	if s.snap.MultiplierProgress < s.cfg.MultiplierThreshold {
		return
	}
	s.snap.MultiplierProgress = 0
	s.snap.Multiplier = min(s.snap.Multiplier*2, s.cfg.MaxMultiplier)
}

func (s *State) breakStreak() {
	s.snap.Multiplier = 1
	s.snap.MultiplierProgress = 0
}

// Snapshot returns a copy of the current state
func (s *State) Snapshot() Snapshot {
	return s.snap
}

// Score returns the current score
func (s *State) Score() int {
	return s.snap.Score
}

// Multiplier returns the current multiplier
func (s *State) Multiplier() int {
	return s.snap.Multiplier
}

// Reset returns to the session start state
func (s *State) Reset() {
	s.snap = Snapshot{Multiplier: 1}
}
