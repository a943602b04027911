package spawn

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/parameter"
	"github.com/lixenwraith/beat-runner/rhythm"
)

// ErrInvalidLaneCount is returned when OnBeat receives a lane count it was not built for
var ErrInvalidLaneCount = errors.New("invalid lane count")

// Rand is the randomness used for lane and kind decisions
// *math/rand/v2.Rand satisfies it
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Command instructs the caller to acquire and activate one pooled entity
type Command struct {
	Kind     entity.Kind
	Lane     int
	BeatTime time.Duration
}

// Config holds spawn arbitration tuning
type Config struct {
	LaneCount    int           `toml:"-"`
	BeatsAhead   int           `toml:"-"`
	BeatInterval time.Duration `toml:"-"`

	MinLaneInterval  time.Duration `toml:"min_lane_interval"`
	Bucket           time.Duration `toml:"bucket"`
	GuardWindow      time.Duration `toml:"guard_window"`
	ForceCubeAfter   int           `toml:"force_cube_after"`
	CubeChance       float64       `toml:"cube_chance"`
	BonusCubeChance  float64       `toml:"bonus_cube_chance"`
	FastBonusBoost   float64       `toml:"fast_bonus_boost"`
	MaxObstaclesFast int           `toml:"max_obstacles_fast"`
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		LaneCount:        parameter.LaneCount,
		BeatsAhead:       parameter.BeatsAhead,
		BeatInterval:     parameter.BeatInterval(parameter.DefaultBPM),
		MinLaneInterval:  parameter.SpawnMinLaneInterval,
		Bucket:           parameter.SpawnBucket,
		GuardWindow:      parameter.SpawnGuardWindow,
		ForceCubeAfter:   parameter.SpawnForceCubeAfter,
		CubeChance:       parameter.SpawnCubeChance,
		BonusCubeChance:  parameter.SpawnBonusCubeChance,
		FastBonusBoost:   parameter.SpawnFastBonusBoost,
		MaxObstaclesFast: parameter.SpawnMaxObstaclesFast,
	}
}

// Lead returns how far ahead of now a primary spawn is scheduled
func (c Config) Lead() time.Duration {
	return time.Duration(c.BeatsAhead) * c.BeatInterval
}

// record is one emitted spawn kept for time-collision checks
type record struct {
	lane     int
	beatTime time.Duration
}

// Arbiter decides what each beat spawns and where
//
// Lane eligibility:
//   - cooldown: a lane is blocked for MinLaneInterval after its last spawn
//   - guard: a lane is blocked if another spawn in it lands within GuardWindow of the candidate beat time
//
// Single-threaded: owned by the frame loop
type Arbiter struct {
	cfg   Config
	rng   Rand
	tempo rhythm.TempoSource

	laneLast []time.Duration
	laneUsed []bool

	// Spawn history bucketed by beatTime/Bucket
	history map[int64][]record

	obstaclesSinceCube int
	portalDone         bool

	// Scratch reused across beats
	eligible []int
	cmds     []Command
}

// NewArbiter creates an arbiter; tempo may be nil for fixed normal tempo
func NewArbiter(cfg Config, rng Rand, tempo rhythm.TempoSource) *Arbiter {
	if cfg.Bucket <= 0 {
		cfg.Bucket = parameter.SpawnBucket
	}
	lanes := max(cfg.LaneCount, 0)
	return &Arbiter{
		cfg:      cfg,
		rng:      rng,
		tempo:    tempo,
		laneLast: make([]time.Duration, lanes),
		laneUsed: make([]bool, lanes),
		history:  make(map[int64][]record),
		eligible: make([]int, 0, lanes),
	}
}

// OnBeat returns the spawn commands for one beat
// An empty result means every lane was blocked; the beat is skipped, not failed
// The returned slice is reused on the next call
func (a *Arbiter) OnBeat(ev rhythm.BeatEvent, laneCount int, now time.Duration) ([]Command, error) {
	if laneCount <= 0 || laneCount != a.cfg.LaneCount {
		return nil, fmt.Errorf("%w: got %d, configured %d", ErrInvalidLaneCount, laneCount, a.cfg.LaneCount)
	}

	a.cmds = a.cmds[:0]
	a.prune(now)

	beatTime := now + a.cfg.Lead()

	if !a.portalDone {
		a.portalDone = true
		center := laneCount / 2
		a.emit(entity.KindPortal, center, beatTime, now)
	}

	a.collectEligible(beatTime, now)
	if len(a.eligible) == 0 {
		return a.cmds, nil
	}

	if a.chooseCube() {
		lane := a.eligible[0]
		a.emit(entity.KindCube, lane, beatTime, now)
		a.obstaclesSinceCube = 0
		a.maybeBonusCube(lane, beatTime, now)
		return a.cmds, nil
	}

	count := 1
	if a.isFast() {
		count = max(a.cfg.MaxObstaclesFast, 1)
	}
	// Always leave one lane open
	if laneCount > 1 {
		count = min(count, laneCount-1)
	}
	count = min(count, len(a.eligible))

	for _, lane := range a.eligible[:count] {
		a.emit(entity.KindObstacle, lane, beatTime, now)
	}
	a.obstaclesSinceCube++
	return a.cmds, nil
}

// chooseCube applies the forced-cube rule, then the cube chance
func (a *Arbiter) chooseCube() bool {
	if a.cfg.ForceCubeAfter > 0 && a.obstaclesSinceCube >= a.cfg.ForceCubeAfter {
		return true
	}
	return a.rng.Float64() < a.cfg.CubeChance
}

// maybeBonusCube adds a second cube half a beat later in another lane
func (a *Arbiter) maybeBonusCube(primary int, beatTime, now time.Duration) {
	chance := a.cfg.BonusCubeChance
	if a.isFast() {
		chance += a.cfg.FastBonusBoost
	}
	if a.rng.Float64() >= chance {
		return
	}

	bonusTime := beatTime + a.cfg.BeatInterval/2
	for _, lane := range a.eligible[1:] {
		if lane == primary {
			continue
		}
		if a.guardConflict(lane, bonusTime) {
			continue
		}
		a.emit(entity.KindCube, lane, bonusTime, now)
		return
	}
}

// collectEligible fills a.eligible in scan order from a random start lane
func (a *Arbiter) collectEligible(beatTime, now time.Duration) {
	a.eligible = a.eligible[:0]
	n := a.cfg.LaneCount
	start := a.rng.IntN(n)
	for i := range n {
		lane := (start + i) % n
		if a.coolingDown(lane, now) || a.guardConflict(lane, beatTime) {
			continue
		}
		a.eligible = append(a.eligible, lane)
	}
}

func (a *Arbiter) coolingDown(lane int, now time.Duration) bool {
	return a.laneUsed[lane] && now-a.laneLast[lane] < a.cfg.MinLaneInterval
}

// guardConflict scans the buckets overlapping [beatTime-guard, beatTime+guard]
func (a *Arbiter) guardConflict(lane int, beatTime time.Duration) bool {
	guard := a.cfg.GuardWindow
	if guard <= 0 {
		return false
	}
	lo := a.key(beatTime - guard)
	hi := a.key(beatTime + guard)
	for k := lo; k <= hi; k++ {
		for _, r := range a.history[k] {
			if r.lane != lane {
				continue
			}
			d := r.beatTime - beatTime
			if d < 0 {
				d = -d
			}
			if d < guard {
				return true
			}
		}
	}
	return false
}

func (a *Arbiter) emit(kind entity.Kind, lane int, beatTime, now time.Duration) {
	a.cmds = append(a.cmds, Command{Kind: kind, Lane: lane, BeatTime: beatTime})
	a.laneLast[lane] = now
	a.laneUsed[lane] = true
	k := a.key(beatTime)
	a.history[k] = append(a.history[k], record{lane: lane, beatTime: beatTime})
}

// prune drops buckets that can no longer conflict with a spawn scheduled after now
func (a *Arbiter) prune(now time.Duration) {
	floor := a.key(now-a.cfg.GuardWindow) - 1
	for k := range a.history {
		if k < floor {
			delete(a.history, k)
		}
	}
}

func (a *Arbiter) key(t time.Duration) int64 {
	k := int64(t / a.cfg.Bucket)
	// Floor division for negative times
	if t < 0 && t%a.cfg.Bucket != 0 {
		k--
	}
	return k
}

func (a *Arbiter) isFast() bool {
	return a.tempo != nil && a.tempo.IsFastTempo()
}

// ObstaclesSinceCube returns the current obstacle streak
func (a *Arbiter) ObstaclesSinceCube() int {
	return a.obstaclesSinceCube
}

// PortalEmitted reports whether the first-beat portal has been issued
func (a *Arbiter) PortalEmitted() bool {
	return a.portalDone
}

// HistoryBuckets returns the number of live history buckets
func (a *Arbiter) HistoryBuckets() int {
	return len(a.history)
}

// Reset returns the arbiter to a fresh session, re-arming the portal
func (a *Arbiter) Reset() {
	clear(a.laneLast)
	clear(a.laneUsed)
	clear(a.history)
	a.obstaclesSinceCube = 0
	a.portalDone = false
	a.cmds = a.cmds[:0]
	a.eligible = a.eligible[:0]
}
