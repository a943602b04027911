package engine

import (
	"time"

	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/parameter"
	"github.com/lixenwraith/beat-runner/rhythm"
	"github.com/lixenwraith/beat-runner/score"
	"github.com/lixenwraith/beat-runner/spawn"
	"github.com/lixenwraith/beat-runner/trajectory"
)

// PoolSize is the prefill and hard cap of one entity pool
type PoolSize struct {
	Prefill int `toml:"prefill"`
	Cap     int `toml:"cap"`
}

// PoolConfig sizes the per-kind pools
type PoolConfig struct {
	Cube     PoolSize `toml:"cube"`
	Obstacle PoolSize `toml:"obstacle"`
	Portal   PoolSize `toml:"portal"`
	Burst    PoolSize `toml:"burst"`
}

// Config aggregates component tuning
// Track-wide fields are copied into the component configs by Resolved
type Config struct {
	LaneCount  int
	LaneWidth  float64
	BPM        float64
	BeatsAhead int
	TrackSpeed float64 // World units per second, HUD distance only
	BurstLife  time.Duration

	Detector   rhythm.DetectorConfig
	Tempo      rhythm.TempoConfig
	Spawn      spawn.Config
	Trajectory trajectory.Config
	Collision  collision.Config
	Score      score.Config
	Pools      PoolConfig
}

// DefaultConfig returns the stock engine configuration
func DefaultConfig() Config {
	return Config{
		LaneCount:  parameter.LaneCount,
		LaneWidth:  parameter.LaneWidth,
		BPM:        parameter.DefaultBPM,
		BeatsAhead: parameter.BeatsAhead,
		TrackSpeed: parameter.TrackSpeed,
		BurstLife:  parameter.BurstLife,
		Detector:   rhythm.DefaultDetectorConfig(),
		Tempo:      rhythm.DefaultTempoConfig(),
		Spawn:      spawn.DefaultConfig(),
		Trajectory: trajectory.DefaultConfig(),
		Collision:  collision.DefaultConfig(),
		Score:      score.DefaultConfig(),
		Pools: PoolConfig{
			Cube:     PoolSize{Prefill: parameter.PoolCubePrefill, Cap: parameter.PoolCubeCap},
			Obstacle: PoolSize{Prefill: parameter.PoolObstaclePrefill, Cap: parameter.PoolObstacleCap},
			Portal:   PoolSize{Prefill: parameter.PoolPortalPrefill, Cap: parameter.PoolPortalCap},
			Burst:    PoolSize{Prefill: parameter.PoolBurstPrefill, Cap: parameter.PoolBurstCap},
		},
	}
}

// BeatInterval returns the gap between beats at the configured BPM
func (c Config) BeatInterval() time.Duration {
	return parameter.BeatInterval(c.BPM)
}

// Resolved returns a copy with track-wide fields propagated to every component
func (c Config) Resolved() Config {
	interval := c.BeatInterval()

	c.Spawn.LaneCount = c.LaneCount
	c.Spawn.BeatsAhead = c.BeatsAhead
	c.Spawn.BeatInterval = interval

	c.Trajectory.LaneCount = c.LaneCount
	c.Trajectory.LaneWidth = c.LaneWidth
	c.Trajectory.BeatsAhead = c.BeatsAhead
	c.Trajectory.BeatInterval = interval

	c.Collision.LaneCount = c.LaneCount
	c.Collision.LaneWidth = c.LaneWidth
	return c
}
