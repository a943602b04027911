package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/beat-runner/audio"
	"github.com/lixenwraith/beat-runner/broadcast"
	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/engine"
	"github.com/lixenwraith/beat-runner/input"
	"github.com/lixenwraith/beat-runner/parameter"
	"github.com/lixenwraith/beat-runner/rhythm"
	"github.com/lixenwraith/beat-runner/score"
	"github.com/lixenwraith/beat-runner/spawn"
	"github.com/lixenwraith/beat-runner/trajectory"
	"github.com/lixenwraith/beat-runner/vehicle"
)

var (
	ErrInvalid    = errors.New("invalid config")
	ErrUnknownKey = errors.New("unknown config key")
)

// TrackConfig holds the geometry and timing shared by every component
type TrackConfig struct {
	LaneCount  int           `toml:"lane_count"`
	LaneWidth  float64       `toml:"lane_width"`
	BPM        float64       `toml:"bpm"`
	BeatsAhead int           `toml:"beats_ahead"`
	Speed      float64       `toml:"speed"`
	BurstLife  time.Duration `toml:"burst_life"`
}

// Config is the full game configuration as read from a TOML file
// Missing keys keep their defaults; durations are strings like "250ms"
type Config struct {
	Track      TrackConfig           `toml:"track"`
	Rhythm     rhythm.DetectorConfig `toml:"rhythm"`
	Tempo      rhythm.TempoConfig    `toml:"tempo"`
	Spawn      spawn.Config          `toml:"spawn"`
	Trajectory trajectory.Config     `toml:"trajectory"`
	Collision  collision.Config      `toml:"collision"`
	Score      score.Config          `toml:"score"`
	Pool       engine.PoolConfig     `toml:"pool"`
	Audio      audio.Config          `toml:"audio"`
	Vehicle    vehicle.Config        `toml:"vehicle"`
	Input      input.Config          `toml:"input"`
	Spectator  broadcast.Config      `toml:"spectator"`
}

// Default returns the stock configuration
func Default() Config {
	ec := engine.DefaultConfig()
	return Config{
		Track: TrackConfig{
			LaneCount:  ec.LaneCount,
			LaneWidth:  ec.LaneWidth,
			BPM:        ec.BPM,
			BeatsAhead: ec.BeatsAhead,
			Speed:      ec.TrackSpeed,
			BurstLife:  ec.BurstLife,
		},
		Rhythm:     ec.Detector,
		Tempo:      ec.Tempo,
		Spawn:      ec.Spawn,
		Trajectory: ec.Trajectory,
		Collision:  ec.Collision,
		Score:      ec.Score,
		Pool:       ec.Pools,
		Audio:      audio.DefaultConfig(),
		Vehicle:    vehicle.DefaultConfig(),
		Input:      input.DefaultConfig(),
		Spectator:  broadcast.DefaultConfig(),
	}
}

// Load reads path over the defaults; an empty path returns the defaults
// Keys that match no field are rejected so typos surface
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%w: %s", ErrUnknownKey, undecoded[0])
	}
	return cfg, nil
}

// Encode writes cfg as TOML
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ApplyEnv overrides selected fields from BEAT_RUNNER_* environment variables
// Unparseable values are ignored
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BEAT_RUNNER_BPM"); v != "" {
		if bpm, err := strconv.ParseFloat(v, 64); err == nil && bpm > 0 {
			c.Track.BPM = bpm
		}
	}
	if v := os.Getenv("BEAT_RUNNER_LANES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Track.LaneCount = n
		}
	}
	if v := os.Getenv("BEAT_RUNNER_BEAT_THRESHOLD"); v != "" {
		if th, err := strconv.ParseFloat(v, 64); err == nil {
			c.Rhythm.Threshold = th
		}
	}
	if v := os.Getenv("BEAT_RUNNER_SPECTATOR_ADDR"); v != "" {
		c.Spectator.Addr = v
	}
	audio.ApplyEnv(&c.Audio)
}

// Validate checks every section, wrapping ErrInvalid with the offending key
func (c Config) Validate() error {
	t := c.Track
	switch {
	case t.LaneCount < 1:
		return invalid("track.lane_count", t.LaneCount)
	case t.LaneWidth <= 0:
		return invalid("track.lane_width", t.LaneWidth)
	case t.BPM <= 0:
		return invalid("track.bpm", t.BPM)
	case t.BeatsAhead < 1:
		return invalid("track.beats_ahead", t.BeatsAhead)
	case t.Speed < 0:
		return invalid("track.speed", t.Speed)
	}

	r := c.Rhythm
	switch {
	case r.BandLow < 0 || r.BandHigh < r.BandLow:
		return invalid("rhythm.band_low/band_high", fmt.Sprintf("%d..%d", r.BandLow, r.BandHigh))
	case r.BandHigh >= c.Audio.FFTSize/2:
		return invalid("rhythm.band_high", r.BandHigh)
	case r.CooldownNormal < 0 || r.CooldownFast < 0:
		return invalid("rhythm.cooldown", r.CooldownNormal)
	}

	if c.Tempo.HistorySize < 1 {
		return invalid("tempo.history_size", c.Tempo.HistorySize)
	}
	if c.Tempo.FastPeakDivisor < 1 {
		return invalid("tempo.fast_peak_divisor", c.Tempo.FastPeakDivisor)
	}

	s := c.Spawn
	switch {
	case s.Bucket <= 0:
		return invalid("spawn.bucket", s.Bucket)
	case s.GuardWindow < 0:
		return invalid("spawn.guard_window", s.GuardWindow)
	case s.MinLaneInterval < 0:
		return invalid("spawn.min_lane_interval", s.MinLaneInterval)
	case !unit(s.CubeChance):
		return invalid("spawn.cube_chance", s.CubeChance)
	case !unit(s.BonusCubeChance):
		return invalid("spawn.bonus_cube_chance", s.BonusCubeChance)
	case s.MaxObstaclesFast < 1:
		return invalid("spawn.max_obstacles_fast", s.MaxObstaclesFast)
	}

	tr := c.Trajectory
	switch {
	case tr.SpawnDistance <= 0:
		return invalid("trajectory.spawn_distance", tr.SpawnDistance)
	case tr.FadeBand <= 0:
		return invalid("trajectory.fade_band", tr.FadeBand)
	case tr.DespawnDistance <= 0:
		return invalid("trajectory.despawn_distance", tr.DespawnDistance)
	}

	if c.Collision.CollectDistance < 0 || c.Collision.ObstacleDistance < 0 ||
		c.Collision.CloseCallDistance < 0 || c.Collision.PortalDistance < 0 {
		return invalid("collision", "negative distance")
	}

	sc := c.Score
	switch {
	case sc.MultiplierThreshold < 1:
		return invalid("score.multiplier_threshold", sc.MultiplierThreshold)
	case sc.MaxMultiplier < 1 || sc.MaxMultiplier&(sc.MaxMultiplier-1) != 0:
		return invalid("score.max_multiplier", sc.MaxMultiplier)
	case sc.CollisionPenalty < 0:
		return invalid("score.collision_penalty", sc.CollisionPenalty)
	}

	pools := map[string]engine.PoolSize{
		"pool.cube":     c.Pool.Cube,
		"pool.obstacle": c.Pool.Obstacle,
		"pool.portal":   c.Pool.Portal,
		"pool.burst":    c.Pool.Burst,
	}
	for key, p := range pools {
		if p.Cap < 1 || p.Prefill < 0 || p.Prefill > p.Cap {
			return invalid(key, fmt.Sprintf("prefill %d cap %d", p.Prefill, p.Cap))
		}
	}

	if c.Vehicle.StartLane < 0 || c.Vehicle.StartLane >= t.LaneCount {
		return invalid("vehicle.start_lane", c.Vehicle.StartLane)
	}
	if c.Vehicle.LaneChangeSpeed <= 0 || c.Vehicle.LaneChangeSpeed > 1 {
		return invalid("vehicle.lane_change_speed", c.Vehicle.LaneChangeSpeed)
	}
	if c.Input.LaneDebounce < 0 {
		return invalid("input.lane_debounce", c.Input.LaneDebounce)
	}
	if c.Spectator.SendBuffer < 1 {
		return invalid("spectator.send_buffer", c.Spectator.SendBuffer)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func invalid(key string, val any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalid, key, val)
}

func unit(p float64) bool {
	return p >= 0 && p <= 1
}

// Engine builds the resolved engine configuration
func (c Config) Engine() engine.Config {
	return engine.Config{
		LaneCount:  c.Track.LaneCount,
		LaneWidth:  c.Track.LaneWidth,
		BPM:        c.Track.BPM,
		BeatsAhead: c.Track.BeatsAhead,
		TrackSpeed: c.Track.Speed,
		BurstLife:  c.Track.BurstLife,
		Detector:   c.Rhythm,
		Tempo:      c.Tempo,
		Spawn:      c.Spawn,
		Trajectory: c.Trajectory,
		Collision:  c.Collision,
		Score:      c.Score,
		Pools:      c.Pool,
	}.Resolved()
}

// BeatInterval is the spawn lead unit at the configured BPM
func (c Config) BeatInterval() time.Duration {
	return parameter.BeatInterval(c.Track.BPM)
}
