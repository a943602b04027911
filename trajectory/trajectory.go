package trajectory

import (
	"math"
	"time"

	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/parameter"
)

// Config holds track geometry and timing for placement
type Config struct {
	BeatsAhead   int           `toml:"-"`
	BeatInterval time.Duration `toml:"-"`
	LaneCount    int           `toml:"-"`
	LaneWidth    float64       `toml:"-"`

	SpawnDistance   float64 `toml:"spawn_distance"`
	FadeInDistance  float64 `toml:"fade_in_distance"`
	FadeDistance    float64 `toml:"fade_distance"`
	FadeBand        float64 `toml:"fade_band"`
	DespawnDistance float64 `toml:"despawn_distance"`
}

// DefaultConfig returns the stock geometry
func DefaultConfig() Config {
	return Config{
		BeatsAhead:      parameter.BeatsAhead,
		BeatInterval:    parameter.BeatInterval(parameter.DefaultBPM),
		LaneCount:       parameter.LaneCount,
		LaneWidth:       parameter.LaneWidth,
		SpawnDistance:   parameter.SpawnDistance,
		FadeInDistance:  parameter.FadeInDistance,
		FadeDistance:    parameter.FadeDistance,
		FadeBand:        parameter.FadeBand,
		DespawnDistance: parameter.DespawnDistance,
	}
}

// Placement is the per-frame output for one entity
type Placement struct {
	Distance float64 // Positive ahead of the player, negative behind
	Opacity  float64 // [0,1]
	Pulse    float64 // [0.5,1.5]
	Despawn  bool
}

// Model maps beat time and playback time to track position and visual envelopes
type Model struct {
	cfg   Config
	total float64 // Travel time in ms from spawn distance to the player
}

// NewModel creates a model; a non-positive travel time falls back to defaults
func NewModel(cfg Config) *Model {
	total := float64(time.Duration(cfg.BeatsAhead)*cfg.BeatInterval) / float64(time.Millisecond)
	if total <= 0 {
		def := DefaultConfig()
		total = float64(time.Duration(def.BeatsAhead)*def.BeatInterval) / float64(time.Millisecond)
	}
	return &Model{cfg: cfg, total: total}
}

// Config returns the model geometry
func (m *Model) Config() Config {
	return m.cfg
}

// Distance returns signed distance from the player; zero exactly at beatTime
func (m *Model) Distance(beatTime, now time.Duration) float64 {
	timeToBeat := float64(beatTime-now) / float64(time.Millisecond)
	return timeToBeat / m.total * m.cfg.SpawnDistance
}

// Place computes distance, opacity, pulse and despawn eligibility
func (m *Model) Place(beatTime, now time.Duration) Placement {
	d := m.Distance(beatTime, now)
	return Placement{
		Distance: d,
		Opacity:  m.Opacity(d),
		Pulse:    m.Pulse(beatTime, now),
		Despawn:  d < -m.cfg.DespawnDistance,
	}
}

// Opacity is the fade envelope over signed distance
//   - far: smoothstep fade-in from SpawnDistance down to FadeInDistance
//   - near: fully opaque
//   - passed beyond FadeDistance: linear fade to zero over FadeBand
func (m *Model) Opacity(d float64) float64 {
	c := m.cfg
	switch {
	case d > c.FadeInDistance:
		span := c.SpawnDistance - c.FadeInDistance
		if span <= 0 {
			return 1
		}
		return Smoothstep((c.SpawnDistance - d) / span)
	case d >= -c.FadeDistance:
		return 1
	default:
		if c.FadeBand <= 0 {
			return 0
		}
		return clamp(1-(-d-c.FadeDistance)/c.FadeBand, 0, 1)
	}
}

// Pulse is the sinusoidal scale envelope driven by beat progress
func (m *Model) Pulse(beatTime, now time.Duration) float64 {
	timeToBeat := float64(beatTime-now) / float64(time.Millisecond)
	progress := 1 - timeToBeat/m.total
	if progress > 1 {
		progress = 1
	}
	return clamp(0.5+math.Sin(2*math.Pi*progress)*0.5, 0.5, 1.5)
}

// Apply writes the placement and lane position into an entity
func (m *Model) Apply(e entity.Entity, now time.Duration) Placement {
	b := e.Common()
	p := m.Place(b.BeatTime, now)
	b.Distance = p.Distance
	b.Z = WorldZ(p.Distance)
	b.X = LaneX(b.Lane, m.cfg.LaneCount, m.cfg.LaneWidth)
	b.Opacity = p.Opacity
	b.Pulse = p.Pulse
	return p
}

// WorldZ converts track distance to the world axis: ahead is negative Z, passed is positive
func WorldZ(distance float64) float64 {
	return -distance
}

// LaneX returns the lateral centre of a lane, symmetric about zero
func LaneX(lane, laneCount int, laneWidth float64) float64 {
	return (float64(lane) - float64(laneCount-1)/2) * laneWidth
}

// Smoothstep is the cubic ease t²(3-2t) over a clamped t
func Smoothstep(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
