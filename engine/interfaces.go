package engine

import (
	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/entity"
)

// AudioSource supplies the per-frame frequency spectrum
// FrequencySnapshot returns byte magnitudes per bin; nil or short slices are tolerated
type AudioSource interface {
	FrequencySnapshot() []uint8
	IsPlaying() bool
}

// PlayerSource supplies the vehicle position each frame
type PlayerSource interface {
	Position() collision.Player
	Lane() int
}

// VisualPhase is the lifecycle step a Visual describes
type VisualPhase uint8

const (
	PhaseSpawn VisualPhase = iota
	PhaseUpdate
	PhaseDespawn
)

func (p VisualPhase) String() string {
	switch p {
	case PhaseSpawn:
		return "spawn"
	case PhaseUpdate:
		return "update"
	case PhaseDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

// Visual is the per-entity render state handed to a VisualHook
// ID and Gen key a visual; a recycled entity keeps its ID with a new Gen
type Visual struct {
	Kind    entity.Kind `json:"-"`
	ID      uint64      `json:"id"`
	Gen     uint32      `json:"gen"`
	Lane    int         `json:"lane"`
	X       float64     `json:"x"`
	Z       float64     `json:"z"`
	Opacity float64     `json:"opacity"`
	Pulse   float64     `json:"pulse"`
	Phase   VisualPhase `json:"-"`
}

// VisualHook receives spawn, update and despawn notifications
// Called synchronously from Update; implementations must not call back into the engine
type VisualHook interface {
	OnVisual(v Visual)
}

// VisualHookFunc adapts a function to VisualHook
type VisualHookFunc func(v Visual)

func (f VisualHookFunc) OnVisual(v Visual) { f(v) }

// staticPlayer is the fallback PlayerSource: centre lane at the origin
type staticPlayer struct {
	lane int
	x    float64
}

func (p staticPlayer) Position() collision.Player {
	return collision.Player{X: p.x, Z: 0, Lane: p.lane}
}

func (p staticPlayer) Lane() int { return p.lane }
