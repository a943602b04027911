package vehicle

import (
	"math"
	"time"

	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/parameter"
	"github.com/lixenwraith/beat-runner/trajectory"
)

// Config holds lane-change feel
type Config struct {
	LaneChangeSpeed float64 `toml:"lane_change_speed"` // Fraction of the remaining gap closed per 60Hz frame
	StartLane       int     `toml:"start_lane"`
}

// DefaultConfig returns the stock handling
func DefaultConfig() Config {
	return Config{
		LaneChangeSpeed: parameter.VehicleLaneChangeSpeed,
		StartLane:       parameter.VehicleStartLane,
	}
}

// Vehicle is the player car: a target lane and a lateral position easing toward it
// Lane reports the target lane; collision tests use the eased X
type Vehicle struct {
	cfg       Config
	laneCount int
	laneWidth float64

	lane int
	x    float64
}

// New places the vehicle at rest in the configured start lane
func New(cfg Config, laneCount int, laneWidth float64) *Vehicle {
	v := &Vehicle{cfg: cfg, laneCount: max(laneCount, 1), laneWidth: laneWidth}
	v.Reset()
	return v
}

// Reset snaps back to the start lane
func (v *Vehicle) Reset() {
	v.lane = min(max(v.cfg.StartLane, 0), v.laneCount-1)
	v.x = v.targetX()
}

// MoveLeft shifts the target one lane left; returns false at the edge
func (v *Vehicle) MoveLeft() bool {
	return v.SetLane(v.lane - 1)
}

// MoveRight shifts the target one lane right; returns false at the edge
func (v *Vehicle) MoveRight() bool {
	return v.SetLane(v.lane + 1)
}

// SetLane targets lane if it exists
func (v *Vehicle) SetLane(lane int) bool {
	if lane < 0 || lane >= v.laneCount || lane == v.lane {
		return false
	}
	v.lane = lane
	return true
}

// Step eases x toward the target lane
// The per-frame factor is tuned at 60Hz and rescaled so travel is frame-rate independent
func (v *Vehicle) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	frames := dt.Seconds() * parameter.VehicleFrameRate
	keep := math.Pow(1-v.cfg.LaneChangeSpeed, frames)
	target := v.targetX()
	v.x = target + (v.x-target)*keep
}

func (v *Vehicle) targetX() float64 {
	return trajectory.LaneX(v.lane, v.laneCount, v.laneWidth)
}

// Lane returns the target lane
func (v *Vehicle) Lane() int {
	return v.lane
}

// X returns the eased lateral position
func (v *Vehicle) X() float64 {
	return v.x
}

// Position returns the collision-plane position; the player sits at Z = 0
func (v *Vehicle) Position() collision.Player {
	return collision.Player{X: v.x, Z: 0, Lane: v.lane}
}
