package collision

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/parameter"
)

// ErrInvalidLane is returned when the player or an entity sits outside [0, laneCount)
var ErrInvalidLane = errors.New("invalid lane")

// OutcomeKind classifies a resolved interaction
type OutcomeKind uint8

const (
	OutcomeCollected OutcomeKind = iota
	OutcomeCollided
	OutcomeCloseCall
	OutcomePortalEntered
	OutcomeMissed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCollected:
		return "collected"
	case OutcomeCollided:
		return "collided"
	case OutcomeCloseCall:
		return "close_call"
	case OutcomePortalEntered:
		return "portal_entered"
	case OutcomeMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// Outcome is one gameplay result delivered to scoring and the event stream
type Outcome struct {
	Kind   OutcomeKind
	Entity entity.Entity
	Lane   int
	At     time.Duration
}

// Player is the vehicle position on the collision plane
type Player struct {
	X, Z float64
	Lane int
}

// Config holds collision radii and the obstacle cooldown
type Config struct {
	LaneCount int     `toml:"-"`
	LaneWidth float64 `toml:"-"`

	CollectDistance   float64       `toml:"collect_distance"`
	ObstacleDistance  float64       `toml:"obstacle_distance"`
	CloseCallDistance float64       `toml:"close_call_distance"`
	PortalDistance    float64       `toml:"portal_distance"`
	Cooldown          time.Duration `toml:"cooldown"`
}

// DefaultConfig returns the stock radii
func DefaultConfig() Config {
	return Config{
		LaneCount:         parameter.LaneCount,
		LaneWidth:         parameter.LaneWidth,
		CollectDistance:   parameter.CollisionCollectDistance,
		ObstacleDistance:  parameter.CollisionObstacleDistance,
		CloseCallDistance: parameter.CollisionCloseCallDistance,
		PortalDistance:    parameter.CollisionPortalDistance,
		Cooldown:          parameter.CollisionCooldown,
	}
}

// Resolver tests the player against active entities and sets one-shot flags
// Single-threaded: owned by the frame loop
type Resolver struct {
	cfg Config

	lastCollision time.Duration
	hasCollision  bool

	out []Outcome
}

// NewResolver creates a resolver with no collision cooldown pending
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve evaluates cubes, then obstacles, then portals
// Resolved entities are flagged so the same outcome is never produced twice
// On ErrInvalidLane nothing is flagged and no outcomes are returned
// The returned slice is reused on the next call
func (r *Resolver) Resolve(player Player, cubes []*entity.Cube, obstacles []*entity.Obstacle, portals []*entity.Portal, now time.Duration) ([]Outcome, error) {
	if err := r.validate(player, cubes, obstacles, portals); err != nil {
		return nil, err
	}

	r.out = r.out[:0]
	halfLane := r.cfg.LaneWidth / 2

	for _, c := range cubes {
		if c.Collected || !c.IsActive() {
			continue
		}
		if math.Abs(c.Z-player.Z) < r.cfg.CollectDistance && math.Abs(c.X-player.X) < halfLane {
			c.Collected = true
			r.emit(OutcomeCollected, c, now)
		}
	}

	cooling := r.hasCollision && now < r.lastCollision+r.cfg.Cooldown
	for _, o := range obstacles {
		if !o.IsActive() {
			continue
		}
		sameLane := math.Abs(o.X-player.X) < halfLane
		if !o.Collided && sameLane && math.Abs(o.Z-player.Z) < r.cfg.ObstacleDistance {
			if cooling {
				// Overlap forgiven by the cooldown is not a near miss
				o.CloseCallTriggered = true
				continue
			}
			o.Collided = true
			r.lastCollision = now
			r.hasCollision = true
			cooling = true
			r.emit(OutcomeCollided, o, now)
			continue
		}
		// Close call: already passed the player in the same lane without a hit
		if !o.Collided && !o.CloseCallTriggered && sameLane &&
			o.Z > player.Z && math.Abs(o.Z-player.Z) < r.cfg.CloseCallDistance {
			o.CloseCallTriggered = true
			r.emit(OutcomeCloseCall, o, now)
		}
	}

	for _, p := range portals {
		if p.Entered || !p.IsActive() {
			continue
		}
		if math.Abs(p.Z-player.Z) < r.cfg.PortalDistance && math.Abs(p.X-player.X) < halfLane {
			p.Entered = true
			r.emit(OutcomePortalEntered, p, now)
		}
	}

	return r.out, nil
}

func (r *Resolver) emit(kind OutcomeKind, e entity.Entity, now time.Duration) {
	r.out = append(r.out, Outcome{Kind: kind, Entity: e, Lane: e.Common().Lane, At: now})
}

func (r *Resolver) validate(player Player, cubes []*entity.Cube, obstacles []*entity.Obstacle, portals []*entity.Portal) error {
	if !r.validLane(player.Lane) {
		return fmt.Errorf("%w: player lane %d", ErrInvalidLane, player.Lane)
	}
	for _, c := range cubes {
		if !r.validLane(c.Lane) {
			return fmt.Errorf("%w: cube %d lane %d", ErrInvalidLane, c.ID, c.Lane)
		}
	}
	for _, o := range obstacles {
		if !r.validLane(o.Lane) {
			return fmt.Errorf("%w: obstacle %d lane %d", ErrInvalidLane, o.ID, o.Lane)
		}
	}
	for _, p := range portals {
		if !r.validLane(p.Lane) {
			return fmt.Errorf("%w: portal %d lane %d", ErrInvalidLane, p.ID, p.Lane)
		}
	}
	return nil
}

func (r *Resolver) validLane(lane int) bool {
	return lane >= 0 && lane < r.cfg.LaneCount
}

// Missed builds the outcome for a cube that despawned uncollected
func Missed(c *entity.Cube, now time.Duration) Outcome {
	return Outcome{Kind: OutcomeMissed, Entity: c, Lane: c.Lane, At: now}
}

// CoolingDown reports whether obstacle checks are suspended at now
func (r *Resolver) CoolingDown(now time.Duration) bool {
	return r.hasCollision && now < r.lastCollision+r.cfg.Cooldown
}

// Reset clears the collision cooldown
func (r *Resolver) Reset() {
	r.lastCollision = 0
	r.hasCollision = false
	r.out = r.out[:0]
}
