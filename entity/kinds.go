package entity

import "time"

// Cube is a collectible beat cube
type Cube struct {
	Base
	Collected bool
}

// NewCube creates a pooled cube
func NewCube(id uint64) *Cube {
	return &Cube{Base: Base{ID: id}}
}

func (c *Cube) Kind() Kind { return KindCube }

// Reset clears per-spawn state and one-shot flags
func (c *Cube) Reset() {
	c.Base.reset()
	c.Collected = false
}

// Obstacle is an oncoming vehicle the player must avoid
type Obstacle struct {
	Base
	Collided           bool
	CloseCallTriggered bool
}

// NewObstacle creates a pooled obstacle
func NewObstacle(id uint64) *Obstacle {
	return &Obstacle{Base: Base{ID: id}}
}

func (o *Obstacle) Kind() Kind { return KindObstacle }

// Reset clears per-spawn state and one-shot flags
func (o *Obstacle) Reset() {
	o.Base.reset()
	o.Collided = false
	o.CloseCallTriggered = false
}

// Portal is the one-time gate spawned on the first beat of a session
type Portal struct {
	Base
	Entered bool
}

// NewPortal creates a pooled portal
func NewPortal(id uint64) *Portal {
	return &Portal{Base: Base{ID: id}}
}

func (p *Portal) Kind() Kind { return KindPortal }

// Reset clears per-spawn state and the entered flag
func (p *Portal) Reset() {
	p.Base.reset()
	p.Entered = false
}

// Burst is a short-lived particle burst marking a hit; visual only
type Burst struct {
	Base
	Origin  Kind          // Kind of the entity that was hit
	Expires time.Duration // Returned to pool once now passes this
}

// NewBurst creates a pooled burst
func NewBurst(id uint64) *Burst {
	return &Burst{Base: Base{ID: id}}
}

func (b *Burst) Kind() Kind { return KindBurst }

// Reset clears per-spawn state
func (b *Burst) Reset() {
	b.Base.reset()
	b.Origin = 0
	b.Expires = 0
}

// Expired reports whether the burst life has elapsed
func (b *Burst) Expired(now time.Duration) bool {
	return now >= b.Expires
}
