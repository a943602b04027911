package entity

import "time"

// Kind identifies the gameplay role of a pooled entity
type Kind uint8

const (
	KindCube Kind = iota
	KindObstacle
	KindPortal
	KindBurst
	kindCount
)

func (k Kind) String() string {
	names := [...]string{"cube", "obstacle", "portal", "burst"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Valid reports whether k names a known kind
func (k Kind) Valid() bool {
	return k < kindCount
}

// State is the lifecycle stage of an entity
type State uint8

const (
	StatePooled    State = iota // Owned by a pool free list
	StateActive                 // Owned by a pool active set, moving on the track
	StateResolved               // Collected, collided or entered; awaiting return
	StateReturning              // Despawn in progress this frame
)

func (s State) String() string {
	names := [...]string{"pooled", "active", "resolved", "returning"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Base holds fields shared by every entity kind
// Transient per-spawn fields are zeroed on reset; ID and Gen survive reuse
type Base struct {
	ID  uint64 // Stable for the lifetime of the pooled instance
	Gen uint32 // Incremented on every activation

	Lane      int
	BeatTime  time.Duration // Moment the entity aligns with the player
	SpawnTime time.Duration // Moment the entity was activated
	State     State

	// Frame outputs written by the engine
	X, Z     float64
	Distance float64
	Opacity  float64
	Pulse    float64
}

// Entity is the kind-agnostic view used by pools, trajectory and collision
type Entity interface {
	Common() *Base
	Kind() Kind
	Reset()
}

// Common returns the shared header
func (b *Base) Common() *Base {
	return b
}

// Activate assigns spawn parameters and marks the entity active
func (b *Base) Activate(lane int, beatTime, now time.Duration) {
	b.Lane = lane
	b.BeatTime = beatTime
	b.SpawnTime = now
	b.State = StateActive
	b.Gen++
	b.X, b.Z, b.Distance = 0, 0, 0
	b.Opacity = 0
	b.Pulse = 1
}

// IsActive reports whether the entity is live on the track
func (b *Base) IsActive() bool {
	return b.State == StateActive
}

func (b *Base) reset() {
	b.Lane = 0
	b.BeatTime = 0
	b.SpawnTime = 0
	b.State = StatePooled
	b.X, b.Z, b.Distance = 0, 0, 0
	b.Opacity = 0
	b.Pulse = 0
}
