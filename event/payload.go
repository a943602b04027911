package event

import (
	"time"

	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/score"
)

// BeatPayload describes a detected beat
type BeatPayload struct {
	BassEnergy float64 `json:"bass_energy"`
	Fast       bool    `json:"fast"`
}

// TempoPayload carries the new tempo classification
type TempoPayload struct {
	Fast  bool `json:"fast"`
	Peaks int  `json:"peaks"`
}

// EntityPayload identifies the entity an event refers to
// ID and Gen together are unique across pool reuse
type EntityPayload struct {
	Kind     entity.Kind   `json:"-"`
	KindName string        `json:"kind"`
	ID       uint64        `json:"id"`
	Gen      uint32        `json:"gen"`
	Lane     int           `json:"lane"`
	BeatTime time.Duration `json:"beat_time_ns"`
	X        float64       `json:"x"`
	Z        float64       `json:"z"`
}

// NewEntityPayload snapshots the entity fields at emit time
func NewEntityPayload(e entity.Entity) *EntityPayload {
	b := e.Common()
	return &EntityPayload{
		Kind:     e.Kind(),
		KindName: e.Kind().String(),
		ID:       b.ID,
		Gen:      b.Gen,
		Lane:     b.Lane,
		BeatTime: b.BeatTime,
		X:        b.X,
		Z:        b.Z,
	}
}

// ScorePayload is the score state after a change plus the delta that caused it
type ScorePayload struct {
	score.Snapshot
	Delta int `json:"delta"`
}

// RecyclePayload names the pool and entity stolen at cap
type RecyclePayload struct {
	Pool string `json:"pool"`
	ID   uint64 `json:"id"`
}
