package engine

import (
	"time"

	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/rhythm"
	"github.com/lixenwraith/beat-runner/score"
)

// EntityView is a Visual with its kind spelled out for serialization
type EntityView struct {
	Visual
	Kind string `json:"kind"`
}

// FrameSnapshot is a self-contained copy of engine state for observers off the frame loop
type FrameSnapshot struct {
	Frame    int64          `json:"frame"`
	At       time.Duration  `json:"at_ns"`
	Score    score.Snapshot `json:"score"`
	Fast     bool           `json:"fast"`
	Distance float64        `json:"distance"`
	Bands    rhythm.Bands   `json:"bands"`
	Entities []EntityView   `json:"entities"`
}

// Snapshot copies the current frame state; safe to hand to another goroutine
func (e *RhythmEngine) Snapshot() FrameSnapshot {
	s := FrameSnapshot{
		Frame:    e.frame,
		At:       e.now,
		Score:    e.score.Snapshot(),
		Fast:     e.fast,
		Distance: e.distance,
		Bands:    e.bands,
		Entities: make([]EntityView, 0, e.cubes.ActiveCount()+e.obstacles.ActiveCount()+e.portals.ActiveCount()),
	}
	add := func(ent entity.Entity) {
		s.Entities = append(s.Entities, EntityView{Visual: visualOf(ent, PhaseUpdate), Kind: ent.Kind().String()})
	}
	for _, c := range e.cubes.AppendActive(nil) {
		add(c)
	}
	for _, o := range e.obstacles.AppendActive(nil) {
		add(o)
	}
	for _, p := range e.portals.AppendActive(nil) {
		add(p)
	}
	return s
}
