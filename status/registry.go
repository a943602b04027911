package status

import "sync/atomic"

// Metric keys written by the engine and collaborators
const (
	KeyFrames         = "engine.frames"
	KeyActiveEntities = "engine.active"
	KeyBeats          = "rhythm.beats"
	KeyBassEnergy     = "rhythm.bass"
	KeyTempoFast      = "tempo.fast"
	KeyTempoPeaks     = "tempo.peaks"
	KeySpawnCubes     = "spawn.cubes"
	KeySpawnObstacles = "spawn.obstacles"
	KeySpawnSkipped   = "spawn.skipped"
	KeyPoolRecycled   = "pool.recycled"
	KeyScore          = "score.value"
	KeyMultiplier     = "score.multiplier"
	KeyDistance       = "track.distance"
	KeyResolveErrors  = "collision.errors"
	KeyAudioPlaying   = "audio.playing"
	KeyAudioTrack     = "audio.track"
	KeySpectators     = "spectator.clients"
	KeySpectatorDrops = "spectator.dropped"
)

// Registry is the central metrics facade
// Components cache pointers during init; update loops write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot is a point-in-time copy of every metric, keyed by name
type Snapshot struct {
	Bools   map[string]bool    `json:"bools,omitempty"`
	Ints    map[string]int64   `json:"ints,omitempty"`
	Floats  map[string]float64 `json:"floats,omitempty"`
	Strings map[string]string  `json:"strings,omitempty"`
}

// Snapshot reads all metrics; values are individually atomic, not mutually consistent
func (r *Registry) Snapshot() Snapshot {
	return r.SnapshotComponent("")
}

// SnapshotComponent reads the metrics of one component such as "spawn" or "score"
// An empty component reads everything
func (r *Registry) SnapshotComponent(component string) Snapshot {
	s := Snapshot{
		Bools:   make(map[string]bool, r.Bools.Count()),
		Ints:    make(map[string]int64, r.Ints.Count()),
		Floats:  make(map[string]float64, r.Floats.Count()),
		Strings: make(map[string]string, r.Strings.Count()),
	}
	r.Bools.RangeComponent(component, func(k string, v *atomic.Bool) { s.Bools[k] = v.Load() })
	r.Ints.RangeComponent(component, func(k string, v *atomic.Int64) { s.Ints[k] = v.Load() })
	r.Floats.RangeComponent(component, func(k string, v *AtomicFloat) { s.Floats[k] = v.Get() })
	r.Strings.RangeComponent(component, func(k string, v *AtomicString) { s.Strings[k] = v.Load() })
	return s
}
