package engine

import (
	"errors"
	"log"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/beat-runner/collision"
	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/event"
	"github.com/lixenwraith/beat-runner/pool"
	"github.com/lixenwraith/beat-runner/rhythm"
	"github.com/lixenwraith/beat-runner/score"
	"github.com/lixenwraith/beat-runner/spawn"
	"github.com/lixenwraith/beat-runner/status"
	"github.com/lixenwraith/beat-runner/trajectory"
)

// Deps are the collaborators injected into the engine; nil fields get inert defaults
type Deps struct {
	Clock   Clock
	Audio   AudioSource
	Player  PlayerSource
	Visual  VisualHook
	Rand    spawn.Rand
	Seed    uint64 // Used when Rand is nil
	Logger  *log.Logger
	Metrics *status.Registry
}

// engineMetrics caches registry pointers written every frame
type engineMetrics struct {
	frames     *atomic.Int64
	active     *atomic.Int64
	beats      *atomic.Int64
	bass       *status.AtomicFloat
	fast       *atomic.Bool
	peaks      *atomic.Int64
	cubes      *atomic.Int64
	obstacles  *atomic.Int64
	skipped    *atomic.Int64
	recycled   *atomic.Int64
	score      *atomic.Int64
	multiplier *atomic.Int64
	distance   *status.AtomicFloat
	errors     *atomic.Int64
}

// RhythmEngine owns all gameplay state and advances it once per frame
//
// Frame order: beat detection -> spawn -> trajectory -> collision -> score -> event dispatch
// Single-threaded: Update must be called from one goroutine
type RhythmEngine struct {
	cfg Config

	clock  Clock
	audio  AudioSource
	player PlayerSource
	visual VisualHook
	logger *log.Logger

	detector *rhythm.Detector
	tempo    *rhythm.TempoClassifier
	arbiter  *spawn.Arbiter
	model    *trajectory.Model
	resolver *collision.Resolver
	score    *score.State

	cubes     *pool.Pool[*entity.Cube]
	obstacles *pool.Pool[*entity.Obstacle]
	portals   *pool.Pool[*entity.Portal]
	bursts    *pool.Pool[*entity.Burst]

	router  *event.Router
	metrics *status.Registry
	m       engineMetrics

	frame    int64
	now      time.Duration
	distance float64
	fast     bool
	bands    rhythm.Bands

	// Per-frame scratch, reused
	cubeBuf     []*entity.Cube
	obstacleBuf []*entity.Obstacle
	portalBuf   []*entity.Portal
	burstBuf    []*entity.Burst
}

// New creates an engine with pre-filled pools
func New(cfg Config, deps Deps) *RhythmEngine {
	cfg = cfg.Resolved()

	e := &RhythmEngine{
		cfg:     cfg,
		clock:   deps.Clock,
		audio:   deps.Audio,
		player:  deps.Player,
		visual:  deps.Visual,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
	if e.clock == nil {
		e.clock = NewMockClock()
	}
	if e.player == nil {
		e.player = staticPlayer{lane: cfg.LaneCount / 2}
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.metrics == nil {
		e.metrics = status.NewRegistry()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(deps.Seed, deps.Seed^0x9e3779b97f4a7c15))
	}

	e.tempo = rhythm.NewTempoClassifier(cfg.Tempo)
	e.detector = rhythm.NewDetector(cfg.Detector, e.tempo)
	e.arbiter = spawn.NewArbiter(cfg.Spawn, rng, e.tempo)
	e.model = trajectory.NewModel(cfg.Trajectory)
	e.resolver = collision.NewResolver(cfg.Collision)
	e.score = score.NewState(cfg.Score)

	p := cfg.Pools
	e.cubes = pool.New("cube", entity.NewCube, p.Cube.Prefill, p.Cube.Cap)
	e.obstacles = pool.New("obstacle", entity.NewObstacle, p.Obstacle.Prefill, p.Obstacle.Cap)
	e.portals = pool.New("portal", entity.NewPortal, p.Portal.Prefill, p.Portal.Cap)
	e.bursts = pool.New("burst", entity.NewBurst, p.Burst.Prefill, p.Burst.Cap)

	e.router = event.NewRouter(event.NewEventQueue())
	e.cacheMetrics()
	return e
}

func (e *RhythmEngine) cacheMetrics() {
	r := e.metrics
	e.m = engineMetrics{
		frames:     r.Ints.Get(status.KeyFrames),
		active:     r.Ints.Get(status.KeyActiveEntities),
		beats:      r.Ints.Get(status.KeyBeats),
		bass:       r.Floats.Get(status.KeyBassEnergy),
		fast:       r.Bools.Get(status.KeyTempoFast),
		peaks:      r.Ints.Get(status.KeyTempoPeaks),
		cubes:      r.Ints.Get(status.KeySpawnCubes),
		obstacles:  r.Ints.Get(status.KeySpawnObstacles),
		skipped:    r.Ints.Get(status.KeySpawnSkipped),
		recycled:   r.Ints.Get(status.KeyPoolRecycled),
		score:      r.Ints.Get(status.KeyScore),
		multiplier: r.Ints.Get(status.KeyMultiplier),
		distance:   r.Floats.Get(status.KeyDistance),
		errors:     r.Ints.Get(status.KeyResolveErrors),
	}
}

// Update advances one frame at the injected clock's current time
func (e *RhythmEngine) Update(dt time.Duration) {
	e.UpdateAt(e.clock.Now(), dt)
}

// UpdateAt advances one frame at an explicit session time
func (e *RhythmEngine) UpdateAt(now, dt time.Duration) {
	e.frame++
	e.now = now

	e.detectAndSpawn(now)
	e.advanceEntities(now)
	e.resolveCollisions(now)
	e.expireBursts(now)

	if dt > 0 {
		e.distance += e.cfg.TrackSpeed * dt.Seconds()
	}
	e.publishMetrics()
	e.router.DispatchAll()
}

// detectAndSpawn polls audio, updates tempo, and turns a detected beat into spawns
func (e *RhythmEngine) detectAndSpawn(now time.Duration) {
	if e.audio == nil || !e.audio.IsPlaying() {
		return
	}
	spectrum := e.audio.FrequencySnapshot()
	e.bands = rhythm.BandEnergies(spectrum)

	bass, ok := e.detector.BassEnergy(spectrum)
	if !ok {
		return
	}
	e.m.bass.Set(bass)

	e.tempo.Observe(bass)
	if fast := e.tempo.IsFastTempo(); fast != e.fast {
		e.fast = fast
		e.logger.Printf("tempo: fast=%v peaks=%d", fast, e.tempo.Peaks())
		e.emit(event.EventTempoChange, &event.TempoPayload{Fast: fast, Peaks: e.tempo.Peaks()})
	}

	ev, ok := e.detector.DetectEnergy(bass, now)
	if !ok {
		return
	}
	e.m.beats.Add(1)
	e.emit(event.EventBeat, &event.BeatPayload{BassEnergy: ev.BassEnergy, Fast: e.fast})

	cmds, err := e.arbiter.OnBeat(ev, e.cfg.LaneCount, now)
	if err != nil {
		e.logger.Printf("spawn: %v", err)
		return
	}

	spawned := 0
	for _, cmd := range cmds {
		e.execute(cmd, now)
		if cmd.Kind != entity.KindPortal {
			spawned++
		}
	}
	if spawned == 0 {
		e.m.skipped.Add(1)
	}
}

// execute acquires and activates the entity a command names
func (e *RhythmEngine) execute(cmd spawn.Command, now time.Duration) {
	var (
		ent      entity.Entity
		recycled bool
		poolName string
	)
	switch cmd.Kind {
	case entity.KindCube:
		c, r := e.cubes.Acquire()
		ent, recycled, poolName = c, r, e.cubes.Name()
		e.m.cubes.Add(1)
	case entity.KindObstacle:
		o, r := e.obstacles.Acquire()
		ent, recycled, poolName = o, r, e.obstacles.Name()
		e.m.obstacles.Add(1)
	case entity.KindPortal:
		p, r := e.portals.Acquire()
		ent, recycled, poolName = p, r, e.portals.Name()
	default:
		e.logger.Printf("spawn: unknown kind %v", cmd.Kind)
		return
	}

	b := ent.Common()
	if recycled {
		e.m.recycled.Add(1)
		e.logger.Printf("pool %s exhausted, recycled id=%d", poolName, b.ID)
		// Old visual for this ID is stale
		e.notify(ent, PhaseDespawn)
		e.emit(event.EventPoolRecycle, &event.RecyclePayload{Pool: poolName, ID: b.ID})
	}

	b.Activate(cmd.Lane, cmd.BeatTime, now)
	e.model.Apply(ent, now)
	e.notify(ent, PhaseSpawn)
	e.emit(event.EventSpawn, event.NewEntityPayload(ent))
}

// advanceEntities places every live entity and returns those past the despawn line
func (e *RhythmEngine) advanceEntities(now time.Duration) {
	e.cubeBuf = e.cubes.AppendActive(e.cubeBuf[:0])
	for _, c := range e.cubeBuf {
		if !e.model.Apply(c, now).Despawn {
			e.notify(c, PhaseUpdate)
			continue
		}
		if !c.Collected {
			miss := collision.Missed(c, now)
			e.emit(event.EventMiss, event.NewEntityPayload(c))
			e.applyScore(miss)
		}
		e.despawn(c, func() { e.cubes.Release(c) })
	}

	e.obstacleBuf = e.obstacles.AppendActive(e.obstacleBuf[:0])
	for _, o := range e.obstacleBuf {
		if !e.model.Apply(o, now).Despawn {
			e.notify(o, PhaseUpdate)
			continue
		}
		e.despawn(o, func() { e.obstacles.Release(o) })
	}

	e.portalBuf = e.portals.AppendActive(e.portalBuf[:0])
	for _, p := range e.portalBuf {
		if !e.model.Apply(p, now).Despawn {
			e.notify(p, PhaseUpdate)
			continue
		}
		e.despawn(p, func() { e.portals.Release(p) })
	}
}

// resolveCollisions tests the player against live entities and applies outcomes
func (e *RhythmEngine) resolveCollisions(now time.Duration) {
	player := e.player.Position()
	player.Lane = e.player.Lane()

	e.cubeBuf = e.cubes.AppendActive(e.cubeBuf[:0])
	e.obstacleBuf = e.obstacles.AppendActive(e.obstacleBuf[:0])
	e.portalBuf = e.portals.AppendActive(e.portalBuf[:0])

	outcomes, err := e.resolver.Resolve(player, e.cubeBuf, e.obstacleBuf, e.portalBuf, now)
	if err != nil {
		e.m.errors.Add(1)
		if errors.Is(err, collision.ErrInvalidLane) {
			e.logger.Printf("collision: dropping frame %d: %v", e.frame, err)
		}
		return
	}

	for _, o := range outcomes {
		payload := event.NewEntityPayload(o.Entity)
		switch o.Kind {
		case collision.OutcomeCollected:
			e.emit(event.EventCollect, payload)
			e.applyScore(o)
			e.spawnBurst(o.Entity, now)
			c := o.Entity.(*entity.Cube)
			e.despawn(c, func() { e.cubes.Release(c) })

		case collision.OutcomeCollided:
			o.Entity.Common().State = entity.StateResolved
			e.emit(event.EventCollision, payload)
			e.applyScore(o)
			e.spawnBurst(o.Entity, now)

		case collision.OutcomeCloseCall:
			e.emit(event.EventCloseCall, payload)
			e.applyScore(o)

		case collision.OutcomePortalEntered:
			e.emit(event.EventPortalEntered, payload)
			p := o.Entity.(*entity.Portal)
			e.despawn(p, func() { e.portals.Release(p) })
		}
	}
}

func (e *RhythmEngine) applyScore(o collision.Outcome) {
	before := e.score.Score()
	if !e.score.Apply(o) {
		return
	}
	snap := e.score.Snapshot()
	e.emit(event.EventScoreChange, &event.ScorePayload{Snapshot: snap, Delta: snap.Score - before})
}

// spawnBurst marks a hit with a short-lived particle burst
func (e *RhythmEngine) spawnBurst(origin entity.Entity, now time.Duration) {
	b, recycled := e.bursts.Acquire()
	if recycled {
		e.notify(b, PhaseDespawn)
	}
	src := origin.Common()
	b.Activate(src.Lane, now, now)
	b.Origin = origin.Kind()
	b.Expires = now + e.cfg.BurstLife
	b.X, b.Z = src.X, src.Z
	b.Opacity = 1
	e.notify(b, PhaseSpawn)
}

func (e *RhythmEngine) expireBursts(now time.Duration) {
	life := e.cfg.BurstLife.Seconds()
	e.burstBuf = e.bursts.AppendActive(e.burstBuf[:0])
	for _, b := range e.burstBuf {
		if b.Expired(now) {
			e.despawn(b, func() { e.bursts.Release(b) })
			continue
		}
		if life > 0 {
			b.Opacity = (b.Expires - now).Seconds() / life
		}
		e.notify(b, PhaseUpdate)
	}
}

// despawn notifies the visual hook before release clears the entity
func (e *RhythmEngine) despawn(ent entity.Entity, release func()) {
	ent.Common().State = entity.StateReturning
	e.notify(ent, PhaseDespawn)
	release()
}

func (e *RhythmEngine) notify(ent entity.Entity, phase VisualPhase) {
	if e.visual == nil {
		return
	}
	e.visual.OnVisual(visualOf(ent, phase))
}

func visualOf(ent entity.Entity, phase VisualPhase) Visual {
	b := ent.Common()
	return Visual{
		Kind:    ent.Kind(),
		ID:      b.ID,
		Gen:     b.Gen,
		Lane:    b.Lane,
		X:       b.X,
		Z:       b.Z,
		Opacity: b.Opacity,
		Pulse:   b.Pulse,
		Phase:   phase,
	}
}

func (e *RhythmEngine) emit(t event.EventType, payload any) {
	e.router.Emit(event.GameEvent{Type: t, Payload: payload, Frame: e.frame, At: e.now})
}

func (e *RhythmEngine) publishMetrics() {
	e.m.frames.Store(e.frame)
	e.m.active.Store(int64(e.cubes.ActiveCount() + e.obstacles.ActiveCount() + e.portals.ActiveCount()))
	e.m.fast.Store(e.fast)
	e.m.peaks.Store(int64(e.tempo.Peaks()))
	e.m.score.Store(int64(e.score.Score()))
	e.m.multiplier.Store(int64(e.score.Multiplier()))
	e.m.distance.Set(e.distance)
}

// Score returns the current score snapshot
func (e *RhythmEngine) Score() score.Snapshot {
	return e.score.Snapshot()
}

// Subscribe registers fn for the given event types, or every type when none are given
// Handlers run inside Update after the frame's state changes
func (e *RhythmEngine) Subscribe(fn func(event.GameEvent), types ...event.EventType) {
	e.router.Subscribe(fn, types...)
}

// OnPortalEntered registers a navigation callback for portal entry
func (e *RhythmEngine) OnPortalEntered(fn func(event.EntityPayload)) {
	e.router.Subscribe(func(ev event.GameEvent) {
		if p, ok := ev.Payload.(*event.EntityPayload); ok {
			fn(*p)
		}
	}, event.EventPortalEntered)
}

// IsFastTempo reports the current tempo classification
func (e *RhythmEngine) IsFastTempo() bool {
	return e.fast
}

// Bands returns the latest ambient band energies
func (e *RhythmEngine) Bands() rhythm.Bands {
	return e.bands
}

// Distance returns the track distance travelled this session
func (e *RhythmEngine) Distance() float64 {
	return e.distance
}

// Frame returns the number of frames processed
func (e *RhythmEngine) Frame() int64 {
	return e.frame
}

// Config returns the resolved configuration
func (e *RhythmEngine) Config() Config {
	return e.cfg
}

// Metrics returns the registry the engine writes to
func (e *RhythmEngine) Metrics() *status.Registry {
	return e.metrics
}

// PoolStats returns occupancy for every pool
func (e *RhythmEngine) PoolStats() []pool.Stats {
	return []pool.Stats{e.cubes.Stats(), e.obstacles.Stats(), e.portals.Stats(), e.bursts.Stats()}
}

// Reset clears all session state, returning every entity to its pool
// Subscribers stay registered; the portal fires again on the next first beat
func (e *RhythmEngine) Reset() {
	e.cubeBuf = e.cubes.AppendActive(e.cubeBuf[:0])
	for _, c := range e.cubeBuf {
		e.despawn(c, func() { e.cubes.Release(c) })
	}
	e.obstacleBuf = e.obstacles.AppendActive(e.obstacleBuf[:0])
	for _, o := range e.obstacleBuf {
		e.despawn(o, func() { e.obstacles.Release(o) })
	}
	e.portalBuf = e.portals.AppendActive(e.portalBuf[:0])
	for _, p := range e.portalBuf {
		e.despawn(p, func() { e.portals.Release(p) })
	}
	e.burstBuf = e.bursts.AppendActive(e.burstBuf[:0])
	for _, b := range e.burstBuf {
		e.despawn(b, func() { e.bursts.Release(b) })
	}

	e.detector.Reset()
	e.tempo.Reset()
	e.arbiter.Reset()
	e.resolver.Reset()
	e.score.Reset()
	e.distance = 0
	e.fast = false
	e.bands = rhythm.Bands{}

	e.emit(event.EventSessionReset, nil)
	e.publishMetrics()
	e.router.DispatchAll()
}
