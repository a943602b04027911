package main

import (
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/audio"
	"github.com/lixenwraith/beat-runner/broadcast"
	"github.com/lixenwraith/beat-runner/config"
	"github.com/lixenwraith/beat-runner/engine"
	"github.com/lixenwraith/beat-runner/event"
	"github.com/lixenwraith/beat-runner/input"
	"github.com/lixenwraith/beat-runner/parameter"
	"github.com/lixenwraith/beat-runner/render"
	"github.com/lixenwraith/beat-runner/status"
	"github.com/lixenwraith/beat-runner/vehicle"
)

// volumeStep is the music volume change per key press
const volumeStep = 0.1

// sessionClock is the pausable clock the loop drives
type sessionClock interface {
	engine.Clock
	Pause()
	Resume()
	IsPaused() bool
	Reset()
}

type gameDeps struct {
	cfg    config.Config
	screen tcell.Screen
	clock  sessionClock // nil selects a wall clock
	player *audio.Player
	keys   *input.KeyTable
	hub    *broadcast.Hub // nil when spectating is off
	reg    *status.Registry
	seed   uint64
	color  bool
}

// game owns the frame loop: input, vehicle, engine, audio cues, rendering and spectators
type game struct {
	cfg     config.Config
	screen  tcell.Screen
	clock   sessionClock
	engine  *engine.RhythmEngine
	vehicle *vehicle.Vehicle
	player  *audio.Player
	input   *input.Machine
	view    *render.Renderer
	hub     *broadcast.Hub

	last   time.Duration
	muted  bool
	volume float64
}

func newGame(d gameDeps) *game {
	clock := d.clock
	if clock == nil {
		clock = engine.NewSessionClock()
	}
	cfg := d.cfg

	g := &game{
		cfg:     cfg,
		screen:  d.screen,
		clock:   clock,
		vehicle: vehicle.New(cfg.Vehicle, cfg.Track.LaneCount, cfg.Track.LaneWidth),
		player:  d.player,
		input:   input.NewMachine(cfg.Input, d.keys),
		hub:     d.hub,
		volume:  cfg.Audio.MusicVolume,
	}

	rc := render.DefaultConfig()
	rc.LaneCount = cfg.Track.LaneCount
	rc.LaneWidth = cfg.Track.LaneWidth
	rc.SpawnDistance = cfg.Trajectory.SpawnDistance
	rc.DespawnDistance = cfg.Trajectory.DespawnDistance
	rc.Color = d.color
	g.view = render.New(d.screen, rc)

	g.engine = engine.New(cfg.Engine(), engine.Deps{
		Clock:   clock,
		Audio:   d.player,
		Player:  g.vehicle,
		Visual:  g.view,
		Seed:    d.seed,
		Logger:  log.Default(),
		Metrics: d.reg,
	})

	g.engine.Subscribe(g.view.OnEvent)
	g.engine.Subscribe(g.playCue,
		event.EventCollect, event.EventCollision, event.EventCloseCall, event.EventPortalEntered)
	if g.hub != nil {
		g.engine.Subscribe(g.hub.PublishEvent)
	}
	g.engine.OnPortalEntered(func(p event.EntityPayload) {
		log.Printf("portal entered: lane=%d frame=%d", p.Lane, g.engine.Frame())
	})
	return g
}

// run drives the loop until a quit intent or the screen closes
func (g *game) run() {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	goSafe(func() { g.screen.ChannelEvents(events, quit) })
	defer close(quit)

	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	g.last = g.clock.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !g.handle(ev) {
				return
			}
		case <-ticker.C:
			g.frame()
		}
	}
}

// frame advances one tick at the clock's current time and redraws
func (g *game) frame() {
	now := g.clock.Now()
	dt := min(max(now-g.last, 0), parameter.MaxFrameDelta)
	g.last = now

	if !g.clock.IsPaused() {
		g.player.Pump(dt)
		g.vehicle.Step(dt)
		g.engine.UpdateAt(now, dt)
		if g.hub != nil && g.hub.FrameDue(now) {
			g.hub.PublishFrame(g.engine.Snapshot())
		}
	}
	g.draw(now)
}

func (g *game) draw(now time.Duration) {
	hud := render.HUD{
		Score:     g.engine.Score(),
		Threshold: g.cfg.Score.MultiplierThreshold,
		Fast:      g.engine.IsFastTempo(),
		Distance:  g.engine.Distance(),
		Bands:     g.engine.Bands(),
		Track:     g.player.Track(),
		Playing:   g.player.IsPlaying(),
		Paused:    g.clock.IsPaused(),
		Muted:     g.muted,
		Volume:    g.volume,
	}
	if g.hub != nil {
		hud.Spectators = g.hub.Clients()
	}
	g.view.Draw(now, g.vehicle.X(), hud)
}

// handle applies one terminal event; returns false to quit
func (g *game) handle(ev tcell.Event) bool {
	intent := g.input.Process(ev, g.clock.Now())
	if intent == nil {
		return true
	}

	paused := g.clock.IsPaused()
	switch intent.Type {
	case input.IntentQuit:
		return false
	case input.IntentResize:
		g.screen.Sync()
	case input.IntentLaneLeft:
		if !paused {
			g.vehicle.MoveLeft()
		}
	case input.IntentLaneRight:
		if !paused {
			g.vehicle.MoveRight()
		}
	case input.IntentLane:
		if !paused {
			g.vehicle.SetLane(intent.Lane)
		}
	case input.IntentRestart:
		g.restart()
	case input.IntentTogglePause:
		g.togglePause()
	case input.IntentToggleMute:
		g.toggleMute()
	case input.IntentVolumeUp:
		g.changeVolume(volumeStep)
	case input.IntentVolumeDown:
		g.changeVolume(-volumeStep)
	}
	return true
}

// restart clears the session and rewinds the music
func (g *game) restart() {
	g.engine.Reset()
	g.vehicle.Reset()
	g.input.Reset()
	g.clock.Reset()
	g.last = 0
	if err := g.player.Restart(); err != nil {
		log.Printf("restart music: %v", err)
	}
	log.Printf("session restarted")
}

func (g *game) togglePause() {
	if g.clock.IsPaused() {
		g.clock.Resume()
	} else {
		g.clock.Pause()
	}
	g.player.TogglePause()
}

func (g *game) toggleMute() {
	if g.muted {
		g.player.AdjustVolume(g.volume)
		g.muted = false
		return
	}
	g.volume = g.player.AdjustVolume(0)
	g.player.AdjustVolume(-1)
	g.muted = true
}

func (g *game) changeVolume(delta float64) {
	if g.muted {
		g.toggleMute()
	}
	g.volume = g.player.AdjustVolume(delta)
}

// playCue maps gameplay outcomes to sound effects
func (g *game) playCue(ev event.GameEvent) {
	switch ev.Type {
	case event.EventCollect:
		g.player.PlayCue(audio.CueCollect)
	case event.EventCollision:
		g.player.PlayCue(audio.CueCollision)
	case event.EventCloseCall:
		g.player.PlayCue(audio.CueCloseCall)
	case event.EventPortalEntered:
		g.player.PlayCue(audio.CuePortal)
	}
}
