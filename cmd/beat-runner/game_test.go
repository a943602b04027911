package main

import (
	"flag"
	"io"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/audio"
	"github.com/lixenwraith/beat-runner/broadcast"
	"github.com/lixenwraith/beat-runner/config"
	"github.com/lixenwraith/beat-runner/status"
)

type fakeClock struct {
	now    time.Duration
	paused bool
	resets int
}

func (c *fakeClock) Now() time.Duration { return c.now }
func (c *fakeClock) Pause()             { c.paused = true }
func (c *fakeClock) Resume()            { c.paused = false }
func (c *fakeClock) IsPaused() bool     { return c.paused }
func (c *fakeClock) Reset() {
	c.now, c.paused = 0, false
	c.resets++
}

func (c *fakeClock) advance(d time.Duration) {
	if !c.paused {
		c.now += d
	}
}

func newTestGame(t *testing.T) (*game, *fakeClock, tcell.SimulationScreen) {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.Enabled = false

	reg := status.NewRegistry()
	player := audio.NewPlayer(cfg.Audio, reg)
	player.LoadDrums(cfg.Track.BPM)
	t.Cleanup(func() { player.Close() })

	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	clock := &fakeClock{}
	g := newGame(gameDeps{
		cfg:    cfg,
		screen: screen,
		clock:  clock,
		player: player,
		hub:    broadcast.NewHub(cfg.Spectator, log.New(io.Discard, "", 0), reg),
		reg:    reg,
		seed:   7,
		color:  true,
	})
	return g, clock, screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r := cells[y*w+x].Runes; len(r) > 0 {
				b.WriteRune(r[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestFrameAdvancesEngineAndDraws(t *testing.T) {
	g, clock, screen := newTestGame(t)

	for i := 0; i < 10; i++ {
		clock.advance(16 * time.Millisecond)
		g.frame()
	}
	if g.engine.Frame() != 10 {
		t.Errorf("engine frame %d", g.engine.Frame())
	}
	if g.engine.Distance() <= 0 {
		t.Error("distance should accumulate")
	}
	if !strings.Contains(screenText(screen), "SCORE") {
		t.Error("HUD not drawn")
	}
}

func TestSteering(t *testing.T) {
	g, clock, _ := newTestGame(t)
	start := g.vehicle.Lane()

	g.handle(key('h'))
	if g.vehicle.Lane() != start-1 {
		t.Errorf("lane %d after left", g.vehicle.Lane())
	}
	clock.advance(time.Second)
	g.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if g.vehicle.Lane() != start {
		t.Errorf("lane %d after right", g.vehicle.Lane())
	}
	g.handle(key('3'))
	if g.vehicle.Lane() != 2 {
		t.Errorf("lane %d after digit", g.vehicle.Lane())
	}
}

func TestPauseFreezesSession(t *testing.T) {
	g, clock, screen := newTestGame(t)
	clock.advance(16 * time.Millisecond)
	g.frame()

	g.handle(key('p'))
	if !clock.IsPaused() || g.player.IsPlaying() {
		t.Fatal("pause should stop clock and music")
	}

	lane := g.vehicle.Lane()
	g.handle(key('h'))
	if g.vehicle.Lane() != lane {
		t.Error("steering while paused")
	}

	g.frame()
	if g.engine.Frame() != 1 {
		t.Errorf("engine advanced while paused: frame %d", g.engine.Frame())
	}
	if !strings.Contains(screenText(screen), "PAUSED") {
		t.Error("pause not shown")
	}

	g.handle(key('p'))
	if clock.IsPaused() || !g.player.IsPlaying() {
		t.Error("resume should restart clock and music")
	}
}

func TestRestart(t *testing.T) {
	g, clock, _ := newTestGame(t)
	for i := 0; i < 5; i++ {
		clock.advance(16 * time.Millisecond)
		g.frame()
	}
	g.handle(key('h'))
	g.handle(key('p'))

	g.handle(key('r'))
	if clock.resets != 1 || clock.IsPaused() {
		t.Error("restart should reset the clock and unpause")
	}
	if g.vehicle.Lane() != g.cfg.Vehicle.StartLane {
		t.Errorf("vehicle lane %d after restart", g.vehicle.Lane())
	}
	if g.engine.Distance() != 0 || g.engine.Score().Score != 0 {
		t.Error("engine state survived restart")
	}
	if !g.player.IsPlaying() {
		t.Error("music should resume after restart")
	}
	if g.view.Visuals() != 0 {
		t.Errorf("renderer kept %d visuals", g.view.Visuals())
	}
}

func TestMuteAndVolume(t *testing.T) {
	g, _, _ := newTestGame(t)

	g.handle(key('m'))
	if !g.muted || g.volume != 1 {
		t.Fatalf("mute: muted=%v volume=%v", g.muted, g.volume)
	}
	g.handle(key('m'))
	if g.muted {
		t.Fatal("second press should unmute")
	}

	g.handle(key('-'))
	if math.Abs(g.volume-0.9) > 1e-9 {
		t.Errorf("volume %v after down", g.volume)
	}

	// Volume keys unmute first
	g.handle(key('m'))
	g.handle(key('+'))
	if g.muted || math.Abs(g.volume-1) > 1e-9 {
		t.Errorf("muted=%v volume=%v after up", g.muted, g.volume)
	}
}

func TestQuitAndUnboundKeys(t *testing.T) {
	g, _, _ := newTestGame(t)
	if !g.handle(key('z')) {
		t.Error("unbound key should not quit")
	}
	if !g.handle(tcell.NewEventResize(100, 30)) {
		t.Error("resize should not quit")
	}
	if g.handle(key('q')) {
		t.Error("q should quit")
	}
	if g.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)) {
		t.Error("ctrl-c should quit")
	}
}

func TestUseColor(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if !useColor("on", screen) || useColor("off", screen) {
		t.Error("explicit color modes ignored")
	}
}

func TestLoadConfigFlags(t *testing.T) {
	set := func(name, value string) {
		old := flag.Lookup(name).Value.String()
		if err := flag.Set(name, value); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { flag.Set(name, old) })
	}
	set("lanes", "5")
	set("bpm", "150")
	set("spectate", "127.0.0.1:0")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Track.LaneCount != 5 || cfg.Vehicle.StartLane != 2 {
		t.Errorf("lanes %d start %d", cfg.Track.LaneCount, cfg.Vehicle.StartLane)
	}
	if cfg.Track.BPM != 150 || cfg.Spectator.Addr != "127.0.0.1:0" {
		t.Errorf("bpm %v addr %q", cfg.Track.BPM, cfg.Spectator.Addr)
	}
}

func TestHandleCrashIgnoresNil(t *testing.T) {
	handleCrash(nil)
}
