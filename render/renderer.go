package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/engine"
	"github.com/lixenwraith/beat-runner/entity"
	"github.com/lixenwraith/beat-runner/event"
	"github.com/lixenwraith/beat-runner/parameter"
)

// Config holds layout and timing for the terminal view
type Config struct {
	LaneCount       int
	LaneWidth       float64
	SpawnDistance   float64
	DespawnDistance float64

	LaneCells     int
	HUDWidth      int
	FlashDuration time.Duration
	PopupDuration time.Duration
	Color         bool
}

// DefaultConfig returns the stock layout
func DefaultConfig() Config {
	return Config{
		LaneCount:       parameter.LaneCount,
		LaneWidth:       parameter.LaneWidth,
		SpawnDistance:   parameter.SpawnDistance,
		DespawnDistance: parameter.DespawnDistance,
		LaneCells:       parameter.RenderLaneCells,
		HUDWidth:        parameter.RenderHUDWidth,
		FlashDuration:   parameter.RenderFlashDuration,
		PopupDuration:   parameter.RenderPopupDuration,
		Color:           true,
	}
}

// beatGlow is how long lane separators stay lit after a beat
const beatGlow = 120 * time.Millisecond

type visualKey struct {
	kind entity.Kind
	id   uint64
}

type popup struct {
	text string
	at   time.Duration
}

// Renderer draws the track top-down: far entities at the top, the vehicle near the bottom
// It is the engine's VisualHook and an event subscriber; all calls come from the frame loop
type Renderer struct {
	screen tcell.Screen
	cfg    Config
	st     styler

	visuals map[visualKey]engine.Visual
	order   []engine.Visual

	flashAt  time.Duration
	flashing bool
	beatAt   time.Duration
	beating  bool
	popups   []popup
	banner   string
	bannerAt time.Duration
}

// New creates a renderer over an initialized screen
func New(screen tcell.Screen, cfg Config) *Renderer {
	if cfg.LaneCount < 1 {
		cfg.LaneCount = 1
	}
	if cfg.LaneCells < 3 {
		cfg.LaneCells = 3
	}
	return &Renderer{
		screen:  screen,
		cfg:     cfg,
		st:      styler{color: cfg.Color},
		visuals: make(map[visualKey]engine.Visual),
	}
}

// OnVisual tracks entity visuals by kind and ID
func (r *Renderer) OnVisual(v engine.Visual) {
	key := visualKey{kind: v.Kind, id: v.ID}
	if v.Phase == engine.PhaseDespawn {
		delete(r.visuals, key)
		return
	}
	r.visuals[key] = v
}

// OnEvent reacts to gameplay events with screen effects
func (r *Renderer) OnEvent(ev event.GameEvent) {
	switch ev.Type {
	case event.EventBeat:
		r.beatAt, r.beating = ev.At, true
	case event.EventCollision:
		r.flashAt, r.flashing = ev.At, true
	case event.EventScoreChange:
		if p, ok := ev.Payload.(*event.ScorePayload); ok && p.Delta != 0 {
			r.popups = append(r.popups, popup{text: fmt.Sprintf("%+d", p.Delta), at: ev.At})
		}
	case event.EventPortalEntered:
		r.banner, r.bannerAt = "PORTAL", ev.At
	case event.EventSessionReset:
		r.Reset()
	}
}

// Reset drops every visual and effect
func (r *Renderer) Reset() {
	clear(r.visuals)
	r.popups = r.popups[:0]
	r.flashing, r.beating = false, false
	r.banner = ""
}

// Visuals returns the number of tracked entity visuals
func (r *Renderer) Visuals() int {
	return len(r.visuals)
}

// Draw renders one frame at session time now and shows it
func (r *Renderer) Draw(now time.Duration, vehicleX float64, hud HUD) {
	r.screen.Fill(' ', r.st.fg(RgbHUDText))
	w, h := r.screen.Size()

	trackW := r.trackWidth()
	if w < trackW || h < 6 {
		r.text(0, 0, "terminal too small", r.st.base())
		r.screen.Show()
		return
	}

	playerRow := r.playerRow(h)
	r.drawLanes(now, h)
	r.drawFlash(now, playerRow)
	r.drawEntities(h)
	r.drawVehicle(vehicleX, playerRow)
	r.drawPopups(now, vehicleX, playerRow)
	if w >= trackW+2+r.cfg.HUDWidth {
		r.drawHUD(trackW+2, hud)
	}
	r.drawStatus(now, h-1, hud)
	r.screen.Show()
}

func (r *Renderer) trackWidth() int {
	return r.cfg.LaneCount*(r.cfg.LaneCells+1) + 1
}

// rowsPerUnit maps track distance onto rows 0..h-2; the last row is the status line
func (r *Renderer) rowsPerUnit(h int) float64 {
	span := r.cfg.SpawnDistance + r.cfg.DespawnDistance
	if span <= 0 {
		return 1
	}
	return float64(h-2) / span
}

func (r *Renderer) playerRow(h int) int {
	return int(math.Round(r.cfg.SpawnDistance * r.rowsPerUnit(h)))
}

// rowFor converts world Z (ahead negative) to a screen row
func (r *Renderer) rowFor(z float64, h int) int {
	return r.playerRow(h) + int(math.Round(z*r.rowsPerUnit(h)))
}

func (r *Renderer) laneLeft(lane int) int {
	return 1 + lane*(r.cfg.LaneCells+1)
}

func (r *Renderer) laneCenter(lane int) int {
	return r.laneLeft(lane) + r.cfg.LaneCells/2
}

// columnFor converts world X to the screen column of a lane-centred glyph
func (r *Renderer) columnFor(x float64) int {
	if r.cfg.LaneWidth <= 0 {
		return r.laneCenter(0)
	}
	f := x/r.cfg.LaneWidth + float64(r.cfg.LaneCount-1)/2
	return 1 + int(math.Round(f*float64(r.cfg.LaneCells+1))) + r.cfg.LaneCells/2
}

func (r *Renderer) drawLanes(now time.Duration, h int) {
	c := RgbLane
	if r.beating && now >= r.beatAt && now-r.beatAt < beatGlow {
		c = RgbLaneBeat
	}
	style := r.st.fg(c)
	for lane := 0; lane <= r.cfg.LaneCount; lane++ {
		x := r.laneLeft(lane) - 1
		for y := 0; y < h-1; y++ {
			r.screen.SetContent(x, y, '│', nil, style)
		}
	}
}

func (r *Renderer) drawFlash(now time.Duration, row int) {
	if !r.flashing || now < r.flashAt || r.cfg.FlashDuration <= 0 {
		return
	}
	elapsed := now - r.flashAt
	if elapsed >= r.cfg.FlashDuration {
		r.flashing = false
		return
	}
	intensity := 1 - float64(elapsed)/float64(r.cfg.FlashDuration)
	bg := SoftLight(RgbBackground, RgbFlash, intensity)
	style := r.st.fgbg(RgbHUDText, bg)
	if !r.st.color {
		style = style.Reverse(true)
	}
	for x := 1; x < r.trackWidth()-1; x++ {
		r.screen.SetContent(x, row, ' ', nil, style)
	}
}

func (r *Renderer) drawEntities(h int) {
	r.order = r.order[:0]
	for _, v := range r.visuals {
		r.order = append(r.order, v)
	}
	// Far first so nearer entities overdraw
	slices.SortFunc(r.order, func(a, b engine.Visual) int {
		if c := cmp.Compare(a.Z, b.Z); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for _, v := range r.order {
		y := r.rowFor(v.Z, h)
		if y < 0 || y >= h-1 || v.Opacity <= 0 || v.Lane < 0 || v.Lane >= r.cfg.LaneCount {
			continue
		}
		style := r.st.faded(kindColor(v.Kind), v.Opacity)
		left, center := r.laneLeft(v.Lane), r.laneCenter(v.Lane)

		switch v.Kind {
		case entity.KindCube:
			glyph := '◇'
			if v.Pulse > 0.9 {
				glyph = '◆'
			}
			r.screen.SetContent(center, y, glyph, nil, style)
		case entity.KindObstacle:
			for x := left + 1; x < left+r.cfg.LaneCells-1; x++ {
				r.screen.SetContent(x, y, '█', nil, style)
			}
		case entity.KindPortal:
			for x := left; x < left+r.cfg.LaneCells; x++ {
				r.screen.SetContent(x, y, '░', nil, style)
			}
			r.screen.SetContent(center, y, '◎', nil, style)
		default:
			r.screen.SetContent(center, y, '*', nil, style)
		}
	}
}

func (r *Renderer) drawVehicle(x float64, row int) {
	r.screen.SetContent(r.columnFor(x), row, '▲', nil, r.st.fg(RgbVehicle).Bold(true))
}

func (r *Renderer) drawPopups(now time.Duration, vehicleX float64, row int) {
	live := r.popups[:0]
	for _, p := range r.popups {
		age := now - p.at
		if age < 0 || age >= r.cfg.PopupDuration {
			continue
		}
		live = append(live, p)

		frac := float64(age) / float64(r.cfg.PopupDuration)
		y := row - 1 - int(frac*3)
		x := r.columnFor(vehicleX) - len(p.text)/2
		if y >= 0 {
			r.text(x, y, p.text, r.st.faded(RgbPopup, 1-frac))
		}
	}
	r.popups = live
}

func (r *Renderer) drawStatus(now time.Duration, row int, hud HUD) {
	line := "h/l steer  1-9 lane  p pause  r restart  q quit"
	if hud.Paused {
		line = "PAUSED  " + line
	}
	if r.banner != "" {
		if now >= r.bannerAt && now-r.bannerAt < r.cfg.PopupDuration {
			line = r.banner + "  " + line
		} else {
			r.banner = ""
		}
	}
	r.text(0, row, line, r.st.fg(RgbHUDLabel))
}

// text writes single-width runes from x; clipped at the screen edge
func (r *Renderer) text(x, y int, s string, style tcell.Style) int {
	w, _ := r.screen.Size()
	for _, ch := range s {
		if x >= w {
			break
		}
		if x >= 0 {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
	return x
}
