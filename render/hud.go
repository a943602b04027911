package render

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/beat-runner/rhythm"
	"github.com/lixenwraith/beat-runner/score"
)

// HUD is the per-frame panel content gathered by the game loop
type HUD struct {
	Score      score.Snapshot
	Threshold  int // Progress needed for the next multiplier step
	Fast       bool
	Distance   float64
	Bands      rhythm.Bands
	Track      string
	Playing    bool
	Paused     bool
	Muted      bool
	Volume     float64
	Spectators int
}

const barWidth = 10

func (r *Renderer) drawHUD(x int, hud HUD) {
	label := r.st.fg(RgbHUDLabel)
	value := r.st.fg(RgbHUDText).Bold(true)
	y := 0

	row := func(name, val string) {
		r.text(x, y, name, label)
		r.text(x+r.cfg.HUDWidth-len(val), y, val, value)
		y++
	}

	row("SCORE", fmt.Sprintf("%d", hud.Score.Score))
	row("MULTIPLIER", fmt.Sprintf("x%d", hud.Score.Multiplier))
	if hud.Threshold > 0 {
		r.bar(x, y, float64(hud.Score.MultiplierProgress)/float64(hud.Threshold))
		y++
	}
	y++

	tempo := "normal"
	if hud.Fast {
		tempo = "FAST"
	}
	r.text(x, y, "TEMPO", label)
	tempoStyle := value
	if hud.Fast {
		tempoStyle = r.st.fg(RgbFast).Bold(true)
	}
	r.text(x+r.cfg.HUDWidth-len(tempo), y, tempo, tempoStyle)
	y++
	row("DISTANCE", fmt.Sprintf("%.0f", hud.Distance))
	y++

	row("CUBES", fmt.Sprintf("%d", hud.Score.CubesCollected))
	row("CLOSE CALLS", fmt.Sprintf("%d", hud.Score.CloseCalls))
	row("COLLISIONS", fmt.Sprintf("%d", hud.Score.Collisions))
	row("MISSES", fmt.Sprintf("%d", hud.Score.Misses))
	y++

	for _, band := range []struct {
		name string
		val  float64
	}{
		{"BASS", hud.Bands.Bass},
		{"MID", hud.Bands.Mid},
		{"TREBLE", hud.Bands.Treble},
	} {
		r.text(x, y, band.name, label)
		r.bar(x+7, y, band.val)
		y++
	}
	y++

	track := hud.Track
	if track == "" {
		track = "no track"
	}
	if limit := r.cfg.HUDWidth; len(track) > limit {
		track = track[:limit-1] + "~"
	}
	r.text(x, y, track, value)
	y++

	switch {
	case hud.Muted:
		row("VOLUME", "muted")
	default:
		row("VOLUME", fmt.Sprintf("%.0f%%", hud.Volume*100))
	}
	if !hud.Playing && !hud.Paused {
		row("AUDIO", "stopped")
	}
	if hud.Spectators > 0 {
		row("SPECTATORS", fmt.Sprintf("%d", hud.Spectators))
	}
}

// bar draws a [#####.....] meter filled by frac, colored along the heat gradient
func (r *Renderer) bar(x, y int, frac float64) {
	frac = min(max(frac, 0), 1)
	filled := int(frac*barWidth + 0.5)
	r.text(x, y, "[", r.st.fg(RgbHUDLabel))
	r.text(x+1, y, strings.Repeat("#", filled), r.st.fg(HeatColor(frac)))
	r.text(x+1+filled, y, strings.Repeat(".", barWidth-filled), r.st.fg(RgbHUDLabel))
	r.text(x+1+barWidth, y, "]", r.st.fg(RgbHUDLabel))
}
