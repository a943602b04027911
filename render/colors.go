package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/entity"
)

// Palette
var (
	RgbBackground = RGB{26, 27, 38} // Tokyo Night background
	RgbLane       = RGB{60, 62, 84}
	RgbLaneBeat   = RGB{110, 112, 150}
	RgbVehicle    = RGB{255, 165, 0}
	RgbCube       = RGB{0, 220, 255}
	RgbObstacle   = RGB{255, 80, 80}
	RgbPortal     = RGB{200, 120, 255}
	RgbBurst      = RGB{255, 255, 200}
	RgbFlash      = RGB{255, 0, 0}
	RgbPopup      = RGB{50, 255, 50}
	RgbHUDText    = RGB{220, 220, 220}
	RgbHUDLabel   = RGB{140, 140, 160}
	RgbFast       = RGB{255, 192, 203}
)

// kindColor returns the base color of an entity kind
func kindColor(k entity.Kind) RGB {
	switch k {
	case entity.KindCube:
		return RgbCube
	case entity.KindObstacle:
		return RgbObstacle
	case entity.KindPortal:
		return RgbPortal
	default:
		return RgbBurst
	}
}

// HeatColor returns a red to green to cyan gradient position for a meter
// progress is 0.0 to 1.0; values outside are clamped
func HeatColor(progress float64) RGB {
	progress = min(max(progress, 0), 1)
	switch {
	case progress < 0.5:
		t := progress / 0.5
		return RGB{R: 255, G: clamp(69 + (215-69)*t), B: 0}
	default:
		t := (progress - 0.5) / 0.5
		return RGB{R: clamp(255 - 255*t), G: clamp(215 - 9*t), B: clamp(209 * t)}
	}
}

// styler builds styles in truecolor or monochrome
type styler struct {
	color bool
}

func (s styler) fg(c RGB) tcell.Style {
	if !s.color {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(c.Tcell()).Background(RgbBackground.Tcell())
}

func (s styler) fgbg(fg, bg RGB) tcell.Style {
	if !s.color {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(fg.Tcell()).Background(bg.Tcell())
}

// faded fades c toward the background by opacity; monochrome dims below half opacity
func (s styler) faded(c RGB, opacity float64) tcell.Style {
	if !s.color {
		return tcell.StyleDefault.Dim(opacity < 0.5)
	}
	return s.fg(Blend(RgbBackground, c, opacity))
}

func (s styler) base() tcell.Style {
	return s.fg(RgbHUDText)
}
