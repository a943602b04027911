package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// RGB is a 24-bit color used for blending before conversion to tcell
type RGB struct {
	R, G, B uint8
}

// Lookup tables array access (no pointers) for speed
var (
	softLightG  [256]float64
	softLightDF [256]float64
)

// init pre-calculates the Perez SoftLight lookup tables
func init() {
	for i := 0; i < 256; i++ {
		df := float64(i) / 255.0
		softLightDF[i] = df

		if df <= 0.25 {
			softLightG[i] = ((16.0*df-12.0)*df + 4.0) * df
		} else {
			softLightG[i] = math.Sqrt(df)
		}
	}
}

func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

func softLightChannel(d, s uint8, intensity float64) uint8 {
	df := softLightDF[d]
	sf := softLightDF[s]

	var result float64
	if sf < 0.5 {
		result = df - (1.0-2.0*sf)*df*(1.0-df)
	} else {
		result = df + (2.0*sf-1.0)*(softLightG[d]-df)
	}
	result = df + (result-df)*intensity
	return clamp(result*255.0 + 0.5)
}

// SoftLight applies Perez soft light blend - gentler than linear alpha
func SoftLight(c, src RGB, intensity float64) RGB {
	return RGB{
		R: softLightChannel(c.R, src.R, intensity),
		G: softLightChannel(c.G, src.G, intensity),
		B: softLightChannel(c.B, src.B, intensity),
	}
}

// Blend mixes src over c by alpha
// If alpha is 1.0 or 0.0, we return early to save math
func Blend(c, src RGB, alpha float64) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}
	inv := 1.0 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv),
	}
}

// Scale brightens or darkens by factor, clamping each channel
func Scale(c RGB, factor float64) RGB {
	return RGB{
		R: clamp(float64(c.R) * factor),
		G: clamp(float64(c.G) * factor),
		B: clamp(float64(c.B) * factor),
	}
}

// Tcell converts to a tcell color
func (c RGB) Tcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
