package rhythm

import (
	"github.com/lixenwraith/beat-runner/parameter"
)

// Bands is the ambient bass/mid/treble energy triplet, each in [0,1]
// Drives visual pulse only; beat detection uses the detector's own range
type Bands struct {
	Bass   float64 `json:"bass"`
	Mid    float64 `json:"mid"`
	Treble float64 `json:"treble"`
}

// BandEnergies computes ambient band energy; bands not covered by the spectrum read as 0
func BandEnergies(spectrum []uint8) Bands {
	var b Bands
	b.Bass, _ = bandMean(spectrum, parameter.BandBassLow, parameter.BandBassHigh)
	b.Mid, _ = bandMean(spectrum, parameter.BandMidLow, parameter.BandMidHigh)
	b.Treble, _ = bandMean(spectrum, parameter.BandTrebleLow, parameter.BandTrebleHigh)
	return b
}
