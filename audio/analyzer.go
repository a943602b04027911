package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyzer turns a time-domain frame into byte frequency magnitudes
// Output matches a browser AnalyserNode: FFTSize/2 bins, time-smoothed, scaled
// from [MinDecibels, MaxDecibels] onto 0..255
type Analyzer struct {
	size      int
	smoothing float64
	minDb     float64
	maxDb     float64

	window   []float64
	windowed []float64
	smoothed []float64
	out      []uint8
}

// NewAnalyzer builds an analyzer from the FFT fields of cfg
func NewAnalyzer(cfg Config) *Analyzer {
	size := cfg.FFTSize
	return &Analyzer{
		size:      size,
		smoothing: cfg.Smoothing,
		minDb:     cfg.MinDecibels,
		maxDb:     cfg.MaxDecibels,
		window:    window.Hann(size),
		windowed:  make([]float64, size),
		smoothed:  make([]float64, size/2),
		out:       make([]uint8, size/2),
	}
}

// Bins returns the number of output bins
func (a *Analyzer) Bins() int {
	return a.size / 2
}

// Analyze returns the byte spectrum of the most recent FFTSize samples of frame
// Short frames are zero-padded at the front. The returned slice is reused by the next call
func (a *Analyzer) Analyze(frame []float64) []uint8 {
	if len(frame) > a.size {
		frame = frame[len(frame)-a.size:]
	}
	pad := a.size - len(frame)
	for i := 0; i < pad; i++ {
		a.windowed[i] = 0
	}
	for i, s := range frame {
		a.windowed[pad+i] = s * a.window[pad+i]
	}

	spectrum := fft.FFTReal(a.windowed)

	n := float64(a.size)
	scale := 255 / (a.maxDb - a.minDb)
	for k := range a.out {
		mag := cmplx.Abs(spectrum[k]) / n
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		if a.smoothed[k] <= 0 {
			a.out[k] = 0
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		a.out[k] = uint8(min(max(scale*(db-a.minDb), 0), 255))
	}
	return a.out
}

// Reset clears the smoothing history
func (a *Analyzer) Reset() {
	clear(a.smoothed)
	clear(a.out)
}
