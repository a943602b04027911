package rhythm

import (
	"github.com/lixenwraith/beat-runner/parameter"
)

// TempoConfig holds tempo classification tuning
type TempoConfig struct {
	HistorySize      int     `toml:"history_size"`
	PeakThreshold    float64 `toml:"peak_threshold"`
	FastPeakDivisor  int     `toml:"fast_peak_divisor"`
	HysteresisFrames int     `toml:"hysteresis_frames"`
}

// DefaultTempoConfig returns the stock tuning
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{
		HistorySize:      parameter.TempoHistorySize,
		PeakThreshold:    parameter.TempoPeakThreshold,
		FastPeakDivisor:  parameter.TempoFastPeakDivisor,
		HysteresisFrames: parameter.TempoHysteresisFrames,
	}
}

// TempoClassifier labels the current section fast or normal from recent bass peaks
//
// Rising edges above PeakThreshold are counted over a ring buffer of bass samples
// Classification is only recomputed once the buffer is full
type TempoClassifier struct {
	cfg TempoConfig

	buf   []float64
	head  int // Next write index
	count int

	fast      bool
	peaks     int
	candidate bool // Classification waiting out hysteresis
	held      int  // Frames candidate has held
}

// NewTempoClassifier creates a classifier with an empty history
func NewTempoClassifier(cfg TempoConfig) *TempoClassifier {
	if cfg.HistorySize < 2 {
		cfg.HistorySize = 2
	}
	if cfg.FastPeakDivisor < 1 {
		cfg.FastPeakDivisor = 1
	}
	return &TempoClassifier{
		cfg: cfg,
		buf: make([]float64, cfg.HistorySize),
	}
}

// Observe records one frame of bass energy and reclassifies when the history is full
func (t *TempoClassifier) Observe(bass float64) {
	t.buf[t.head] = bass
	t.head = (t.head + 1) % len(t.buf)
	if t.count < len(t.buf) {
		t.count++
	}
	if t.count < len(t.buf) {
		return
	}

	t.peaks = t.countPeaks()
	next := t.peaks >= len(t.buf)/t.cfg.FastPeakDivisor

	if next == t.fast {
		t.held = 0
		return
	}
	if t.cfg.HysteresisFrames <= 0 {
		t.fast = next
		return
	}

	if t.held == 0 || t.candidate != next {
		t.candidate = next
		t.held = 1
	} else {
		t.held++
	}
	if t.held >= t.cfg.HysteresisFrames {
		t.fast = next
		t.held = 0
	}
}

// countPeaks counts rising edges across the threshold in chronological order
func (t *TempoClassifier) countPeaks() int {
	n := len(t.buf)
	peaks := 0
	// head is the oldest sample once full
	prev := t.buf[t.head]
	for i := 1; i < n; i++ {
		cur := t.buf[(t.head+i)%n]
		if prev <= t.cfg.PeakThreshold && cur > t.cfg.PeakThreshold {
			peaks++
		}
		prev = cur
	}
	return peaks
}

// IsFastTempo reports the current classification
func (t *TempoClassifier) IsFastTempo() bool {
	return t.fast
}

// Peaks returns the rising-edge count from the last full-buffer classification
func (t *TempoClassifier) Peaks() int {
	return t.peaks
}

// Len returns the number of samples held, never above HistorySize
func (t *TempoClassifier) Len() int {
	return t.count
}

// Full reports whether classification is live
func (t *TempoClassifier) Full() bool {
	return t.count == len(t.buf)
}

// Reset clears history and returns to normal tempo
func (t *TempoClassifier) Reset() {
	clear(t.buf)
	t.head = 0
	t.count = 0
	t.fast = false
	t.peaks = 0
	t.held = 0
	t.candidate = false
}
