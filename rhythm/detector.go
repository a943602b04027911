package rhythm

import (
	"time"

	"github.com/lixenwraith/beat-runner/parameter"
)

// BeatEvent is a detected rhythmic pulse; ephemeral, consumed in the same frame
type BeatEvent struct {
	Timestamp  time.Duration
	BassEnergy float64
}

// TempoSource reports the current tempo classification
type TempoSource interface {
	IsFastTempo() bool
}

// DetectorConfig holds beat detection tuning
type DetectorConfig struct {
	Threshold      float64       `toml:"threshold"`
	BandLow        int           `toml:"band_low"`
	BandHigh       int           `toml:"band_high"`
	CooldownNormal time.Duration `toml:"cooldown_normal"`
	CooldownFast   time.Duration `toml:"cooldown_fast"`
}

// DefaultDetectorConfig returns the stock tuning
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:      parameter.BeatThreshold,
		BandLow:        parameter.BeatBandLow,
		BandHigh:       parameter.BeatBandHigh,
		CooldownNormal: parameter.BeatCooldownNormal,
		CooldownFast:   parameter.BeatCooldownFast,
	}
}

// Detector fires beats when bass energy crosses the threshold outside the cooldown
type Detector struct {
	cfg   DetectorConfig
	tempo TempoSource

	lastBeat time.Duration
	hasBeat  bool
}

// NewDetector creates a detector; tempo may be nil for a fixed normal cooldown
func NewDetector(cfg DetectorConfig, tempo TempoSource) *Detector {
	return &Detector{
		cfg:   cfg,
		tempo: tempo,
	}
}

// Cooldown returns the minimum beat gap for the current tempo
func (d *Detector) Cooldown() time.Duration {
	if d.tempo != nil && d.tempo.IsFastTempo() {
		return d.cfg.CooldownFast
	}
	return d.cfg.CooldownNormal
}

// BassEnergy averages the configured bin range and normalizes to [0,1]
// ok is false when the spectrum does not cover the range
func (d *Detector) BassEnergy(spectrum []uint8) (float64, bool) {
	return bandMean(spectrum, d.cfg.BandLow, d.cfg.BandHigh)
}

// Detect returns a beat if the spectrum's bass energy qualifies at now
func (d *Detector) Detect(spectrum []uint8, now time.Duration) (BeatEvent, bool) {
	bass, ok := d.BassEnergy(spectrum)
	if !ok {
		return BeatEvent{}, false
	}
	return d.DetectEnergy(bass, now)
}

// DetectEnergy applies threshold and cooldown to a precomputed bass energy
// lastBeat only moves when a beat fires
func (d *Detector) DetectEnergy(bass float64, now time.Duration) (BeatEvent, bool) {
	if bass <= d.cfg.Threshold {
		return BeatEvent{}, false
	}
	if d.hasBeat && now-d.lastBeat <= d.Cooldown() {
		return BeatEvent{}, false
	}

	d.lastBeat = now
	d.hasBeat = true
	return BeatEvent{Timestamp: now, BassEnergy: bass}, true
}

// LastBeat returns the timestamp of the most recent beat
func (d *Detector) LastBeat() (time.Duration, bool) {
	return d.lastBeat, d.hasBeat
}

// SetLastBeat seeds the cooldown reference
func (d *Detector) SetLastBeat(t time.Duration) {
	d.lastBeat = t
	d.hasBeat = true
}

// Reset forgets the last beat
func (d *Detector) Reset() {
	d.lastBeat = 0
	d.hasBeat = false
}

// bandMean returns mean(spectrum[lo..hi])/255, inclusive range
func bandMean(spectrum []uint8, lo, hi int) (float64, bool) {
	if lo < 0 || hi < lo || hi >= len(spectrum) {
		return 0, false
	}
	var sum int
	for _, v := range spectrum[lo : hi+1] {
		sum += int(v)
	}
	return float64(sum) / float64(hi-lo+1) / 255.0, true
}
