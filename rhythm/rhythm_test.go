package rhythm

import (
	"math/rand/v2"
	"testing"
	"time"
)

type fixedTempo struct{ fast bool }

func (f *fixedTempo) IsFastTempo() bool { return f.fast }

// spectrumWithBass builds a 128-bin spectrum with the detector band set to value
func spectrumWithBass(value uint8) []uint8 {
	s := make([]uint8, 128)
	for i := 2; i <= 8; i++ {
		s[i] = value
	}
	return s
}

// TestDetectAfterGapThenCooldown covers a beat after a long gap then a suppressed repeat
func TestDetectAfterGapThenCooldown(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil)
	d.SetLastBeat(0)

	bins := spectrumWithBass(230) // ~0.9
	ev, ok := d.Detect(bins, 1000*time.Millisecond)
	if !ok {
		t.Fatal("expected beat after 1000ms gap")
	}
	if ev.Timestamp != 1000*time.Millisecond {
		t.Errorf("unexpected timestamp %v", ev.Timestamp)
	}
	if ev.BassEnergy < 0.89 || ev.BassEnergy > 0.91 {
		t.Errorf("unexpected bass energy %f", ev.BassEnergy)
	}

	if _, ok := d.Detect(bins, 1050*time.Millisecond); ok {
		t.Error("beat inside cooldown must be suppressed")
	}
	last, _ := d.LastBeat()
	if last != 1000*time.Millisecond {
		t.Errorf("suppressed beat moved lastBeat to %v", last)
	}
}

func TestDetectBelowThreshold(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil)
	if _, ok := d.Detect(spectrumWithBass(100), time.Second); ok {
		t.Error("low energy should not fire")
	}
	// Exactly at threshold does not fire
	if _, ok := d.DetectEnergy(0.7, 2*time.Second); ok {
		t.Error("energy equal to threshold should not fire")
	}
}

func TestDetectFirstBeatIgnoresCooldown(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil)
	if _, ok := d.Detect(spectrumWithBass(255), 10*time.Millisecond); !ok {
		t.Error("first beat of a session should fire regardless of elapsed time")
	}
}

func TestDetectMissingSpectrum(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil)
	cases := map[string][]uint8{
		"nil":   nil,
		"empty": {},
		"short": make([]uint8, 5),
	}
	for name, bins := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok := d.Detect(bins, time.Second); ok {
				t.Error("missing data must not produce a beat")
			}
		})
	}
}

func TestCooldownFollowsTempo(t *testing.T) {
	tempo := &fixedTempo{}
	d := NewDetector(DefaultDetectorConfig(), tempo)
	if d.Cooldown() != 250*time.Millisecond {
		t.Errorf("normal cooldown expected, got %v", d.Cooldown())
	}
	tempo.fast = true
	if d.Cooldown() != 125*time.Millisecond {
		t.Errorf("fast cooldown expected, got %v", d.Cooldown())
	}

	d.SetLastBeat(0)
	if _, ok := d.DetectEnergy(0.9, 150*time.Millisecond); !ok {
		t.Error("150ms gap should pass fast cooldown")
	}
}

// TestBeatSpacingProperty checks no two beats land inside the active cooldown
func TestBeatSpacingProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for run := 0; run < 50; run++ {
		tempo := &fixedTempo{}
		d := NewDetector(DefaultDetectorConfig(), tempo)

		var now time.Duration
		var last time.Duration
		fired := false
		for i := 0; i < 2000; i++ {
			now += time.Duration(1+rng.IntN(40)) * time.Millisecond
			if rng.IntN(100) == 0 {
				tempo.fast = !tempo.fast
			}
			ev, ok := d.DetectEnergy(rng.Float64(), now)
			if !ok {
				continue
			}
			if fired && ev.Timestamp-last <= d.Cooldown() {
				t.Fatalf("run %d: beats %v apart, cooldown %v", run, ev.Timestamp-last, d.Cooldown())
			}
			last = ev.Timestamp
			fired = true
		}
	}
}

func TestTempoClassifierWaitsForFullBuffer(t *testing.T) {
	tc := NewTempoClassifier(DefaultTempoConfig())
	for i := 0; i < 29; i++ {
		if i%2 == 0 {
			tc.Observe(0.9)
		} else {
			tc.Observe(0.1)
		}
	}
	if tc.IsFastTempo() || tc.Full() {
		t.Fatal("classification must not run before the buffer is full")
	}
	tc.Observe(0.1)
	if !tc.Full() {
		t.Fatal("buffer should be full after 30 samples")
	}
	if !tc.IsFastTempo() {
		t.Errorf("alternating peaks should classify fast, peaks=%d", tc.Peaks())
	}
}

func TestTempoClassifierBoundedHistory(t *testing.T) {
	tc := NewTempoClassifier(DefaultTempoConfig())
	for i := 0; i < 500; i++ {
		tc.Observe(0.5)
		if tc.Len() > 30 {
			t.Fatalf("history grew to %d", tc.Len())
		}
	}
}

// TestTempoClassifierPeakRatio checks the 5-of-30 boundary
func TestTempoClassifierPeakRatio(t *testing.T) {
	build := func(peaks int) *TempoClassifier {
		tc := NewTempoClassifier(DefaultTempoConfig())
		samples := make([]float64, 30)
		for i := range samples {
			samples[i] = 0.2
		}
		for p := 0; p < peaks; p++ {
			samples[1+p*5] = 0.9
		}
		for _, s := range samples {
			tc.Observe(s)
		}
		return tc
	}

	if tc := build(4); tc.IsFastTempo() {
		t.Errorf("4 peaks should stay normal, peaks=%d", tc.Peaks())
	}
	if tc := build(5); !tc.IsFastTempo() {
		t.Errorf("5 peaks should classify fast, peaks=%d", tc.Peaks())
	}
}

func TestTempoClassifierHysteresis(t *testing.T) {
	cfg := DefaultTempoConfig()
	cfg.HistorySize = 6
	cfg.FastPeakDivisor = 3 // fast at >= 2 peaks
	cfg.HysteresisFrames = 3
	tc := NewTempoClassifier(cfg)

	// Fill with a quiet history
	for i := 0; i < 6; i++ {
		tc.Observe(0.1)
	}

	// Two rising edges enter the window; flip must wait 3 frames
	seq := []float64{0.9, 0.1, 0.9}
	for _, s := range seq {
		tc.Observe(s)
	}
	if tc.IsFastTempo() {
		t.Fatal("hysteresis should delay the first fast frame")
	}
	tc.Observe(0.1)
	tc.Observe(0.1)
	if !tc.IsFastTempo() {
		t.Errorf("fast classification should hold after hysteresis, peaks=%d", tc.Peaks())
	}
}

func TestTempoClassifierReset(t *testing.T) {
	tc := NewTempoClassifier(DefaultTempoConfig())
	for i := 0; i < 60; i++ {
		tc.Observe(float64(i % 2))
	}
	tc.Reset()
	if tc.IsFastTempo() || tc.Len() != 0 {
		t.Error("reset should clear history and classification")
	}
}

func TestBandEnergies(t *testing.T) {
	bins := make([]uint8, 128)
	for i := 0; i <= 3; i++ {
		bins[i] = 255
	}
	for i := 5; i <= 11; i++ {
		bins[i] = 51
	}
	b := BandEnergies(bins)
	if b.Bass != 1 {
		t.Errorf("bass expected 1, got %f", b.Bass)
	}
	if b.Mid < 0.19 || b.Mid > 0.21 {
		t.Errorf("mid expected 0.2, got %f", b.Mid)
	}
	if b.Treble != 0 {
		t.Errorf("treble expected 0, got %f", b.Treble)
	}

	if got := BandEnergies(nil); got != (Bands{}) {
		t.Errorf("empty spectrum should yield zero bands, got %+v", got)
	}
}
