package parameter

import "time"

// Beat Detection
const (
	// BeatThreshold is the normalized bass energy a frame must exceed to fire a beat
	BeatThreshold = 0.7

	// BeatBandLow is the first spectrum bin (inclusive) averaged for bass energy
	BeatBandLow = 2

	// BeatBandHigh is the last spectrum bin (inclusive) averaged for bass energy
	BeatBandHigh = 8

	// BeatCooldownNormal is the minimum gap between beats at normal tempo
	BeatCooldownNormal = 250 * time.Millisecond

	// BeatCooldownFast is the minimum gap between beats once fast tempo is detected
	BeatCooldownFast = 125 * time.Millisecond
)

// Tempo Classification
const (
	// TempoHistorySize is the number of bass samples kept in the ring buffer
	TempoHistorySize = 30

	// TempoPeakThreshold is the energy a sample must rise above to count as a peak
	TempoPeakThreshold = 0.7

	// TempoFastPeakDivisor classifies fast when peaks >= history/divisor (5 of 30)
	TempoFastPeakDivisor = 6

	// TempoHysteresisFrames is consecutive frames a new classification must hold
	// 0 disables hysteresis
	TempoHysteresisFrames = 0
)

// Ambient bands, bin ranges inclusive
const (
	BandBassLow    = 0
	BandBassHigh   = 3
	BandMidLow     = 5
	BandMidHigh    = 11
	BandTrebleLow  = 13
	BandTrebleHigh = 19
)

// Song timing
const (
	// DefaultBPM seeds the beat interval used for spawn lead and travel time
	DefaultBPM = 130

	// BeatsAhead is how many beat intervals ahead of the player an entity spawns
	BeatsAhead = 4
)

// BeatInterval converts a tempo in BPM to the gap between beats
// Non-positive BPM falls back to DefaultBPM
func BeatInterval(bpm float64) time.Duration {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return time.Duration(60000.0 / bpm * float64(time.Millisecond))
}
