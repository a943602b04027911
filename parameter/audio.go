package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration is the speaker buffer length
	AudioBufferDuration = 100 * time.Millisecond
)

// Frequency Analysis
// Mirrors a WebAudio AnalyserNode so bin indices line up with the band ranges
const (
	// AnalyzerFFTSize is the FFT frame length; the spectrum has FFTSize/2 bins
	AnalyzerFFTSize = 256

	// AnalyzerSmoothing is the time constant blended with the previous frame
	AnalyzerSmoothing = 0.8

	// AnalyzerMinDecibels maps to byte value 0
	AnalyzerMinDecibels = -100.0

	// AnalyzerMaxDecibels maps to byte value 255
	AnalyzerMaxDecibels = -30.0
)

// Drum synth
const (
	DrumKickDecay  = 300 * time.Millisecond
	DrumHihatDecay = 60 * time.Millisecond
	DrumSnareDecay = 180 * time.Millisecond

	// DrumStepsPerBeat divides each beat into sixteenth steps
	DrumStepsPerBeat = 4

	// DrumFallbackBPM is used when a pattern is built with a non-positive tempo
	DrumFallbackBPM = 120.0
)
