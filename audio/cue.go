package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Cue envelope timings
const (
	collectDuration   = 220 * time.Millisecond
	collisionDuration = 180 * time.Millisecond
	closeCallDuration = 160 * time.Millisecond
	portalDuration    = 600 * time.Millisecond
	cueAttack         = 5 * time.Millisecond
)

// oscillator generates a fixed-length wave, optionally sweeping frequency linearly
type oscillator struct {
	freq     float64
	sweep    float64 // Hz added by the end of the stream
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a constant-frequency oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates an oscillator gliding from one frequency to another
func NewSweep(from, to float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     from,
		sweep:    to - from,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		freq := o.freq + o.sweep*float64(o.position)/float64(o.duration)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s with a linear attack and release
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s at a linear gain; math.Log2(0) is -Inf so zero is silent
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// CueSound builds a fresh streamer for the cue, scaled by master and cue volume
// Returns nil for an unknown cue
func CueSound(cue Cue, cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	var s beep.Streamer
	switch cue {
	case CueCollect:
		// A5 with an octave overtone
		fund := NewEnvelope(NewOscillator(880.0, collectDuration, WaveSine, rate), collectDuration, cueAttack, 200*time.Millisecond, rate)
		over := NewEnvelope(NewOscillator(1760.0, collectDuration, WaveSine, rate), collectDuration, cueAttack, 120*time.Millisecond, rate)
		s = beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))
	case CueCollision:
		osc := NewOscillator(100.0, collisionDuration, WaveSaw, rate)
		s = NewEnvelope(osc, collisionDuration, cueAttack, 100*time.Millisecond, rate)
	case CueCloseCall:
		noise := NewOscillator(0, closeCallDuration, WaveNoise, rate)
		s = newVolume(NewEnvelope(noise, closeCallDuration, 60*time.Millisecond, 90*time.Millisecond, rate), 0.5)
	case CuePortal:
		sweep := NewSweep(220.0, 880.0, portalDuration, WaveSquare, rate)
		s = NewEnvelope(sweep, portalDuration, 50*time.Millisecond, 300*time.Millisecond, rate)
	default:
		return nil
	}

	return newVolume(s, cfg.EffectVolume(cue)*cfg.MasterVolume)
}
