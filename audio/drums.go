package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/beat-runner/parameter"
)

// StepTrigger fires an instrument on a sixteenth-note step
type StepTrigger struct {
	Step     int
	Velocity float64
}

// DrumPattern is a one-bar loop of sixteenth steps
type DrumPattern struct {
	Length int
	Kick   []StepTrigger
	Hihat  []StepTrigger
	Snare  []StepTrigger
}

// FourOnTheFloor is the built-in pattern: kick on every beat, offbeat hats, backbeat snare
var FourOnTheFloor = DrumPattern{
	Length: 16,
	Kick: []StepTrigger{
		{Step: 0, Velocity: 1.0},
		{Step: 4, Velocity: 1.0},
		{Step: 8, Velocity: 1.0},
		{Step: 12, Velocity: 1.0},
	},
	Hihat: []StepTrigger{
		{Step: 2, Velocity: 0.6},
		{Step: 6, Velocity: 0.6},
		{Step: 10, Velocity: 0.6},
		{Step: 14, Velocity: 0.6},
	},
	Snare: []StepTrigger{
		{Step: 4, Velocity: 0.7},
		{Step: 12, Velocity: 0.7},
	},
}

// drumVoice plays one pre-rendered hit
type drumVoice struct {
	buf      []float64
	pos      int
	velocity float64
}

func (v *drumVoice) trigger(velocity float64) {
	v.pos = 0
	v.velocity = velocity
}

func (v *drumVoice) sample() float64 {
	if v.pos >= len(v.buf) {
		return 0
	}
	s := v.buf[v.pos] * v.velocity
	v.pos++
	return s
}

// DrumTrack is an endless pattern streamer at a fixed BPM
// Used as the music source when no track file is given
type DrumTrack struct {
	pattern     DrumPattern
	stepSamples int
	pos         int
	step        int

	kick, hihat, snare drumVoice
}

// NewDrumTrack renders the voices for rate and schedules pattern at bpm
func NewDrumTrack(pattern DrumPattern, bpm float64, rate beep.SampleRate) *DrumTrack {
	if pattern.Length <= 0 {
		pattern = FourOnTheFloor
	}
	if bpm <= 0 {
		bpm = parameter.DrumFallbackBPM
	}
	stepSamples := max(int(float64(rate)*60/bpm/parameter.DrumStepsPerBeat), 1)

	t := &DrumTrack{
		pattern:     pattern,
		stepSamples: stepSamples,
		kick:        drumVoice{buf: generateKick(rate), pos: math.MaxInt},
		hihat:       drumVoice{buf: generateHihat(rate), pos: math.MaxInt},
		snare:       drumVoice{buf: generateSnare(rate), pos: math.MaxInt},
	}
	return t
}

func (t *DrumTrack) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos%t.stepSamples == 0 {
			t.triggerStep(t.step)
			t.step = (t.step + 1) % t.pattern.Length
		}
		t.pos++

		v := t.kick.sample() + t.hihat.sample()*0.4 + t.snare.sample()*0.6
		v = math.Tanh(v)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (t *DrumTrack) Err() error { return nil }

func (t *DrumTrack) triggerStep(step int) {
	for _, tr := range t.pattern.Kick {
		if tr.Step == step {
			t.kick.trigger(tr.Velocity)
		}
	}
	for _, tr := range t.pattern.Hihat {
		if tr.Step == step {
			t.hihat.trigger(tr.Velocity)
		}
	}
	for _, tr := range t.pattern.Snare {
		if tr.Step == step {
			t.snare.trigger(tr.Velocity)
		}
	}
}

// StepDuration returns the time between two sixteenth steps
func (t *DrumTrack) StepDuration(rate beep.SampleRate) time.Duration {
	return rate.D(t.stepSamples)
}

func generateKick(rate beep.SampleRate) []float64 {
	duration := rate.N(parameter.DrumKickDecay)
	buf := make([]float64, duration)

	startFreq := 150.0
	endFreq := 40.0

	phase := 0.0
	for i := range buf {
		t := float64(i) / float64(duration)
		// Exponential pitch drop and amplitude decay
		freq := endFreq + (startFreq-endFreq)*math.Exp(-8*t)
		amp := math.Exp(-5 * t)

		buf[i] = math.Tanh(math.Sin(2*math.Pi*phase) * amp * 2.0)
		phase += freq / float64(rate)
	}
	return buf
}

func generateHihat(rate beep.SampleRate) []float64 {
	duration := rate.N(parameter.DrumHihatDecay)
	buf := make([]float64, duration)

	for i := range buf {
		t := float64(i) / float64(duration)
		buf[i] = (rand.Float64()*2 - 1) * math.Exp(-15*t)
	}
	highPass(buf, 7000, rate)
	normalizePeak(buf, 0.9)
	return buf
}

func generateSnare(rate beep.SampleRate) []float64 {
	duration := rate.N(parameter.DrumSnareDecay)
	buf := make([]float64, duration)

	// 200Hz body plus noise for the wires
	phase := 0.0
	for i := range buf {
		t := float64(i) / float64(duration)
		tone := math.Sin(2*math.Pi*phase) * math.Exp(-10*t) * 0.5
		noise := (rand.Float64()*2 - 1) * math.Exp(-8*t) * 0.5
		buf[i] = tone + noise
		phase += 200.0 / float64(rate)
	}
	normalizePeak(buf, 0.9)
	return buf
}

// highPass is a one-pole RC filter applied in place
func highPass(buf []float64, cutoff float64, rate beep.SampleRate) {
	if len(buf) == 0 {
		return
	}
	rc := 1.0 / (2 * math.Pi * cutoff)
	dt := 1.0 / float64(rate)
	alpha := rc / (rc + dt)

	prevIn := buf[0]
	prevOut := buf[0]
	for i := 1; i < len(buf); i++ {
		in := buf[i]
		out := alpha * (prevOut + in - prevIn)
		buf[i] = out
		prevIn, prevOut = in, out
	}
}

func normalizePeak(buf []float64, peak float64) {
	var m float64
	for _, v := range buf {
		m = max(m, math.Abs(v))
	}
	if m == 0 {
		return
	}
	scale := peak / m
	for i := range buf {
		buf[i] *= scale
	}
}
