package audio

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/beat-runner/status"
)

// Player plays one music source plus cue effects and exposes the music spectrum
// The speaker pulls the mixer on its own goroutine; every mutation of the
// streamer graph happens under the speaker lock once started
type Player struct {
	mu  sync.Mutex
	cfg Config

	rate     beep.SampleRate
	mixer    *beep.Mixer
	music    *beep.Ctrl
	volume   *effects.Volume
	source   io.Closer
	seeker   beep.StreamSeeker
	base     beep.Streamer
	tap      *Tap
	analyzer *Analyzer
	scratch  []float64
	pumpBuf  [][2]float64
	track    string

	started  bool
	playing  atomic.Bool
	finished atomic.Bool // Set once the mixer has dropped the music chain

	lock, unlock func()

	mPlaying *atomic.Bool
	mTrack   *status.AtomicString
}

// NewPlayer creates a stopped player; reg may be nil
func NewPlayer(cfg Config, reg *status.Registry) *Player {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Player{
		cfg:      cfg,
		rate:     beep.SampleRate(cfg.SampleRate),
		mixer:    &beep.Mixer{},
		analyzer: NewAnalyzer(cfg),
		lock:     func() {},
		unlock:   func() {},
		mPlaying: reg.Bools.Get(status.KeyAudioPlaying),
		mTrack:   reg.Strings.Get(status.KeyAudioTrack),
	}
}

// Start opens the speaker and begins pulling the mixer
// A disabled config leaves the player silent and never playing
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || !p.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(p.cfg.Buffer)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(p.mixer)
	p.lock, p.unlock = speaker.Lock, speaker.Unlock
	p.started = true
	return nil
}

// Load decodes a track file and makes it the music source
func (p *Player) Load(path string) error {
	s, format, err := Open(path)
	if err != nil {
		return err
	}

	var music beep.Streamer = s
	if p.cfg.Loop {
		music = beep.Loop(-1, s)
	}
	if format.SampleRate != p.rate {
		music = beep.Resample(4, format.SampleRate, p.rate, music)
	}
	p.setSource(music, s, s, filepath.Base(path))
	return nil
}

// LoadDrums makes an endless drum pattern at bpm the music source
func (p *Player) LoadDrums(bpm float64) {
	p.setSource(NewDrumTrack(FourOnTheFloor, bpm, p.rate), nil, nil, fmt.Sprintf("drums %.0f bpm", bpm))
}

func (p *Player) setSource(s beep.Streamer, seeker beep.StreamSeeker, closer io.Closer, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lock()
	if p.music != nil {
		// A nil streamer drains; the mixer drops it on the next pull
		p.music.Streamer = nil
	}
	ctrl := &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(p.ended))}
	p.base = s
	tap := NewTap(ctrl, p.cfg.FFTSize)
	vol := newVolume(tap, p.cfg.MusicVolume*p.cfg.MasterVolume)
	p.mixer.Add(vol)
	p.unlock()

	if p.source != nil {
		p.source.Close()
	}
	p.music, p.tap, p.volume, p.source, p.seeker = ctrl, tap, vol, closer, seeker
	p.track = name
	p.analyzer.Reset()
	p.finished.Store(false)
	p.playing.Store(true)

	p.mTrack.Store(name)
	p.mPlaying.Store(true)
}

// ended runs on the speaker goroutine when a non-looping source finishes
func (p *Player) ended() {
	p.finished.Store(true)
	p.playing.Store(false)
	p.mPlaying.Store(false)
}

// TogglePause pauses or resumes the music and returns whether it is now playing
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.music == nil {
		return false
	}
	p.lock()
	p.music.Paused = !p.music.Paused
	paused := p.music.Paused
	p.unlock()

	p.playing.Store(!paused)
	p.mPlaying.Store(!paused)
	return !paused
}

// PlayCue mixes a one-shot effect over the music
func (p *Player) PlayCue(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	s := CueSound(c, p.cfg)
	if s == nil {
		return
	}
	p.lock()
	p.mixer.Add(s)
	p.unlock()
}

// FrequencySnapshot analyzes the latest music samples
// Returns nil when nothing is playing. The slice is reused by the next call
func (p *Player) FrequencySnapshot() []uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tap == nil || !p.playing.Load() {
		return nil
	}
	p.scratch = p.tap.Snapshot(p.scratch)
	return p.analyzer.Analyze(p.scratch)
}

// Pump pulls d worth of audio through the mixer when no speaker is running
// Keeps the spectrum moving with the music while output is disabled
func (p *Player) Pump(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.music == nil || d <= 0 {
		return
	}
	if p.pumpBuf == nil {
		p.pumpBuf = make([][2]float64, 512)
	}
	for n := p.rate.N(d); n > 0; {
		k := min(n, len(p.pumpBuf))
		p.mixer.Stream(p.pumpBuf[:k])
		n -= k
	}
}

// IsPlaying reports whether a music source is loaded, unpaused and not finished
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Track returns the display name of the current source
func (p *Player) Track() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Close stops all audio and releases the music source
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lock()
	p.mixer.Clear()
	p.unlock()

	p.playing.Store(false)
	p.mPlaying.Store(false)
	p.music, p.tap, p.volume, p.base, p.seeker = nil, nil, nil, nil, nil
	if p.source != nil {
		err := p.source.Close()
		p.source = nil
		if err != nil {
			return fmt.Errorf("close track: %w", err)
		}
	}
	return nil
}

// Restart rewinds a file source to the beginning and unpauses
// Generated sources just resume
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.music == nil {
		return ErrNotLoaded
	}
	p.lock()
	var err error
	if p.seeker != nil {
		err = p.seeker.Seek(0)
	}
	// The previous sequence may have run to its end callback
	p.music.Streamer = beep.Seq(p.base, beep.Callback(p.ended))
	p.music.Paused = false
	if p.finished.Swap(false) {
		p.mixer.Add(p.volume)
	}
	p.unlock()
	if err != nil {
		return fmt.Errorf("rewind %s: %w", p.track, err)
	}

	p.analyzer.Reset()
	p.playing.Store(true)
	p.mPlaying.Store(true)
	return nil
}

// AdjustVolume changes music volume by delta, clamped to [0,1], and returns the new level
func (p *Player) AdjustVolume(delta float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cfg.MusicVolume = min(max(p.cfg.MusicVolume+delta, 0), 1)
	if p.volume == nil {
		return p.cfg.MusicVolume
	}

	gain := p.cfg.MusicVolume * p.cfg.MasterVolume
	p.lock()
	if gain <= 0 {
		p.volume.Silent = true
	} else {
		p.volume.Silent = false
		p.volume.Volume = math.Log2(gain)
	}
	p.unlock()
	return p.cfg.MusicVolume
}
