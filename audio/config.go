package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lixenwraith/beat-runner/parameter"
)

// Cue identifies a gameplay sound effect
type Cue int

const (
	CueCollect   Cue = iota // Cube pickup chime
	CueCollision            // Obstacle hit buzz
	CueCloseCall            // Near miss whoosh
	CuePortal               // Portal entry sweep
	cueCount
)

var cueNames = [cueCount]string{"collect", "collision", "close_call", "portal"}

func (c Cue) String() string {
	if c < 0 || c >= cueCount {
		return "unknown"
	}
	return cueNames[c]
}

// Config holds playback and analysis settings
type Config struct {
	Enabled      bool    `toml:"enabled"`
	MasterVolume float64 `toml:"master_volume"`
	MusicVolume  float64 `toml:"music_volume"`
	Loop         bool    `toml:"loop"`

	// Cue volumes keyed by cue name
	EffectVolumes map[string]float64 `toml:"effect_volumes"`

	SampleRate int           `toml:"sample_rate"`
	Buffer     time.Duration `toml:"buffer"`

	FFTSize     int     `toml:"fft_size"`
	Smoothing   float64 `toml:"smoothing"`
	MinDecibels float64 `toml:"min_decibels"`
	MaxDecibels float64 `toml:"max_decibels"`
}

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid audio config")

// DefaultConfig returns the stock playback settings
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MasterVolume: 0.5,
		MusicVolume:  1.0,
		Loop:         true,
		EffectVolumes: map[string]float64{
			CueCollect.String():   1.0,
			CueCollision.String(): 0.8,
			CueCloseCall.String(): 0.6,
			CuePortal.String():    0.7,
		},
		SampleRate:  parameter.AudioSampleRate,
		Buffer:      parameter.AudioBufferDuration,
		FFTSize:     parameter.AnalyzerFFTSize,
		Smoothing:   parameter.AnalyzerSmoothing,
		MinDecibels: parameter.AnalyzerMinDecibels,
		MaxDecibels: parameter.AnalyzerMaxDecibels,
	}
}

// EffectVolume returns the configured volume for a cue, 1.0 when unset
func (c Config) EffectVolume(cue Cue) float64 {
	if v, ok := c.EffectVolumes[cue.String()]; ok {
		return v
	}
	return 1.0
}

// Validate checks ranges the analyzer and speaker depend on
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft_size %d must be a power of two >= 32", ErrInvalidConfig, c.FFTSize)
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		return fmt.Errorf("%w: smoothing %f outside [0,1)", ErrInvalidConfig, c.Smoothing)
	}
	if c.MinDecibels >= c.MaxDecibels {
		return fmt.Errorf("%w: min_decibels %f >= max_decibels %f", ErrInvalidConfig, c.MinDecibels, c.MaxDecibels)
	}
	if c.Buffer <= 0 {
		return fmt.Errorf("%w: buffer %v", ErrInvalidConfig, c.Buffer)
	}
	return nil
}

// ApplyEnv overrides fields from BEAT_RUNNER_* environment variables
// Unparseable values are ignored
func ApplyEnv(cfg *Config) {
	if enabled := os.Getenv("BEAT_RUNNER_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100
	if volume := os.Getenv("BEAT_RUNNER_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = min(max(float64(val)/100.0, 0), 1)
		}
	}

	// Cue volumes from JSON, unknown names ignored
	if effectVols := os.Getenv("BEAT_RUNNER_SFX_VOLUMES"); effectVols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(effectVols), &volumes); err == nil {
			if cfg.EffectVolumes == nil {
				cfg.EffectVolumes = make(map[string]float64, cueCount)
			}
			for c := Cue(0); c < cueCount; c++ {
				if v, ok := volumes[c.String()]; ok {
					cfg.EffectVolumes[c.String()] = v
				}
			}
		}
	}

	if sampleRate := os.Getenv("BEAT_RUNNER_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}
}
