package input

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/beat-runner/parameter"
)

// Config holds input tuning
type Config struct {
	LaneDebounce time.Duration `toml:"lane_debounce"`
	Keymap       string        `toml:"keymap"` // Optional keymap TOML path
}

// DefaultConfig returns the stock input tuning
func DefaultConfig() Config {
	return Config{LaneDebounce: parameter.InputLaneDebounce}
}

// Machine translates tcell events into intents
// Repeated steering keys inside the debounce window are dropped; a terminal
// delivers a held key as a burst of presses and each would skip a lane
type Machine struct {
	keys     *KeyTable
	debounce time.Duration

	lastSteer   Intent
	lastSteerAt time.Duration
	hasSteered  bool
	dropped     int
}

// NewMachine creates a machine; nil keys selects the defaults
func NewMachine(cfg Config, keys *KeyTable) *Machine {
	if keys == nil {
		keys = DefaultKeyTable()
	}
	return &Machine{keys: keys, debounce: cfg.LaneDebounce}
}

// Process parses an event at session time now
// Returns nil for unbound keys, debounced repeats and irrelevant events
func (m *Machine) Process(ev tcell.Event, now time.Duration) *Intent {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return &Intent{Type: IntentResize}
	case *tcell.EventKey:
		return m.processKey(ev, now)
	}
	return nil
}

func (m *Machine) processKey(ev *tcell.EventKey, now time.Duration) *Intent {
	var (
		b  Binding
		ok bool
	)
	if ev.Key() == tcell.KeyRune {
		b, ok = m.keys.Runes[ev.Rune()]
	} else {
		b, ok = m.keys.Keys[ev.Key()]
	}
	if !ok || b.Type == IntentNone {
		return nil
	}

	intent := Intent{Type: b.Type, Lane: b.Lane}
	if intent.Type.isSteering() {
		if m.hasSteered && intent == m.lastSteer && now-m.lastSteerAt < m.debounce {
			m.dropped++
			return nil
		}
		m.lastSteer, m.lastSteerAt, m.hasSteered = intent, now, true
	}
	return &intent
}

// Dropped returns the number of debounced steering presses
func (m *Machine) Dropped() int {
	return m.dropped
}

// Reset forgets debounce state
func (m *Machine) Reset() {
	m.hasSteered = false
	m.lastSteer = Intent{}
	m.lastSteerAt = 0
}
