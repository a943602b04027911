package input

import (
	"maps"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Binding is the action a key triggers
type Binding struct {
	Type IntentType
	Lane int
}

// KeyTable maps keys to bindings
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Esc)
	Keys map[tcell.Key]Binding

	// Printable runes
	Runes map[rune]Binding
}

// DefaultKeyTable returns the default bindings: vi and WASD-style steering, digits for lanes
func DefaultKeyTable() *KeyTable {
	kt := &KeyTable{
		Keys: map[tcell.Key]Binding{
			tcell.KeyCtrlC:  {Type: IntentQuit},
			tcell.KeyEscape: {Type: IntentQuit},
			tcell.KeyLeft:   {Type: IntentLaneLeft},
			tcell.KeyRight:  {Type: IntentLaneRight},
		},
		Runes: map[rune]Binding{
			'q': {Type: IntentQuit},
			'h': {Type: IntentLaneLeft},
			'a': {Type: IntentLaneLeft},
			'l': {Type: IntentLaneRight},
			'd': {Type: IntentLaneRight},
			'r': {Type: IntentRestart},
			'p': {Type: IntentTogglePause},
			' ': {Type: IntentTogglePause},
			'm': {Type: IntentToggleMute},
			'+': {Type: IntentVolumeUp},
			'=': {Type: IntentVolumeUp},
			'-': {Type: IntentVolumeDown},
		},
	}
	for i := 0; i < 9; i++ {
		kt.Runes['1'+rune(i)] = Binding{Type: IntentLane, Lane: i}
	}
	return kt
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		Keys:  maps.Clone(kt.Keys),
		Runes: maps.Clone(kt.Runes),
	}
}

// keyByName is tcell's key name table inverted and lowercased, e.g. "left", "ctrl-c"
var keyByName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// KeyByName resolves a tcell key name case-insensitively
func KeyByName(name string) (tcell.Key, bool) {
	k, ok := keyByName[strings.ToLower(name)]
	return k, ok
}
