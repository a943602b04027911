package input

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestDefaultBindings(t *testing.T) {
	m := NewMachine(DefaultConfig(), nil)

	tests := []struct {
		name string
		ev   tcell.Event
		want Intent
	}{
		{"left arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Intent{Type: IntentLaneLeft}},
		{"right arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), Intent{Type: IntentLaneRight}},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), Intent{Type: IntentQuit}},
		{"h", runeKey('h'), Intent{Type: IntentLaneLeft}},
		{"digit 3", runeKey('3'), Intent{Type: IntentLane, Lane: 2}},
		{"r", runeKey('r'), Intent{Type: IntentRestart}},
		{"space", runeKey(' '), Intent{Type: IntentTogglePause}},
		{"m", runeKey('m'), Intent{Type: IntentToggleMute}},
		{"minus", runeKey('-'), Intent{Type: IntentVolumeDown}},
		{"resize", tcell.NewEventResize(80, 24), Intent{Type: IntentResize}},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Spread presses so steering never debounces here
			got := m.Process(tc.ev, time.Duration(i)*time.Second)
			if got == nil || *got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	m := NewMachine(DefaultConfig(), nil)
	if got := m.Process(runeKey('z'), 0); got != nil {
		t.Errorf("unbound key produced %+v", got)
	}
	if got := m.Process(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), 0); got != nil {
		t.Errorf("unbound special key produced %+v", got)
	}
}

func TestSteeringDebounce(t *testing.T) {
	m := NewMachine(DefaultConfig(), nil)

	if m.Process(runeKey('l'), 0) == nil {
		t.Fatal("first press dropped")
	}
	if m.Process(runeKey('l'), 50*time.Millisecond) != nil {
		t.Error("repeat inside 90ms should be dropped")
	}
	if m.Process(runeKey('l'), 89*time.Millisecond) != nil {
		t.Error("repeat at 89ms should be dropped")
	}
	if m.Process(runeKey('l'), 90*time.Millisecond) == nil {
		t.Error("press at the window edge should pass")
	}
	if m.Dropped() != 2 {
		t.Errorf("dropped %d", m.Dropped())
	}
}

func TestDebounceOnlySameIntent(t *testing.T) {
	m := NewMachine(DefaultConfig(), nil)
	m.Process(runeKey('l'), 0)
	if m.Process(runeKey('h'), 10*time.Millisecond) == nil {
		t.Error("direction reversal should not be debounced")
	}
	// Arrow and letter for the same direction share the window
	if m.Process(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), 20*time.Millisecond) != nil {
		t.Error("same direction from another key should be debounced")
	}
	if m.Process(runeKey('r'), 25*time.Millisecond) == nil {
		t.Error("non-steering keys are never debounced")
	}
	m.Reset()
	if m.Process(runeKey('h'), 30*time.Millisecond) == nil {
		t.Error("reset should clear debounce")
	}
}

func TestLoadKeyConfig(t *testing.T) {
	data := []byte(`
[keys]
up = "lane_left"
Down = "lane_right"
Esc = "none"

[runes]
j = "lane_left"
k = "lane_right"
space = "restart"
`)
	override, err := LoadKeyConfig(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	kt := MergeKeyTable(DefaultKeyTable(), override)

	if kt.Keys[tcell.KeyUp].Type != IntentLaneLeft || kt.Keys[tcell.KeyDown].Type != IntentLaneRight {
		t.Error("named keys not bound")
	}
	if _, ok := kt.Keys[tcell.KeyEscape]; ok {
		t.Error("none should unbind Esc")
	}
	if kt.Runes['j'].Type != IntentLaneLeft || kt.Runes[' '].Type != IntentRestart {
		t.Error("rune overrides not applied")
	}
	if kt.Runes['h'].Type != IntentLaneLeft {
		t.Error("untouched default lost")
	}
	if _, ok := DefaultKeyTable().Keys[tcell.KeyEscape]; !ok {
		t.Error("merge mutated the base table")
	}
}

func TestLoadKeyConfigErrors(t *testing.T) {
	tests := []struct {
		name, data, want string
	}{
		{"unknown action", "[runes]\nx = \"jump\"", "unknown action"},
		{"unknown key", "[keys]\nhyper = \"quit\"", "unknown key name"},
		{"multi-char rune", "[runes]\nxy = \"quit\"", "invalid rune key"},
		{"unknown section", "[mouse]\nx = \"quit\"", "unknown section"},
		{"parse error", "[runes\n", "keymap parse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadKeyConfig([]byte(tc.data))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadKeyFile(t *testing.T) {
	kt, err := LoadKeyFile("")
	if err != nil || kt.Runes['q'].Type != IntentQuit {
		t.Fatalf("empty path should give defaults: %v", err)
	}

	path := filepath.Join(t.TempDir(), "keys.toml")
	if err := os.WriteFile(path, []byte("[runes]\nq = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	kt, err = LoadKeyFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := kt.Runes['q']; ok {
		t.Error("q should be unbound")
	}

	if _, err := LoadKeyFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should error")
	}
}

func TestActionNames(t *testing.T) {
	names := ActionNames()
	if !slices.IsSorted(names) {
		t.Error("names not sorted")
	}
	for _, want := range []string{"none", "quit", "lane_left", "lane_9", "volume_up"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing action %q", want)
		}
	}
	if b, ok := ActionBinding("lane_1"); !ok || b.Lane != 0 {
		t.Errorf("lane_1 resolves to %+v", b)
	}
}

func TestIntentNames(t *testing.T) {
	if IntentLaneLeft.String() != "lane_left" || IntentType(200).String() != "unknown" {
		t.Error("unexpected intent names")
	}
}
