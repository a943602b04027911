package input

import (
	"fmt"
	"maps"
	"slices"
)

// actionRegistry maps canonical action names to bindings
// Used by the keymap loader to resolve TOML action strings
var actionRegistry map[string]Binding

func init() {
	actionRegistry = buildActionRegistry()
}

func buildActionRegistry() map[string]Binding {
	r := map[string]Binding{
		// Unbind sentinel
		"none": {},

		"quit":         {Type: IntentQuit},
		"lane_left":    {Type: IntentLaneLeft},
		"lane_right":   {Type: IntentLaneRight},
		"restart":      {Type: IntentRestart},
		"toggle_pause": {Type: IntentTogglePause},
		"toggle_mute":  {Type: IntentToggleMute},
		"volume_up":    {Type: IntentVolumeUp},
		"volume_down":  {Type: IntentVolumeDown},
	}
	// Absolute lanes, one-based in names
	for i := 1; i <= 9; i++ {
		r[fmt.Sprintf("lane_%d", i)] = Binding{Type: IntentLane, Lane: i - 1}
	}
	return r
}

// ActionBinding resolves a canonical action name
// Returns zero Binding and false if name is unknown
func ActionBinding(name string) (Binding, bool) {
	b, ok := actionRegistry[name]
	return b, ok
}

// ActionNames returns all registered action names, sorted
func ActionNames() []string {
	return slices.Sorted(maps.Keys(actionRegistry))
}
