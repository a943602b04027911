package input

// IntentType discriminates player actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	// System
	IntentQuit   // Ctrl+C, Esc, q
	IntentResize // Terminal resize event

	// Steering
	IntentLaneLeft  // h, a, Left arrow
	IntentLaneRight // l, d, Right arrow
	IntentLane      // 1-9, absolute lane

	// Session
	IntentRestart     // r
	IntentTogglePause // p, Space: pauses music and therefore beat detection
	IntentToggleMute  // m: music volume

	// Music volume
	IntentVolumeUp   // +
	IntentVolumeDown // -
)

var intentNames = map[IntentType]string{
	IntentNone:        "none",
	IntentQuit:        "quit",
	IntentResize:      "resize",
	IntentLaneLeft:    "lane_left",
	IntentLaneRight:   "lane_right",
	IntentLane:        "lane",
	IntentRestart:     "restart",
	IntentTogglePause: "toggle_pause",
	IntentToggleMute:  "toggle_mute",
	IntentVolumeUp:    "volume_up",
	IntentVolumeDown:  "volume_down",
}

func (t IntentType) String() string {
	if s, ok := intentNames[t]; ok {
		return s
	}
	return "unknown"
}

// Intent is one parsed player action
type Intent struct {
	Type IntentType
	Lane int // Zero-based target for IntentLane
}

// isSteering reports whether t is subject to lane-change debounce
func (t IntentType) isSteering() bool {
	return t == IntentLaneLeft || t == IntentLaneRight || t == IntentLane
}
