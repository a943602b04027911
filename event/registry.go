package event

import (
	"fmt"
	"strings"
)

var typeNames = [eventTypeCount]string{
	EventBeat:          "beat",
	EventTempoChange:   "tempo_change",
	EventSpawn:         "spawn",
	EventCollect:       "collect",
	EventCollision:     "collision",
	EventCloseCall:     "close_call",
	EventMiss:          "miss",
	EventPortalEntered: "portal_entered",
	EventScoreChange:   "score_change",
	EventPoolRecycle:   "pool_recycle",
	EventSessionReset:  "session_reset",
}

var nameToType = func() map[string]EventType {
	m := make(map[string]EventType, len(typeNames))
	for i, name := range typeNames {
		m[name] = EventType(i)
	}
	return m
}()

// String returns the wire name of the event type
func (t EventType) String() string {
	if t >= 0 && t < eventTypeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// MarshalText encodes the type by name for JSON and TOML
func (t EventType) MarshalText() ([]byte, error) {
	if t < 0 || t >= eventTypeCount {
		return nil, fmt.Errorf("unknown event type %d", int(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText decodes a type name, case-insensitive
func (t *EventType) UnmarshalText(text []byte) error {
	et, ok := ParseEventType(string(text))
	if !ok {
		return fmt.Errorf("unknown event type %q", text)
	}
	*t = et
	return nil
}

// ParseEventType returns the EventType for a wire name
func ParseEventType(name string) (EventType, bool) {
	et, ok := nameToType[strings.ToLower(strings.TrimSpace(name))]
	return et, ok
}

// AllEventTypes returns every known type in declaration order
func AllEventTypes() []EventType {
	out := make([]EventType, eventTypeCount)
	for i := range out {
		out[i] = EventType(i)
	}
	return out
}
