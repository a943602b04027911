package broadcast

import (
	"time"

	"github.com/lixenwraith/beat-runner/engine"
	"github.com/lixenwraith/beat-runner/event"
)

// Message types on the spectator wire
const (
	TypeFrame = "frame"
	TypeEvent = "event"
)

// Message is one JSON text frame sent to spectators
type Message struct {
	Type  string                `json:"type"`
	Frame *engine.FrameSnapshot `json:"frame,omitempty"`
	Event *EventMessage         `json:"event,omitempty"`
}

// EventMessage is a game event flattened for JSON
type EventMessage struct {
	Type    event.EventType `json:"type"`
	Frame   int64           `json:"frame"`
	At      time.Duration   `json:"at_ns"`
	Payload any             `json:"payload,omitempty"`
}

func eventMessage(ev event.GameEvent) Message {
	return Message{
		Type: TypeEvent,
		Event: &EventMessage{
			Type:    ev.Type,
			Frame:   ev.Frame,
			At:      ev.At,
			Payload: ev.Payload,
		},
	}
}
