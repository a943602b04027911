package event

import (
	"time"
)

// EventType represents the type of gameplay event
type EventType int

const (
	// EventBeat signals a detected beat
	// Trigger: Detector fires | Payload: *BeatPayload
	EventBeat EventType = iota

	// EventTempoChange signals a fast/normal classification flip
	// Trigger: TempoClassifier | Payload: *TempoPayload
	EventTempoChange

	// EventSpawn signals an entity activated from a spawn command
	// Trigger: RhythmEngine after SpawnArbiter | Payload: *EntityPayload
	EventSpawn

	// EventCollect signals a cube collected by the player
	// Consumer: Renderer (flash), Spectator | Payload: *EntityPayload
	EventCollect

	// EventCollision signals an obstacle hit
	// Consumer: Renderer (flash), Spectator | Payload: *EntityPayload
	EventCollision

	// EventCloseCall signals an obstacle passing close in the player lane
	// Payload: *EntityPayload
	EventCloseCall

	// EventMiss signals a cube despawned uncollected
	// Payload: *EntityPayload
	EventMiss

	// EventPortalEntered signals the player crossed the portal
	// Consumer: navigation hook (external) | Payload: *EntityPayload
	EventPortalEntered

	// EventScoreChange carries the score state after an outcome
	// Consumer: HUD, Spectator | Payload: *ScorePayload
	EventScoreChange

	// EventPoolRecycle signals an active entity stolen at pool cap
	// Consumer: Renderer (drop stale visual) | Payload: *RecyclePayload
	EventPoolRecycle

	// EventSessionReset signals engine state cleared for a new run
	// Trigger: restart key | Payload: nil
	EventSessionReset

	eventTypeCount
)

// GameEvent represents a single gameplay event with metadata
type GameEvent struct {
	Type    EventType
	Payload any
	Frame   int64         // Frame that produced the event
	At      time.Duration // Session time
}
