package parameter

import "time"

// Input
const (
	// InputLaneDebounce drops repeated lane-change keys arriving faster than this
	// Terminals deliver held keys as a stream of presses
	InputLaneDebounce = 90 * time.Millisecond
)

// Render
const (
	// RenderFlashDuration is how long the collision flash stays on screen
	RenderFlashDuration = 250 * time.Millisecond

	// RenderPopupDuration is how long a floating score popup stays on screen
	RenderPopupDuration = 600 * time.Millisecond

	// RenderLaneCells is the terminal width of one lane
	RenderLaneCells = 9

	// RenderHUDWidth is the column width reserved for the score panel
	RenderHUDWidth = 24
)

// Spectator
const (
	// SpectatorSendBuffer is per-client queued messages before a slow client is dropped
	SpectatorSendBuffer = 32

	// SpectatorWriteTimeout bounds a single websocket write
	SpectatorWriteTimeout = 2 * time.Second

	// SpectatorSnapshotInterval throttles frame snapshots sent to spectators
	SpectatorSnapshotInterval = 100 * time.Millisecond
)

// Logging
const (
	LogDir      = "logs"
	LogFileName = "beat-runner.log"
	LogMaxSize  = 10 * 1024 * 1024
)
