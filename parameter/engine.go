package parameter

import "time"

// Frame Loop
const (
	// FrameUpdateInterval is the render and engine update interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// MaxFrameDelta caps dt after a stall so entities do not teleport
	MaxFrameDelta = 100 * time.Millisecond

	// EventDispatchIterations bounds re-dispatch when handlers push follow-up events
	EventDispatchIterations = 4
)

// Event Queue
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 1024

	// EventBufferMask is the bitmask for fast modulo operations (1024 - 1)
	EventBufferMask = 1023
)
