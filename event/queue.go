package event

import (
	"sync/atomic"

	"github.com/lixenwraith/beat-runner/parameter"
)

// EventQueue is a lock-free MPSC ring buffer for gameplay events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK (frame loop, input, spectator commands)
//   - Consume: Single consumer (frame loop)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type EventQueue struct {
	events    [parameter.EventQueueSize]GameEvent
	published [parameter.EventQueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64                         // Read index
	tail      atomic.Uint64                         // Write index
	dropped   atomic.Uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event using CAS on the tail with a published flag per slot
func (eq *EventQueue) Push(ev GameEvent) {
	for {
		currentTail := eq.tail.Load()
		nextTail := currentTail + 1

		if !eq.tail.CompareAndSwap(currentTail, nextTail) {
			continue
		}

		idx := currentTail & parameter.EventBufferMask
		eq.events[idx] = ev
		eq.published[idx].Store(true) // After write

		// Advance head if overwriting unread events
		currentHead := eq.head.Load()
		if nextTail-currentHead > parameter.EventQueueSize {
			if eq.head.CompareAndSwap(currentHead, nextTail-parameter.EventQueueSize) {
				eq.dropped.Add(1)
			}
		}
		return
	}
}

// Consume returns all pending events in FIFO order and advances head
func (eq *EventQueue) Consume() []GameEvent {
	for {
		currentHead := eq.head.Load()
		currentTail := eq.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > parameter.EventQueueSize {
			available = parameter.EventQueueSize
			currentHead = currentTail - parameter.EventQueueSize
		}

		result := make([]GameEvent, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & parameter.EventBufferMask
			if !eq.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, eq.events[idx])
			eq.published[idx].Store(false)
		}

		if eq.head.CompareAndSwap(currentHead, currentHead+uint64(len(result))) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns the number of queued events
func (eq *EventQueue) Len() int {
	n := eq.tail.Load() - eq.head.Load()
	return int(min(n, parameter.EventQueueSize))
}

// Dropped returns how many events were overwritten before consumption
func (eq *EventQueue) Dropped() uint64 {
	return eq.dropped.Load()
}
