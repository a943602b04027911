package event

import (
	"github.com/lixenwraith/beat-runner/parameter"
)

// Handler processes specific event types
type Handler interface {
	// HandleEvent processes a single event
	// Called synchronously during the dispatch phase
	HandleEvent(ev GameEvent)

	// EventTypes returns the event types this handler processes
	// Empty means every type
	EventTypes() []EventType
}

// HandlerFunc adapts a function to Handler for the given types
type HandlerFunc struct {
	Fn    func(GameEvent)
	Types []EventType
}

func (h HandlerFunc) HandleEvent(ev GameEvent) { h.Fn(ev) }
func (h HandlerFunc) EventTypes() []EventType  { return h.Types }

// Router dispatches queued events to registered handlers
//
// Architecture:
//   - Single-threaded dispatch from the frame loop
//   - Multiple handlers can register for the same event type
//   - Handlers are invoked in registration order, per-type handlers before catch-all
//   - Events pushed by handlers are dispatched in the same call, bounded by EventDispatchIterations
type Router struct {
	handlers map[EventType][]Handler
	all      []Handler
	queue    *EventQueue
}

// NewRouter creates a router attached to the given queue
func NewRouter(queue *EventQueue) *Router {
	return &Router{
		handlers: make(map[EventType][]Handler),
		queue:    queue,
	}
}

// Register adds a handler for its declared event types
func (r *Router) Register(handler Handler) {
	types := handler.EventTypes()
	if len(types) == 0 {
		r.all = append(r.all, handler)
		return
	}
	for _, t := range types {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// Subscribe registers fn for types, or for every type when none are given
func (r *Router) Subscribe(fn func(GameEvent), types ...EventType) {
	r.Register(HandlerFunc{Fn: fn, Types: types})
}

// Emit queues an event for the next dispatch
func (r *Router) Emit(ev GameEvent) {
	r.queue.Push(ev)
}

// DispatchAll consumes pending events and routes them to handlers in FIFO order
// Returns the number of events dispatched
func (r *Router) DispatchAll() int {
	total := 0
	for range parameter.EventDispatchIterations {
		events := r.queue.Consume()
		if len(events) == 0 {
			break
		}
		for _, ev := range events {
			for _, h := range r.handlers[ev.Type] {
				h.HandleEvent(ev)
			}
			for _, h := range r.all {
				h.HandleEvent(ev)
			}
		}
		total += len(events)
	}
	return total
}

// HasHandlers returns true if any handler would receive the given type
func (r *Router) HasHandlers(t EventType) bool {
	return len(r.handlers[t]) > 0 || len(r.all) > 0
}

// HandlerCount returns the number of handlers registered for the given type, catch-all excluded
func (r *Router) HandlerCount(t EventType) int {
	return len(r.handlers[t])
}

// Queue returns the underlying queue
func (r *Router) Queue() *EventQueue {
	return r.queue
}
