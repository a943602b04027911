package pool

import (
	"github.com/lixenwraith/beat-runner/entity"
)

// Stats is a point-in-time view of pool occupancy
type Stats struct {
	Name     string
	Created  int
	Active   int
	Free     int
	Recycled uint64
}

// Pool is a growable entity pool with a hard cap
// Allocation order: free list, then new instance below cap, then steal the oldest active
// Single-threaded: owned by the frame loop
type Pool[T entity.Entity] struct {
	name    string
	factory func(id uint64) T
	hardCap int

	free   []T
	active []T // Acquisition order, oldest first

	created  int
	nextID   uint64
	recycled uint64
}

// New creates a pool and pre-fills it with prefill instances
// prefill is clamped to hardCap; hardCap below 1 is raised to 1
func New[T entity.Entity](name string, factory func(id uint64) T, prefill, hardCap int) *Pool[T] {
	if hardCap < 1 {
		hardCap = 1
	}
	if prefill > hardCap {
		prefill = hardCap
	}
	if prefill < 0 {
		prefill = 0
	}

	p := &Pool[T]{
		name:    name,
		factory: factory,
		hardCap: hardCap,
		free:    make([]T, 0, hardCap),
		active:  make([]T, 0, hardCap),
	}
	for range prefill {
		item := p.create()
		p.free = append(p.free, item)
	}
	return p
}

func (p *Pool[T]) create() T {
	p.nextID++
	p.created++
	item := p.factory(p.nextID)
	item.Reset()
	return item
}

// Acquire returns an entity marked active and moved to the back of the active order
// recycled is true when the oldest active entity was stolen; the caller must drop
// any visual state still keyed to it
func (p *Pool[T]) Acquire() (item T, recycled bool) {
	switch {
	case len(p.free) > 0:
		last := len(p.free) - 1
		item = p.free[last]
		var zero T
		p.free[last] = zero
		p.free = p.free[:last]

	case p.created < p.hardCap:
		item = p.create()

	default:
		item = p.active[0]
		copy(p.active, p.active[1:])
		var zero T
		p.active[len(p.active)-1] = zero
		p.active = p.active[:len(p.active)-1]
		item.Reset()
		p.recycled++
		recycled = true
	}

	item.Common().State = entity.StateActive
	p.active = append(p.active, item)
	return item, recycled
}

// Release resets the entity and moves it to the free list
// Returns false if the entity is not active in this pool; double release is a no-op
func (p *Pool[T]) Release(item T) bool {
	idx := p.indexOf(item)
	if idx < 0 {
		return false
	}

	copy(p.active[idx:], p.active[idx+1:])
	var zero T
	p.active[len(p.active)-1] = zero
	p.active = p.active[:len(p.active)-1]

	item.Reset()
	p.free = append(p.free, item)
	return true
}

// indexOf matches by instance; IDs are only unique within one pool
func (p *Pool[T]) indexOf(item T) int {
	b := item.Common()
	for i, a := range p.active {
		if a.Common() == b {
			return i
		}
	}
	return -1
}

// Owns reports whether the entity is currently in this pool's active set
func (p *Pool[T]) Owns(item T) bool {
	return p.indexOf(item) >= 0
}

// AppendActive appends active entities to dst in acquisition order
// Safe to Release while ranging over the returned slice
func (p *Pool[T]) AppendActive(dst []T) []T {
	return append(dst, p.active...)
}

// Oldest returns the entity that would be stolen next
func (p *Pool[T]) Oldest() (T, bool) {
	if len(p.active) == 0 {
		var zero T
		return zero, false
	}
	return p.active[0], true
}

// ReleaseAll returns every active entity to the free list
func (p *Pool[T]) ReleaseAll() {
	for len(p.active) > 0 {
		p.Release(p.active[len(p.active)-1])
	}
}

func (p *Pool[T]) Name() string     { return p.name }
func (p *Pool[T]) ActiveCount() int { return len(p.active) }
func (p *Pool[T]) FreeCount() int   { return len(p.free) }
func (p *Pool[T]) Created() int     { return p.created }
func (p *Pool[T]) Cap() int         { return p.hardCap }

// Stats returns current occupancy
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Name:     p.name,
		Created:  p.created,
		Active:   len(p.active),
		Free:     len(p.free),
		Recycled: p.recycled,
	}
}
