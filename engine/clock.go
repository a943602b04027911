package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies session time as an offset from session start
// The engine never reads the wall clock directly
type Clock interface {
	Now() time.Duration
}

// SessionClock provides pausable session time with pause duration tracking
// Paused time is excluded so entities freeze with the music
type SessionClock struct {
	mu sync.RWMutex

	start    time.Time // Real time at creation or last Reset
	realNow  func() time.Time
	isPaused atomic.Bool

	pauseStart  time.Time     // When current pause started (real time)
	totalPaused time.Duration // Cumulative pause duration
}

// NewSessionClock creates a running clock reading the monotonic wall clock
func NewSessionClock() *SessionClock {
	return newSessionClock(time.Now)
}

func newSessionClock(realNow func() time.Time) *SessionClock {
	return &SessionClock{
		start:   realNow(),
		realNow: realNow,
	}
}

// Now returns session time, frozen while paused
func (c *SessionClock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isPaused.Load() {
		return c.pauseStart.Sub(c.start) - c.totalPaused
	}
	return c.realNow().Sub(c.start) - c.totalPaused
}

// Pause stops session time advancement
func (c *SessionClock) Pause() {
	if c.isPaused.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.pauseStart = c.realNow()
		c.mu.Unlock()
	}
}

// Resume continues session time advancement
func (c *SessionClock) Resume() {
	if c.isPaused.CompareAndSwap(true, false) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.pauseStart.IsZero() {
			c.totalPaused += c.realNow().Sub(c.pauseStart)
			c.pauseStart = time.Time{}
		}
	}
}

// IsPaused returns current pause state
func (c *SessionClock) IsPaused() bool {
	return c.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time including any current pause
func (c *SessionClock) TotalPauseDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.totalPaused
	if c.isPaused.Load() && !c.pauseStart.IsZero() {
		total += c.realNow().Sub(c.pauseStart)
	}
	return total
}

// Reset restarts session time at zero, running
func (c *SessionClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.realNow()
	c.totalPaused = 0
	c.pauseStart = time.Time{}
	c.isPaused.Store(false)
}

// MockClock provides a controllable session time for testing
type MockClock struct {
	mu  sync.RWMutex
	now time.Duration
}

// NewMockClock creates a mock clock at zero
func NewMockClock() *MockClock {
	return &MockClock{}
}

// Now returns the current mocked time
func (m *MockClock) Now() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set sets the current time
func (m *MockClock) Set(t time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the current time forward by d
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}
