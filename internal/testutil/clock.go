package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time of a StepClock: 2024-01-01 09:00:00 UTC.
var Epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// StepClock is a deterministic wall clock for tests.
//
// Each call to Now() returns the current time and then advances it by the
// step, so consecutive submissions get distinct, predictable timestamps.
// Reset rewinds to the start for test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewStepClock creates a clock starting at start and advancing by step.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{start: start, now: start, step: step}
}

// NewDefaultClock starts at Epoch and advances one minute per call.
func NewDefaultClock() *StepClock {
	return NewStepClock(Epoch, time.Minute)
}

// Now returns the current time and advances the clock.
//
// Implements engine.Clock interface.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the time the next Now() call will return.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start time.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
