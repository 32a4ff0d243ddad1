package scheduler

import (
	"sync"
	"time"
)

// Clock supplies the current time and the calendar the scheduler
// uses for day boundaries.
type Clock interface {
	Now() time.Time
	// StartOfDay returns local midnight of the calendar day containing t.
	StartOfDay(t time.Time) time.Time
}

type calendar struct {
	loc *time.Location
}

func (c calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// Location is the time zone day boundaries are computed in.
func (c calendar) Location() *time.Location {
	return c.loc
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// SystemClock reads the wall clock.
type SystemClock struct {
	calendar
}

// NewSystemClock returns a wall clock using loc for day boundaries.
// A nil loc means time.Local.
func NewSystemClock(loc *time.Location) *SystemClock {
	return &SystemClock{calendar{location(loc)}}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock always reports the same instant until moved.
type FixedClock struct {
	calendar
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock stopped at now. A nil loc means the
// location of now.
func NewFixedClock(now time.Time, loc *time.Location) *FixedClock {
	if loc == nil {
		loc = now.Location()
	}
	return &FixedClock{calendar: calendar{loc}, now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.In(c.loc)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
