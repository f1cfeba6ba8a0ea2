package lidar

import "time"

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock counting wall-clock seconds since its
// creation.
func NewSystemClock() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock is a Clock driven explicitly by its owner. Used by tests
// and headless simulations.
type ManualClock struct {
	now float64
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Now() float64 {
	return c.now
}

// Advance moves the clock forward by dt seconds.
func (c *ManualClock) Advance(dt float64) {
	c.now += dt
}

// Set jumps the clock to an absolute time.
func (c *ManualClock) Set(now float64) {
	c.now = now
}
