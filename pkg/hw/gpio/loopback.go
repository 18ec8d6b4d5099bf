package gpio

import "go.uber.org/atomic"

// Loopback is an in-memory line usable as both ends of a wire: whatever is
// driven on it is read back from it. It is safe to drive and sample from
// different goroutines.
type Loopback struct {
	level atomic.Bool
}

// NewLoopback creates a Loopback at low level.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Set implements OutputPin.
func (l *Loopback) Set(level bool) {
	l.level.Store(level)
}

// Get implements InputPin.
func (l *Loopback) Get() bool {
	return l.level.Load()
}
