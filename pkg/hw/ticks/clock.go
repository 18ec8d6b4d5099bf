package ticks

import (
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Clock reads the current tick count. Implementations must be monotonic,
// non-blocking and side-effect-free; wrapping modulo 2^32 is expected.
type Clock interface {
	Now() Ticks
}

// DefaultHz is the nominal frequency used when no clock is configured
// explicitly. The core never interprets frequency, it only moves raw cycle
// counts; this value matters solely for converting host time into cycles.
const DefaultHz = 100000000

// source scales a monotonic time source to a nominal cycle frequency.
type source struct {
	clk  bclock.Clock
	hz   uint64
	base time.Time
}

// NewSource creates a Clock counting cycles of the given nominal frequency
// on top of a time source. Pass clock.NewMock() in tests for full control
// of time.
func NewSource(clk bclock.Clock, hz uint64) Clock {
	return &source{clk: clk, hz: hz, base: clk.Now()}
}

// Now implements Clock.
func (s *source) Now() Ticks {
	d := s.clk.Since(s.base)
	// Split seconds and remainder so the multiplication stays exact for the
	// remainder part. The seconds part may overflow uint64, which is fine:
	// 2^32 divides 2^64, so truncation preserves the value modulo 2^32.
	secs := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return Ticks(secs*s.hz + rem*s.hz/uint64(time.Second))
}

var shared struct {
	once sync.Once
	clk  Clock
}

// Configure installs the process-wide shared clock. Only the first call
// (before any use of Shared) takes effect; it reports whether this call
// performed the installation. Subsequent calls are no-ops, so any number
// of transceiver instances may attempt configuration safely.
func Configure(clk Clock) (first bool) {
	shared.once.Do(func() {
		shared.clk = clk
		first = true
	})
	return
}

// Shared returns the process-wide shared clock, starting a real-time source
// at DefaultHz if none was configured.
func Shared() Clock {
	shared.once.Do(func() {
		shared.clk = NewSource(bclock.New(), DefaultHz)
	})
	return shared.clk
}
