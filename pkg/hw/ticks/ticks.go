// Package ticks provides the shared wrapping cycle counter used for all
// waveform timing.
package ticks

// Ticks counts cycles of the shared clock since an arbitrary epoch,
// wrapping modulo 2^32.
//
// All arithmetic on Ticks must stay modular: the difference of two counter
// values is the true elapsed duration as long as the true duration never
// exceeds one full counter period. Never compare absolute values as signed
// numbers.
type Ticks uint32

// Since returns the elapsed cycles from earlier to t, correct across
// counter wraparound.
func (t Ticks) Since(earlier Ticks) Ticks {
	return t - earlier
}

// Add offsets t by d cycles, wrapping.
func (t Ticks) Add(d Ticks) Ticks {
	return t + d
}
