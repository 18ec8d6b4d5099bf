// Package trx implements the real-time interval transceiver core.
package trx

// A transceiver owns one output line and one input line. Waveforms are
// interval-encoded: buffers hold durations between level transitions in
// cycles of the shared clock, not periodic samples. Per iteration of the
// cooperative run loop the clock and the input line are sampled once, the
// transmit machine fires at most one transition and the receive machine
// records at most one edge, then the loop yields.
//
// Transmit buffers alternate pulse/gap starting with a pulse; by
// convention a transmission ends on a gap, so valid lengths are even and
// the final entry is never waited out. Receive buffers are lazy rings with
// gaps at even positions and pulses at odd positions; the first entry
// after a reset has no well-defined class and should be ignored.
//
// Producer/consumer of buffers: an external collaborator. The core never
// allocates or frees them.
