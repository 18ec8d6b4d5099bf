// Package comm implements the serial link protocol.
package comm

// The link protocol is spoken between transceiver firmware and the host
// daemon over a peer-to-peer byte channel, typically a serial port. It
// focuses on recoverability: both sides can resynchronize after dropped
// or corrupted bytes using a sequence based handshake.
//
// Error detection is limited to sequence checks. No CRC or checksum is
// applied, to keep the firmware side trivial. Parity can be enabled on
// the serial port when bit verification is needed.
//
// Producer: transceiver firmware
// Consumer: host daemon
