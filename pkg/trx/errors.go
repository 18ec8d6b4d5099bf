package trx

import "errors"

var (
	// ErrTableFull indicates the process-wide instance table reached
	// MaxInstances. Instances are never reclaimed, so this is fatal.
	ErrTableFull = errors.New("transceiver table full")
	// ErrNoPin indicates a transceiver was created without both lines.
	ErrNoPin = errors.New("transceiver requires an output and an input line")
	// ErrRxCapacity indicates the receive buffer length is not a positive
	// even number.
	ErrRxCapacity = errors.New("receive capacity must be positive and even")
	// ErrTxLength indicates a transmit length that is odd, negative or
	// larger than the transmit buffer.
	ErrTxLength = errors.New("invalid transmit length")
)
