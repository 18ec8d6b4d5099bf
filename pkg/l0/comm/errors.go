package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the FIFO is not synchronized yet.
	ErrNotReady = errors.New("not ready")
	// ErrNoReply indicates no reply was received for a command.
	// This happens when a reply arrives for a later command, failing all
	// commands sent before it.
	ErrNoReply = errors.New("no reply")
	// ErrPacketTooLarge indicates the payload exceeds MaxDataLen.
	ErrPacketTooLarge = errors.New("packet too large")
)

// CommandError wraps an error code from a reply.
type CommandError struct {
	Code byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command error %d", e.Code)
}
