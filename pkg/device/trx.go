// Package device exposes interval transceivers as controllable devices:
// a uniform operation surface, a loop controller dispatching protocol
// commands, and implementations backed by local GPIO lines or by firmware
// behind a serial link.
package device

import (
	"context"

	"github.com/robotalks/irtrx.go/pkg/hw/gpio"
	"github.com/robotalks/irtrx.go/pkg/hw/ticks"
	"github.com/robotalks/irtrx.go/pkg/trx"
)

// Trx is the operation surface of one transceiver instance. All
// operations return errors so remote implementations can surface
// transport failures.
type Trx interface {
	// Enable starts the transceive loop.
	Enable(context.Context) error
	// Disable stops the transceive loop.
	Disable() error
	// Enabled reports whether the loop is running.
	Enabled() (bool, error)
	// Send loads intervals into the transmit buffer and starts
	// transmission from the beginning.
	Send(intervals []uint32) error
	// TxCursor returns the next transmit position.
	TxCursor() (int, error)
	// TxLength returns the length of the queued transmission.
	TxLength() (int, error)
	// RxCursor returns the next receive ring position.
	RxCursor() (int, error)
	// RxCapacity returns the receive ring size.
	RxCapacity() (int, error)
	// RxSnapshot returns the receive cursor and the full ring content in
	// storage order.
	RxSnapshot() (cursor int, intervals []uint32, err error)
	// RxReset rewinds the receive cursor.
	RxReset() error
}

// LocalTrx implements Trx over a table instance with buffers it owns.
type LocalTrx struct {
	inst  *trx.Transceiver
	txBuf []ticks.Ticks
	rxBuf []ticks.Ticks
}

// NewLocalTrx creates the instance and its buffers.
func NewLocalTrx(out gpio.OutputPin, in gpio.InputPin, txCapacity, rxCapacity int) (*LocalTrx, error) {
	if txCapacity <= 0 {
		return nil, trx.ErrTxLength
	}
	t := &LocalTrx{
		txBuf: make([]ticks.Ticks, txCapacity),
		rxBuf: make([]ticks.Ticks, rxCapacity),
	}
	inst, err := trx.Create(out, t.txBuf, in, t.rxBuf)
	if err != nil {
		return nil, err
	}
	t.inst = inst
	return t, nil
}

// Instance exposes the underlying table instance.
func (t *LocalTrx) Instance() *trx.Transceiver {
	return t.inst
}

// Enable implements Trx.
func (t *LocalTrx) Enable(ctx context.Context) error {
	t.inst.Enable(ctx)
	return nil
}

// Disable implements Trx.
func (t *LocalTrx) Disable() error {
	t.inst.Disable()
	return nil
}

// Enabled implements Trx.
func (t *LocalTrx) Enabled() (bool, error) {
	return t.inst.Enabled(), nil
}

// Send implements Trx. An active transmission is abandoned before the
// buffer is rewritten, so the loop never replays half-loaded data.
func (t *LocalTrx) Send(intervals []uint32) error {
	if len(intervals) > len(t.txBuf) {
		return trx.ErrTxLength
	}
	if err := t.inst.TxStart(0); err != nil {
		return err
	}
	for i, iv := range intervals {
		t.txBuf[i] = ticks.Ticks(iv)
	}
	return t.inst.TxStart(len(intervals))
}

// TxCursor implements Trx.
func (t *LocalTrx) TxCursor() (int, error) {
	return t.inst.TxCursor(), nil
}

// TxLength implements Trx.
func (t *LocalTrx) TxLength() (int, error) {
	return t.inst.TxLength(), nil
}

// RxCursor implements Trx.
func (t *LocalTrx) RxCursor() (int, error) {
	return t.inst.RxCursor(), nil
}

// RxCapacity implements Trx.
func (t *LocalTrx) RxCapacity() (int, error) {
	return t.inst.RxCapacity(), nil
}

// RxSnapshot implements Trx.
func (t *LocalTrx) RxSnapshot() (int, []uint32, error) {
	cursor := t.inst.RxCursor()
	intervals := make([]uint32, len(t.rxBuf))
	for i, iv := range t.rxBuf {
		intervals[i] = uint32(iv)
	}
	return cursor, intervals, nil
}

// RxReset implements Trx.
func (t *LocalTrx) RxReset() error {
	t.inst.RxReset()
	return nil
}
