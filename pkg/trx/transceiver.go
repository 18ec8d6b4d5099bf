package trx

import (
	"context"
	"runtime"

	"go.uber.org/atomic"

	"github.com/robotalks/irtrx.go/pkg/hw/gpio"
	"github.com/robotalks/irtrx.go/pkg/hw/ticks"
)

// Transceiver replays interval sequences on its output line and timestamps
// edges on its input line into a ring of intervals. Create instances with
// Create; the zero value is not usable.
//
// All timing state except the cursors is touched only by the run loop.
// Control calls (TxStart, RxReset, Disable) may come from any goroutine
// and take effect on the next loop iteration.
type Transceiver struct {
	handle int
	clock  ticks.Clock
	out    gpio.OutputPin
	in     gpio.InputPin

	txBuf []ticks.Ticks
	// txState packs the queued length (high word) and the cursor (low
	// word) so a restart replaces both atomically. cursor == length means
	// no active transmission.
	txState  atomic.Uint64
	txTarget ticks.Ticks
	// txGuard holds the tick the pending target was computed from while
	// the target itself lies beyond a counter wrap; zero means the plain
	// now >= target comparison is valid.
	txGuard ticks.Ticks

	rxBuf    []ticks.Ticks
	rxCursor atomic.Uint32
	rxLast   ticks.Ticks

	running atomic.Bool
}

// Handle returns the stable table index of this instance.
func (t *Transceiver) Handle() int {
	return t.handle
}

// Run enters the cooperative transceive loop: sample the clock and the
// input line, advance the transmit machine, advance the receive machine,
// yield. It returns when Disable is called or ctx is done. Calling Run
// while the loop is already running returns nil immediately without
// starting a second loop.
func (t *Transceiver) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return nil
	}
	defer t.running.Store(false)
	for t.running.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.step(t.clock.Now(), t.in.Get())
		runtime.Gosched()
	}
	return nil
}

// Enable starts the run loop as a background task. It is a no-op while the
// loop is already running.
func (t *Transceiver) Enable(ctx context.Context) {
	go t.Run(ctx)
}

// Disable requests the run loop to stop. The request is cooperative: the
// loop observes it at its next iteration boundary.
func (t *Transceiver) Disable() {
	t.running.Store(false)
}

// Enabled reports whether the run loop is running.
func (t *Transceiver) Enabled() bool {
	return t.running.Load()
}

// TxStart queues a transmission of the first n intervals of the transmit
// buffer. The next loop iteration fires the first transition immediately.
// An in-progress transmission is abandoned and restarted from position 0;
// TxStart(0) abandons without queueing anything.
func (t *Transceiver) TxStart(n int) error {
	if n < 0 || n > len(t.txBuf) || n&1 != 0 {
		return ErrTxLength
	}
	t.txState.Store(uint64(n) << 32)
	return nil
}

// TxCursor returns the current position in the transmit buffer. It equals
// TxLength when no transmission is active or the last one completed.
func (t *Transceiver) TxCursor() int {
	return int(uint32(t.txState.Load()))
}

// TxLength returns the length of the queued transmission.
func (t *Transceiver) TxLength() int {
	return int(uint32(t.txState.Load() >> 32))
}

// RxCursor returns the ring position the next edge interval will be
// written to.
func (t *Transceiver) RxCursor() int {
	return int(t.rxCursor.Load())
}

// RxCapacity returns the receive ring capacity.
func (t *Transceiver) RxCapacity() int {
	return len(t.rxBuf)
}

// RxReset rewinds the receive cursor to 0. Buffer contents are not
// cleared: the ring is lazy, stale entries beyond the cursor remain until
// overwritten.
func (t *Transceiver) RxReset() {
	t.rxCursor.Store(0)
}

// step advances both state machines against one sampled (now, level)
// pair, keeping transmit and receive timing self-consistent even when the
// instance hears its own transmission.
func (t *Transceiver) step(now ticks.Ticks, level bool) {
	t.stepTx(now)
	t.stepRx(now, level)
}

func (t *Transceiver) stepTx(now ticks.Ticks) {
	st := t.txState.Load()
	cursor, length := uint32(st), uint32(st>>32)
	if cursor == length {
		return
	}
	if cursor == 0 {
		// Transmission just started: the first transition fires right
		// away, the first buffer entry times the first pulse.
		t.txTarget, t.txGuard = now, 0
	}
	if t.txGuard != 0 {
		if now >= t.txGuard {
			// Target lies beyond the counter wrap and the counter has not
			// wrapped yet.
			return
		}
		t.txGuard = 0
	}
	if now < t.txTarget {
		return
	}
	t.out.Set(cursor&1 == 0) // even positions start a pulse
	t.txGuard = t.txTarget
	t.txTarget = t.txTarget.Add(t.txBuf[cursor])
	if t.txTarget >= t.txGuard {
		// No wrap during the add, the plain comparison stays valid.
		t.txGuard = 0
	}
	// A concurrent TxStart wins the race; the abandoned advance is
	// discarded and the next iteration restarts from position 0.
	t.txState.CompareAndSwap(st, uint64(length)<<32|uint64(cursor+1))
}

func (t *Transceiver) stepRx(now ticks.Ticks, level bool) {
	cursor := t.rxCursor.Load()
	if level == (cursor&1 == 1) {
		// Line still at the level the current position expects: no edge
		// since the last look.
		return
	}
	t.rxBuf[cursor] = now.Since(t.rxLast)
	t.rxLast = now
	cursor++
	if cursor == uint32(len(t.rxBuf)) {
		cursor = 0
	}
	t.rxCursor.Store(cursor)
}
