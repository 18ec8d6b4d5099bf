package trx

import (
	"sync"

	"github.com/robotalks/irtrx.go/pkg/hw/gpio"
	"github.com/robotalks/irtrx.go/pkg/hw/ticks"
)

// MaxInstances bounds the process-wide transceiver table. Instances live
// for the rest of the process; there is no reclamation.
const MaxInstances = 8

var table struct {
	lock      sync.Mutex
	instances []*Transceiver
}

// Create binds a transceiver to its lines and caller-owned buffers and
// adds it to the table. The transmit buffer is read-only to the instance;
// the receive buffer length must be a positive even number (gaps at even
// positions, pulses at odd). The first creation also starts the shared
// clock.
func Create(out gpio.OutputPin, txBuf []ticks.Ticks, in gpio.InputPin, rxBuf []ticks.Ticks) (*Transceiver, error) {
	if out == nil || in == nil {
		return nil, ErrNoPin
	}
	if n := len(rxBuf); n == 0 || n&1 != 0 {
		return nil, ErrRxCapacity
	}
	clk := ticks.Shared()
	table.lock.Lock()
	defer table.lock.Unlock()
	if len(table.instances) >= MaxInstances {
		return nil, ErrTableFull
	}
	t := &Transceiver{
		handle: len(table.instances),
		clock:  clk,
		out:    out,
		in:     in,
		txBuf:  txBuf,
		rxBuf:  rxBuf,
		rxLast: clk.Now(),
	}
	table.instances = append(table.instances, t)
	return t, nil
}

// Lookup returns the instance with the given handle, or nil.
func Lookup(handle int) *Transceiver {
	table.lock.Lock()
	defer table.lock.Unlock()
	if handle < 0 || handle >= len(table.instances) {
		return nil
	}
	return table.instances[handle]
}

// Count returns the number of created instances.
func Count() int {
	table.lock.Lock()
	defer table.lock.Unlock()
	return len(table.instances)
}

// resetTable drops all instances. Tests only.
func resetTable() {
	table.lock.Lock()
	table.instances = nil
	table.lock.Unlock()
}
