// Package sim provides an in-memory signal medium for wiring transceiver
// instances together without hardware.
package sim

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/robotalks/irtrx.go/pkg/hw/gpio"
)

// Bus models a shared line: every driver that holds it high is seen high
// by every listener, like multiple IR emitters lighting one receiver.
type Bus struct {
	lock    sync.Mutex
	drivers []*Driver
}

// NewBus creates an idle Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Driver allocates a new output cell on the bus.
func (b *Bus) Driver() *Driver {
	d := &Driver{}
	b.lock.Lock()
	b.drivers = append(b.drivers, d)
	b.lock.Unlock()
	return d
}

// Get implements InputPin, reading the wired-or level.
func (b *Bus) Get() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, d := range b.drivers {
		if d.level.Load() {
			return true
		}
	}
	return false
}

// Driver is one output cell on a Bus.
type Driver struct {
	level atomic.Bool
}

// Set implements OutputPin.
func (d *Driver) Set(level bool) {
	d.level.Store(level)
}

var _ gpio.InputPin = (*Bus)(nil)
var _ gpio.OutputPin = (*Driver)(nil)
