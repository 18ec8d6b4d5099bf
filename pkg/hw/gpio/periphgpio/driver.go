// Package periphgpio drives real GPIO lines through periph.io.
package periphgpio

import (
	"fmt"

	"github.com/golang/glog"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	hw "github.com/robotalks/irtrx.go/pkg/hw/gpio"
)

// Init loads the periph host drivers. Call once before opening lines.
func Init() error {
	_, err := host.Init()
	return err
}

type outLine struct {
	pin pgpio.PinIO
}

// Set implements OutputPin. Write errors are logged, not returned: the run
// loop treats pin writes as infallible once the line is configured.
func (l *outLine) Set(level bool) {
	if err := l.pin.Out(pgpio.Level(level)); err != nil {
		glog.Errorf("gpio %s write: %v", l.pin.Name(), err)
	}
}

type inLine struct {
	pin pgpio.PinIO
}

// Get implements InputPin.
func (l *inLine) Get() bool {
	return l.pin.Read() == pgpio.High
}

// OpenOutput opens the named line for output, driven low initially.
func OpenOutput(name string) (hw.OutputPin, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := pin.Out(pgpio.Low); err != nil {
		return nil, err
	}
	return &outLine{pin: pin}, nil
}

// OpenInput opens the named line for input. The common IR receiver modules
// contain their own pull-up, so no pull is requested.
func OpenInput(name string) (hw.InputPin, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := pin.In(pgpio.PullNoChange, pgpio.NoEdge); err != nil {
		return nil, err
	}
	return &inLine{pin: pin}, nil
}
