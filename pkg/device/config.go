package device

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	bclock "github.com/benbjohnson/clock"

	"github.com/robotalks/irtrx.go/pkg/hw/gpio"
	"github.com/robotalks/irtrx.go/pkg/hw/gpio/periphgpio"
	"github.com/robotalks/irtrx.go/pkg/hw/ticks"
	"github.com/robotalks/irtrx.go/pkg/l0/trxlink"
	env "github.com/robotalks/irtrx.go/pkg/l1/env/controller"
)

// Config defines how transceiver instances are attached.
type Config struct {
	// Pins lists GPIO backed instances as "out:in" pairs separated by
	// commas, e.g. "GPIO17:GPIO18".
	Pins string
	// Loopback adds the given number of loopback instances, where the
	// output line feeds the input line in memory.
	Loopback int
	// Serial attaches firmware hosted instances over a serial device.
	Serial string
	// Baud is the serial line rate.
	Baud uint
	// SerialInstances is how many instances the firmware hosts.
	SerialInstances int
	// TxCapacity and RxCapacity size the buffers of local instances.
	TxCapacity int
	RxCapacity int
	// Hz is the nominal tick frequency of the shared clock.
	Hz uint64
}

var defaultConfig = Config{
	Baud:            115200,
	SerialInstances: 1,
	TxCapacity:      256,
	RxCapacity:      256,
	Hz:              ticks.DefaultHz,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Pins, "pins", defaultConfig.Pins, "GPIO instances as out:in pairs (line names or bound pin numbers), comma separated.")
	flag.IntVar(&defaultConfig.Loopback, "loopback", defaultConfig.Loopback, "Number of loopback instances.")
	flag.StringVar(&defaultConfig.Serial, "serial", defaultConfig.Serial, "Serial device hosting firmware instances.")
	flag.UintVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial line rate.")
	flag.IntVar(&defaultConfig.SerialInstances, "serial-instances", defaultConfig.SerialInstances, "Instances hosted by the firmware.")
	flag.IntVar(&defaultConfig.TxCapacity, "tx-cap", defaultConfig.TxCapacity, "Transmit buffer capacity in intervals.")
	flag.IntVar(&defaultConfig.RxCapacity, "rx-cap", defaultConfig.RxCapacity, "Receive ring capacity in intervals, must be even.")
	flag.Uint64Var(&defaultConfig.Hz, "hz", defaultConfig.Hz, "Nominal tick frequency of the shared clock.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config from the defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController builds the instances the config describes and wraps them
// in a Controller.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	if c.Hz != ticks.DefaultHz {
		ticks.Configure(ticks.NewSource(bclock.New(), c.Hz))
	}
	ctl := NewController(e)
	for i := 0; i < c.Loopback; i++ {
		wire := gpio.NewLoopback()
		t, err := NewLocalTrx(wire, wire, c.TxCapacity, c.RxCapacity)
		if err != nil {
			return nil, err
		}
		ctl.Instances = append(ctl.Instances, t)
	}
	if c.Pins != "" {
		for _, pair := range strings.Split(c.Pins, ",") {
			names := strings.SplitN(pair, ":", 2)
			if len(names) != 2 {
				return nil, fmt.Errorf("invalid pin pair %q", pair)
			}
			out, err := resolveOutput(names[0])
			if err != nil {
				return nil, err
			}
			in, err := resolveInput(names[1])
			if err != nil {
				return nil, err
			}
			t, err := NewLocalTrx(out, in, c.TxCapacity, c.RxCapacity)
			if err != nil {
				return nil, err
			}
			ctl.Instances = append(ctl.Instances, t)
		}
	}
	if c.Serial != "" {
		link, err := trxlink.Open(c.Serial, c.Baud)
		if err != nil {
			return nil, err
		}
		ctl.Links = append(ctl.Links, link)
		for i := 0; i < c.SerialInstances; i++ {
			ctl.Instances = append(ctl.Instances, link.Trx(i))
		}
	}
	if len(ctl.Instances) == 0 {
		return nil, fmt.Errorf("no instances configured")
	}
	return ctl, nil
}

// resolveOutput maps a pin spec to a line: numeric identifiers go through
// the process-wide binding registry, names open real GPIO lines.
func resolveOutput(name string) (gpio.OutputPin, error) {
	if id, err := strconv.Atoi(name); err == nil {
		return gpio.Bindings().Output(id)
	}
	if err := periphgpio.Init(); err != nil {
		return nil, err
	}
	return periphgpio.OpenOutput(name)
}

func resolveInput(name string) (gpio.InputPin, error) {
	if id, err := strconv.Atoi(name); err == nil {
		return gpio.Bindings().Input(id)
	}
	if err := periphgpio.Init(); err != nil {
		return nil, err
	}
	return periphgpio.OpenInput(name)
}
