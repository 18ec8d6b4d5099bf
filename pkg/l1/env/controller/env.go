// Package controller sets up the runtime environment of a device daemon:
// identity, registrars and loop wiring, configured by flags with env var
// defaults.
package controller

import (
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
	"github.com/robotalks/irtrx.go/pkg/l1"
	"github.com/robotalks/irtrx.go/pkg/l1/comm"
	"github.com/robotalks/irtrx.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/irtrx.go/pkg/l1/env"
)

// Config provides common options to set up the env for a device daemon.
type Config struct {
	Info l1.DeviceInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// ListenAddress, when set, accepts direct TCP connections.
	ListenAddress string

	// WebsocketAddress, when set, serves the websocket endpoint.
	WebsocketAddress string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/irtrx/",
}

func init() {
	if val := os.Getenv("IRTRX_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Device type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.ListenAddress, "listen", defaultConfig.ListenAddress, "Direct TCP listen address")
	flag.StringVar(&defaultConfig.WebsocketAddress, "ws", defaultConfig.WebsocketAddress, "Websocket listen address")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// SetDeviceType should be called in init with basic info about the
// device.
func SetDeviceType(typ string, meta l1.DeviceMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the runtime environment of a device daemon.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config from the defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.ListenAddress != "" {
		env.Registrar.Add(&comm.DirectServer{Address: c.ListenAddress})
	}
	if c.WebsocketAddress != "" {
		env.Registrar.Add(&comm.WebsocketServer{Address: c.WebsocketAddress})
	}
	if len(env.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
