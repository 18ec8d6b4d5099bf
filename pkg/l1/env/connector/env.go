// Package connector sets up the client side environment: which device to
// reach and through which registry or endpoint.
package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/irtrx.go/pkg/l1"
	"github.com/robotalks/irtrx.go/pkg/l1/comm"
	"github.com/robotalks/irtrx.go/pkg/l1/comm/mqtt"
)

// Config provides common options to set up Connectors.
type Config struct {
	Ref l1.DeviceRef

	// RegistryURL specifies where to find the device. Schemes:
	// mqtt://host:port/topic-prefix for registry based discovery,
	// tcp://host:port or ws://host:port/device for a direct endpoint.
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/irtrx/",
}

func init() {
	if val := os.Getenv("IRTRX_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("IRTRX_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("IRTRX_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "dev-type", defaultConfig.Ref.Type, "Device type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "dev-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "dev-reg", defaultConfig.RegistryURL, "Device registry or endpoint URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config from the defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using the current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp", "ws", "wss":
		return &comm.DirectConnector{URL: c.RegistryURL}, nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect connects to the configured device.
func (c *Config) Connect() (l1.DeviceConn, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	if _, direct := connector.(*comm.DirectConnector); !direct && !c.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	return connector.Connect(context.TODO(), c.Ref)
}

// MustConnect connects to the configured device or fails.
func (c *Config) MustConnect() l1.DeviceConn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
