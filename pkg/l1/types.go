package l1

import (
	"context"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
)

// Registrar registers a transceiver device with a registry and delivers
// its events. It integrates with the framework loop so the device easily
// processes incoming commands as messages.
type Registrar interface {
	// SendEvent publishes an event from the device.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed by the device.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a loop Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// DeviceRef is a reference to a transceiver device.
type DeviceRef struct {
	// Type is the device type.
	Type string
	// ID uniquely identifies the device.
	ID string
}

// Name retrieves the registry name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is usable.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides descriptive metadata for a device.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides registry information about a device.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}

// Connector is used by clients to reach a device.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, DeviceRef) (DeviceConn, error)
}

// DeviceConn is a client connection to a device.
type DeviceConn interface {
	// DoCommand sends a command and returns its future result.
	DoCommand(fx.Message) CommandFuture
}

// Result represents the outcome of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the pending result of a sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
