package msgs

import (
	fx "github.com/robotalks/irtrx.go/pkg/framework"
)

// Generic reply type IDs.
const (
	CommandOKTypeID  uint32 = TypeIDKindCommand | TypeIDMaskReply
	CommandErrTypeID uint32 = TypeIDKindCommand | TypeIDMaskReply | 0x1
)

// CommandOK is the generic success reply for commands without a dedicated
// reply message.
type CommandOK struct {
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// CommandErr is the generic failure reply.
type CommandErr struct {
	// Reason describes the failure.
	Reason string `json:"reason"`
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Error implements error.
func (m *CommandErr) Error() string { return m.Reason }

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Reason: err.Error()}
}

// NewCommandErrFromMsg creates a CommandErr from a reason string.
func NewCommandErrFromMsg(reason string) *CommandErr {
	return &CommandErr{Reason: reason}
}

// GroupTrx is the message group of the interval transceiver.
const GroupTrx uint32 = 0x00010000

// Transceiver message type IDs.
const (
	TrxStatusQueryTypeID uint32 = TypeIDKindCommand | GroupTrx | 0x0000
	TrxStatusReplyTypeID uint32 = TrxStatusQueryTypeID | TypeIDMaskReply
	TrxStatusTypeID      uint32 = TypeIDKindEvent | GroupTrx | 0x0000
	TrxEnableTypeID      uint32 = TypeIDKindCommand | GroupTrx | 0x0001
	TrxDisableTypeID     uint32 = TypeIDKindCommand | GroupTrx | 0x0002
	TxSendTypeID         uint32 = TypeIDKindCommand | GroupTrx | 0x0003
	RxReadTypeID         uint32 = TypeIDKindCommand | GroupTrx | 0x0004
	RxDataTypeID         uint32 = RxReadTypeID | TypeIDMaskReply
	RxResetTypeID        uint32 = TypeIDKindCommand | GroupTrx | 0x0005
)

// InstanceStatus reports the state of one transceiver instance.
type InstanceStatus struct {
	// Instance is the instance index.
	Instance int `json:"instance"`
	// Enabled indicates the run loop is active.
	Enabled bool `json:"enabled"`
	// TxCursor is the index of the next interval to transmit.
	TxCursor uint32 `json:"txCursor"`
	// TxLength is the length of the active transmission, 0 when idle.
	TxLength uint32 `json:"txLength"`
	// RxCursor is the index the next received interval goes to.
	RxCursor uint32 `json:"rxCursor"`
	// RxCapacity is the size of the receive ring.
	RxCapacity uint32 `json:"rxCapacity"`
}

// TrxStatusQuery requests the current state of all instances.
type TrxStatusQuery struct {
}

// NewMessage implements Message.
func (m *TrxStatusQuery) NewMessage() fx.Message { return &TrxStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *TrxStatusQuery) TypeID() uint32 { return TrxStatusQueryTypeID }

// TrxStatusReply replies TrxStatusQuery.
type TrxStatusReply struct {
	Status *TrxStatus `json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *TrxStatusReply) NewMessage() fx.Message { return &TrxStatusReply{} }

// TypeID implements SerializableMessage.
func (m *TrxStatusReply) TypeID() uint32 { return TrxStatusReplyTypeID }

// TrxStatus is the event reporting the state of all instances. It is also
// published spontaneously whenever the state changes.
type TrxStatus struct {
	Instances []InstanceStatus `json:"instances"`
}

// NewMessage implements Message.
func (m *TrxStatus) NewMessage() fx.Message { return &TrxStatus{} }

// TypeID implements SerializableMessage.
func (m *TrxStatus) TypeID() uint32 { return TrxStatusTypeID }

// TrxEnable starts the run loop of one instance.
type TrxEnable struct {
	Instance int `json:"instance"`
}

// NewMessage implements Message.
func (m *TrxEnable) NewMessage() fx.Message { return &TrxEnable{} }

// TypeID implements SerializableMessage.
func (m *TrxEnable) TypeID() uint32 { return TrxEnableTypeID }

// TrxDisable stops the run loop of one instance.
type TrxDisable struct {
	Instance int `json:"instance"`
}

// NewMessage implements Message.
func (m *TrxDisable) NewMessage() fx.Message { return &TrxDisable{} }

// TypeID implements SerializableMessage.
func (m *TrxDisable) TypeID() uint32 { return TrxDisableTypeID }

// TxSend loads intervals into the transmit buffer and starts transmission.
// Intervals alternate pulse then gap, so the count must be even.
type TxSend struct {
	Instance  int      `json:"instance"`
	Intervals []uint32 `json:"intervals"`
}

// NewMessage implements Message.
func (m *TxSend) NewMessage() fx.Message { return &TxSend{} }

// TypeID implements SerializableMessage.
func (m *TxSend) TypeID() uint32 { return TxSendTypeID }

// RxRead requests a snapshot of the receive ring.
type RxRead struct {
	Instance int `json:"instance"`
}

// NewMessage implements Message.
func (m *RxRead) NewMessage() fx.Message { return &RxRead{} }

// TypeID implements SerializableMessage.
func (m *RxRead) TypeID() uint32 { return RxReadTypeID }

// RxData replies RxRead with the ring content. Intervals holds the full
// ring in storage order and Cursor indicates where the next interval will
// be written. Slots at and beyond Cursor hold stale data from a previous
// lap of the ring.
type RxData struct {
	Instance  int      `json:"instance"`
	Cursor    uint32   `json:"cursor"`
	Intervals []uint32 `json:"intervals"`
}

// NewMessage implements Message.
func (m *RxData) NewMessage() fx.Message { return &RxData{} }

// TypeID implements SerializableMessage.
func (m *RxData) TypeID() uint32 { return RxDataTypeID }

// RxReset rewinds the receive cursor to the start of the ring.
type RxReset struct {
	Instance int `json:"instance"`
}

// NewMessage implements Message.
func (m *RxReset) NewMessage() fx.Message { return &RxReset{} }

// TypeID implements SerializableMessage.
func (m *RxReset) TypeID() uint32 { return RxResetTypeID }
