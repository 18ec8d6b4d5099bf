package msgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed wraps a message with its wire type information. Payloads are
// JSON-encoded message structs.
type Typed struct {
	TypeID   uint32          `json:"t"`
	Sequence uint32          `json:"seq,omitempty"`
	Message  json.RawMessage `json:"msg,omitempty"`
}

// TypedMsgHandler handles a decoded message with its envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is the func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// ErrUnknownType indicates an unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message cannot go on the wire.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
}

// MessageTypes maps type IDs to message prototypes.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:      (*CommandOK)(nil),
	CommandErrTypeID:     (*CommandErr)(nil),
	TrxStatusQueryTypeID: (*TrxStatusQuery)(nil),
	TrxStatusReplyTypeID: (*TrxStatusReply)(nil),
	TrxStatusTypeID:      (*TrxStatus)(nil),
	TrxEnableTypeID:      (*TrxEnable)(nil),
	TrxDisableTypeID:     (*TrxDisable)(nil),
	TxSendTypeID:         (*TxSend)(nil),
	RxReadTypeID:         (*RxRead)(nil),
	RxDataTypeID:         (*RxData)(nil),
	RxResetTypeID:        (*RxReset)(nil),
}

// TypedFrom creates a Typed envelope from a serializable message.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return &Typed{TypeID: s.TypeID(), Message: data}, nil
}

// Decode decodes the payload into the actual message.
func (p Typed) Decode() (fx.Message, error) {
	prototype, ok := MessageTypes[p.TypeID]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeID}
	}
	msg := prototype.NewMessage()
	if len(p.Message) > 0 {
		if err := json.Unmarshal(p.Message, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Encode encodes the envelope to bytes.
func (p Typed) Encode() ([]byte, error) {
	return json.Marshal(&p)
}

// Kind gets the message kind from the type ID.
func (p Typed) Kind() uint32 {
	return p.TypeID & TypeIDMaskKind
}

// IsCommand determines if the message is a command (or a reply).
func (p Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (p Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// DecodeTyped decodes bytes into a Typed envelope.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}
