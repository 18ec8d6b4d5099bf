package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
)

func TestTypedRoundTrip(t *testing.T) {
	typed, err := TypedFrom(&TxSend{Instance: 1, Intervals: []uint32{560, 1690}})
	require.NoError(t, err)
	require.Equal(t, TxSendTypeID, typed.TypeID)
	require.True(t, typed.IsCommand())

	typed.Sequence = 7
	data, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(7), decoded.Sequence)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	send, ok := msg.(*TxSend)
	require.True(t, ok)
	require.Equal(t, 1, send.Instance)
	require.Equal(t, []uint32{560, 1690}, send.Intervals)
}

func TestTypedKinds(t *testing.T) {
	typed, err := TypedFrom(&TrxStatus{})
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
	require.False(t, typed.IsCommand())

	typed, err = TypedFrom(&TrxStatusReply{})
	require.NoError(t, err)
	require.True(t, typed.IsCommand())
	require.NotZero(t, typed.TypeID&TypeIDMaskReply)
}

func TestDecodeUnknownType(t *testing.T) {
	typed := Typed{TypeID: 0x7ffe0000}
	_, err := typed.Decode()
	require.Error(t, err)
	unknown, ok := err.(*ErrUnknownType)
	require.True(t, ok)
	require.Equal(t, uint32(0x7ffe0000), unknown.TypeID)
}

func TestTypedFromNotSerializable(t *testing.T) {
	_, err := TypedFrom(&notSerializable{})
	require.Equal(t, ErrNotSerializable, err)
}

type notSerializable struct{}

func (m *notSerializable) NewMessage() fx.Message { return &notSerializable{} }
