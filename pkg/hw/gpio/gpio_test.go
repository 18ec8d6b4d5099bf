package gpio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopback(t *testing.T) {
	l := NewLoopback()
	require.False(t, l.Get())
	l.Set(true)
	require.True(t, l.Get())
	l.Set(false)
	require.False(t, l.Get())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Input(3)
	require.Error(t, err)
	_, err = r.Output(3)
	require.Error(t, err)

	l := NewLoopback()
	r.BindOutput(3, l).BindInput(4, l)

	out, err := r.Output(3)
	require.NoError(t, err)
	in, err := r.Input(4)
	require.NoError(t, err)

	out.Set(true)
	require.True(t, in.Get())
}
