package ticks

import (
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestSinceWraparound(t *testing.T) {
	testCases := []struct {
		name           string
		earlier, later Ticks
		expected       Ticks
	}{
		{"plain", 100, 350, 250},
		{"zero", 42, 42, 0},
		{"wrap", 0xfffffff0, 0x10, 0x20},
		{"wrap to zero", 0xffffffff, 0, 1},
		{"full period minus one", 1, 0, 0xffffffff},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.later.Since(tc.earlier))
			require.Equal(t, tc.later, tc.earlier.Add(tc.expected))
		})
	}
}

func TestSourceScaling(t *testing.T) {
	mock := bclock.NewMock()
	clk := NewSource(mock, 1000000) // 1 MHz: one tick per microsecond

	require.Equal(t, Ticks(0), clk.Now())
	mock.Add(time.Millisecond)
	require.Equal(t, Ticks(1000), clk.Now())
	mock.Add(2 * time.Second)
	require.Equal(t, Ticks(2001000), clk.Now())
}

func TestSourceWrap(t *testing.T) {
	mock := bclock.NewMock()
	clk := NewSource(mock, 1000000)

	// 2^32 us is about 71.58 minutes; go a bit past one full period.
	mock.Add(4295 * time.Second)
	require.Equal(t, Ticks(4295000000-(1<<32)), clk.Now())
}

func TestSharedConfigureOnce(t *testing.T) {
	// The shared clock belongs to the process; within this test binary only
	// the first configuration wins and everyone observes the same instance.
	mock := bclock.NewMock()
	first := Configure(NewSource(mock, 1000))
	again := Configure(NewSource(bclock.NewMock(), 2000))
	require.False(t, again)
	require.NotNil(t, Shared())
	require.Equal(t, Shared(), Shared())
	if first {
		mock.Add(time.Second)
		require.Equal(t, Ticks(1000), Shared().Now())
	}
}
