package aeron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapTermBuffers(t *testing.T) {
	tb := newHeapTermBuffers(64)
	require.Equal(t, int32(64), tb.TermLength())

	for i := 0; i < 3; i++ {
		require.Len(t, tb.Buffer(i), 64)
	}

	tb.Buffer(0)[0] = 0xFF
	require.NotEqual(t, tb.Buffer(1)[0], tb.Buffer(0)[0], "ring slots must be independent backing arrays")
	require.NoError(t, tb.Close())
}
