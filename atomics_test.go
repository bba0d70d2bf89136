package aeron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionCounter(t *testing.T) {
	c := newPositionCounter(5)
	require.Equal(t, Position(5), c.Position())

	c.SetOrdered(42)
	require.Equal(t, Position(42), c.Position())
	require.NoError(t, c.Close())
}

func TestSystemClockAdvances(t *testing.T) {
	var clock Clock = systemClock{}
	first := clock.NowNanos()
	second := clock.NowNanos()
	require.GreaterOrEqual(t, second, first)
}
