package aeron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInvertWorkCount(t *testing.T) {
	require.Equal(t, 1, InvertWorkCount(0))
	require.Equal(t, 0, InvertWorkCount(1))
}

func TestIdleStrategyDoesNotSleepWhenWorkHappened(t *testing.T) {
	s := NewIdleStrategy()

	start := time.Now()
	s.Idle(1)
	require.Less(t, time.Since(start), 5*time.Millisecond)
}

func TestIdleStrategySleepsWhenIdle(t *testing.T) {
	s := NewIdleStrategy()

	start := time.Now()
	s.Idle(0)
	elapsed := time.Since(start)

	require.Greater(t, elapsed, time.Duration(0))
	require.Less(t, elapsed, time.Second, "a single idle round should back off well under a second")
}
