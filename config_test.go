package aeron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigResolveHappyPath(t *testing.T) {
	cfg := Config{
		TermLength:           "64KB",
		SubscriberWindow:     "16KB",
		InitialWindow:        "4KB",
		StatusMessageTimeout: 500 * time.Millisecond,
		InitialTermID:        7,
	}

	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	require.Equal(t, int32(64*1024), resolved.TermCapacity)
	require.Equal(t, int64(16*1024), resolved.SubscriberWindow)
	require.Equal(t, int64(4*1024), resolved.InitialWindow)
	require.Equal(t, 500*time.Millisecond, resolved.StatusMessageTimeout)
	require.Equal(t, int32(7), resolved.InitialTermID)
}

func TestConfigResolveRejectsNonPowerOfTwoTermLength(t *testing.T) {
	cfg := Config{TermLength: "100KB", SubscriberWindow: "1KB", InitialWindow: "1KB"}
	_, err := cfg.Resolve()
	require.ErrorIs(t, err, ErrInvalidTermLength)
}

func TestConfigResolveRejectsOversizedWindow(t *testing.T) {
	cfg := Config{TermLength: "64KB", SubscriberWindow: "40KB", InitialWindow: "1KB"}
	_, err := cfg.Resolve()
	require.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestConfigResolveRejectsBadByteSize(t *testing.T) {
	cfg := Config{TermLength: "not-a-size", SubscriberWindow: "1KB", InitialWindow: "1KB"}
	_, err := cfg.Resolve()
	require.Error(t, err)
}
