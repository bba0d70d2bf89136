package aeron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionRoundTrip(t *testing.T) {
	const initialTermID TermID = 7
	const termCapacity = 1 << 16
	shift := positionBitsToShift(termCapacity)

	cases := []struct {
		termID     TermID
		termOffset int32
	}{
		{initialTermID, 0},
		{initialTermID, 1234},
		{initialTermID, termCapacity - 1},
		{initialTermID + 1, 0},
		{initialTermID + 1, 42},
		{initialTermID + 5, termCapacity - 1},
	}

	for _, c := range cases {
		pos := computePosition(c.termID, initialTermID, c.termOffset, shift)
		require.Equal(t, c.termID, positionTermID(pos, initialTermID, shift))
		require.Equal(t, c.termOffset, positionTermOffset(pos, shift))
	}
}

func TestPositionMonotonicAcrossTerms(t *testing.T) {
	const initialTermID TermID = 0
	const termCapacity = 1 << 12
	shift := positionBitsToShift(termCapacity)

	end := computePosition(initialTermID, initialTermID, termCapacity-1, shift)
	start := computePosition(initialTermID+1, initialTermID, 0, shift)
	require.Equal(t, end+1, start)
}

// TestPositionCompletionBoundaryCarries guards the termOffset == termCapacity
// case computePosition sees the instant a term completes: an OR of the
// term-count and offset bits would collide here (both occupy the same bit
// once termOffset reaches a power of two equal to termCapacity), silently
// losing the carry into the next term.
func TestPositionCompletionBoundaryCarries(t *testing.T) {
	const initialTermID TermID = 0
	const termCapacity = 16
	shift := positionBitsToShift(termCapacity)

	completedTerm0 := computePosition(0, initialTermID, termCapacity, shift)
	require.Equal(t, Position(16), completedTerm0)

	completedTerm1 := computePosition(1, initialTermID, termCapacity, shift)
	require.Equal(t, Position(32), completedTerm1, "term 1 completing must publish 32, not 16")
}

func TestPositionBitsToShift(t *testing.T) {
	require.Equal(t, uint(16), positionBitsToShift(1<<16))
	require.Equal(t, uint(12), positionBitsToShift(1<<12))
	require.Equal(t, uint(0), positionBitsToShift(1))
}

func TestTermIDToRingIndex(t *testing.T) {
	require.Equal(t, 0, termIDToRingIndex(0))
	require.Equal(t, 1, termIDToRingIndex(1))
	require.Equal(t, 2, termIDToRingIndex(2))
	require.Equal(t, 0, termIDToRingIndex(3))
	require.Equal(t, 1, termIDToRingIndex(7))
}
