package aeron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermRebuilderContiguousInsert(t *testing.T) {
	r := newTermRebuilder(make([]byte, 16))

	require.False(t, r.insert(0, []byte("abcd")))
	require.Equal(t, int64(4), r.tailPosition())

	require.False(t, r.insert(4, []byte("efgh")))
	require.Equal(t, int64(8), r.tailPosition())
	require.Equal(t, []byte("abcdefgh"), r.buf[:8])
}

func TestTermRebuilderOutOfOrderInsertFillsGap(t *testing.T) {
	r := newTermRebuilder(make([]byte, 16))

	require.False(t, r.insert(4, []byte("efgh"))) // arrives first, out of order
	require.Equal(t, int64(0), r.tailPosition())
	require.Equal(t, int64(4), r.gapLength())

	require.False(t, r.insert(0, []byte("abcd"))) // fills the gap
	require.Equal(t, int64(8), r.tailPosition())
	require.Equal(t, int64(0), r.gapLength())
	require.Equal(t, []byte("abcdefgh"), r.buf[:8])
}

func TestTermRebuilderDuplicateInsertIsIdempotent(t *testing.T) {
	r := newTermRebuilder(make([]byte, 16))

	require.False(t, r.insert(0, []byte("abcd")))
	require.False(t, r.insert(0, []byte("abcd"))) // exact duplicate
	require.Equal(t, int64(4), r.tailPosition())

	require.False(t, r.insert(2, []byte("cd"))) // fully-covered overlap
	require.Equal(t, int64(4), r.tailPosition())
}

func TestTermRebuilderBecomesComplete(t *testing.T) {
	r := newTermRebuilder(make([]byte, 8))

	require.False(t, r.insert(0, []byte("abcd")))
	require.True(t, r.insert(4, []byte("efgh")))
	require.True(t, r.isComplete())
}

func TestTermRebuilderCleaningHandshake(t *testing.T) {
	r := newTermRebuilder(make([]byte, 8))
	require.True(t, r.isClean())
	require.False(t, r.needsCleaning())

	r.insert(0, []byte("abcd"))
	r.markNeedsCleaning()
	require.True(t, r.needsCleaning())
	require.False(t, r.isClean())

	require.True(t, r.tryBeginCleaning())
	require.False(t, r.tryBeginCleaning()) // second caller loses the CAS

	r.clean()
	require.True(t, r.isClean())
	require.Equal(t, int64(0), r.tailPosition())
	require.Equal(t, byte(0), r.buf[0])
}

func TestMergeRangeCoalescesAdjacentAndOverlapping(t *testing.T) {
	ranges := []byteRange{{start: 10, end: 20}, {start: 30, end: 40}}

	merged := mergeRange(ranges, byteRange{start: 20, end: 31})
	require.Equal(t, []byteRange{{start: 10, end: 40}}, merged)

	merged = mergeRange([]byteRange{{start: 0, end: 5}}, byteRange{start: 100, end: 110})
	require.Equal(t, []byteRange{{start: 0, end: 5}, {start: 100, end: 110}}, merged)
}
