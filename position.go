// MIT License
//
// Copyright (c) 2016-2017 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package aeron

import "math/bits"

// Position is a monotonically non-decreasing logical byte offset from the
// start of a stream (GLOSSARY: Position).
type Position = int64

// TermID is a monotonically increasing 32-bit term identifier.
type TermID = int32

// positionBitsToShift returns log2(termCapacity). termCapacity must already
// be validated as a power of two by the caller (see Config.Resolve and
// NewConnection).
func positionBitsToShift(termCapacity int32) uint {
	return uint(bits.TrailingZeros32(uint32(termCapacity)))
}

// computePosition implements §3's Position formula:
//
//	position(termId, termOffset) = ((termId - initialTermId) << positionBitsToShift) + termOffset
//
// Addition, not OR: termOffset reaches termCapacity itself at term
// completion, a bit pattern that collides with the term-count bits an OR
// would silently swallow, losing the carry into the next term.
func computePosition(termID, initialTermID TermID, termOffset int32, shift uint) Position {
	termCount := int64(termID - initialTermID)
	return (termCount << shift) + int64(termOffset)
}

// positionTermOffset decomposes a position back into its in-term offset.
func positionTermOffset(position Position, shift uint) int32 {
	mask := int64(1)<<shift - 1
	return int32(position & mask)
}

// positionTermID recovers the termId a position falls in, the inverse half of
// computePosition (§8 round-trip property: position(termIdToBufferIndexInverse(...)) == p).
func positionTermID(position Position, initialTermID TermID, shift uint) TermID {
	termCount := position >> shift
	return initialTermID + TermID(termCount)
}

// termIDToRingIndex computes termId mod 3 with correct behavior for the
// monotonically increasing (always >= initialTermId) term identifiers this
// connection will ever see (§3 Term ring).
func termIDToRingIndex(termID TermID) int {
	r := int(termID % 3)
	if r < 0 {
		r += 3
	}
	return r
}
