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

import (
	"sort"
	"sync"
	"sync/atomic"
)

// cleanStatus is the three-state cleaning handshake word (§3 Term ring, §4.5).
type cleanStatus int32

const (
	statusClean cleanStatus = iota
	statusNeedsCleaning
	statusInCleaning
)

// byteRange is a half-open [start, end) span of bytes received out of order
// within a term, awaiting the tail to catch up to them.
type byteRange struct {
	start, end int64
}

// termRebuilder reassembles potentially out-of-order fragments delivered into
// one term into a contiguous byte sequence (GLOSSARY: Rebuilder). Exactly
// three of these sit in a Connection's term ring (§3, §4.1).
//
// Single-writer: only the receiver thread calls insert on a given slot, and
// only while that slot is the active or hwm index — never while it is
// NEEDS_CLEANING or IN_CLEANING, so insert and clean never race. bufferLock
// still guards the pending-range bookkeeping, matching how the teacher's
// stream.bufferLock protects buffers shared between producer and consumer
// goroutines.
type termRebuilder struct {
	capacity int32
	buf      []byte

	bufferLock sync.Mutex
	pending    []byteRange // sorted, non-overlapping, all starts > tail
	highest    int64       // highest end offset ever observed

	tail   atomic.Int64 // contiguous bytes filled from offset 0
	status atomic.Int32
}

// newTermRebuilder wraps buf (supplied by a TermBuffers implementation, §6)
// as the reassembly target for one ring slot.
func newTermRebuilder(buf []byte) *termRebuilder {
	r := &termRebuilder{
		capacity: int32(len(buf)),
		buf:      buf,
	}
	r.status.Store(int32(statusClean))
	return r
}

func (r *termRebuilder) needsCleaning() bool {
	return cleanStatus(r.status.Load()) == statusNeedsCleaning
}

// tailPosition is the in-term offset of the first unfilled byte.
func (r *termRebuilder) tailPosition() int64 { return r.tail.Load() }

func (r *termRebuilder) isComplete() bool { return r.tail.Load() == int64(r.capacity) }

// gapLength reports bytes buffered out-of-order but not yet contiguous
// (supplemented feature, see SPEC_FULL.md).
func (r *termRebuilder) gapLength() int64 {
	r.bufferLock.Lock()
	defer r.bufferLock.Unlock()
	var n int64
	for _, p := range r.pending {
		n += p.end - p.start
	}
	return n
}

// insert writes data at termOffset, idempotently, and advances the tail over
// any now-contiguous bytes. Returns whether the term just became complete
// (tail == capacity), triggering rotation in the caller (§4.1, §4.2).
func (r *termRebuilder) insert(termOffset int32, data []byte) (becameComplete bool) {
	if len(data) == 0 {
		return r.isComplete()
	}

	start := int64(termOffset)
	end := start + int64(len(data))

	r.bufferLock.Lock()
	defer r.bufferLock.Unlock()

	tail := r.tail.Load()
	if end <= tail {
		// Entirely-covered duplicate fragment: idempotent no-op (§4.2, §7).
		return tail == int64(r.capacity)
	}

	copyStart := start
	if copyStart < tail {
		copyStart = tail
	}
	copy(r.buf[copyStart:end], data[copyStart-start:])

	if end > r.highest {
		r.highest = end
	}

	r.pending = mergeRange(r.pending, byteRange{start: start, end: end})

	for len(r.pending) > 0 && r.pending[0].start <= tail {
		if r.pending[0].end > tail {
			tail = r.pending[0].end
		}
		r.pending = r.pending[1:]
	}
	r.tail.Store(tail)

	return tail == int64(r.capacity)
}

// mergeRange inserts nr into a sorted list of non-overlapping, non-adjacent
// ranges, merging any ranges it now overlaps or touches.
func mergeRange(ranges []byteRange, nr byteRange) []byteRange {
	idx := sort.Search(len(ranges), func(i int) bool { return ranges[i].start >= nr.start })

	merged := nr
	lo, hi := idx, idx
	if idx > 0 && ranges[idx-1].end >= nr.start {
		lo = idx - 1
		if ranges[lo].start < merged.start {
			merged.start = ranges[lo].start
		}
		if ranges[lo].end > merged.end {
			merged.end = ranges[lo].end
		}
	}
	for hi < len(ranges) && ranges[hi].start <= merged.end {
		if ranges[hi].end > merged.end {
			merged.end = ranges[hi].end
		}
		hi++
	}

	out := make([]byteRange, 0, len(ranges)-(hi-lo)+1)
	out = append(out, ranges[:lo]...)
	out = append(out, merged)
	out = append(out, ranges[hi:]...)
	return out
}

// markNeedsCleaning marks the slot dirty, an ordered (release) write (§4.1 step 3).
func (r *termRebuilder) markNeedsCleaning() {
	r.status.Store(int32(statusNeedsCleaning))
}

// isClean reports whether this slot's status word reads CLEAN, used by
// rotation's fatal assertion (§4.1 step 2, §7).
func (r *termRebuilder) isClean() bool {
	return cleanStatus(r.status.Load()) == statusClean
}

// tryBeginCleaning CAS-transitions NEEDS_CLEANING -> IN_CLEANING, guaranteeing
// at most one cleaner per term (§4.5).
func (r *termRebuilder) tryBeginCleaning() bool {
	return r.status.CompareAndSwap(int32(statusNeedsCleaning), int32(statusInCleaning))
}

// clean zero-fills the buffer and transitions the slot to CLEAN. Must only be
// called after a successful tryBeginCleaning.
func (r *termRebuilder) clean() {
	r.bufferLock.Lock()
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.pending = nil
	r.highest = 0
	r.bufferLock.Unlock()

	r.tail.Store(0)
	r.status.Store(int32(statusClean))
}
