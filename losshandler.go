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

import "sync/atomic"

// termTailLossHandler is a minimal concrete LossHandler over the active
// term's rebuilder: tail tracking and a high-water candidate fold, with no
// NAK generation. Full loss-detection policy (retransmission requests, tail
// timeouts) is an out-of-scope external collaborator per spec.md §1 — this
// exists only so scanForGaps/highestPositionCandidate have a real,
// testable implementation instead of a bare interface.
type termTailLossHandler struct {
	rebuilder *termRebuilder
	base      Position // global position of this rebuilder's offset 0
	highest   atomic.Int64
}

func newTermTailLossHandler(initial Position) *termTailLossHandler {
	h := &termTailLossHandler{}
	h.highest.Store(initial)
	return h
}

// rebind points the handler at the rebuilder backing the currently active
// term and the global position its offset 0 corresponds to; called by
// Connection on construction and again on every rotation.
func (h *termTailLossHandler) rebind(r *termRebuilder, base Position) {
	h.rebuilder = r
	h.base = base
}

// Scan reports whether the bound rebuilder currently holds bytes beyond its
// contiguous tail, i.e. whether an open gap exists — a coarse proxy in the
// absence of real NAK bookkeeping.
func (h *termTailLossHandler) Scan() bool {
	if h.rebuilder == nil {
		return false
	}
	return h.rebuilder.gapLength() > 0
}

// TailPosition reports the global contiguous position: the bound rebuilder's
// in-term tail translated by the active term's base (§4.2).
func (h *termTailLossHandler) TailPosition() Position {
	if h.rebuilder == nil {
		return h.base
	}
	return h.base + h.rebuilder.tailPosition()
}

// HighestPositionCandidate folds candidate into the running high-water
// position (§4.2 step 6, §6).
func (h *termTailLossHandler) HighestPositionCandidate(candidate Position) Position {
	for {
		cur := h.highest.Load()
		if candidate <= cur {
			return cur
		}
		if h.highest.CompareAndSwap(cur, candidate) {
			return candidate
		}
	}
}
