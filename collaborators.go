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

// The collaborators below are narrow behavioral contracts (§9: "no
// inheritance needed"), not class hierarchies — callers plug in whatever
// concrete type satisfies the interface.

// LossHandler tracks gaps within the active term and drives NAK generation.
// Full retransmission policy is out of scope (§1); Connection only consumes
// this narrow contract (§6).
type LossHandler interface {
	// Scan advances gap tracking and reports whether it made progress.
	Scan() bool
	// TailPosition is the current contiguous (gap-free) position.
	TailPosition() Position
	// HighestPositionCandidate folds a newly observed packet position into
	// the running high-water mark and returns the (possibly unchanged) result.
	HighestPositionCandidate(candidate Position) Position
}

// StatusMessageSender transmits a status message. Implementations must be
// non-blocking and may silently drop on congestion (§7).
type StatusMessageSender interface {
	Send(termID TermID, termOffset int32, windowSize int32) error
}

// PositionReporter is the write-side of a lock-free position counter.
type PositionReporter interface {
	Position() Position
	// SetOrdered publishes p with a release-store: the acquire-load on the
	// PositionIndicator side establishes happens-before on prior writes (§5).
	SetOrdered(p Position)
	Close() error
}

// PositionIndicator is the read-side of a lock-free position counter.
type PositionIndicator interface {
	Position() Position
	Close() error
}

// Clock is a zero-arg wall-clock source returning nanoseconds, substitutable
// in tests.
type Clock interface {
	NowNanos() int64
}

// SystemCounters is the named set of atomic counters this connection bumps.
// See counters.go for the concrete prometheus-backed implementation.
type SystemCounters interface {
	IncStatusMessagesSent()
	IncFlowControlUnderRuns()
	IncFlowControlOverRuns()
}

// TermBuffers enumerates the three raw-log+state pairs backing a connection's
// term ring. Allocation/mapping itself is out of scope (§1); Connection only
// needs three equally sized byte slices and the ability to release them.
type TermBuffers interface {
	Buffer(ringIndex int) []byte
	TermLength() int32
	Close() error
}
