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

// positionCounter is a lock-free 64-bit position counter (§5, §9): the
// receiver publishes with SetOrdered (a release-store), the subscriber reads
// with Position (an acquire-load). Go's atomic.Int64 gives us sequentially
// consistent access, which is a stronger guarantee than the release/acquire
// pairing the spec calls for but preserves the happens-before edge it relies
// on.
type positionCounter struct {
	v atomic.Int64
}

func newPositionCounter(initial Position) *positionCounter {
	c := &positionCounter{}
	c.v.Store(initial)
	return c
}

func (c *positionCounter) Position() Position { return c.v.Load() }

func (c *positionCounter) SetOrdered(p Position) { c.v.Store(p) }

func (c *positionCounter) Close() error { return nil }

// systemClock is the default Clock, backed by the wall clock
// (time.Now().UnixNano()).
type systemClock struct{}

func (systemClock) NowNanos() int64 { return nowNanos() }
