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

// heapTermBuffers is the default TermBuffers: three plain heap-allocated
// slices. The real shared-memory log-buffer allocator is an out-of-scope
// external collaborator (§1); this stands in for it so a Connection is
// constructible and testable without one.
type heapTermBuffers struct {
	bufs   [3][]byte
	length int32
}

func newHeapTermBuffers(termLength int32) *heapTermBuffers {
	t := &heapTermBuffers{length: termLength}
	for i := range t.bufs {
		t.bufs[i] = make([]byte, termLength)
	}
	return t
}

func (t *heapTermBuffers) Buffer(ringIndex int) []byte { return t.bufs[ringIndex] }
func (t *heapTermBuffers) TermLength() int32           { return t.length }
func (t *heapTermBuffers) Close() error                { return nil }
