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
	"errors"
	"fmt"
)

var (
	ErrAlreadyClosed     = errors.New("aeron: connection already closed")
	ErrInvalidTermLength = errors.New("aeron: termCapacity must be a power of two")
	ErrWindowTooLarge    = errors.New("aeron: termWindowSize exceeds termCapacity/2")
	ErrTermNotClean      = errors.New("aeron: rotation found the next term dirty")
)

// fatal aborts the process on a broken invariant: a conductor that has fallen
// behind on cleaning, caught by rotation (§4.1 step 2, §7). It is a variable
// so a test can substitute it and assert on the condition without killing the
// test binary.
var fatal = func(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
