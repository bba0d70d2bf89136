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

// Status is the connection lifecycle state (§3 Lifecycle, §6 numeric contract).
type Status int32

const (
	StatusActive   Status = 1
	StatusInactive Status = 2
	StatusLinger   Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	case StatusLinger:
		return "LINGER"
	default:
		return "UNKNOWN"
	}
}

// NextStatus is a supplemented, additive decision function (see
// SPEC_FULL.md "Supplemented features" #1): given the current status and how
// long it has been since the last frame from this source, it reports what
// the conductor *could* transition to. The conductor remains free to ignore
// this and drive status(s) directly — spec.md §3 leaves the transition
// policy external, this only gives it one optional, swappable implementation.
func NextStatus(current Status, sinceLastFrame int64, livenessTimeout int64) Status {
	switch current {
	case StatusActive:
		if sinceLastFrame > livenessTimeout {
			return StatusInactive
		}
		return StatusActive
	case StatusInactive:
		return StatusLinger
	default:
		return current
	}
}
