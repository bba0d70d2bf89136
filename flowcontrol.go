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

// isFlowControlUnderrun reports a duplicate or very late packet (§4.3): the
// packet's position lands before the contiguous tail we've already built.
func isFlowControlUnderrun(packetPosition, currentPosition Position) bool {
	return packetPosition < currentPosition
}

// isFlowControlOverrun reports the sender exceeding the credit we advertised
// (§4.3): defensive, since a well-behaved sender never exceeds the window we
// gave it in the last status message.
func isFlowControlOverrun(packetPosition Position, length int32, subscriberPosition Position, termWindowSize int64) bool {
	return packetPosition+int64(length) > subscriberPosition+termWindowSize
}

// termWindowSize computes the hard upper bound on outstanding credit (§4.3).
func termWindowSize(termCapacity int32, configuredWindow int64) int64 {
	half := int64(termCapacity) / 2
	if configuredWindow < half {
		return configuredWindow
	}
	return half
}

// initialCurrentWindowSize clamps the configured initial window to the term
// window (§4.3).
func initialCurrentWindowSize(termWindow, initialWindow int64) int64 {
	if initialWindow < termWindow {
		return initialWindow
	}
	return termWindow
}

// computeGain is the default currentGain formula (§4.3): the progress
// threshold that triggers a status message outside of rotation or timeout.
// Exposed as the default GainFunc (see SUPPLEMENTED FEATURES in SPEC_FULL.md).
func computeGain(currentWindowSize int64, termCapacity int32) int64 {
	a := currentWindowSize / 4
	b := int64(termCapacity) / 4
	if a < b {
		return a
	}
	return b
}

// GainFunc computes currentGain from the current window and term capacity.
// The default is computeGain; callers may substitute their own strategy
// (§9: collaborators are capability records, not class hierarchies).
type GainFunc func(currentWindowSize int64, termCapacity int32) int64
