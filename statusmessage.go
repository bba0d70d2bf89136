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

// smScheduler holds the status-message emission state (§3 SM scheduler
// state, §4.4). Only the conductor thread touches this — no atomics needed.
type smScheduler struct {
	lastSmTermID     TermID
	lastSmPosition   Position
	lastSmTimestamp  int64
	statusMsgTimeout int64

	currentWindowSize int64
	currentGain       int64
}

// shouldSend implements §4.4's four triggers, reporting whether any of them
// fires.
func (s *smScheduler) shouldSend(subscriberTermID TermID, subscriberPosition Position, now int64) bool {
	if s.lastSmTimestamp == 0 {
		return true // Initial SM
	}
	if subscriberTermID != s.lastSmTermID {
		return true // Term rotated at subscriber
	}
	if subscriberPosition-s.lastSmPosition > s.currentGain {
		return true // Progress exceeds gain
	}
	if now-s.lastSmTimestamp > s.statusMsgTimeout {
		return true // Timeout
	}
	return false
}

func (s *smScheduler) recordSent(termID TermID, position Position, now int64) {
	s.lastSmTermID = termID
	s.lastSmPosition = position
	s.lastSmTimestamp = now
}
