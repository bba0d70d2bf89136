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
	"time"

	"github.com/cenkalti/backoff/v5"
)

// IdleStrategy backs off the conductor's duty cycle when nothing in a round
// did useful work, and resets the moment anything does. This is what
// consumes the SM scheduler's deliberately inverted work-count (§4.4, §9):
// SendPendingStatusMessages returns 0 on work done, 1 when idle, unlike
// CleanLogBuffer/ScanForGaps's more intuitive "1 means work happened" — the
// conductor sums InvertWorkCount(sm) + clean + scan and feeds the total here.
//
// Grounded on sakateka-yanet2's bird-adapter reconnect loop, which drives
// backoff.ExponentialBackOff the same way: default parameters, reset on
// success, NextBackOff() on failure.
type IdleStrategy struct {
	backoff  backoff.ExponentialBackOff
	deadline time.Time
}

// NewIdleStrategy returns an IdleStrategy with the library's default initial
// interval, randomization factor and multiplier, capped at 10ms per sleep.
func NewIdleStrategy() *IdleStrategy {
	s := &IdleStrategy{
		backoff: backoff.ExponentialBackOff{
			InitialInterval:     backoff.DefaultInitialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         10 * time.Millisecond,
		},
	}
	s.backoff.Reset()
	return s
}

// Idle is called once per conductor duty cycle with the total work count for
// that round (0 meaning nothing happened). It sleeps if idle, and resets the
// backoff curve the moment work resumes.
func (s *IdleStrategy) Idle(workCount int) {
	if workCount > 0 {
		s.backoff.Reset()
		return
	}
	time.Sleep(s.backoff.NextBackOff())
}

// InvertWorkCount flips the SM scheduler's "0 means work done" convention
// back into the conductor's "positive means work done" accounting, so
// callers can sum it with CleanLogBuffer/ScanForGaps without special-casing
// it at every call site.
func InvertWorkCount(smWorkCount int) int {
	if smWorkCount == 0 {
		return 1
	}
	return 0
}
