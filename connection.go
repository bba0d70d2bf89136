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

// Package aeron implements the per-connection receive engine of a reliable,
// low-latency, UDP-based messaging transport: reassembly of a datagram
// stream into a rotating three-term ring, flow-control windowing, status
// message scheduling, and the cleaning handshake that lets a conductor
// thread safely recycle drained terms. See SPEC_FULL.md for the full
// component breakdown.
package aeron

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// DataHeader is the parsed data-frame header the receiver thread hands to
// InsertIntoTerm (§4.2): termId, the in-term offset the payload starts at.
// Length is implied by len(payload).
type DataHeader struct {
	TermID     TermID
	TermOffset int32
}

// ConnectionParams configures a new Connection (§6 Configuration).
type ConnectionParams struct {
	ReceiveChannelEndpoint string
	SessionID              int32
	StreamID               int32

	InitialTermID        TermID
	TermCapacity         int32 // power of two
	SubscriberWindow     int64 // configured subscription window
	InitialWindowSize    int64
	StatusMessageTimeout int64 // nanoseconds

	// TermBuffers supplies the three backing byte slices. Defaults to a
	// heap-allocated heapTermBuffers if nil.
	TermBuffers TermBuffers
	// SubscriberPosition is borrowed if supplied (the subscriber owns it);
	// if nil, Connection creates and owns one internally and exposes
	// AdvanceSubscriberPosition to drive it (§3, §5 "subscriber-position
	// reader" owned-on-close).
	SubscriberPosition PositionIndicator
	SMSender           StatusMessageSender
	Counters           SystemCounters
	Clock              Clock
	Logger             *zap.Logger
	// GainFn overrides the default currentGain formula (§4.3, SUPPLEMENTED
	// FEATURES #3). Defaults to computeGain.
	GainFn GainFunc
}

// Connection is the server-side (subscriber) state machine tracking one
// (sessionId, streamId) stream on one receive endpoint (§1, §3). It is the
// direct analog of the teacher's Session: one object composing term-ring
// reassembly, flow control, SM scheduling, and lifecycle state, touched by
// three independent threads without locks (§5).
type Connection struct {
	receiveChannelEndpoint string
	sessionID              int32
	streamID               int32

	initialTermID TermID
	termCapacity  int32
	shift         uint
	termWindow    int64

	termBuffers TermBuffers
	rebuilders  [3]*termRebuilder

	// receiver-thread-only state (§5): no synchronization needed among these
	// fields themselves, only in how they're published to other threads.
	activeIndex int
	hwmTermID   TermID
	hwmIndex    int

	activeTermID atomic.Int32

	contiguousReceivedPosition *positionCounter
	highestReceivedPosition    *positionCounter

	subscriberPosition      PositionIndicator
	subscriberPositionOwned *positionCounter // non-nil iff Connection created it

	timeOfLastFrame        atomic.Int64
	status                 atomic.Int32
	timeOfLastStatusChange atomic.Int64
	statusMessagesEnabled  atomic.Bool

	sm smScheduler // conductor-thread-only, no atomics needed

	lossHandler LossHandler
	smSender    StatusMessageSender
	counters    SystemCounters
	clock       Clock
	logger      *zap.Logger

	closed atomic.Bool
}

// rebindableLossHandler lets Connection repoint a pluggable LossHandler at
// the new active rebuilder and its base position after rotation, without
// widening the narrow three-method LossHandler contract from §6.
type rebindableLossHandler interface {
	rebind(r *termRebuilder, base Position)
}

// NewConnection constructs a Connection in the ACTIVE status (§3 Lifecycle).
func NewConnection(p ConnectionParams) (*Connection, error) {
	if p.TermCapacity <= 0 || p.TermCapacity&(p.TermCapacity-1) != 0 {
		return nil, ErrInvalidTermLength
	}
	window := termWindowSize(p.TermCapacity, p.SubscriberWindow)
	if p.SubscriberWindow > p.TermCapacity/2 {
		return nil, ErrWindowTooLarge
	}

	tb := p.TermBuffers
	if tb == nil {
		tb = newHeapTermBuffers(p.TermCapacity)
	}

	c := &Connection{
		receiveChannelEndpoint: p.ReceiveChannelEndpoint,
		sessionID:              p.SessionID,
		streamID:               p.StreamID,
		initialTermID:          p.InitialTermID,
		termCapacity:           p.TermCapacity,
		shift:                  positionBitsToShift(p.TermCapacity),
		termWindow:             window,
		termBuffers:            tb,
		smSender:               p.SMSender,
		counters:               p.Counters,
		clock:                  p.Clock,
		logger:                 loggerOrNoop(p.Logger),
	}

	for i := 0; i < 3; i++ {
		c.rebuilders[i] = newTermRebuilder(tb.Buffer(i))
	}

	c.activeIndex = termIDToRingIndex(p.InitialTermID)
	c.hwmIndex = c.activeIndex
	c.hwmTermID = p.InitialTermID
	c.activeTermID.Store(int32(p.InitialTermID))

	c.contiguousReceivedPosition = newPositionCounter(0)
	c.highestReceivedPosition = newPositionCounter(0)

	if p.SubscriberPosition != nil {
		c.subscriberPosition = p.SubscriberPosition
	} else {
		owned := newPositionCounter(0)
		c.subscriberPositionOwned = owned
		c.subscriberPosition = owned
	}

	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.counters == nil {
		c.counters = noopCounters{}
	}

	gainFn := p.GainFn
	if gainFn == nil {
		gainFn = computeGain
	}
	currentWindow := initialCurrentWindowSize(window, p.InitialWindowSize)
	c.sm = smScheduler{
		statusMsgTimeout:  p.StatusMessageTimeout,
		currentWindowSize: currentWindow,
		currentGain:       gainFn(currentWindow, p.TermCapacity),
	}

	lh := newTermTailLossHandler(0)
	lh.rebind(c.rebuilders[c.activeIndex], 0)
	c.lossHandler = lh

	now := c.clock.NowNanos()
	c.timeOfLastFrame.Store(now)
	c.status.Store(int32(StatusActive))
	c.timeOfLastStatusChange.Store(now)

	return c, nil
}

// --- receiver-thread operations (§6) ---

// InsertIntoTerm implements §4.2's frame-ingestion procedure.
func (c *Connection) InsertIntoTerm(header DataHeader, buffer []byte) {
	length := int32(len(buffer))
	packetPosition := computePosition(header.TermID, c.initialTermID, header.TermOffset, c.shift)

	activeTermID := TermID(c.activeTermID.Load())
	currentPosition := c.lossHandler.TailPosition()

	if isFlowControlUnderrun(packetPosition, currentPosition) {
		c.counters.IncFlowControlUnderRuns()
		return
	}

	subscriberPos := c.subscriberPosition.Position()
	if isFlowControlOverrun(packetPosition, length, subscriberPos, c.termWindow) {
		c.counters.IncFlowControlOverRuns()
		return
	}

	switch header.TermID {
	case activeTermID:
		rotated := c.rebuilders[c.activeIndex].insert(header.TermOffset, buffer)
		c.contiguousReceivedPosition.SetOrdered(c.lossHandler.TailPosition())
		if rotated {
			c.rotate()
		}
	case activeTermID + 1:
		if c.hwmTermID == activeTermID {
			c.hwmIndex = (c.activeIndex + 1) % 3
			c.hwmTermID = header.TermID
		}
		c.rebuilders[c.hwmIndex].insert(header.TermOffset, buffer)
	default:
		// Older than active (already covered by the underrun check above) or
		// newer than active+1: silently dropped (§4.2 step 4, §7).
	}

	c.timeOfLastFrame.Store(c.clock.NowNanos())

	newHighest := c.lossHandler.HighestPositionCandidate(packetPosition)
	c.highestReceivedPosition.SetOrdered(newHighest)
}

// rotate implements §4.1's rotation procedure. Preconditions: a frame was
// just accepted into the active term and that rebuilder now reports complete.
func (c *Connection) rotate() {
	nextIndex := (c.activeIndex + 1) % 3
	if nextIndex != c.hwmIndex && !c.rebuilders[nextIndex].isClean() {
		fatal("%s: ring index %d (conductor fell behind cleaning)", ErrTermNotClean, nextIndex)
		return
	}

	behindIndex := (c.activeIndex + 2) % 3 // (activeIndex - 1) mod 3
	c.rebuilders[behindIndex].markNeedsCleaning()

	c.activeIndex = nextIndex
	c.hwmIndex = nextIndex
	newActiveTermID := TermID(c.activeTermID.Load()) + 1
	c.activeTermID.Store(int32(newActiveTermID)) // lazy publish, no full fence
	c.hwmTermID = newActiveTermID

	if rb, ok := c.lossHandler.(rebindableLossHandler); ok {
		newBase := computePosition(newActiveTermID, c.initialTermID, 0, c.shift)
		rb.rebind(c.rebuilders[c.activeIndex], newBase)
	}

	c.logger.Debug("term rotated",
		zap.Int32("session_id", c.sessionID),
		zap.Int32("stream_id", c.streamID),
		zap.Int32("new_active_term_id", int32(newActiveTermID)),
		zap.Int("active_index", nextIndex),
		zap.Int("cleaning_index", behindIndex),
	)
}

// HighestPositionCandidate exposes the loss handler's fold directly, for
// collaborators that observe packet positions outside InsertIntoTerm.
func (c *Connection) HighestPositionCandidate(candidate Position) Position {
	return c.lossHandler.HighestPositionCandidate(candidate)
}

// EnableStatusMessages marks this connection ready to emit SMs, set once the
// receiver installs it in the dispatcher (§4.4, §6).
func (c *Connection) EnableStatusMessages() { c.statusMessagesEnabled.Store(true) }

// DisableStatusMessages stops SM emission (§6).
func (c *Connection) DisableStatusMessages() { c.statusMessagesEnabled.Store(false) }

func (c *Connection) SessionID() int32 { return c.sessionID }
func (c *Connection) StreamID() int32  { return c.streamID }
func (c *Connection) ReceiveChannelEndpoint() string {
	return c.receiveChannelEndpoint
}

// --- conductor-thread operations (§6) ---

// Status returns the lifecycle state.
func (c *Connection) Status() Status { return Status(c.status.Load()) }

// SetStatus externally drives the lifecycle transition (§3 Lifecycle is
// conductor-policy-driven; Connection only exposes the state variable).
func (c *Connection) SetStatus(s Status) {
	c.status.Store(int32(s))
	c.timeOfLastStatusChange.Store(c.clock.NowNanos())
}

func (c *Connection) TimeOfLastStatusChange() int64 { return c.timeOfLastStatusChange.Load() }

// TimeOfLastFrame is read by the conductor for liveness timeout evaluation
// (§4.6). Updated only on accepted/dispatched frames, not on underrun/overrun
// drops — preserving the source's choice on the open question in §9.
func (c *Connection) TimeOfLastFrame() int64 { return c.timeOfLastFrame.Load() }

// Remaining returns bytes buffered but not yet consumed (§4.6). Single-
// subscriber semantics only; multi-subscriber aggregation is a TODO (§9).
func (c *Connection) Remaining() int64 {
	r := c.contiguousReceivedPosition.Position() - c.subscriberPosition.Position()
	if r < 0 {
		return 0
	}
	return r
}

// CleanLogBuffer implements §4.5's cleaning handshake: CAS-transition the
// first NEEDS_CLEANING slot to IN_CLEANING, zero-fill, then CLEAN.
func (c *Connection) CleanLogBuffer() int {
	for _, r := range c.rebuilders {
		if r.needsCleaning() && r.tryBeginCleaning() {
			r.clean()
			return 1
		}
	}
	return 0
}

// ScanForGaps delegates to the loss handler (§4.6).
func (c *Connection) ScanForGaps() int {
	if c.lossHandler.Scan() {
		return 1
	}
	return 0
}

// SendPendingStatusMessages implements §4.4. Returns 0 when it emits, 1 when
// idle — deliberately inverted, consumed by the conductor's idle-strategy
// back-off (see idle.go).
func (c *Connection) SendPendingStatusMessages(now int64) int {
	if !c.statusMessagesEnabled.Load() {
		return 1
	}

	subscriberPos := c.subscriberPosition.Position()
	subTermID := positionTermID(subscriberPos, c.initialTermID, c.shift)
	subTermOffset := positionTermOffset(subscriberPos, c.shift)

	if !c.sm.shouldSend(subTermID, subscriberPos, now) {
		return 1
	}

	c.counters.IncStatusMessagesSent()
	if c.smSender != nil {
		if err := c.smSender.Send(subTermID, subTermOffset, int32(c.sm.currentWindowSize)); err != nil {
			// Transient send failure is silently ignored; the SM is
			// retransmitted on the next trigger (§7).
			c.logger.Debug("status message send failed, will retry", zap.Error(err))
		}
	}
	c.sm.recordSent(subTermID, subscriberPos, now)
	return 0
}

// Close releases the connection's owned resources in order: the position
// counters, then the term buffers. Idempotent (§7); operations issued after
// Close are undefined and callers must not issue them (§3).
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	_ = c.contiguousReceivedPosition.Close()
	_ = c.highestReceivedPosition.Close()
	if c.subscriberPositionOwned != nil {
		_ = c.subscriberPositionOwned.Close()
	}
	return c.termBuffers.Close()
}

// --- subscriber-facing observables ---

func (c *Connection) ContiguousReceivedPosition() Position { return c.contiguousReceivedPosition.Position() }
func (c *Connection) HighestReceivedPosition() Position    { return c.highestReceivedPosition.Position() }

// AdvanceSubscriberPosition drives the subscriber's position when Connection
// owns the counter (no external PositionIndicator was supplied). No-op
// otherwise — the real subscriber owns that counter in that configuration.
func (c *Connection) AdvanceSubscriberPosition(p Position) {
	if c.subscriberPositionOwned != nil {
		c.subscriberPositionOwned.SetOrdered(p)
	}
}

// ActiveTermID returns the term currently accepting contiguous appends.
func (c *Connection) ActiveTermID() TermID { return TermID(c.activeTermID.Load()) }

// noopCounters is used when ConnectionParams.Counters is nil, so call sites
// never need a nil check (mirrors loggerOrNoop).
type noopCounters struct{}

func (noopCounters) IncStatusMessagesSent()   {}
func (noopCounters) IncFlowControlUnderRuns() {}
func (noopCounters) IncFlowControlOverRuns()  {}
