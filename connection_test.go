package aeron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) NowNanos() int64 { return c.now }

type fakeCounters struct {
	smSent, underruns, overruns int
}

func (c *fakeCounters) IncStatusMessagesSent()   { c.smSent++ }
func (c *fakeCounters) IncFlowControlUnderRuns() { c.underruns++ }
func (c *fakeCounters) IncFlowControlOverRuns()  { c.overruns++ }

type fakeSMSender struct {
	sent []DataHeader
	win  []int32
}

func (s *fakeSMSender) Send(termID TermID, termOffset int32, windowSize int32) error {
	s.sent = append(s.sent, DataHeader{TermID: termID, TermOffset: termOffset})
	s.win = append(s.win, windowSize)
	return nil
}

func newTestConnection(t *testing.T, termCapacity int32, subscriberWindow, initialWindow int64, counters *fakeCounters, sender *fakeSMSender, clock *fakeClock) *Connection {
	t.Helper()
	conn, err := NewConnection(ConnectionParams{
		SessionID:            1,
		StreamID:             1,
		InitialTermID:        0,
		TermCapacity:         termCapacity,
		SubscriberWindow:     subscriberWindow,
		InitialWindowSize:    initialWindow,
		StatusMessageTimeout: 1000,
		Counters:             counters,
		SMSender:             sender,
		Clock:                clock,
	})
	require.NoError(t, err)
	return conn
}

func TestNewConnectionRejectsNonPowerOfTwoTermCapacity(t *testing.T) {
	_, err := NewConnection(ConnectionParams{TermCapacity: 100, SubscriberWindow: 10})
	require.ErrorIs(t, err, ErrInvalidTermLength)
}

func TestNewConnectionRejectsOversizedWindow(t *testing.T) {
	_, err := NewConnection(ConnectionParams{TermCapacity: 16, SubscriberWindow: 16})
	require.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestConnectionHappyPathAppendAndRotate(t *testing.T) {
	clock := &fakeClock{now: 1}
	counters := &fakeCounters{}
	conn := newTestConnection(t, 16, 8, 8, counters, nil, clock)

	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 0}, make([]byte, 8))
	require.Equal(t, TermID(0), conn.ActiveTermID())
	require.Equal(t, Position(8), conn.ContiguousReceivedPosition())

	conn.AdvanceSubscriberPosition(8) // subscriber drains, sliding the window forward
	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 8}, make([]byte, 8))
	require.Equal(t, TermID(1), conn.ActiveTermID(), "term should have rotated once it filled")
	require.Equal(t, Position(16), conn.ContiguousReceivedPosition())
	require.Equal(t, 0, counters.underruns)
	require.Equal(t, 0, counters.overruns)
}

func TestConnectionEarlyNextTermFragmentIsBufferedAheadOfRotation(t *testing.T) {
	clock := &fakeClock{now: 1}
	counters := &fakeCounters{}
	conn := newTestConnection(t, 16, 8, 8, counters, nil, clock)

	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 0}, make([]byte, 8))
	conn.AdvanceSubscriberPosition(12) // slide the window enough to admit the early fragment below

	// Arrives for the not-yet-active next term, ahead of rotation (§4.2 step 3).
	conn.InsertIntoTerm(DataHeader{TermID: 1, TermOffset: 0}, make([]byte, 4))
	require.Equal(t, 0, counters.overruns, "early next-term fragment within window must not overrun")
	require.Equal(t, TermID(0), conn.ActiveTermID(), "still on term 0, no rotation yet")

	// Completes term 0, triggering rotation onto the term that already holds
	// the early fragment above.
	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 8}, make([]byte, 8))
	require.Equal(t, TermID(1), conn.ActiveTermID())

	// That rotation marked the slot behind the just-completed term dirty; it
	// is the next slot the ring rotates into, so clean it before the second
	// rotation below would find it unclean.
	require.Equal(t, 1, conn.CleanLogBuffer())

	conn.AdvanceSubscriberPosition(24)
	// Only the gap is supplied; completion proves the earlier hwm write survived.
	conn.InsertIntoTerm(DataHeader{TermID: 1, TermOffset: 4}, make([]byte, 12))
	require.Equal(t, Position(32), conn.ContiguousReceivedPosition())
	require.Equal(t, 0, counters.overruns)
}

func TestConnectionUnderrunDropsWithoutUpdatingTimestamp(t *testing.T) {
	clock := &fakeClock{now: 1}
	counters := &fakeCounters{}
	conn := newTestConnection(t, 16, 8, 8, counters, nil, clock)

	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 0}, make([]byte, 8))
	tsAfterAccept := conn.TimeOfLastFrame()

	clock.now = 2
	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 0}, make([]byte, 4)) // behind the tail now
	require.Equal(t, 1, counters.underruns)
	require.Equal(t, tsAfterAccept, conn.TimeOfLastFrame(), "underrun drop must not refresh liveness")
}

func TestConnectionOverrunDropsWithoutUpdatingTimestamp(t *testing.T) {
	clock := &fakeClock{now: 1}
	counters := &fakeCounters{}
	conn := newTestConnection(t, 8, 4, 8, counters, nil, clock) // termWindow = min(8/2, 4) = 4

	tsBefore := conn.TimeOfLastFrame()
	clock.now = 2
	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 4}, make([]byte, 8)) // 4+8 > 0+4
	require.Equal(t, 1, counters.overruns)
	require.Equal(t, tsBefore, conn.TimeOfLastFrame(), "overrun drop must not refresh liveness")
}

func TestConnectionSendPendingStatusMessagesTriggers(t *testing.T) {
	clock := &fakeClock{now: 0}
	counters := &fakeCounters{}
	sender := &fakeSMSender{}
	conn := newTestConnection(t, 1024, 512, 64, counters, sender, clock)
	conn.EnableStatusMessages()

	// Trigger 1: initial send. now=0 is avoided since it collides with the
	// scheduler's "never sent yet" sentinel (see statusmessage.go).
	require.Equal(t, 0, conn.SendPendingStatusMessages(1))
	require.Equal(t, 1, counters.smSent)

	// No progress, no rotation, no timeout yet: idle.
	require.Equal(t, 1, conn.SendPendingStatusMessages(2))
	require.Equal(t, 1, counters.smSent)

	// Trigger 4: timeout elapses.
	require.Equal(t, 0, conn.SendPendingStatusMessages(1002))
	require.Equal(t, 2, counters.smSent)
}

func TestConnectionDisableStatusMessagesSuppressesSends(t *testing.T) {
	clock := &fakeClock{now: 0}
	counters := &fakeCounters{}
	sender := &fakeSMSender{}
	conn := newTestConnection(t, 1024, 512, 64, counters, sender, clock)
	// Status messages start disabled until EnableStatusMessages is called.
	require.Equal(t, 1, conn.SendPendingStatusMessages(0))
	require.Equal(t, 0, counters.smSent)

	conn.EnableStatusMessages()
	conn.DisableStatusMessages()
	require.Equal(t, 1, conn.SendPendingStatusMessages(1))
	require.Equal(t, 0, counters.smSent)
}

func TestConnectionCleanLogBufferFollowsRotation(t *testing.T) {
	clock := &fakeClock{now: 1}
	counters := &fakeCounters{}
	conn := newTestConnection(t, 16, 8, 8, counters, nil, clock)

	require.Equal(t, 0, conn.CleanLogBuffer(), "nothing dirty before any rotation")

	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 0}, make([]byte, 8))
	conn.AdvanceSubscriberPosition(8)
	conn.InsertIntoTerm(DataHeader{TermID: 0, TermOffset: 8}, make([]byte, 8)) // rotates

	require.Equal(t, 1, conn.CleanLogBuffer(), "the slot behind the just-completed term needs cleaning")
	require.Equal(t, 0, conn.CleanLogBuffer(), "idempotent once clean")
}

func TestConnectionCloseIsIdempotent(t *testing.T) {
	conn := newTestConnection(t, 16, 8, 8, &fakeCounters{}, nil, &fakeClock{now: 1})
	require.NoError(t, conn.Close())
	require.ErrorIs(t, conn.Close(), ErrAlreadyClosed)
}
