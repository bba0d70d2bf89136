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
	"encoding/binary"
	"net"

	"github.com/sagernet/sing/common/bufio"
)

// smHeaderSize is the wire size of a status message: a 1-byte version, 3
// reserved bytes, the term id, the term offset, and the advertised window,
// mirroring the fixed little-endian header layout the teacher uses for its
// own frames (see the teacher's rawHeader/updHeader encoding).
const smHeaderSize = 16

const smVersion = 1

// udpWriter adapts a net.PacketConn plus a fixed peer address to io.Writer,
// the shape sing/common/bufio's vectorised writer expects, the same way the
// teacher's Session hands its plain io.ReadWriteCloser to
// bufio.CreateVectorisedWriter.
type udpWriter struct {
	conn net.PacketConn
	peer net.Addr
}

func (w udpWriter) Write(p []byte) (int, error) {
	return w.conn.WriteTo(p, w.peer)
}

// UDPStatusMessageSender is a concrete StatusMessageSender over a UDP
// socket (§6 collaborator contract). Out of scope as a required component
// per spec.md §1 (the status-message transport is an external collaborator),
// but given one real implementation so the engine is runnable end to end —
// grounded on the teacher's sendLoop, which picks a vectorised writer when
// available and falls back to a single contiguous buffer otherwise.
type UDPStatusMessageSender struct {
	w    udpWriter
	send func(hdr []byte) error
}

// NewUDPStatusMessageSender binds a sender that always transmits to peer.
// As in the teacher's sendLoop, whether the underlying writer supports
// scatter-gather I/O is decided once at construction, not per send.
func NewUDPStatusMessageSender(conn net.PacketConn, peer net.Addr) *UDPStatusMessageSender {
	w := udpWriter{conn: conn, peer: peer}
	s := &UDPStatusMessageSender{w: w}

	if bw, ok := bufio.CreateVectorisedWriter(w); ok {
		s.send = func(hdr []byte) error {
			_, err := bufio.WriteVectorised(bw, [][]byte{hdr})
			return err
		}
	} else {
		s.send = func(hdr []byte) error {
			_, err := w.Write(hdr)
			return err
		}
	}
	return s
}

// Send transmits (termID, termOffset, windowSize) as a single UDP datagram.
// Non-blocking with respect to the connection's hot path: UDP writes never
// block on a peer, and any transient error is surfaced to the caller, who
// silently ignores it per §7 (the SM is retransmitted on the next trigger).
func (s *UDPStatusMessageSender) Send(termID TermID, termOffset int32, windowSize int32) error {
	var hdr [smHeaderSize]byte
	hdr[0] = smVersion
	binary.LittleEndian.PutUint32(hdr[4:], uint32(termID))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(termOffset))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(windowSize))
	return s.send(hdr[:])
}
