package aeron

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPStatusMessageSenderSendEncodesHeader(t *testing.T) {
	peerConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer peerConn.Close()

	senderConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer senderConn.Close()

	sender := NewUDPStatusMessageSender(senderConn, peerConn.LocalAddr())
	require.NoError(t, sender.Send(TermID(3), 1024, 4096))

	require.NoError(t, peerConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, smHeaderSize)
	n, _, err := peerConn.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, smHeaderSize, n)

	require.Equal(t, byte(smVersion), buf[0])
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[4:]))
	require.Equal(t, uint32(1024), binary.LittleEndian.Uint32(buf[8:]))
	require.Equal(t, uint32(4096), binary.LittleEndian.Uint32(buf[12:]))
}
