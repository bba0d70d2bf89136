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

package main

import (
	"encoding/binary"
	"errors"
	"net"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/nunb/aeron"
)

// dataFrameHeaderSize is the wire size of our own data-frame header
// (termId, termOffset), carried as the UDP application payload.
const dataFrameHeaderSize = 8

// buildDatagram wraps a data-frame header and payload in a loopback
// IPv4/UDP packet, giving the demo harness's simulated wire a concrete
// encoding instead of pushing raw bytes straight into InsertIntoTerm.
func buildDatagram(srcPort, dstPort layers.UDPPort, hdr aeron.DataHeader, payload []byte) ([]byte, error) {
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(127, 0, 0, 1),
		DstIP:    net.IPv4(127, 0, 0, 1),
	}
	udp := &layers.UDP{SrcPort: srcPort, DstPort: dstPort}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	body := make([]byte, dataFrameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(body[0:], uint32(hdr.TermID))
	binary.LittleEndian.PutUint32(body[4:], uint32(hdr.TermOffset))
	copy(body[dataFrameHeaderSize:], payload)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(body)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseDatagram unwraps a loopback IPv4/UDP packet built by buildDatagram
// back into a data-frame header and payload.
func parseDatagram(pkt []byte) (aeron.DataHeader, []byte, error) {
	packet := gopacket.NewPacket(pkt, layers.LayerTypeIPv4, gopacket.Default)
	appLayer := packet.ApplicationLayer()
	if appLayer == nil {
		return aeron.DataHeader{}, nil, errors.New("connsim: datagram carries no application payload")
	}

	body := appLayer.Payload()
	if len(body) < dataFrameHeaderSize {
		return aeron.DataHeader{}, nil, errors.New("connsim: datagram shorter than the data-frame header")
	}

	hdr := aeron.DataHeader{
		TermID:     aeron.TermID(binary.LittleEndian.Uint32(body[0:])),
		TermOffset: int32(binary.LittleEndian.Uint32(body[4:])),
	}
	return hdr, body[dataFrameHeaderSize:], nil
}
