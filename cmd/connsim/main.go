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

// Command connsim drives a Connection end to end over a loopback UDP pair:
// a simulated lossy sender, the receive engine itself, and a draining
// subscriber, so the engine in this module can be exercised outside of its
// unit tests.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gopacket/gopacket/layers"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nunb/aeron"
)

// simArgs mirrors the flag set, following the Cmd-struct-plus-cobra shape
// sakateka-yanet2's cmd/*/main.go entrypoints use.
type simArgs struct {
	TermLength       string
	SubscriberWindow string
	InitialWindow    string
	FrameSize        int
	FrameCount       int
	LossProbability  float64
	SMTimeout        time.Duration
}

var args simArgs

var rootCmd = &cobra.Command{
	Use:   "connsim",
	Short: "Drive a reliable UDP receive connection against a simulated lossy sender",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), args)
	},
}

func init() {
	rootCmd.Flags().StringVar(&args.TermLength, "term-length", "64KB", "term capacity, power of two (e.g. 64KB)")
	rootCmd.Flags().StringVar(&args.SubscriberWindow, "subscriber-window", "32KB", "configured subscription window")
	rootCmd.Flags().StringVar(&args.InitialWindow, "initial-window", "16KB", "initial advertised window")
	rootCmd.Flags().IntVar(&args.FrameSize, "frame-size", 1024, "simulated data-frame payload size in bytes")
	rootCmd.Flags().IntVar(&args.FrameCount, "frames", 256, "number of frames the simulated sender fires")
	rootCmd.Flags().Float64Var(&args.LossProbability, "loss", 0.05, "probability a given frame is dropped before reaching the receiver")
	rootCmd.Flags().DurationVar(&args.SMTimeout, "sm-timeout", time.Second, "status message timeout")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "connsim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a simArgs) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg := aeron.Config{
		TermLength:           a.TermLength,
		SubscriberWindow:     a.SubscriberWindow,
		InitialWindow:        a.InitialWindow,
		StatusMessageTimeout: a.SMTimeout,
		InitialTermID:        7,
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("connsim: resolving config: %w", err)
	}

	recvConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("connsim: binding receiver socket: %w", err)
	}
	defer recvConn.Close()

	sendConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("connsim: binding sender socket: %w", err)
	}
	defer sendConn.Close()

	sessionID := sessionIDFromUUID(uuid.New())
	const streamID = int32(1)

	counters := aeron.NewSystemCounters(prometheus.NewRegistry(), sessionID, streamID)
	smSender := aeron.NewUDPStatusMessageSender(recvConn, sendConn.LocalAddr())

	conn, err := aeron.NewConnection(aeron.ConnectionParams{
		ReceiveChannelEndpoint: recvConn.LocalAddr().String(),
		SessionID:              sessionID,
		StreamID:               streamID,
		InitialTermID:          resolved.InitialTermID,
		TermCapacity:           resolved.TermCapacity,
		SubscriberWindow:       resolved.SubscriberWindow,
		InitialWindowSize:      resolved.InitialWindow,
		StatusMessageTimeout:   resolved.StatusMessageTimeout.Nanoseconds(),
		SMSender:               smSender,
		Counters:               counters,
		Logger:                 logger,
	})
	if err != nil {
		return fmt.Errorf("connsim: constructing connection: %w", err)
	}
	conn.EnableStatusMessages()
	defer conn.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return receiveLoop(gctx, conn, recvConn) })
	g.Go(func() error { return conductorLoop(gctx, conn) })
	g.Go(func() error { return subscriberDrainLoop(gctx, conn) })
	g.Go(func() error {
		defer cancel()
		return senderLoop(gctx, a, conn, sendConn, recvConn.LocalAddr())
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}

	logger.Info("connsim finished",
		zap.Int64("contiguous_received", conn.ContiguousReceivedPosition()),
		zap.Int64("highest_received", conn.HighestReceivedPosition()),
		zap.Int32("active_term_id", int32(conn.ActiveTermID())),
	)
	return nil
}

func sessionIDFromUUID(id uuid.UUID) int32 {
	return int32(binary.LittleEndian.Uint32(id[:4]))
}

// senderLoop fires FrameCount frames of FrameSize bytes at the receiver,
// dropping each independently with LossProbability, exercising the
// underrun/overrun/gap-fill paths the same way the scenarios in spec.md §8 do.
func senderLoop(ctx context.Context, a simArgs, conn *aeron.Connection, sendConn net.PacketConn, peer net.Addr) error {
	rng := rand.New(rand.NewSource(1))
	termID := conn.ActiveTermID()
	offset := int32(0)
	payload := make([]byte, a.FrameSize)

	for i := 0; i < a.FrameCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hdr := aeron.DataHeader{TermID: termID, TermOffset: offset}
		pkt, err := buildDatagram(layers.UDPPort(40000), layers.UDPPort(40001), hdr, payload)
		if err == nil && rng.Float64() >= a.LossProbability {
			if _, err := sendConn.WriteTo(pkt, peer); err != nil {
				return fmt.Errorf("connsim: writing datagram: %w", err)
			}
		}

		offset += int32(a.FrameSize)
		time.Sleep(time.Millisecond)
	}
	return nil
}

func receiveLoop(ctx context.Context, conn *aeron.Connection, recvConn net.PacketConn) error {
	buf := make([]byte, 65536)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_ = recvConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := recvConn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return nil
		}

		hdr, payload, err := parseDatagram(buf[:n])
		if err != nil {
			continue
		}
		conn.InsertIntoTerm(hdr, payload)
	}
}

func conductorLoop(ctx context.Context, conn *aeron.Connection) error {
	idle := aeron.NewIdleStrategy()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := time.Now().UnixNano()
		cleanWork := conn.CleanLogBuffer()
		scanWork := conn.ScanForGaps()
		smWork := conn.SendPendingStatusMessages(now)

		idle.Idle(cleanWork + scanWork + aeron.InvertWorkCount(smWork))
	}
}

// subscriberDrainLoop simulates a consumer reading contiguous bytes and
// reporting its position back, the flow-control credit the sender relies on.
func subscriberDrainLoop(ctx context.Context, conn *aeron.Connection) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn.AdvanceSubscriberPosition(conn.ContiguousReceivedPosition())
		}
	}
}
