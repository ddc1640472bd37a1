package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/mjfern/rootdns/internal/wire"
)

// Socket buffer sizes large enough to tolerate bursts without the kernel
// dropping datagrams ahead of the single-threaded read loop.
const (
	socketRecvBufferSize = 256 * 1024
	socketSendBufferSize = 256 * 1024
)

// UDPServer is the single-threaded, blocking UDP listener mandated by §5:
// one socket, one goroutine, no worker pool, no fan-out, no locking. This
// replaces the teacher's per-CPU-core SO_REUSEPORT-socket-plus-worker-pool
// design, which spec §5 explicitly rules out for this system.
type UDPServer struct {
	Handler *Handler
	Logger  *slog.Logger
}

// Run binds addr and serves until ctx is cancelled. Each datagram is
// decoded, resolved, and replied to before the next is accepted (§5:
// "processed to completion before the next is accepted").
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve bind address %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind udp %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetReadBuffer(socketRecvBufferSize)
	_ = conn.SetWriteBuffer(socketSendBufferSize)

	s.logger().Info("udp server listening", "addr", conn.LocalAddr().String())

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, wire.Capacity)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("udp read: %w", err)
		}

		// wire.Decode copies into its own fixed-size buffer immediately, so
		// buf can be safely reused across iterations without a sync.Pool —
		// there is only ever one concurrent reader (§5).
		reply := s.Handler.Handle(ctx, peer.String(), buf[:n])
		if len(reply) == 0 {
			continue
		}
		if _, err := conn.WriteToUDP(reply, peer); err != nil {
			s.logger().Warn("udp write failed", "peer", peer.String(), "error", err)
		}
	}
}

func (s *UDPServer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
