// Package endpoint implements the datagram socket used by both the
// Session-Sender and Session-Reflector roles: a single UDP socket bound
// to a local address/port, with TOS, TTL and do-not-fragment applied
// before the first send.
package endpoint

import (
	"context"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

// MaxDatagram is the largest datagram Recv will return, large enough
// for jumbo frames.
const MaxDatagram = 9216

// Config carries the socket options applied at Open.
type Config struct {
	TOS           uint8
	TTL           int
	DoNotFragment bool
}

// Endpoint is an opened, configured UDP socket.
type Endpoint struct {
	conn   *net.UDPConn
	fd     int
	v6     bool
	p4conn *ipv4.PacketConn
	p6conn *ipv6.PacketConn
}

// IsIPv6Literal reports whether addr should be treated as an IPv6
// address literal: bracketed (`[::1]:1234`), or containing more than
// one colon (a bare IPv6 address with no port).
func IsIPv6Literal(addr string) bool {
	host := addr
	if strings.HasPrefix(addr, "[") {
		return true
	}
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	return strings.Count(host, ":") > 1
}

// Open binds a UDP socket to addr (host:port, host may be empty for the
// wildcard address) and applies cfg. v6 forces the address family when
// addr alone is ambiguous (e.g. empty host).
func Open(addr string, v6 bool, cfg Config) (*Endpoint, error) {
	network := "udp4"
	if v6 {
		network = "udp6"
	}
	laddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", addr, err)
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), network, laddr.String())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	conn := pc.(*net.UDPConn)

	e := &Endpoint{conn: conn, v6: v6}
	sc, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ctrlErr := sc.Control(func(fd uintptr) { e.fd = int(fd) }); ctrlErr != nil {
		conn.Close()
		return nil, ctrlErr
	}

	if err := e.apply(cfg); err != nil {
		conn.Close()
		return nil, err
	}
	return e, nil
}

func (e *Endpoint) apply(cfg Config) error {
	if e.v6 {
		e.p6conn = ipv6.NewPacketConn(e.conn)
		if cfg.TOS != 0 {
			if err := e.p6conn.SetTrafficClass(int(cfg.TOS)); err != nil {
				return fmt.Errorf("setting traffic class: %w", err)
			}
		}
		if cfg.TTL > 0 {
			if err := e.p6conn.SetHopLimit(cfg.TTL); err != nil {
				return fmt.Errorf("setting hop limit: %w", err)
			}
		}
	} else {
		e.p4conn = ipv4.NewPacketConn(e.conn)
		if cfg.TOS != 0 {
			if err := e.p4conn.SetTOS(int(cfg.TOS)); err != nil {
				return fmt.Errorf("setting TOS: %w", err)
			}
		}
		if cfg.TTL > 0 {
			if err := e.p4conn.SetTTL(cfg.TTL); err != nil {
				return fmt.Errorf("setting TTL: %w", err)
			}
		}
	}
	if cfg.DoNotFragment {
		setDoNotFragment(e.fd, e.v6)
	}
	return nil
}

// Send writes b to peer.
func (e *Endpoint) Send(b []byte, peer *net.UDPAddr) error {
	_, err := e.conn.WriteToUDP(b, peer)
	return err
}

// Recv blocks for at most the conn's read deadline and returns one
// whole datagram and its source address.
func (e *Endpoint) Recv() ([]byte, *net.UDPAddr, error) {
	buf := make([]byte, MaxDatagram)
	n, peer, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], peer, nil
}

// Poll reports whether a datagram is ready to read within timeout.
// timeout == 0 polls without blocking.
func (e *Endpoint) Poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
	ms := int(timeout / time.Millisecond)
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

// LocalAddr returns the socket's bound local address.
func (e *Endpoint) LocalAddr() net.Addr { return e.conn.LocalAddr() }

// Close closes the underlying socket.
func (e *Endpoint) Close() error { return e.conn.Close() }
