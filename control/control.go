// Package control implements the TWAMP Control-Client side of the
// control-channel state machine: connection setup, session negotiation
// and start/stop, over a single TCP stream.
package control

import (
	"fmt"
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/protocol"
)

// DefaultPort is the standard TWAMP control TCP port.
const DefaultPort = 862

// State is the control channel's position in its state machine.
type State int

// States mirror the sequence described by the component design.
const (
	StateInit State = iota
	StateAwaitGreeting
	StateSetupSent
	StateAwaitStart
	StateActive
	StateStopped
	StateTerminated
)

// UnsupportedMode is returned when the server's greeting does not
// offer the unauthenticated mode this client speaks.
type UnsupportedMode struct{ Modes uint32 }

func (e *UnsupportedMode) Error() string {
	return fmt.Sprintf("control: server does not support unauthenticated mode (modes=0x%x)", e.Modes)
}

// ServerRejected is returned when the server's accept code for a
// Server-Start or Accept-Session frame is non-zero.
type ServerRejected struct {
	Frame string
	Code  uint8
}

func (e *ServerRejected) Error() string {
	return fmt.Sprintf("control: server rejected %s (code=%d)", e.Frame, e.Code)
}

// ControlLinkBroken wraps an I/O failure on the control connection.
type ControlLinkBroken struct{ Err error }

func (e *ControlLinkBroken) Error() string { return fmt.Sprintf("control: link broken: %v", e.Err) }
func (e *ControlLinkBroken) Unwrap() error { return e.Err }

// SessionParams describes the single test session negotiated over
// this control channel.
type SessionParams struct {
	IPv6           bool
	SenderAddr     net.IP
	SenderPort     uint16
	ReceiverAddr   net.IP
	ReceiverPort   uint16
	PaddingLength  uint32
	TimeoutSeconds uint32
	DSCP           uint8
}

// Client drives the control-channel state machine over a TCP
// connection to a TWAMP server.
type Client struct {
	conn  net.Conn
	state State
}

// Dial opens the TCP control connection and applies TOS to the socket.
func Dial(addr string, tos uint8) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, &ControlLinkBroken{Err: err}
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		applyTOS(tc, tos)
	}
	return &Client{conn: conn, state: StateInit}, nil
}

// State reports the client's current state.
func (c *Client) State() State { return c.state }

func (c *Client) readFull(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(c.conn, b); err != nil {
		c.state = StateTerminated
		return nil, &ControlLinkBroken{Err: err}
	}
	return b, nil
}

func (c *Client) write(b []byte) error {
	if _, err := c.conn.Write(b); err != nil {
		c.state = StateTerminated
		return &ControlLinkBroken{Err: err}
	}
	return nil
}

// ConnectionSetup reads the Server-Greeting, sends the Setup-Response
// selecting unauthenticated mode, and reads the Server-Start.
func (c *Client) ConnectionSetup() error {
	c.state = StateAwaitGreeting
	b, err := c.readFull(protocol.ServerGreetingSize)
	if err != nil {
		return err
	}
	greeting, err := protocol.UnmarshalServerGreeting(b)
	if err != nil {
		c.state = StateTerminated
		return err
	}
	if !greeting.SupportsUnauthenticated() {
		c.state = StateTerminated
		return &UnsupportedMode{Modes: greeting.Modes}
	}

	c.state = StateSetupSent
	if err := c.write(protocol.MarshalSetupResponse()); err != nil {
		return err
	}

	c.state = StateAwaitStart
	b, err = c.readFull(protocol.ServerStartSize)
	if err != nil {
		return err
	}
	start, err := protocol.UnmarshalServerStart(b)
	if err != nil {
		c.state = StateTerminated
		return err
	}
	if start.AcceptCode != 0 {
		c.state = StateTerminated
		return &ServerRejected{Frame: "server-start", Code: start.AcceptCode}
	}
	log.Debug("control: connection setup complete")
	return nil
}

// RequestSession negotiates one test session.
func (c *Client) RequestSession(p SessionParams) error {
	req := protocol.MarshalRequestSession(protocol.RequestSessionParams{
		IPv6:           p.IPv6,
		SenderPort:     p.SenderPort,
		ReceiverPort:   p.ReceiverPort,
		SenderAddr:     p.SenderAddr,
		ReceiverAddr:   p.ReceiverAddr,
		PaddingLength:  p.PaddingLength,
		TimeoutSeconds: p.TimeoutSeconds,
		DSCP:           p.DSCP,
	})
	if err := c.write(req); err != nil {
		return err
	}

	b, err := c.readFull(protocol.AcceptSessionSize)
	if err != nil {
		return err
	}
	accept, err := protocol.UnmarshalAcceptSession(b)
	if err != nil {
		c.state = StateTerminated
		return err
	}
	if accept.AcceptCode != 0 {
		c.state = StateTerminated
		return &ServerRejected{Frame: "request-tw-session", Code: accept.AcceptCode}
	}
	return nil
}

// StartSessions sends Start-Sessions and consumes the Start-Ack.
func (c *Client) StartSessions() error {
	if err := c.write(protocol.MarshalStartSessions()); err != nil {
		return err
	}
	if _, err := c.readFull(protocol.StartAckSize); err != nil {
		return err
	}
	c.state = StateActive
	log.Info("control: sessions started")
	return nil
}

// StopSessions sends Stop-Sessions for numSessions active sessions.
func (c *Client) StopSessions(numSessions uint32) error {
	if err := c.write(protocol.MarshalStopSessions(numSessions)); err != nil {
		return err
	}
	c.state = StateStopped
	log.Info("control: sessions stopped")
	return nil
}

// Close closes the underlying TCP connection.
func (c *Client) Close() error {
	c.state = StateTerminated
	return c.conn.Close()
}
