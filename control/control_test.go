package control

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nokia/twampy/protocol"
)

// listen opens a loopback TCP listener. Each test's accept goroutine
// plays a minimal in-process TWAMP control server used only to exercise
// Client's framing; it does not implement the real server side's
// decision logic.
func listen(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln, ln.Addr().String()
}

func TestConnectionSetupHappyPath(t *testing.T) {
	ln, addr := listen(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		greeting := make([]byte, protocol.ServerGreetingSize)
		greeting[15] = 1
		conn.Write(greeting)

		setupResp := make([]byte, protocol.SetupResponseSize)
		io.ReadFull(conn, setupResp)

		start := make([]byte, protocol.ServerStartSize)
		conn.Write(start)
	}()

	c, err := Dial(addr, 0)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.ConnectionSetup())
	require.Equal(t, StateAwaitStart, c.State())
}

func TestConnectionSetupRejectsAuthenticatedOnly(t *testing.T) {
	ln, addr := listen(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		greeting := make([]byte, protocol.ServerGreetingSize)
		greeting[15] = 2 // authenticated only
		conn.Write(greeting)
	}()

	c, err := Dial(addr, 0)
	require.NoError(t, err)
	defer c.Close()

	err = c.ConnectionSetup()
	require.Error(t, err)
	var um *UnsupportedMode
	require.ErrorAs(t, err, &um)
}

func TestServerStartRejectSurfacesServerRejected(t *testing.T) {
	ln, addr := listen(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		greeting := make([]byte, protocol.ServerGreetingSize)
		greeting[15] = 1
		conn.Write(greeting)

		setupResp := make([]byte, protocol.SetupResponseSize)
		io.ReadFull(conn, setupResp)

		start := make([]byte, protocol.ServerStartSize)
		start[15] = 7
		conn.Write(start)
	}()

	c, err := Dial(addr, 0)
	require.NoError(t, err)
	defer c.Close()

	err = c.ConnectionSetup()
	require.Error(t, err)
	var rej *ServerRejected
	require.ErrorAs(t, err, &rej)
	require.Equal(t, uint8(7), rej.Code)
}

func TestDialUnreachableReturnsControlLinkBroken(t *testing.T) {
	_, err := Dial("127.0.0.1:1", 0)
	require.Error(t, err)
	var broken *ControlLinkBroken
	require.ErrorAs(t, err, &broken)
}
