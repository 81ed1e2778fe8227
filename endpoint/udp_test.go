package endpoint

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsIPv6Literal(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:862":   false,
		"":                false,
		"[::1]:862":       true,
		"::1":             true,
		"2001:db8::1:862": true,
	}
	for addr, want := range cases {
		require.Equal(t, want, IsIPv6Literal(addr), addr)
	}
}

func TestOpenSendRecvRoundTrip(t *testing.T) {
	a, err := Open("127.0.0.1:0", false, Config{})
	require.NoError(t, err)
	defer a.Close()

	b, err := Open("127.0.0.1:0", false, Config{})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Send([]byte("hello"), b.LocalAddr().(*net.UDPAddr)))

	ready, err := b.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ready)

	got, peer, err := b.Recv()
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
	require.Equal(t, a.LocalAddr().(*net.UDPAddr).Port, peer.Port)
}

func TestPollTimesOutWithoutData(t *testing.T) {
	a, err := Open("127.0.0.1:0", false, Config{})
	require.NoError(t, err)
	defer a.Close()

	ready, err := a.Poll(10 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)
}

func TestApplyIPv4Options(t *testing.T) {
	e, err := Open("127.0.0.1:0", false, Config{TOS: 0x2e, TTL: 64})
	require.NoError(t, err)
	defer e.Close()
}
