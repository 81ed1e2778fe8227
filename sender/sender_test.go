package sender

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/reflector"
	"github.com/nokia/twampy/stats"
)

// fakeClock is a manually-advanced clock; Poll on loopbackTransport advances
// it so the loop's absolute-deadline math has somewhere to go.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// loopbackTransport wires a sender directly to a reflector in-process,
// advancing a shared fake clock on every Poll so the pacing loop makes
// progress without real sleeps.
type loopbackTransport struct {
	clk   *fakeClock
	refl  *reflector.Reflector
	inbox [][]byte
	peer  *net.UDPAddr
}

func (lt *loopbackTransport) Send(b []byte, peer *net.UDPAddr) error {
	if lt.refl == nil {
		return nil
	}
	reply := lt.refl.HandleDatagram(b, lt.peer)
	if reply != nil {
		lt.inbox = append(lt.inbox, reply)
	}
	return nil
}

func (lt *loopbackTransport) Recv() ([]byte, *net.UDPAddr, error) {
	b := lt.inbox[0]
	lt.inbox = lt.inbox[1:]
	return b, lt.peer, nil
}

func (lt *loopbackTransport) Poll(timeout time.Duration) (bool, error) {
	if len(lt.inbox) > 0 {
		return true, nil
	}
	lt.clk.advance(timeout)
	if timeout == 0 {
		lt.clk.advance(time.Millisecond)
	}
	return len(lt.inbox) > 0, nil
}

func TestSenderLoopFullExchange(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	refl := reflector.New(clk, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 20001}
	lt := &loopbackTransport{clk: clk, refl: refl, peer: peer}

	loop := New(lt, clk, Config{IntervalMS: 10, Count: 5, Padding: padding.Fixed(0), Remote: peer})
	report, err := loop.Run()
	require.NoError(t, err)
	require.EqualValues(t, 5, report.Sent)
	require.EqualValues(t, 5, report.Received)
	require.Zero(t, report.LossOutbound)
}

func TestSenderLoopHandlesNoReplies(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 20001}
	lt := &loopbackTransport{clk: clk, peer: peer} // no reflector wired, never replies

	loop := New(lt, clk, Config{IntervalMS: 5, Count: 2, Padding: padding.Fixed(0), Remote: peer})
	report, err := loop.Run()
	require.ErrorIs(t, err, stats.ErrNoSamples)
	require.EqualValues(t, 2, report.Sent)
	require.EqualValues(t, 0, report.Received)
}

func TestReplyShorterThanMinSizeIsSkipped(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	peer := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 20001}
	lt := &loopbackTransport{clk: clk, peer: peer, inbox: [][]byte{make([]byte, 10)}}

	loop := New(lt, clk, Config{IntervalMS: 5, Count: 1, Padding: padding.Fixed(0), Remote: peer})
	report, err := loop.Run()
	require.Error(t, err)
	require.EqualValues(t, 0, report.Received)
}
