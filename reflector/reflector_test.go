package reflector

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nokia/twampy/clock"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/protocol"
)

func request(t *testing.T, seq uint32) []byte {
	t.Helper()
	req := protocol.Request{SenderSeq: seq, SendTimestamp: protocol.Timestamp{Seconds: 1, Fraction: 2}, ErrorEstimate: protocol.SenderErrorEstimate}
	return req.Marshal()
}

func TestHandleDatagramBuildsEchoReply(t *testing.T) {
	r := New(clock.System{}, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}

	reqBytes := request(t, 1)
	reply := r.HandleDatagram(reqBytes, peer)
	require.NotNil(t, reply)
	require.Len(t, reply, protocol.ReplyHeaderSize)

	got, err := protocol.UnmarshalReply(reply)
	require.NoError(t, err)
	require.EqualValues(t, 0, got.ReceiverSeq)
	require.EqualValues(t, 1, got.SenderSeqEchoed)
}

func TestSequenceIncrementsPerPeer(t *testing.T) {
	r := New(clock.System{}, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}

	r1 := r.HandleDatagram(request(t, 1), peer)
	r2 := r.HandleDatagram(request(t, 2), peer)
	g1, _ := protocol.UnmarshalReply(r1)
	g2, _ := protocol.UnmarshalReply(r2)
	require.EqualValues(t, 0, g1.ReceiverSeq)
	require.EqualValues(t, 1, g2.ReceiverSeq)
	require.Equal(t, 1, r.PeerCount())
}

func TestSeparatePeersTrackedIndependently(t *testing.T) {
	r := New(clock.System{}, padding.Fixed(0))
	peerA := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}
	peerB := &net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 5000}

	r.HandleDatagram(request(t, 1), peerA)
	r.HandleDatagram(request(t, 1), peerA)
	replyB, _ := protocol.UnmarshalReply(r.HandleDatagram(request(t, 1), peerB))
	require.EqualValues(t, 0, replyB.ReceiverSeq)
	require.Equal(t, 2, r.PeerCount())
}

func TestSenderSeqZeroForcesReset(t *testing.T) {
	r := New(clock.System{}, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}

	r.HandleDatagram(request(t, 1), peer)
	r.HandleDatagram(request(t, 2), peer)
	reply := r.HandleDatagram(request(t, 0), peer)
	got, _ := protocol.UnmarshalReply(reply)
	require.EqualValues(t, 0, got.ReceiverSeq)
}

func TestShortDatagramDropped(t *testing.T) {
	r := New(clock.System{}, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}
	reply := r.HandleDatagram(make([]byte, 5), peer)
	require.Nil(t, reply)
	require.Equal(t, 0, r.PeerCount())
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

func TestExpiredPeerResets(t *testing.T) {
	fc := &fakeClock{t: time.Unix(1000, 0)}
	r := New(fc, padding.Fixed(0))
	peer := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}

	r.HandleDatagram(request(t, 1), peer)
	r.HandleDatagram(request(t, 2), peer)

	fc.t = fc.t.Add(31 * time.Second)
	reply := r.HandleDatagram(request(t, 3), peer)
	got, _ := protocol.UnmarshalReply(reply)
	require.EqualValues(t, 0, got.ReceiverSeq)
}
