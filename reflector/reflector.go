// Package reflector implements the Session-Reflector role: a per-peer
// sequence-number state machine that turns inbound test packets into
// timestamped replies.
package reflector

import (
	"net"
	"net/netip"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/clock"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/protocol"
)

const peerIdleTimeout = 30 * time.Second

// peerSession is the per-peer reflection state described by the data
// model: the next sequence number to hand out and when the peer is
// considered gone.
type peerSession struct {
	nextRseq       uint32
	expiryDeadline time.Time
}

// Reflector reflects test packets back to their senders, tracking a
// session per source address/port.
type Reflector struct {
	clock   clock.Clock
	padding padding.Policy
	peers   map[netip.AddrPort]*peerSession
}

// New builds a Reflector. pad chooses the trailing padding length
// appended to every reply.
func New(c clock.Clock, pad padding.Policy) *Reflector {
	return &Reflector{
		clock:   c,
		padding: pad,
		peers:   make(map[netip.AddrPort]*peerSession),
	}
}

// HandleDatagram processes one inbound test packet from peer and
// returns the reply to send back, or nil if the datagram was dropped
// (too short to be a valid test request).
func (r *Reflector) HandleDatagram(data []byte, peer *net.UDPAddr) []byte {
	if len(data) < protocol.RequestHeaderSize {
		log.Debugf("reflector: dropping %d-byte datagram from %s, too short", len(data), peer)
		return nil
	}

	t2 := protocol.FromTime(r.clock.Now())

	ap, ok := netip.AddrFromSlice(peer.IP)
	if !ok {
		return nil
	}
	key := netip.AddrPortFrom(ap, uint16(peer.Port))

	sess, known := r.peers[key]
	req, err := protocol.UnmarshalRequest(data)
	if err != nil {
		return nil
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Trace(spew.Sdump(req))
	}

	now := t2.Time()
	if !known || sess.expiryDeadline.Before(now) || req.SenderSeq == 0 {
		sess = &peerSession{}
		r.peers[key] = sess
	}

	rseq := sess.nextRseq
	reply := protocol.MarshalEcho(rseq, t2, t2, protocol.ReflectorErrorEstimate, data)
	if n := r.padding.Next(); n > 0 {
		reply = append(reply, make([]byte, n)...)
	}

	sess.nextRseq = rseq + 1
	sess.expiryDeadline = now.Add(peerIdleTimeout)

	return reply
}

// PeerCount reports the number of peer sessions currently tracked,
// mainly useful for tests and diagnostics.
func (r *Reflector) PeerCount() int { return len(r.peers) }
