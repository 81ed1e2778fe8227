package protocol

import (
	"encoding/binary"
	"net"
)

// Control-channel frame sizes, RFC 5357 §3.1-3.5.
const (
	ServerGreetingSize  = 64
	SetupResponseSize   = 164
	ServerStartSize     = 48
	RequestSessionSize  = 112
	AcceptSessionSize   = 48
	StartSessionsSize   = 32
	StartAckSize        = 32
	StopSessionsSize    = 32
	addrFieldSize       = 16
	unauthenticatedMode = 1
)

// ServerGreeting is the first frame a TWAMP server sends on connect.
type ServerGreeting struct {
	Modes uint32
}

// UnmarshalServerGreeting decodes a 64-byte Server-Greeting.
func UnmarshalServerGreeting(b []byte) (ServerGreeting, error) {
	if len(b) < ServerGreetingSize {
		return ServerGreeting{}, NewMalformedFrame("server-greeting", ServerGreetingSize, len(b))
	}
	return ServerGreeting{Modes: binary.BigEndian.Uint32(b[12:16])}, nil
}

// SupportsUnauthenticated reports whether mode bit 0 (unauthenticated) is set.
func (g ServerGreeting) SupportsUnauthenticated() bool {
	return g.Modes&0x1 != 0
}

// MarshalSetupResponse encodes the 164-byte Setup-Response selecting
// unauthenticated mode.
func MarshalSetupResponse() []byte {
	b := make([]byte, SetupResponseSize)
	binary.BigEndian.PutUint32(b[0:4], unauthenticatedMode)
	return b
}

// ServerStart is the server's accept/reject of the control session setup.
type ServerStart struct {
	AcceptCode uint8
}

// UnmarshalServerStart decodes a 48-byte Server-Start.
func UnmarshalServerStart(b []byte) (ServerStart, error) {
	if len(b) < ServerStartSize {
		return ServerStart{}, NewMalformedFrame("server-start", ServerStartSize, len(b))
	}
	return ServerStart{AcceptCode: b[15]}, nil
}

// RequestSessionParams describes a Request-TW-Session the client wants
// to negotiate. Wildcard (zero-valued) Sender/Receiver addresses are
// preserved verbatim on the wire for compatibility with servers that
// interpret them as "use the control-channel peer".
type RequestSessionParams struct {
	IPv6            bool
	SenderPort      uint16
	ReceiverPort    uint16
	SenderAddr      net.IP // nil or unspecified means wildcard
	ReceiverAddr    net.IP
	PaddingLength   uint32
	StartTime       Timestamp // zero value means "immediately"
	TimeoutSeconds  uint32
	DSCP            uint8
}

func putAddr(b []byte, ip net.IP, v6 bool) {
	if ip == nil || ip.IsUnspecified() {
		return
	}
	if v6 {
		copy(b, ip.To16())
		return
	}
	copy(b, ip.To4())
}

// MarshalRequestSession encodes the 112-byte Request-TW-Session frame.
func MarshalRequestSession(p RequestSessionParams) []byte {
	b := make([]byte, RequestSessionSize)
	const cmdRequestTWSession = 5
	b[0] = cmdRequestTWSession
	if p.IPv6 {
		b[1] = 6
	} else {
		b[1] = 4
	}
	// b[2], b[3] reserved, left zero
	binary.BigEndian.PutUint16(b[4:6], p.SenderPort)
	binary.BigEndian.PutUint16(b[6:8], p.ReceiverPort)
	putAddr(b[8:8+addrFieldSize], p.SenderAddr, p.IPv6)
	putAddr(b[24:24+addrFieldSize], p.ReceiverAddr, p.IPv6)
	binary.BigEndian.PutUint32(b[40:44], p.PaddingLength)
	PutTimestamp(b[44:52], p.StartTime)
	binary.BigEndian.PutUint32(b[52:56], p.TimeoutSeconds)
	binary.BigEndian.PutUint32(b[56:60], uint32(p.DSCP)<<24)
	// b[60:112] trailing reserved fields, left zero
	return b
}

// AcceptSession is the server's reply to Request-TW-Session.
type AcceptSession struct {
	AcceptCode uint8
}

// UnmarshalAcceptSession decodes a 48-byte Accept-Session.
func UnmarshalAcceptSession(b []byte) (AcceptSession, error) {
	if len(b) < AcceptSessionSize {
		return AcceptSession{}, NewMalformedFrame("accept-session", AcceptSessionSize, len(b))
	}
	return AcceptSession{AcceptCode: b[0]}, nil
}

// MarshalStartSessions encodes the 32-byte Start-Sessions request.
func MarshalStartSessions() []byte {
	b := make([]byte, StartSessionsSize)
	const cmdStartSessions = 2
	b[0] = cmdStartSessions
	return b
}

// MarshalStopSessions encodes the 32-byte Stop-Sessions request.
func MarshalStopSessions(numSessions uint32) []byte {
	b := make([]byte, StopSessionsSize)
	const cmdStopSessions = 3
	b[0] = cmdStopSessions
	b[1] = 0 // accept
	binary.BigEndian.PutUint16(b[2:4], 0)
	binary.BigEndian.PutUint32(b[4:8], numSessions)
	return b
}
