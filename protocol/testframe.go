package protocol

import "encoding/binary"

// SenderErrorEstimate is the fixed, opaque error-estimate value a
// Session-Sender writes into every test request.
const SenderErrorEstimate = 0x3FFF

// ReflectorErrorEstimate is the fixed, opaque error-estimate value a
// Session-Reflector writes into every reply.
const ReflectorErrorEstimate = 0x0001

// RequestHeaderSize is the size, in bytes, of the meaningful portion of
// a Sender->Reflector test packet, before any padding.
const RequestHeaderSize = 14

// ReplyHeaderSize is the size, in bytes, of the meaningful portion of a
// Reflector->Sender reply, before any padding.
const ReplyHeaderSize = 38

// ReplyDecodeMinSize is the minimum number of bytes the Sender needs to
// see in a reply datagram to extract the fields it correlates against;
// it is smaller than ReplyHeaderSize because the echoed error estimate
// is not used by the Sender's loop.
const ReplyDecodeMinSize = 36

// Request is the unauthenticated Sender->Reflector test packet.
type Request struct {
	SenderSeq     uint32
	SendTimestamp Timestamp
	ErrorEstimate uint16
}

// Marshal encodes the request header (without padding) into a new slice.
func (r Request) Marshal() []byte {
	b := make([]byte, RequestHeaderSize)
	binary.BigEndian.PutUint32(b[0:4], r.SenderSeq)
	PutTimestamp(b[4:12], r.SendTimestamp)
	binary.BigEndian.PutUint16(b[12:14], r.ErrorEstimate)
	return b
}

// UnmarshalRequest decodes the leading RequestHeaderSize bytes of b.
// Trailing padding bytes are not inspected.
func UnmarshalRequest(b []byte) (Request, error) {
	if len(b) < RequestHeaderSize {
		return Request{}, NewMalformedFrame("test-request", RequestHeaderSize, len(b))
	}
	ts, err := UnmarshalTimestamp(b[4:12])
	if err != nil {
		return Request{}, err
	}
	return Request{
		SenderSeq:     binary.BigEndian.Uint32(b[0:4]),
		SendTimestamp: ts,
		ErrorEstimate: binary.BigEndian.Uint16(b[12:14]),
	}, nil
}

// Reply is the Reflector->Sender reply packet. Field order on the wire
// follows RFC 5357 (and the bytes sent by real TWAMP reflectors): the
// reflector's own transmit timestamp comes before its receive
// timestamp of the original request, not after. Since a TWAMP-Light
// reflector sets them equal (T3 == T2), this ordering is numerically
// invisible to callers and only matters for wire compatibility.
type Reply struct {
	ReceiverSeq           uint32
	SendTimestamp         Timestamp // T3: time this reply was transmitted
	ReceiverErrorEstimate uint16
	ReceiveTimestamp      Timestamp // T2: time the original request was received
	SenderSeqEchoed       uint32
	SendTimestampEchoed   Timestamp // T1, echoed verbatim from the request
	SenderErrorEstimate   uint16
}

// Marshal encodes the reply header (without padding) into a new slice.
func (r Reply) Marshal() []byte {
	b := make([]byte, ReplyHeaderSize)
	binary.BigEndian.PutUint32(b[0:4], r.ReceiverSeq)
	PutTimestamp(b[4:12], r.SendTimestamp)
	binary.BigEndian.PutUint16(b[12:14], r.ReceiverErrorEstimate)
	binary.BigEndian.PutUint16(b[14:16], 0) // mbz
	PutTimestamp(b[16:24], r.ReceiveTimestamp)
	binary.BigEndian.PutUint32(b[24:28], r.SenderSeqEchoed)
	PutTimestamp(b[28:36], r.SendTimestampEchoed)
	binary.BigEndian.PutUint16(b[36:38], r.SenderErrorEstimate)
	return b
}

// MarshalEcho builds a reply by copying the echo region verbatim from
// the first RequestHeaderSize bytes of the originating request, as
// required by the Reflector's per-packet handling.
func MarshalEcho(receiverSeq uint32, sendTS, receiveTS Timestamp, receiverErrorEstimate uint16, request []byte) []byte {
	b := make([]byte, ReplyHeaderSize)
	binary.BigEndian.PutUint32(b[0:4], receiverSeq)
	PutTimestamp(b[4:12], sendTS)
	binary.BigEndian.PutUint16(b[12:14], receiverErrorEstimate)
	binary.BigEndian.PutUint16(b[14:16], 0)
	PutTimestamp(b[16:24], receiveTS)
	copy(b[24:38], request[0:RequestHeaderSize])
	return b
}

// UnmarshalReply decodes the leading bytes of a reply datagram. It
// requires at least ReplyDecodeMinSize bytes; the trailing echoed
// error estimate is decoded only when present.
func UnmarshalReply(b []byte) (Reply, error) {
	if len(b) < ReplyDecodeMinSize {
		return Reply{}, NewMalformedFrame("test-reply", ReplyDecodeMinSize, len(b))
	}
	sendTS, err := UnmarshalTimestamp(b[4:12])
	if err != nil {
		return Reply{}, err
	}
	recvTS, err := UnmarshalTimestamp(b[16:24])
	if err != nil {
		return Reply{}, err
	}
	echoedTS, err := UnmarshalTimestamp(b[28:36])
	if err != nil {
		return Reply{}, err
	}
	r := Reply{
		ReceiverSeq:           binary.BigEndian.Uint32(b[0:4]),
		SendTimestamp:         sendTS,
		ReceiverErrorEstimate: binary.BigEndian.Uint16(b[12:14]),
		ReceiveTimestamp:      recvTS,
		SenderSeqEchoed:       binary.BigEndian.Uint32(b[24:28]),
		SendTimestampEchoed:   echoedTS,
	}
	if len(b) >= ReplyHeaderSize {
		r.SenderErrorEstimate = binary.BigEndian.Uint16(b[36:38])
	}
	return r, nil
}
