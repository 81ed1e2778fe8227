package protocol

import (
	"encoding/binary"
	"time"
)

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// fracScale is 2^32 - 1, the value the fractional-second field is scaled
// by so that fracScale itself represents one whole second.
const fracScale = float64(1<<32 - 1)

// TimestampSize is the wire size, in bytes, of an encoded Timestamp.
const TimestampSize = 8

// Timestamp is the 64-bit NTP timestamp used on every TWAMP wire frame:
// 32-bit seconds since 1900-01-01, plus a 32-bit fraction of a second
// scaled so that 2^32-1 represents one whole second.
type Timestamp struct {
	Seconds  uint32
	Fraction uint32
}

// FromTime converts a host time.Time into the wire Timestamp.
func FromTime(t time.Time) Timestamp {
	sec := t.Unix() + ntpEpochOffset
	frac := float64(t.Nanosecond()) / float64(time.Second) * fracScale
	return Timestamp{Seconds: uint32(sec), Fraction: uint32(frac)}
}

// Time converts the wire Timestamp back to a host time.Time.
func (ts Timestamp) Time() time.Time {
	sec := int64(ts.Seconds) - ntpEpochOffset
	nsec := int64(float64(ts.Fraction) / fracScale * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// Marshal encodes the Timestamp as 8 big-endian bytes.
func (ts Timestamp) Marshal() [TimestampSize]byte {
	var b [TimestampSize]byte
	binary.BigEndian.PutUint32(b[0:4], ts.Seconds)
	binary.BigEndian.PutUint32(b[4:8], ts.Fraction)
	return b
}

// PutTimestamp writes ts into b[0:8] in big-endian wire format.
func PutTimestamp(b []byte, ts Timestamp) {
	binary.BigEndian.PutUint32(b[0:4], ts.Seconds)
	binary.BigEndian.PutUint32(b[4:8], ts.Fraction)
}

// UnmarshalTimestamp decodes 8 big-endian bytes into a Timestamp.
func UnmarshalTimestamp(b []byte) (Timestamp, error) {
	if len(b) < TimestampSize {
		return Timestamp{}, NewMalformedFrame("ntp-timestamp", TimestampSize, len(b))
	}
	return Timestamp{
		Seconds:  binary.BigEndian.Uint32(b[0:4]),
		Fraction: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}
