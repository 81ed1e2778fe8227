package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 6, 15, 12, 30, 0, 500000000, time.UTC),
		time.Date(2036, 2, 6, 0, 0, 0, 0, time.UTC),
	}
	for _, tm := range cases {
		ts := FromTime(tm)
		got := ts.Time()
		require.WithinDuration(t, tm, got, 2*time.Nanosecond)
	}
}

func TestTimestampMarshalUnmarshal(t *testing.T) {
	ts := Timestamp{Seconds: 3794210679, Fraction: 2718216404}
	b := ts.Marshal()
	got, err := UnmarshalTimestamp(b[:])
	require.NoError(t, err)
	require.Equal(t, ts, got)
}

func TestUnmarshalTimestampShort(t *testing.T) {
	_, err := UnmarshalTimestamp([]byte{1, 2, 3})
	require.Error(t, err)
	var mf *MalformedFrame
	require.ErrorAs(t, err, &mf)
}
