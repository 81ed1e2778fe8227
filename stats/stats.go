// Package stats accumulates per-direction delay statistics for a TWAMP
// test session and renders the final report.
package stats

import (
	"errors"
	"time"

	"github.com/eclesh/welford"
)

// ErrNoSamples is returned by Finalize when no reply was ever received.
var ErrNoSamples = errors.New("no samples received")

// direction holds the running aggregates for one of outbound, inbound
// or round-trip delay.
type direction struct {
	min, max, sum time.Duration
	last          time.Duration
	jitter        time.Duration
	count         int64
	variance      *welford.Stats
}

func newDirection() direction {
	return direction{variance: welford.New()}
}

func (d *direction) add(v time.Duration) {
	d.count++
	if d.count == 1 {
		d.min, d.max, d.sum, d.last = v, v, v, v
		d.variance.Add(float64(v))
		return
	}
	if v < d.min {
		d.min = v
	}
	if v > d.max {
		d.max = v
	}
	d.sum += v

	diff := v - d.last
	if diff < 0 {
		diff = -diff
	}
	if d.count == 2 {
		d.jitter = diff
	} else {
		d.jitter += (diff - d.jitter) / 16
	}
	d.last = v
	d.variance.Add(float64(v))
}

// Accumulator collects delay samples for the three measured directions
// and the loss counters described by the reflector/sender protocol.
type Accumulator struct {
	outbound, inbound, roundtrip direction
	received                     uint32
	lossOutbound                 uint32
	lastReceiverSeq              uint32
}

// NewAccumulator returns a ready-to-use Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		outbound:  newDirection(),
		inbound:   newDirection(),
		roundtrip: newDirection(),
	}
}

// Add records one correlated reply. delayRT, delayOB and delayIB must
// already be clamped to be non-negative by the caller.
func (a *Accumulator) Add(delayRT, delayOB, delayIB time.Duration, receiverSeq, senderSeq uint32) {
	a.received++
	a.roundtrip.add(delayRT)
	a.outbound.add(delayOB)
	a.inbound.add(delayIB)
	a.lastReceiverSeq = receiverSeq
	if senderSeq >= receiverSeq {
		a.lossOutbound = senderSeq - receiverSeq
	}
}

// DirectionStats is the finalized view of one direction's aggregates.
type DirectionStats struct {
	Min, Max, Avg, Last, Jitter time.Duration
	StdDev                      time.Duration
}

func (d direction) finalize() DirectionStats {
	var avg time.Duration
	if d.count > 0 {
		avg = d.sum / time.Duration(d.count)
	}
	return DirectionStats{
		Min:    d.min,
		Max:    d.max,
		Avg:    avg,
		Last:   d.last,
		Jitter: d.jitter,
		StdDev: time.Duration(d.variance.Stddev()),
	}
}

// Report is the finalized statistics for one completed test session.
type Report struct {
	Outbound, Inbound, RoundTrip DirectionStats
	Sent                         uint32
	Received                     uint32
	LossOutbound                 uint32
	LossInbound                  uint32
	LossRoundtrip                float64
}

// Finalize computes the final report given totalSent packets emitted
// by the sender loop. It fails with ErrNoSamples when no reply was
// ever received; the caller should still render a 100%-loss report in
// that case.
func (a *Accumulator) Finalize(totalSent uint32) (Report, error) {
	r := Report{
		Sent:         totalSent,
		Received:     a.received,
		LossOutbound: a.lossOutbound,
	}
	if a.received == 0 {
		r.LossRoundtrip = 100
		return r, ErrNoSamples
	}
	if a.lastReceiverSeq+1 > a.received {
		r.LossInbound = a.lastReceiverSeq + 1 - a.received
	}
	if totalSent > 0 {
		r.LossRoundtrip = 100 * float64(totalSent-a.received) / float64(totalSent)
	}
	r.Outbound = a.outbound.finalize()
	r.Inbound = a.inbound.finalize()
	r.RoundTrip = a.roundtrip.finalize()
	return r, nil
}
