// Package sender implements the Session-Sender role: a paced transmit
// loop with an interleaved, non-blocking receive drain that correlates
// replies against the packets that triggered them.
package sender

import (
	"net"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"github.com/nokia/twampy/clock"
	"github.com/nokia/twampy/metrics"
	"github.com/nokia/twampy/padding"
	"github.com/nokia/twampy/protocol"
	"github.com/nokia/twampy/stats"
)

// endTimeGrace is the extra time the loop keeps polling for in-flight
// replies after the last packet has been scheduled.
const endTimeGrace = 5 * time.Second

// Transport is the subset of endpoint.Endpoint the loop needs; it is
// an interface so tests can drive the loop without real sockets.
type Transport interface {
	Send(b []byte, peer *net.UDPAddr) error
	Recv() ([]byte, *net.UDPAddr, error)
	Poll(timeout time.Duration) (bool, error)
}

// Config parameterizes one sender run.
type Config struct {
	IntervalMS int
	Count      int
	Padding    padding.Policy
	Remote     *net.UDPAddr
	// Metrics is optional; when set, sent/received packet counts are
	// mirrored onto it as the loop runs.
	Metrics *metrics.Counters
}

// Loop drives the pacing/receive state machine described by the
// component design: absolute-deadline accumulation for sends,
// non-blocking drain before every send decision.
type Loop struct {
	transport Transport
	clock     clock.Clock
	cfg       Config
	stats     *stats.Accumulator

	idx          int
	scheduleTime time.Time
	endTime      time.Time
	done         bool
	stop         bool
}

// New builds a Loop ready to Run.
func New(t Transport, c clock.Clock, cfg Config) *Loop {
	return &Loop{
		transport: t,
		clock:     c,
		cfg:       cfg,
		stats:     stats.NewAccumulator(),
	}
}

// Stop requests the loop exit at the next opportunity, as if the
// end-time grace period had already elapsed.
func (l *Loop) Stop() { l.stop = true }

// Run executes the send/receive loop to completion and returns the
// finalized report. err is stats.ErrNoSamples when nothing was ever
// received; the report is still populated in that case.
func (l *Loop) Run() (stats.Report, error) {
	now := l.clock.Now()
	l.scheduleTime = now
	l.endTime = now.Add(time.Duration(l.cfg.IntervalMS)*time.Millisecond*time.Duration(l.cfg.Count) + endTimeGrace)

	for {
		complete := l.idx == l.cfg.Count && (l.done || l.clock.Now().After(l.endTime))
		if l.stop || complete {
			break
		}

		l.drainReceiveQueue()
		l.sendIfDue()

		now = l.clock.Now()
		if now.After(l.endTime) {
			break
		}

		wake := l.scheduleTime
		if l.idx >= l.cfg.Count || wake.After(l.endTime) {
			wake = l.endTime
		}
		wait := wake.Sub(now)
		if wait < 0 {
			wait = 0
		}
		if _, err := l.transport.Poll(wait); err != nil {
			break
		}
	}

	report, err := l.stats.Finalize(uint32(l.idx))
	if l.cfg.Metrics != nil {
		for i := uint32(0); i < report.LossOutbound; i++ {
			l.cfg.Metrics.IncLost()
		}
	}
	return report, err
}

func (l *Loop) drainReceiveQueue() {
	for {
		ready, err := l.transport.Poll(0)
		if err != nil || !ready {
			return
		}
		data, _, err := l.transport.Recv()
		if err != nil {
			return
		}
		if len(data) < protocol.ReplyDecodeMinSize {
			log.Debugf("sender: dropping %d-byte reply, too short", len(data))
			if l.cfg.Metrics != nil {
				l.cfg.Metrics.IncMalformed()
			}
			continue
		}
		reply, err := protocol.UnmarshalReply(data)
		if err != nil {
			if l.cfg.Metrics != nil {
				l.cfg.Metrics.IncMalformed()
			}
			continue
		}
		if log.IsLevelEnabled(log.TraceLevel) {
			log.Trace(spew.Sdump(reply))
		}
		if l.cfg.Metrics != nil {
			l.cfg.Metrics.IncReceived()
		}
		t4 := protocol.FromTime(l.clock.Now())
		l.correlate(reply, t4)
	}
}

func (l *Loop) correlate(reply protocol.Reply, t4 protocol.Timestamp) {
	t1 := reply.SendTimestampEchoed.Time()
	t2 := reply.ReceiveTimestamp.Time()
	t3 := reply.SendTimestamp.Time()
	t4t := t4.Time()

	delayOB := t2.Sub(t1)
	delayIB := t4t.Sub(t3)
	delayRT := t4t.Sub(t1) - t3.Sub(t2)
	delayOB, delayIB, delayRT = clampNonNegative(delayOB), clampNonNegative(delayIB), clampNonNegative(delayRT)

	l.stats.Add(delayRT, delayOB, delayIB, reply.ReceiverSeq, reply.SenderSeqEchoed)

	if reply.SenderSeqEchoed+1 == uint32(l.cfg.Count) {
		l.done = true
	}
}

func clampNonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func (l *Loop) sendIfDue() {
	now := l.clock.Now()
	if l.idx >= l.cfg.Count || now.Before(l.scheduleTime) {
		return
	}
	req := protocol.Request{
		SenderSeq:     uint32(l.idx),
		SendTimestamp: protocol.FromTime(now),
		ErrorEstimate: protocol.SenderErrorEstimate,
	}
	b := req.Marshal()
	if n := l.cfg.Padding.Next(); n > 0 {
		b = append(b, make([]byte, n)...)
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Trace(spew.Sdump(req))
	}
	if err := l.transport.Send(b, l.cfg.Remote); err != nil {
		log.Errorf("sender: send failed: %v", err)
	} else if l.cfg.Metrics != nil {
		l.cfg.Metrics.IncSent()
	}
	l.scheduleTime = l.scheduleTime.Add(time.Duration(l.cfg.IntervalMS) * time.Millisecond)
	l.idx++
}
