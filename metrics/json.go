// Package metrics exposes run-time counters over HTTP: a JSON endpoint
// at "/" and a Prometheus exposition at "/metrics" that scrapes the
// JSON endpoint internally rather than keeping a second source of truth.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Counters are the run-time counters common to every role: packets in
// flight on the wire and errors encountered handling them.
type Counters struct {
	sent      int64
	received  int64
	lost      int64
	malformed int64
	linkDown  int64
}

func (c *Counters) toMap() map[string]int64 {
	return map[string]int64{
		"sent":      atomic.LoadInt64(&c.sent),
		"received":  atomic.LoadInt64(&c.received),
		"lost":      atomic.LoadInt64(&c.lost),
		"malformed": atomic.LoadInt64(&c.malformed),
		"linkdown":  atomic.LoadInt64(&c.linkDown),
	}
}

// IncSent atomically increments the sent counter.
func (c *Counters) IncSent() { atomic.AddInt64(&c.sent, 1) }

// IncReceived atomically increments the received counter.
func (c *Counters) IncReceived() { atomic.AddInt64(&c.received, 1) }

// IncLost atomically increments the lost counter.
func (c *Counters) IncLost() { atomic.AddInt64(&c.lost, 1) }

// IncMalformed atomically increments the malformed-frame counter.
func (c *Counters) IncMalformed() { atomic.AddInt64(&c.malformed, 1) }

// IncLinkDown atomically increments the control-link-broken counter.
func (c *Counters) IncLinkDown() { atomic.AddInt64(&c.linkDown, 1) }

func (c *Counters) handleJSON(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(c.toMap())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(js); err != nil {
		log.Errorf("metrics: failed to write response: %v", err)
	}
}

// Start launches the monitoring HTTP server on port, serving "/" (JSON)
// and "/metrics" (Prometheus). It blocks; call it in a goroutine.
func Start(port int, c *Counters) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleJSON)
	mux.Handle("/metrics", NewPrometheusExporter(fmt.Sprintf("http://127.0.0.1:%d/", port)).Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Infof("metrics: starting monitoring server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics: monitoring server failed: %v", err)
	}
}
