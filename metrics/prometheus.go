package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PrometheusExporter re-exposes the JSON counters endpoint as
// Prometheus gauges, scraping it on every /metrics request instead of
// duplicating the counters as a second source of truth.
type PrometheusExporter struct {
	jsonURL string
	client  *http.Client
	gauges  map[string]prometheus.Gauge
	reg     *prometheus.Registry
}

// NewPrometheusExporter builds an exporter that scrapes jsonURL.
func NewPrometheusExporter(jsonURL string) *PrometheusExporter {
	reg := prometheus.NewRegistry()
	gauges := map[string]prometheus.Gauge{}
	for _, name := range []string{"sent", "received", "lost", "malformed", "linkdown"} {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "twampy",
			Name:      name,
			Help:      fmt.Sprintf("twampy %s counter", name),
		})
		reg.MustRegister(g)
		gauges[name] = g
	}
	return &PrometheusExporter{
		jsonURL: jsonURL,
		client:  &http.Client{Timeout: 2 * time.Second},
		gauges:  gauges,
		reg:     reg,
	}
}

func (p *PrometheusExporter) scrape() {
	resp, err := p.client.Get(p.jsonURL)
	if err != nil {
		log.Debugf("metrics: prometheus scrape failed: %v", err)
		return
	}
	defer resp.Body.Close()

	var counts map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		log.Debugf("metrics: prometheus scrape decode failed: %v", err)
		return
	}
	for name, value := range counts {
		if g, ok := p.gauges[name]; ok {
			g.Set(float64(value))
		}
	}
}

// Handler returns an http.Handler that scrapes the JSON endpoint and
// renders the result in Prometheus exposition format.
func (p *PrometheusExporter) Handler() http.Handler {
	inner := promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.scrape()
		inner.ServeHTTP(w, r)
	})
}
