package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountersJSONHandler(t *testing.T) {
	c := &Counters{}
	c.IncSent()
	c.IncSent()
	c.IncReceived()

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	c.handleJSON(rec, req)

	require.Equal(t, 200, rec.Code)
	var got map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.EqualValues(t, 2, got["sent"])
	require.EqualValues(t, 1, got["received"])
}

func TestPrometheusExporterScrapeFailureDoesNotPanic(t *testing.T) {
	e := NewPrometheusExporter("http://127.0.0.1:1/unreachable")
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
}

func TestPrometheusExporterScrapesJSONEndpoint(t *testing.T) {
	c := &Counters{}
	c.IncSent()
	c.IncLost()

	jsonSrv := httptest.NewServer(http.HandlerFunc(c.handleJSON))
	defer jsonSrv.Close()

	e := NewPrometheusExporter(jsonSrv.URL)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, req)

	require.Contains(t, rec.Body.String(), "twampy_sent 1")
	require.Contains(t, rec.Body.String(), "twampy_lost 1")
}
