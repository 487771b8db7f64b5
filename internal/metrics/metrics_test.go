package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Command("AUTHORIZE_ENTRY", "ok")
		m.SessionOpened()
		m.SessionClosed()
		m.BroadcastDropped()
		m.WeightSample()
		m.SetDeviceConnected(true)
		m.Finalization("finalized")
	})
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Finalization("finalized")
	m.SetDeviceConnected(true)

	h := m.WrapHandler("/api/ports", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ports", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `weighbridge_finalizations_total{result="finalized"} 1`))
	assert.True(t, strings.Contains(body, "weighbridge_device_connected 1"))
	assert.True(t, strings.Contains(body, `http_requests_total{route="/api/ports",status="418"} 1`))
}
