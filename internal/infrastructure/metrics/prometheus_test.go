package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Contadores(t *testing.T) {
	p := New("test")
	p.ObserveTransfer("initiate", "ok")
	p.ObserveTransfer("initiate", "ok")
	p.ObserveTransfer("ship", "INVALID_STATE")
	p.ObserveCash("close", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.transferOps.WithLabelValues("initiate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transferOps.WithLabelValues("ship", "INVALID_STATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cashOps.WithLabelValues("close", "ok")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := New("test")
	p.ObserveRequest("GET", "/health", "200", 3*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="/health",status="200"} 1`))
	assert.True(t, strings.Contains(body, "test_http_request_duration_seconds_bucket"))
}

func TestNew_RegistrosIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New("a")
		_ = New("a")
	})
}
