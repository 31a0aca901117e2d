package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAction(t *testing.T) {
	m := NewMetrics()

	m.RecordAction("get_app_list", false, 20*time.Millisecond)
	m.RecordAction("get_app_list", true, time.Second)
	m.RecordAction("get_app_list", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("get_app_list", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("get_app_list", OutcomeFailure)))
}

func TestRecordSessionEstablishment(t *testing.T) {
	m := NewMetrics()

	m.RecordSessionEstablishment(true)
	m.RecordSessionEstablishment(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionEstablishments.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionEstablishments.WithLabelValues(OutcomeFailure)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAction("x", false, time.Second)
		m.RecordSessionEstablishment(false)
		m.RecordCapture(10, 5)
	})
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordCapture(2_000_000, 150_000)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `iphone_use_capture_bytes_count{stage="compressed"} 1`)
}
