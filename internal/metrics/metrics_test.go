package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.MetricsRecorder = (*Recorder)(nil)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest(core.OutcomeSuccess)
	r.ObserveRequest(core.OutcomeSuccess)
	r.ObserveRequest(core.OutcomeEmpty)
	r.ObserveClassification(core.CategoryProductive)
	r.ObserveCacheLookup(true)
	r.ObserveCacheLookup(false)
	r.ObserveCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues(core.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues(core.OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.classifications.WithLabelValues("Productive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	r.ObserveLLMDuration("classify", 300*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `email_triage_llm_duration_seconds_count{operation="classify"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
