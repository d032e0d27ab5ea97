package service

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akm12109/SDM-Admin/internal/form"
)

func TestMetricsServiceRecords(t *testing.T) {
	m := NewMetricsService()
	m.ObserveUpload("events", 2048, nil)
	m.ObserveUpload("events", 10, errors.New("reset"))
	m.ObserveSubmission("event", form.PhaseSucceeded)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/events", http.StatusCreated, 20*time.Millisecond)

	assert.Equal(t, 2058.0, testutil.ToFloat64(m.uploadBytes.WithLabelValues("events")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadTotal.WithLabelValues("events", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("event", "succeeded")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "form_submissions_total")
	assert.Contains(t, string(body), "http_requests_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveUpload("events", 1, nil)
	m.ObserveSubmission("event", form.PhaseFailed)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
