package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/quotes/{quoteId}", http.StatusOK, 120*time.Millisecond)
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/quotes/{quoteId}")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "http_requests_total", "route", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/quotes/{quoteId}")
	require.NoError(t, err)
	assert.Greater(t, sum, 0.0)
}

func TestQuoteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)
	m.QuoteCreated("EUR")
	m.QuoteCreated("EUR")
	m.ItemsReconciled(2, 1, 3)
	m.PDFRendered(true)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "quotes_created_total", "currency", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "quote_items_reconciled_total", "outcome", "deleted")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	got, err = fetchCounterValue(mfs, "quote_pdfs_rendered_total", "uploaded", "true")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.ObserveJob("session-purge", time.Second, nil)
	m.ObserveJob("session-purge", time.Second, fmt.Errorf("boom"))
	m.ObserveJob("session-purge", time.Second, nil)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "job_runs_total", "outcome", "success")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "job_runs_total", "outcome", "failure")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "job_duration_seconds", "job", "session-purge")
	require.NoError(t, err)
	assert.Equal(t, 3.0, sum)
}

func TestNilRecordersAreSafe(t *testing.T) {
	var j *JobMetrics
	j.ObserveJob("x", time.Second, nil)

	var q *QuoteMetrics
	q.QuoteCreated("EUR")
	q.ItemsReconciled(1, 1, 1)
	q.PDFRendered(false)

	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", http.StatusOK, time.Second)

	NewQuoteMetrics(nil).QuoteCreated("USD")
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", http.StatusOK, time.Second)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewQuoteMetrics(reg).QuoteCreated("GBP")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `quotes_created_total{currency="GBP"} 1`)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
