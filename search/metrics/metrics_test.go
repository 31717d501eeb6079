package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, gatherer prometheus.Gatherer) string {
	recorder := httptest.NewRecorder()
	Handler(gatherer).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.QueriesTotal.WithLabelValues(ResultOk).Inc()
	m.QueriesTotal.WithLabelValues(ResultOk).Inc()
	m.QueriesTotal.WithLabelValues(ResultSyntaxError).Inc()
	m.DocsIndexed.Add(3)
	m.ResultsCount.Observe(12)

	body := scrape(t, registry)

	assert.Contains(t, body, `qryeval_queries_total{result="ok"} 2`)
	assert.Contains(t, body, `qryeval_queries_total{result="syntax_error"} 1`)
	assert.Contains(t, body, "qryeval_docs_indexed_total 3")
	assert.Contains(t, body, "qryeval_results_count_count 1")
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
