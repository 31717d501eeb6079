// Package metrics defines the Prometheus collectors of a batch run and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query results.
const (
	ResultOk          = "ok"
	ResultSyntaxError = "syntax_error"
	ResultModelError  = "model_error"
	ResultIOError     = "io_error"
)

type Metrics struct {
	QueriesTotal   *prometheus.CounterVec
	QueryDuration  prometheus.Histogram
	ResultsCount   prometheus.Histogram
	ExpansionTerms prometheus.Histogram
	DocsIndexed    prometheus.Counter
}

// New creates the collectors and registers them on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qryeval_queries_total",
				Help: "Total evaluated queries by result (ok, syntax_error, model_error, io_error).",
			},
			[]string{"result"},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qryeval_query_duration_seconds",
				Help:    "Query evaluation latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		ResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qryeval_results_count",
				Help:    "Number of matching documents per query.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
			},
		),
		ExpansionTerms: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qryeval_expansion_terms",
				Help:    "Number of expansion terms per expanded query.",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		DocsIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "qryeval_docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
	}

	registerer.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.ResultsCount,
		m.ExpansionTerms,
		m.DocsIndexed,
	)

	return m
}

// Handler serves the collectors of gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
