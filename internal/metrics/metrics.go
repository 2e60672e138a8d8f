// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_import_rows_total",
		Help: "CSV rows seen by the importer, by outcome and detected format",
	}, []string{"outcome", "format"})

	ImportBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "journal_import_batches_total",
		Help: "Completed CSV uploads",
	})

	TradeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_trade_writes_total",
		Help: "Trade rows written, by operation",
	}, []string{"op"})

	BackupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_backup_runs_total",
		Help: "Backup attempts, by result",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_http_requests_total",
		Help: "HTTP requests served, by method, route pattern and status class",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler serves the default registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
