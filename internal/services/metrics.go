package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Classification metrics
	ClassificationRequests prometheus.Counter
	ClassificationLatency  prometheus.Histogram
	ClassificationErrors   *prometheus.CounterVec
	ClassificationWins     *prometheus.CounterVec
	ClassificationCacheHit prometheus.Counter

	// Session metrics
	AssetsAdded       *prometheus.CounterVec
	PairsCreated      *prometheus.CounterVec
	SessionsPersisted prometheus.Counter

	// Auto-filing metrics
	FilingResults *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		ClassificationRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creativedesk_classification_requests_total",
			Help: "Total number of classification requests processed",
		}),

		ClassificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "creativedesk_classification_duration_seconds",
			Help:    "Classification request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, // provider calls can be slow
		}),

		ClassificationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creativedesk_classification_errors_total",
			Help: "Total number of classification provider errors by provider",
		}, []string{"provider"}),

		ClassificationWins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creativedesk_classification_wins_total",
			Help: "Total number of successful classifications by winning provider",
		}, []string{"provider"}),

		ClassificationCacheHit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creativedesk_classification_cache_hits_total",
			Help: "Total number of classification cache hits",
		}),

		AssetsAdded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creativedesk_assets_added_total",
			Help: "Total number of assets recorded by kind",
		}, []string{"kind"}),

		PairsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creativedesk_pairs_created_total",
			Help: "Total number of image/video pairs created by mode",
		}, []string{"mode"}), // "explicit" or "similarity"

		SessionsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "creativedesk_sessions_persisted_total",
			Help: "Total number of session snapshots written to the library",
		}),

		FilingResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "creativedesk_filing_results_total",
			Help: "Total number of auto-filing outcomes by result",
		}, []string{"result"}), // "filed", "skipped", "error"
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (nil until InitMetrics runs)
func GetMetrics() *Metrics {
	return globalMetrics
}
