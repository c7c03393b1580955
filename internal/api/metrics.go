package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankingRequests = "ranking_requests_total"
	MetricRankingDuration = "ranking_duration_seconds"
	MetricCandidatesSeen  = "ranking_candidates_total"
	MetricResultsReturned = "ranking_results_returned"
)

// Metrics contains Prometheus metrics for the ranking endpoints.
// All operations are thread-safe.
type Metrics struct {
	rankingRequests *prometheus.CounterVec
	rankingDuration *prometheus.HistogramVec
	candidatesSeen  *prometheus.CounterVec
	resultsReturned *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingRequests,
				Help: "Total number of ranking requests by operation and mode",
			},
			[]string{"operation", "mode"},
		),
		rankingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankingDuration,
				Help:    "Time spent inside the ranking engine in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"operation"},
		),
		candidatesSeen: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCandidatesSeen,
				Help: "Total number of candidates received for ranking by operation",
			},
			[]string{"operation"},
		),
		resultsReturned: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricResultsReturned,
				Help:    "Number of items returned per ranking response",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
			},
			[]string{"operation"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRanking records one completed ranking pass.
// operation: "feed", "suggestions", or "trending"
// mode: the feed mode, or "" for operations without modes
func (m *Metrics) ObserveRanking(operation, mode string, candidates, results int, elapsed time.Duration) {
	m.rankingRequests.WithLabelValues(operation, mode).Inc()
	m.rankingDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.candidatesSeen.WithLabelValues(operation).Add(float64(candidates))
	m.resultsReturned.WithLabelValues(operation).Observe(float64(results))
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankingRequests,
		m.rankingDuration,
		m.candidatesSeen,
		m.resultsReturned,
	}
}
