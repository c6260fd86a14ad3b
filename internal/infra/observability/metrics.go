package observability

import (
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	sentimentRecords *prometheus.CounterVec
	tokenCacheHits   prometheus.Counter
	tokenCacheMisses prometheus.Counter
	requestsTotal    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		sentimentRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_sentiment_records_total",
				Help: "Total feedback records by sentiment label.",
			},
			[]string{"label"},
		),
		tokenCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_iam_token_cache_hits_total",
				Help: "Total IAM token cache hits.",
			},
		),
		tokenCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_iam_token_cache_misses_total",
				Help: "Total IAM token cache misses.",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_requests_total",
				Help: "Total chat messages processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrSentiment increments the sentiment record counter for a label.
func (m *Metrics) IncrSentiment(label domain.SentimentLabel) {
	m.sentimentRecords.WithLabelValues(string(label)).Inc()
}

// IncrTokenCacheHit increments the IAM token cache hit counter.
func (m *Metrics) IncrTokenCacheHit() {
	m.tokenCacheHits.Inc()
}

// IncrTokenCacheMiss increments the IAM token cache miss counter.
func (m *Metrics) IncrTokenCacheMiss() {
	m.tokenCacheMisses.Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetPortalSnapshot returns a snapshot of portal metrics suitable for
// the GET /v1/metrics/portal endpoint.
func (m *Metrics) GetPortalSnapshot() *domain.PortalMetrics {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "degraded")
	degraded := getCounterValue(m.requestsTotal, "degraded")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = degraded / totalRequests
	}

	external := map[string]float64{}
	for _, svc := range []string{"watsonx-iam", "watsonx", "nlu"} {
		if v := getCounterValue(m.externalErrors, svc); v > 0 {
			external[svc] = v
		}
	}

	sentiments := map[string]float64{}
	for _, label := range []domain.SentimentLabel{
		domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral,
		domain.SentimentUnavailable, domain.SentimentError,
	} {
		if v := getCounterValue(m.sentimentRecords, string(label)); v > 0 {
			sentiments[string(label)] = v
		}
	}

	return &domain.PortalMetrics{
		TotalRequests:   int64(totalRequests),
		ErrorRate:       errorRate,
		ExternalErrors:  external,
		SentimentCounts: sentiments,
		TokenCacheHits:  getPlainCounterValue(m.tokenCacheHits),
		TokenCacheMiss:  getPlainCounterValue(m.tokenCacheMisses),
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
