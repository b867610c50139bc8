package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Trading metrics
	TradesTotal     *prometheus.CounterVec
	TradesRejected  *prometheus.CounterVec
	OrdersTriggered *prometheus.CounterVec
	SkillsUnlocked  *prometheus.CounterVec

	// Sync metrics
	SyncTotal    *prometheus.CounterVec
	SyncDuration prometheus.Histogram
	SyncDropped  prometheus.Counter

	// Price feed metrics
	PriceTicksTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics
var metricsOnce sync.Once

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		TradesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "engine",
				Name:      "trades_total",
				Help:      "Total number of executed trade operations",
			},
			[]string{"operation", "asset"},
		),
		TradesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "engine",
				Name:      "trades_rejected_total",
				Help:      "Total number of trade operations rejected by a business rule",
			},
			[]string{"reason"},
		),
		OrdersTriggered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "engine",
				Name:      "orders_triggered_total",
				Help:      "Total number of conditional orders triggered by price ticks",
			},
			[]string{"type", "asset"},
		),
		SkillsUnlocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "engine",
				Name:      "skills_unlocked_total",
				Help:      "Total number of skill unlocks",
			},
			[]string{"skill"},
		),

		SyncTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "sync",
				Name:      "pushes_total",
				Help:      "Total number of snapshot pushes to the sync backend",
			},
			[]string{"status"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "tradequest",
				Subsystem: "sync",
				Name:      "push_duration_seconds",
				Help:      "Duration of snapshot pushes in seconds",
				Buckets:   defaultBuckets,
			},
		),
		SyncDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "sync",
				Name:      "dropped_total",
				Help:      "Total number of snapshots dropped because the sync queue was full",
			},
		),

		PriceTicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "pricefeed",
				Name:      "ticks_total",
				Help:      "Total number of price ticks processed",
			},
			[]string{"asset"},
		),

		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradequest",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradequest",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradequest",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradequest",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tradequest",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradequest",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics(nil)
	})
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordTrade records an executed trade operation
func (m *Metrics) RecordTrade(operation, asset string) {
	m.TradesTotal.WithLabelValues(operation, asset).Inc()
}

// RecordTradeRejected records a trade rejected by a business rule
func (m *Metrics) RecordTradeRejected(reason string) {
	m.TradesRejected.WithLabelValues(reason).Inc()
}

// RecordOrderTriggered records a triggered conditional order
func (m *Metrics) RecordOrderTriggered(orderType, asset string) {
	m.OrdersTriggered.WithLabelValues(orderType, asset).Inc()
}

// RecordSkillUnlocked records a skill unlock
func (m *Metrics) RecordSkillUnlocked(skill string) {
	m.SkillsUnlocked.WithLabelValues(skill).Inc()
}

// RecordSync records a snapshot push outcome
func (m *Metrics) RecordSync(status string, duration time.Duration) {
	m.SyncTotal.WithLabelValues(status).Inc()
	m.SyncDuration.Observe(duration.Seconds())
}

// RecordSyncDropped records a snapshot dropped on enqueue
func (m *Metrics) RecordSyncDropped() {
	m.SyncDropped.Inc()
}

// RecordPriceTick records one processed price tick
func (m *Metrics) RecordPriceTick(asset string) {
	m.PriceTicksTotal.WithLabelValues(asset).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// ObserveSync records the sync push duration and status
func (t *Timer) ObserveSync(status string) {
	t.metrics.RecordSync(status, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
