package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorageMetrics holds metrics for the Redis client, PostgreSQL queries and
// the circuit breakers guarding remote dependencies.
type StorageMetrics struct {
	RedisOpsTotal       *prometheus.CounterVec
	RedisOpDuration     *prometheus.HistogramVec
	RedisConnectionErrs prometheus.Counter
	BreakerState        *prometheus.GaugeVec
	BreakerStateChanges *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	DBErrorsTotal       *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics on the given registry.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		RedisOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis commands, by command and status.",
		}, []string{"operation", "status"}),
		RedisOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis commands in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"operation"}),
		RedisConnectionErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total number of failed Redis dials.",
		}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open), by component.",
		}, []string{"component"}),
		BreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state_changes_total",
			Help:      "Total number of circuit breaker transitions, by component and new state.",
		}, []string{"component", "state"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of PostgreSQL queries in seconds, by statement kind.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
		DBErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total number of failed PostgreSQL queries, by statement kind.",
		}, []string{"query"}),
	}

	reg.MustRegister(
		m.RedisOpsTotal, m.RedisOpDuration, m.RedisConnectionErrs,
		m.BreakerState, m.BreakerStateChanges,
		m.DBQueryDuration, m.DBErrorsTotal,
	)
	return m
}
