package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics tracks the session and dashboard flows. It satisfies
// app.Telemetry.
type DashboardMetrics struct {
	LoginAttempts   *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	Restores        *prometheus.CounterVec
	ActiveConsoles  prometheus.Gauge
}

// NewDashboardMetrics creates and registers dashboard metrics on the given registry.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	m := &DashboardMetrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts, by outcome.",
		}, []string{"outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Total number of dashboard refreshes, by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of dashboard fetches in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 10},
		}),
		Restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "restores_total",
			Help:      "Total number of persisted session restores, by outcome.",
		}, []string{"outcome"}),
		ActiveConsoles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "active_consoles",
			Help:      "Number of client consoles held in memory.",
		}),
	}

	reg.MustRegister(m.LoginAttempts, m.Refreshes, m.RefreshDuration, m.Restores, m.ActiveConsoles)
	return m
}

func (m *DashboardMetrics) LoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *DashboardMetrics) Refresh(outcome string, elapsed time.Duration) {
	m.Refreshes.WithLabelValues(outcome).Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
}

func (m *DashboardMetrics) Restore(outcome string) {
	m.Restores.WithLabelValues(outcome).Inc()
}

func (m *DashboardMetrics) ConsolesActive(n int) {
	m.ActiveConsoles.Set(float64(n))
}
