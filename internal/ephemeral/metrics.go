package ephemeral

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts failover and sweep activity.
type Metrics struct {
	fallbacks *prometheus.CounterVec
	swept     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "usercenter",
				Subsystem: "ephemeral",
				Name:      "fallback_total",
				Help:      "Operations passed on to the next backend, by operation, failing backend and reason.",
			},
			[]string{"op", "backend", "reason"},
		),
		swept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "usercenter",
				Subsystem: "ephemeral",
				Name:      "swept_total",
				Help:      "Expired in-memory entries removed by the sweeper.",
			},
		),
	}
	reg.MustRegister(m.fallbacks, m.swept)
	return m
}

func (m *Metrics) fallback(op, backend, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(op, backend, reason).Inc()
}

// ObserveSweep adds n removed entries.
func (m *Metrics) ObserveSweep(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}
