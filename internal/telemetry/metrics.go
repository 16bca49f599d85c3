package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Plankit/internal/domain"
)

// Metrics — Prometheus метрики executor'а.
//
// Все методы безопасны для nil-получателя: executor без метрик
// просто ничего не пишет.
type Metrics struct {
	nodes       *prometheus.CounterVec
	recoveries  prometheus.Counter
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg.
// Если reg == nil, используется prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		nodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plankit_nodes_total",
			Help: "Executed plan nodes by kind and outcome",
		}, []string{"kind", "outcome"}),

		recoveries: f.NewCounter(prometheus.CounterOpts{
			Name: "plankit_recoveries_total",
			Help: "Recover nodes that switched to their fallback",
		}),

		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "plankit_runs_total",
			Help: "Finished pipeline runs by status",
		}, []string{"status"}),

		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plankit_run_duration_seconds",
			Help:    "Pipeline run duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"status"}),
	}
}

// ObserveNode учитывает завершение узла.
func (m *Metrics) ObserveNode(kind domain.NodeKind, phase domain.NodePhase) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(string(kind), string(phase)).Inc()
}

// ObserveRecovery учитывает переход recover на fallback.
func (m *Metrics) ObserveRecovery() {
	if m == nil {
		return
	}
	m.recoveries.Inc()
}

// ObserveRun учитывает завершение run.
func (m *Metrics) ObserveRun(status domain.RunStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(status)).Inc()
	m.runDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}
