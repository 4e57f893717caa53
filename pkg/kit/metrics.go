package kit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelVerb   = "verb"
	labelStatus = "status"
)

// Metrics covers the line protocol: connection churn and per-verb
// command accounting. All methods tolerate a nil receiver so tests and
// callers without a registry can skip instrumentation.
type Metrics struct {
	Connections  prometheus.Counter
	ActiveConns  prometheus.Gauge
	Commands     *prometheus.CounterVec
	CommandTime  *prometheus.HistogramVec
	IdleTimeouts prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockline_connections_total",
			Help: "Accepted client connections",
		}),
		ActiveConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockline_active_connections",
			Help: "Currently open client connections",
		}),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockline_commands_total",
				Help: "Commands processed, by verb and outcome",
			},
			[]string{labelVerb, labelStatus},
		),
		CommandTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "stockline_command_duration_seconds",
				Help: "Command handling latency",
			},
			[]string{labelVerb},
		),
		IdleTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockline_idle_timeouts_total",
			Help: "Connections closed by the idle monitor",
		}),
	}

	reg.MustRegister(m.Connections, m.ActiveConns, m.Commands, m.CommandTime, m.IdleTimeouts)
	return m
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
	m.ActiveConns.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.ActiveConns.Dec()
}

func (m *Metrics) ObserveCommand(verb, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(verb, status).Inc()
	m.CommandTime.WithLabelValues(verb).Observe(d.Seconds())
}

func (m *Metrics) IdleTimeout() {
	if m == nil {
		return
	}
	m.IdleTimeouts.Inc()
}
