// Package metrics exports session activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/orrery/internal/playback"
)

const namespace = "orrery"

// Collector observes a session. It satisfies engine.Observer.
type Collector struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	commands      *prometheus.CounterVec
	buildDuration prometheus.Histogram
	elapsed       prometheus.Gauge
	running       prometheus.Gauge
	clients       prometheus.Gauge
	rejected      *prometheus.CounterVec
}

// NewCollector registers all collectors on reg. A nil reg gets a fresh
// registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Collector{
		registry: reg,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of clock ticks",
		}),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Playback commands applied",
			},
			[]string{"command"},
		),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_build_duration_seconds",
			Help:      "Time spent building one snapshot",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elapsed_seconds",
			Help:      "Simulated time on the playback clock",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while the clock is running",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected snapshot stream clients",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_rejected_total",
				Help:      "HTTP requests rejected by the server",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(m.ticks, m.commands, m.buildDuration, m.elapsed, m.running, m.clients, m.rejected)
	return m
}

func (m *Collector) Registry() *prometheus.Registry { return m.registry }

func (m *Collector) OnTick(clock playback.Clock, built time.Duration) {
	m.ticks.Inc()
	m.buildDuration.Observe(built.Seconds())
	m.setClock(clock)
}

func (m *Collector) OnCommand(cmd playback.Command) {
	m.commands.WithLabelValues(string(cmd)).Inc()
}

// SetClock records the clock without counting a tick.
func (m *Collector) SetClock(clock playback.Clock) { m.setClock(clock) }

func (m *Collector) setClock(clock playback.Clock) {
	m.elapsed.Set(clock.Elapsed)
	if clock.Running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}

func (m *Collector) ClientConnected()    { m.clients.Inc() }
func (m *Collector) ClientDisconnected() { m.clients.Dec() }

// Rejected counts a refused request, e.g. "rate_limit" or "bad_command".
func (m *Collector) Rejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
