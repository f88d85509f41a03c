// Package metrics exports sensor and bus activity to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/micro-nova/imx585-go/internal/hardware"
)

const namespace = "imx585"

// Metrics holds every collector. Each instance registers on its own
// registry so tests do not collide.
type Metrics struct {
	reg *prometheus.Registry

	busOps        *prometheus.CounterVec
	busLatency    *prometheus.HistogramVec
	streaming     prometheus.Gauge
	startFailures *prometheus.CounterVec
	controlValue  *prometheus.GaugeVec
	eventsDropped prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		busOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "operations_total",
			Help:      "Register bus operations by kind and result",
		}, []string{"op", "result"}),
		busLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "operation_seconds",
			Help:      "Register bus operation latency",
			Buckets:   prometheus.ExponentialBuckets(50e-6, 2, 10),
		}, []string{"op"}),
		streaming: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "streaming",
			Help:      "1 while the sensor is streaming",
		}),
		startFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "start_failures_total",
			Help:      "Stream start failures by sequence step",
		}, []string{"step"}),
		controlValue: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "control_value",
			Help:      "Current value of each sensor control",
		}, []string{"control"}),
		eventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "State events skipped for slow subscribers",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) SetStreaming(on bool) {
	if on {
		m.streaming.Set(1)
	} else {
		m.streaming.Set(0)
	}
}

func (m *Metrics) StartFailed(step string) {
	m.startFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) SetControl(name string, v int64) {
	m.controlValue.WithLabelValues(name).Set(float64(v))
}

func (m *Metrics) EventDropped() { m.eventsDropped.Inc() }

// Bus wraps a register bus and records every operation.
type Bus struct {
	hardware.Bus
	m *Metrics
}

// InstrumentBus returns b with operation counters and latency attached.
func (m *Metrics) InstrumentBus(b hardware.Bus) *Bus {
	return &Bus{Bus: b, m: m}
}

func (b *Bus) Read(ctx context.Context, addr hardware.Register) (byte, error) {
	start := time.Now()
	v, err := b.Bus.Read(ctx, addr)
	b.observe("read", start, err)
	return v, err
}

func (b *Bus) Write(ctx context.Context, addr hardware.Register, val byte) error {
	start := time.Now()
	err := b.Bus.Write(ctx, addr, val)
	b.observe("write", start, err)
	return err
}

func (b *Bus) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	b.m.busOps.WithLabelValues(op, result).Inc()
	b.m.busLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
