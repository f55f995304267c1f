package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchInFlight prometheus.Gauge
	scheduleLag      *prometheus.HistogramVec
	dueSweepTotal    *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	dispatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "worker",
			Name:      "dispatch_total",
			Help:      "Total dispatched submissions by status.",
		},
		[]string{"service", "status"},
	)
	dispatchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "broker",
			Subsystem: "worker",
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch handling duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	dispatchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "broker",
			Subsystem: "worker",
			Name:      "dispatch_in_flight",
			Help:      "Number of in-flight dispatch tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	scheduleLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "broker",
			Subsystem: "worker",
			Name:      "schedule_lag_seconds",
			Help:      "Delay between the resolved contact window opening and actual dispatch.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	dueSweepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "worker",
			Name:      "due_sweep_recovered_total",
			Help:      "Total scheduled submissions recovered by the startup due sweep.",
		},
		[]string{"service"},
	)

	registry.MustRegister(dispatchTotal, dispatchDuration, dispatchInFlight, scheduleLag, dueSweepTotal)

	return &WorkerMetrics{
		registry:         registry,
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		dispatchInFlight: dispatchInFlight,
		scheduleLag:      scheduleLag,
		dueSweepTotal:    dueSweepTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDispatch() {
	m.dispatchInFlight.Inc()
}

func (m *WorkerMetrics) FinishDispatch(service string, duration time.Duration, err error) {
	m.dispatchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.dispatchTotal.WithLabelValues(service, status).Inc()
	m.dispatchDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveScheduleLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.scheduleLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordDueSweep(service string, recovered int) {
	if recovered <= 0 {
		return
	}
	m.dueSweepTotal.WithLabelValues(service).Add(float64(recovered))
}
