package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	transitionsTotal  *prometheus.CounterVec
	routingRunsTotal  *prometheus.CounterVec
	routingCandidates *prometheus.HistogramVec
	resolverRuleTotal *prometheus.CounterVec
}

func NewAPIMetrics(service string) *APIMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "broker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "broker",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total submission transition attempts by event and outcome.",
		},
		[]string{"service", "event", "status"},
	)
	routingRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "routing",
			Name:      "runs_total",
			Help:      "Total routing runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	routingCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "broker",
			Subsystem: "routing",
			Name:      "candidates_returned",
			Help:      "Distribution of candidates returned per routing run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	resolverRuleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "broker",
			Subsystem: "schedule",
			Name:      "resolver_rule_total",
			Help:      "Total contact-window resolutions by winning rule.",
		},
		[]string{"service", "rule"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		transitionsTotal,
		routingRunsTotal,
		routingCandidates,
		resolverRuleTotal,
	)

	return &APIMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		transitionsTotal:  transitionsTotal,
		routingRunsTotal:  routingRunsTotal,
		routingCandidates: routingCandidates,
		resolverRuleTotal: resolverRuleTotal,
	}
}

func (m *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *APIMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-submission paths so metric cardinality stays
// bounded.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/submissions/") {
		return path
	}
	if strings.HasSuffix(path, "/events") {
		return "/v1/submissions/{submission_id}/events"
	}
	return "/v1/submissions/{submission_id}"
}

func (m *APIMetrics) RecordTransition(service, event string, err error) {
	status := "success"
	if err != nil {
		status = "rejected"
	}
	m.transitionsTotal.WithLabelValues(service, event, status).Inc()
}

func (m *APIMetrics) RecordRoutingRun(service string, candidateCount int, err error) {
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case candidateCount == 0:
		outcome = "empty"
	}
	m.routingRunsTotal.WithLabelValues(service, outcome).Inc()
	if err == nil {
		m.routingCandidates.WithLabelValues(service).Observe(float64(candidateCount))
	}
}

func (m *APIMetrics) RecordResolverRule(service, rule string) {
	if rule == "" {
		rule = "default"
	}
	m.resolverRuleTotal.WithLabelValues(service, rule).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
