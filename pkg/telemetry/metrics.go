package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the mission engine.
type Metrics struct {
	config MetricsConfig

	// Mission run metrics
	missionsStarted   *prometheus.CounterVec
	missionsCompleted *prometheus.CounterVec
	missionDuration   *prometheus.HistogramVec

	// Behavior metrics
	behaviorExecutions *prometheus.CounterVec
	behaviorDuration   *prometheus.HistogramVec

	// Preemption metrics
	preemptionRequests prometheus.Counter

	// Report metrics
	reportEntries *prometheus.CounterVec

	// System metrics
	activeMissions prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		missionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "missions_started_total",
				Help:      "Total number of mission executions started",
			},
			[]string{"mission"},
		),
		missionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "missions_completed_total",
				Help:      "Total number of mission executions completed, by outcome",
			},
			[]string{"mission", "outcome"},
		),
		missionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mission_duration_seconds",
				Help:      "Duration of mission executions in seconds",
				Buckets:   buckets,
			},
			[]string{"mission", "outcome"},
		),

		behaviorExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "behavior_executions_total",
				Help:      "Total number of behavior executions, by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		behaviorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "behavior_duration_seconds",
				Help:      "Duration of behavior executions in seconds",
				Buckets:   buckets,
			},
			[]string{"type"},
		),

		preemptionRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "preemption_requests_total",
				Help:      "Total number of preemption requests issued to running missions",
			},
		),

		reportEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_entries_total",
				Help:      "Total number of report entries emitted, by level",
			},
			[]string{"level"},
		),

		activeMissions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_missions",
				Help:      "Current number of missions executing",
			},
		),
	}

	registry.MustRegister(
		m.missionsStarted,
		m.missionsCompleted,
		m.missionDuration,
		m.behaviorExecutions,
		m.behaviorDuration,
		m.preemptionRequests,
		m.reportEntries,
		m.activeMissions,
	)

	return m, nil
}

// RecordMissionStarted increments the counter for started missions.
func (m *Metrics) RecordMissionStarted(mission string) {
	if m.missionsStarted == nil {
		return
	}
	m.missionsStarted.WithLabelValues(mission).Inc()
	m.activeMissions.Inc()
}

// RecordMissionCompleted records a completed mission with its outcome and duration.
func (m *Metrics) RecordMissionCompleted(mission, outcome string, duration time.Duration) {
	if m.missionsCompleted == nil {
		return
	}
	m.missionsCompleted.WithLabelValues(mission, outcome).Inc()
	m.missionDuration.WithLabelValues(mission, outcome).Observe(duration.Seconds())
	m.activeMissions.Dec()
}

// RecordBehaviorExecution records a single behavior execution.
func (m *Metrics) RecordBehaviorExecution(behaviorType, outcome string, duration time.Duration) {
	if m.behaviorExecutions == nil {
		return
	}
	m.behaviorExecutions.WithLabelValues(behaviorType, outcome).Inc()
	m.behaviorDuration.WithLabelValues(behaviorType).Observe(duration.Seconds())
}

// RecordPreemptionRequest counts a preemption request.
func (m *Metrics) RecordPreemptionRequest() {
	if m.preemptionRequests == nil {
		return
	}
	m.preemptionRequests.Inc()
}

// RecordReportEntry counts an emitted report entry.
func (m *Metrics) RecordReportEntry(level string) {
	if m.reportEntries == nil {
		return
	}
	m.reportEntries.WithLabelValues(level).Inc()
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled || m.registry == nil {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}
	if m.config.ListenAddress == "" {
		return fmt.Errorf("metrics listen address is required")
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	go func() {
		// Error intentionally unhandled here: the server lives for the
		// process lifetime and failures surface via the health of /metrics.
		_ = http.ListenAndServe(m.config.ListenAddress, mux)
	}()

	return nil
}

// Registry returns the underlying Prometheus registry, nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
