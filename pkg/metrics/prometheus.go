// Package metrics provides Prometheus metrics for the ringcast service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the ringcast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingest Metrics - UDP datagrams and decoding
	datagramsReceived     prometheus.Counter
	datagramsUnrecognized prometheus.Counter
	eventsDecoded         *prometheus.CounterVec
	eventsByCategory      *prometheus.CounterVec
	eventLatency          prometheus.Histogram

	// Control-Protocol Metrics - requests against the production tool
	controlRequests    *prometheus.CounterVec
	controlErrors      *prometheus.CounterVec
	connectionStatus   *prometheus.GaugeVec
	controlRequestTime prometheus.Histogram

	// Recording Lifecycle Metrics
	recordingsStarted prometheus.Counter
	recordingsStopped prometheus.Counter
	orchestratorState prometheus.Gauge
	replaysSaved      prometheus.Counter
	replaysNotFound   prometheus.Counter

	// Correlation Metrics - session bookkeeping
	sessionsStarted *prometheus.CounterVec
	sessionsEnded   *prometheus.CounterVec
	correlationGaps prometheus.Counter

	// Broadcast Hub Metrics
	broadcastDelivered prometheus.Counter
	broadcastDropped   prometheus.Counter
	hubSubscribers     prometheus.Gauge

	// Persistence Metrics
	eventsPersisted prometheus.Counter
	persistErrors   prometheus.Counter
	persistLatency  prometheus.Histogram

	// HTTP API Metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ringcast",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one metric per concern, initialized in one place
	auto := promauto.With(m.registry)

	// Ingest metrics
	m.datagramsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "datagrams_received_total",
		Help:      "Total number of UDP datagrams received",
	})

	m.datagramsUnrecognized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "datagrams_unrecognized_total",
		Help:      "Total number of datagrams decoded to raw events",
	})

	m.eventsDecoded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_decoded_total",
			Help:      "Total number of decoded events by kind",
		},
		[]string{"kind"},
	)

	m.eventsByCategory = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_by_category_total",
			Help:      "Total number of processed events by category",
		},
		[]string{"category"},
	)

	m.eventLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_processing_seconds",
		Help:      "Per-event pipeline processing latency in seconds",
		Buckets:   m.histogramBuckets,
	})

	// Control-protocol metrics
	m.controlRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "control_requests_total",
			Help:      "Total control-protocol requests by connection and request type",
		},
		[]string{"connection", "request"},
	)

	m.controlErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "control_errors_total",
			Help:      "Total control-protocol errors by connection and error kind",
		},
		[]string{"connection", "kind"},
	)

	m.connectionStatus = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "connection_status",
			Help:      "Control-protocol connection status code per named connection",
		},
		[]string{"connection"},
	)

	m.controlRequestTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "control_request_seconds",
		Help:      "Control-protocol request round-trip time in seconds",
		Buckets:   m.histogramBuckets,
	})

	// Recording lifecycle metrics
	m.recordingsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recordings_started_total",
		Help:      "Total number of recordings started",
	})

	m.recordingsStopped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recordings_stopped_total",
		Help:      "Total number of recordings stopped",
	})

	m.orchestratorState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "orchestrator_state",
		Help:      "Recording orchestrator state code",
	})

	m.replaysSaved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replays_saved_total",
		Help:      "Total replay-buffer saves that resolved to a file",
	})

	m.replaysNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replays_not_found_total",
		Help:      "Total replay polls exhausted without a file",
	})

	// Correlation metrics
	m.sessionsStarted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sessions_started_total",
			Help:      "Total correlation sessions started by kind",
		},
		[]string{"kind"},
	)

	m.sessionsEnded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sessions_ended_total",
			Help:      "Total correlation sessions ended by kind",
		},
		[]string{"kind"},
	)

	m.correlationGaps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "correlation_gaps_total",
		Help:      "Total session interruptions detected",
	})

	// Broadcast hub metrics
	m.broadcastDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_delivered_total",
		Help:      "Total events delivered to UI subscribers",
	})

	m.broadcastDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_dropped_total",
		Help:      "Total events dropped for slow UI subscribers",
	})

	m.hubSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_subscribers",
		Help:      "Current number of live UI subscribers",
	})

	// Persistence metrics
	m.eventsPersisted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_persisted_total",
		Help:      "Total event records written to the store",
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Total persistence failures",
	})

	m.persistLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_seconds",
		Help:      "Persistence write latency in seconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP API metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP API requests by endpoint, method, and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	m.httpDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_seconds",
			Help:      "HTTP API request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method"},
	)
}

// RecordDatagramReceived increments the received-datagram counter.
func RecordDatagramReceived() {
	globalManager.datagramsReceived.Inc()
}

// RecordDatagramUnrecognized increments the unrecognized-datagram counter.
func RecordDatagramUnrecognized() {
	globalManager.datagramsUnrecognized.Inc()
}

// RecordEventDecoded counts a decoded event by kind.
func RecordEventDecoded(kind string) {
	globalManager.eventsDecoded.WithLabelValues(kind).Inc()
}

// RecordEventCategory counts a processed event by category.
func RecordEventCategory(category string) {
	globalManager.eventsByCategory.WithLabelValues(category).Inc()
}

// RecordEventProcessingLatency observes one event's pipeline latency.
func RecordEventProcessingLatency(seconds float64) {
	globalManager.eventLatency.Observe(seconds)
}

// RecordControlRequest counts a control-protocol request.
func RecordControlRequest(connection, request string) {
	globalManager.controlRequests.WithLabelValues(connection, request).Inc()
}

// RecordControlError counts a control-protocol error by kind.
func RecordControlError(connection, kind string) {
	globalManager.controlErrors.WithLabelValues(connection, kind).Inc()
}

// UpdateConnectionStatus publishes a connection's status code.
func UpdateConnectionStatus(connection string, status int) {
	globalManager.connectionStatus.WithLabelValues(connection).Set(float64(status))
}

// RecordControlRequestTime observes a request round trip.
func RecordControlRequestTime(seconds float64) {
	globalManager.controlRequestTime.Observe(seconds)
}

// RecordRecordingStarted increments the started-recordings counter.
func RecordRecordingStarted() {
	globalManager.recordingsStarted.Inc()
}

// RecordRecordingStopped increments the stopped-recordings counter.
func RecordRecordingStopped() {
	globalManager.recordingsStopped.Inc()
}

// UpdateOrchestratorState publishes the orchestrator state code.
func UpdateOrchestratorState(state int) {
	globalManager.orchestratorState.Set(float64(state))
}

// RecordReplaySaved counts a replay save that resolved to a file.
func RecordReplaySaved() {
	globalManager.replaysSaved.Inc()
}

// RecordReplayNotFound counts a replay poll that hit its deadline.
func RecordReplayNotFound() {
	globalManager.replaysNotFound.Inc()
}

// RecordSessionStarted counts a correlation session start by kind.
func RecordSessionStarted(kind string) {
	globalManager.sessionsStarted.WithLabelValues(kind).Inc()
}

// RecordSessionEnded counts a correlation session end by kind.
func RecordSessionEnded(kind string) {
	globalManager.sessionsEnded.WithLabelValues(kind).Inc()
}

// RecordCorrelationGap counts a detected session interruption.
func RecordCorrelationGap() {
	globalManager.correlationGaps.Inc()
}

// RecordBroadcastDelivered counts an event handed to a subscriber.
func RecordBroadcastDelivered() {
	globalManager.broadcastDelivered.Inc()
}

// RecordBroadcastDropped counts an event dropped for a slow subscriber.
func RecordBroadcastDropped() {
	globalManager.broadcastDropped.Inc()
}

// UpdateHubSubscribers publishes the live subscriber count.
func UpdateHubSubscribers(count int) {
	globalManager.hubSubscribers.Set(float64(count))
}

// RecordEventPersisted counts an event record written to the store.
func RecordEventPersisted() {
	globalManager.eventsPersisted.Inc()
}

// RecordPersistError counts a persistence failure.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordPersistLatency observes a persistence write.
func RecordPersistLatency(seconds float64) {
	globalManager.persistLatency.Observe(seconds)
}

// RecordHTTPRequest counts an HTTP API request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP API request's duration.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// GetRegistry returns the custom registry backing the global manager, for
// exposing via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
