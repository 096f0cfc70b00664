// Package metrics provides Prometheus metrics for the raffle client and stub backend.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorKind classifies a failed client dispatch.
type ErrorKind string

// Client error kinds.
const (
	KindTransport ErrorKind = "transport"
	KindHTTP      ErrorKind = "http"
	KindDecode    ErrorKind = "decode"
	KindStore     ErrorKind = "store"
	KindEncode    ErrorKind = "encode"
)

func (k ErrorKind) valid() bool {
	switch k {
	case KindTransport, KindHTTP, KindDecode, KindStore, KindEncode:
		return true
	}
	return false
}

// Manager owns every metric exported by the raffle binaries.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Client dispatch metrics
	clientRequests        *prometheus.CounterVec
	clientRequestDuration *prometheus.HistogramVec
	clientErrors          *prometheus.CounterVec
	tokenStoreReads       *prometheus.CounterVec

	// Stub backend HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Raffle state
	participantsTotal    prometheus.Gauge
	participantsVerified prometheus.Gauge
	winnersTotal         prometheus.Gauge

	// Notification queue and workers
	notifyQueueSize     prometheus.Gauge
	notifyQueueCapacity prometheus.Gauge
	notifyEnqueued      *prometheus.CounterVec
	notifyDelivered     *prometheus.CounterVec
	notifyDuration      *prometheus.HistogramVec
	notifyWorkers       prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "raffle",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.clientRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_requests_total",
		Help:        "Total number of API calls issued by the client, by endpoint, method and status code",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.clientRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_request_duration_milliseconds",
		Help:        "Round-trip time of API calls in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method"})

	m.clientErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "client_errors_total",
		Help:        "Failed API calls by endpoint and failure kind",
		ConstLabels: constLabels,
	}, []string{"endpoint", "kind"})

	m.tokenStoreReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "token_store_reads_total",
		Help:        "Bearer token lookups by store and result (hit, miss, error)",
		ConstLabels: constLabels,
	}, []string{"store", "result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests served by the stub backend",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Stub backend request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "Stub backend error responses by endpoint, method and error type",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.participantsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "participants",
		Help:        "Registered non-admin participants",
		ConstLabels: constLabels,
	})

	m.participantsVerified = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "participants_verified",
		Help:        "Participants with a verified email (eligible for the draw)",
		ConstLabels: constLabels,
	})

	m.winnersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "winners",
		Help:        "Winners drawn so far",
		ConstLabels: constLabels,
	})

	m.notifyQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_queue_size",
		Help:        "Notifications waiting for a worker",
		ConstLabels: constLabels,
	})

	m.notifyQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_queue_capacity",
		Help:        "Maximum number of queued notifications",
		ConstLabels: constLabels,
	})

	m.notifyEnqueued = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notifications_enqueued_total",
		Help:        "Enqueue attempts by notification kind and result (ok, full, closed, cancelled)",
		ConstLabels: constLabels,
	}, []string{"kind", "result"})

	m.notifyDelivered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notifications_delivered_total",
		Help:        "Delivery attempts by notification kind and result (ok, error, duplicate)",
		ConstLabels: constLabels,
	}, []string{"kind", "result"})

	m.notifyDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_delivery_duration_milliseconds",
		Help:        "Time spent delivering one notification in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.notifyWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_workers",
		Help:        "Running notification workers",
		ConstLabels: constLabels,
	})
}

// RecordClientRequest counts one completed round trip and its latency.
func (m *Manager) RecordClientRequest(endpoint, method string, statusCode int, durationMs float64) {
	if !m.enabled {
		return
	}
	m.clientRequests.WithLabelValues(endpoint, method, fmt.Sprint(statusCode)).Inc()
	m.clientRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// RecordClientError counts a failed dispatch. Unknown kinds are rejected.
func (m *Manager) RecordClientError(endpoint string, kind ErrorKind) error {
	if !kind.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownErrorKind, kind)
	}
	if !m.enabled {
		return nil
	}
	m.clientErrors.WithLabelValues(endpoint, string(kind)).Inc()
	return nil
}

// RecordTokenRead counts a token lookup; result is hit, miss or error.
func (m *Manager) RecordTokenRead(store, result string) {
	if !m.enabled {
		return
	}
	m.tokenStoreReads.WithLabelValues(store, result).Inc()
}

// RecordHTTPRequest counts a request served by the stub backend.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts an error response served by the stub backend.
func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateParticipants sets the participant gauges.
func (m *Manager) UpdateParticipants(total, verified int) {
	if !m.enabled {
		return
	}
	m.participantsTotal.Set(float64(total))
	m.participantsVerified.Set(float64(verified))
}

// UpdateWinners sets the winners gauge.
func (m *Manager) UpdateWinners(count int) {
	if !m.enabled {
		return
	}
	m.winnersTotal.Set(float64(count))
}

// UpdateNotifyQueue sets the notification queue gauges.
func (m *Manager) UpdateNotifyQueue(size, capacity int) {
	if !m.enabled {
		return
	}
	m.notifyQueueSize.Set(float64(size))
	m.notifyQueueCapacity.Set(float64(capacity))
}

// RecordNotifyEnqueue counts an enqueue attempt by kind and result.
func (m *Manager) RecordNotifyEnqueue(kind, result string) {
	if !m.enabled {
		return
	}
	m.notifyEnqueued.WithLabelValues(kind, result).Inc()
}

// RecordNotifyDelivery counts a delivery attempt and its latency.
func (m *Manager) RecordNotifyDelivery(kind, result string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.notifyDelivered.WithLabelValues(kind, result).Inc()
	m.notifyDuration.WithLabelValues(kind).Observe(durationMs)
}

// UpdateNotifyWorkers sets the running worker gauge.
func (m *Manager) UpdateNotifyWorkers(count int) {
	if !m.enabled {
		return
	}
	m.notifyWorkers.Set(float64(count))
}

// Package-level helpers on the global manager.

// RecordClientRequest records a client round trip on the global manager.
func RecordClientRequest(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.RecordClientRequest(endpoint, method, statusCode, durationMs)
}

// RecordClientError records a failed dispatch on the global manager.
func RecordClientError(endpoint string, kind ErrorKind) {
	_ = globalManager.RecordClientError(endpoint, kind)
}

// RecordTokenRead records a token lookup on the global manager.
func RecordTokenRead(store, result string) {
	globalManager.RecordTokenRead(store, result)
}

// RecordHTTPRequest records a stub backend request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records a stub backend error on the global manager.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}

// UpdateParticipants sets the participant gauges on the global manager.
func UpdateParticipants(total, verified int) {
	globalManager.UpdateParticipants(total, verified)
}

// UpdateWinners sets the winners gauge on the global manager.
func UpdateWinners(count int) {
	globalManager.UpdateWinners(count)
}

// UpdateNotifyQueue sets the notification queue gauges on the global manager.
func UpdateNotifyQueue(size, capacity int) {
	globalManager.UpdateNotifyQueue(size, capacity)
}

// RecordNotifyEnqueue counts an enqueue attempt on the global manager.
func RecordNotifyEnqueue(kind, result string) {
	globalManager.RecordNotifyEnqueue(kind, result)
}

// RecordNotifyDelivery counts a delivery attempt on the global manager.
func RecordNotifyDelivery(kind, result string, durationMs float64) {
	globalManager.RecordNotifyDelivery(kind, result, durationMs)
}

// UpdateNotifyWorkers sets the running worker gauge on the global manager.
func UpdateNotifyWorkers(count int) {
	globalManager.UpdateNotifyWorkers(count)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
