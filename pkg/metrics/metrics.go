// Package metrics exposes Prometheus metrics for the client connection:
// message and byte counters per direction, reducer call outcomes, and
// decode failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "spacetimedb").
	Namespace string

	// Subsystem is the metrics subsystem (default: "client").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures metric registration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "spacetimedb",
		Subsystem: "client",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the connection metrics. A nil *Metrics is a valid no-op
// receiver so instrumentation can be left unconfigured.
type Metrics struct {
	messagesSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	bytesSent        prometheus.Counter
	bytesReceived    prometheus.Counter
	reducerCalls     *prometheus.CounterVec
	decodeErrors     prometheus.Counter
}

// New registers and returns the connection metrics.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_sent_total",
			Help:        "Total client messages sent, by message kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		messagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_received_total",
			Help:        "Total server messages received, by message kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Total bytes written to the transport",
			ConstLabels: config.ConstLabels,
		}),

		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_received_total",
			Help:        "Total bytes read from the transport",
			ConstLabels: config.ConstLabels,
		}),

		reducerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reducer_calls_total",
			Help:        "Total reducer calls, by reducer name",
			ConstLabels: config.ConstLabels,
		}, []string{"reducer"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_errors_total",
			Help:        "Total inbound frames that failed to decode",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordSent counts one outbound message of the given kind and its framed
// size.
func (m *Metrics) RecordSent(kind string, bytes int) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(kind).Inc()
	m.bytesSent.Add(float64(bytes))
}

// RecordReceived counts one inbound message of the given kind and its
// framed size.
func (m *Metrics) RecordReceived(kind string, bytes int) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(kind).Inc()
	m.bytesReceived.Add(float64(bytes))
}

// RecordReducerCall counts one reducer invocation.
func (m *Metrics) RecordReducerCall(reducer string) {
	if m == nil {
		return
	}
	m.reducerCalls.WithLabelValues(reducer).Inc()
}

// RecordDecodeError counts one inbound frame that failed to decode.
func (m *Metrics) RecordDecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}
