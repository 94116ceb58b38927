package node

import "github.com/prometheus/client_golang/prometheus"

// Metrics aggregates protocol counters over every node sharing it.
type Metrics struct {
	// MessagesSent is the total number of transmissions, broadcasts
	// included.
	MessagesSent prometheus.Counter

	// MessagesReceived is the total number of decoded inbound messages.
	MessagesReceived prometheus.Counter

	// MessagesMalformed is the total number of dropped inbound payloads.
	MessagesMalformed prometheus.Counter

	// BytesSent is the total payload size sent, padding included.
	BytesSent prometheus.Counter

	// Relays is the number of relays labelled by whether the policy was in
	// mop-up mode.
	Relays *prometheus.CounterVec

	// CompletedNodes is the number of nodes whose own row is complete.
	CompletedNodes prometheus.Gauge

	// CompletionSeconds is the time from Start to a node's own row becoming
	// complete.
	CompletionSeconds prometheus.Histogram
}

// NewMetrics ...
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "messages_sent_total",
				Help:      "Total number of gossip transmissions",
			},
		),
		MessagesReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "messages_received_total",
				Help:      "Total number of decoded gossip messages",
			},
		),
		MessagesMalformed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "messages_malformed_total",
				Help:      "Total number of dropped malformed payloads",
			},
		),
		BytesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "bytes_sent_total",
				Help:      "Total number of payload bytes sent",
			},
		),
		Relays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "relays_total",
				Help:      "Total number of relays sent to neighbours",
			},
			[]string{"mode"},
		),
		CompletedNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "completed",
				Help:      "Number of nodes holding every contribution",
			},
		),
		CompletionSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "regka",
				Subsystem: "node",
				Name:      "completion_seconds",
				Help:      "Time from start to holding every contribution",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}
}

// Register ...
func (m *Metrics) Register(registry *prometheus.Registry) {
	registry.MustRegister(
		m.MessagesSent,
		m.MessagesReceived,
		m.MessagesMalformed,
		m.BytesSent,
		m.Relays,
		m.CompletedNodes,
		m.CompletionSeconds,
	)
}
