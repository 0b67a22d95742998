// Package metrics declares the Prometheus metrics exported by edgeprobe.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesSent counts probe messages written to the connection.
	ProbesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edgeprobe_probes_sent_total",
		Help: "Number of probe messages sent.",
	})

	// EchoesReceived counts echoes that produced a sample.
	EchoesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edgeprobe_echoes_received_total",
		Help: "Number of echo messages turned into RTT samples.",
	})

	// MessagesDiscarded counts inbound messages that were ignored, by reason.
	MessagesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgeprobe_messages_discarded_total",
		Help: "Number of inbound messages discarded, by reason.",
	}, []string{"reason"})

	// ProbesLost counts probes left unanswered past the probe timeout.
	ProbesLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edgeprobe_probes_lost_total",
		Help: "Number of probes that received no echo within the probe timeout.",
	})

	// RTT is the distribution of measured round-trip times.
	RTT = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "edgeprobe_rtt_milliseconds",
		Help:    "Round-trip time of probe/echo pairs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// EchoRequests counts messages handled by the echo server, by result.
	EchoRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgeprobe_echo_requests_total",
		Help: "Number of messages handled by the echo server, by result.",
	}, []string{"result"})
)
