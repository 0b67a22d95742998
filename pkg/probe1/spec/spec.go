package spec

import "time"

const (
	// DefaultEndpoint is the edge endpoint probed when none is configured.
	DefaultEndpoint = "wss://edge-do-latency-test-19aca.v0id.me/"

	// DefaultInterval is the default time between two probe messages.
	DefaultInterval = 1 * time.Second

	// DefaultDuration is the default length of a measurement session.
	DefaultDuration = 30 * time.Second

	// DefaultProbeTimeout is how long a probe stays in flight before it is
	// counted as lost.
	DefaultProbeTimeout = 5 * time.Second

	// LiveUpdateInterval is the period of the live statistics updates.
	LiveUpdateInterval = 500 * time.Millisecond

	// WriteTimeout bounds a single probe write.
	WriteTimeout = 5 * time.Second

	// MaxMessageSize is the maximum accepted inbound message size.
	MaxMessageSize = 1 << 16

	// TypePing is the message type of probes.
	TypePing = "ping"
	// TypePong is the message type of echoes.
	TypePong = "pong"
)
