package model

import (
	"time"
)

// Message is the payload of every probe1 message. Probes carry Type "ping"
// and the send time; echoes carry Type "pong" and the send time of the probe
// they answer, copied verbatim.
type Message struct {
	// Type is the message type. Possible values are "ping" and "pong".
	Type string `json:"type"`

	// Timestamp is the probe's send time in seconds since the epoch. It is a
	// pointer so that a missing timestamp can be told apart from zero.
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// NewPing returns a probe message stamped with t.
func NewPing(t time.Time) Message {
	ts := EpochSeconds(t)
	return Message{
		Type:      "ping",
		Timestamp: &ts,
	}
}

// EpochSeconds converts t to fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// Counters are the per-session message counters kept by the protocol.
type Counters struct {
	// ProbesSent is the number of probes written to the connection.
	ProbesSent int64
	// EchoesReceived is the number of echoes turned into samples.
	EchoesReceived int64
	// Discarded is the number of inbound messages that were ignored.
	Discarded int64
	// Lost is the number of probes that received no echo within the probe
	// timeout.
	Lost int64
}
