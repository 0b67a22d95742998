package client

import (
	"context"
	"time"

	"github.com/erebus-edge/edgeprobe/pkg/probe1/spec"
)

// Locator returns a description of the probing host's location. It must
// not fail: lookup errors are described in the returned string.
type Locator interface {
	Region(ctx context.Context) string
}

// Config is the configuration for a Client.
type Config struct {
	// Endpoint is the WebSocket URL to probe (ws:// or wss://).
	Endpoint string

	// Interval is the time between two probes.
	Interval time.Duration

	// Length is the duration of the measurement.
	Length time.Duration

	// ProbeTimeout is how long a probe may wait for its echo before it is
	// counted as lost. Late echoes still produce samples.
	ProbeTimeout time.Duration

	// UpdateInterval is the period of the live updates sent to the Emitter.
	UpdateInterval time.Duration

	// Emitter is the interface used to emit the results of the test. It can be overridden
	// to provide a custom output.
	Emitter Emitter

	// Locator provides the region of the final summary.
	Locator Locator

	// NoVerify disables the TLS certificate verification.
	NoVerify bool
}

// DefaultConfig returns a Config probing the default endpoint with the
// default timings. Emitter and Locator are left nil and filled in by New.
func DefaultConfig() Config {
	return Config{
		Endpoint:       spec.DefaultEndpoint,
		Interval:       spec.DefaultInterval,
		Length:         spec.DefaultDuration,
		ProbeTimeout:   spec.DefaultProbeTimeout,
		UpdateInterval: spec.LiveUpdateInterval,
	}
}
