package model

import (
	"time"

	"github.com/erebus-edge/edgeprobe/pkg/stats"
)

// UTCLayout is the layout of Summary.TimestampUTC.
const UTCLayout = "2006-01-02T15:04:05.000000Z"

// Summary is the record emitted once at the end of a measurement session.
type Summary struct {
	// TimestampUnix is the time the summary was produced, in seconds since
	// the epoch.
	TimestampUnix float64 `json:"timestamp_unix"`
	// TimestampUTC is the same time as an ISO-8601 UTC string.
	TimestampUTC string `json:"timestamp_utc"`

	// Region is the "country, city, region" of the probing host, or the
	// description of the geolocation failure.
	Region string `json:"region"`

	// P50, P95 and P99 are RTT percentiles in milliseconds, rounded to two
	// decimals. They are null when no sample was collected.
	P50 stats.Value `json:"p50"`
	P95 stats.Value `json:"p95"`
	P99 stats.Value `json:"p99"`

	// Samples is the number of RTT samples collected.
	Samples int `json:"samples"`
}

// NewSummary builds the Summary of a session ended at t.
func NewSummary(t time.Time, region string, s stats.Snapshot) *Summary {
	return &Summary{
		TimestampUnix: EpochSeconds(t),
		TimestampUTC:  t.UTC().Format(UTCLayout),
		Region:        region,
		P50:           s.P50.Round(2),
		P95:           s.P95.Round(2),
		P99:           s.P99.Round(2),
		Samples:       s.Count,
	}
}
