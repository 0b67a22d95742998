package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/erebus-edge/edgeprobe/pkg/stats"
)

func TestNewSummary(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 34, 56, 789000000, time.FixedZone("CEST", 2*3600))

	t.Run("with samples", func(t *testing.T) {
		s := model.NewSummary(end, "DE, Berlin, Berlin",
			stats.Describe([]float64{10.004, 20.126, 30.5}))
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("cannot marshal summary: %v", err)
		}
		want := `{"timestamp_unix":1714559696.789,"timestamp_utc":"2024-05-01T10:34:56.789000Z",` +
			`"region":"DE, Berlin, Berlin","p50":20.13,"p95":30.5,"p99":30.5,"samples":3}`
		if string(b) != want {
			t.Errorf("unexpected summary JSON:\n got %s\nwant %s", b, want)
		}
	})

	t.Run("without samples", func(t *testing.T) {
		s := model.NewSummary(end, "Error: unexpected status 500", stats.Describe(nil))
		b, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("cannot marshal summary: %v", err)
		}
		want := `{"timestamp_unix":1714559696.789,"timestamp_utc":"2024-05-01T10:34:56.789000Z",` +
			`"region":"Error: unexpected status 500","p50":null,"p95":null,"p99":null,"samples":0}`
		if string(b) != want {
			t.Errorf("unexpected summary JSON:\n got %s\nwant %s", b, want)
		}
	})
}

func TestNewPing(t *testing.T) {
	m := model.NewPing(time.Unix(1700000000, 500000000))
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("cannot marshal ping: %v", err)
	}
	if string(b) != `{"type":"ping","timestamp":1700000000.5}` {
		t.Errorf("unexpected ping JSON: %s", b)
	}
}
