package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/erebus-edge/edgeprobe/pkg/probe1/model"
	"github.com/erebus-edge/edgeprobe/pkg/stats"
)

func TestRenderTable(t *testing.T) {
	tests := []struct {
		name string
		s    stats.Snapshot
		want []string
	}{
		{
			name: "no samples",
			s:    stats.Describe(nil),
			want: []string{"Edge WebSocket Latency Monitor", "RTT (ms)", "p99 (ms)", " - ", " 0 "},
		},
		{
			name: "samples",
			s:    stats.Describe([]float64{10, 20, 30.456}),
			want: []string{"30.46", "20.00", " 3 "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderTable(tt.s)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("RenderTable() missing %q in:\n%s", w, got)
				}
			}
		})
	}
}

func TestHumanReadable(t *testing.T) {
	out := &bytes.Buffer{}
	summaryOut := &bytes.Buffer{}
	h := &HumanReadable{Out: out, SummaryOut: summaryOut, Live: true}

	h.OnUpdate(stats.Describe([]float64{1}))
	h.OnUpdate(stats.Describe([]float64{1, 2}))
	if !strings.Contains(out.String(), "\033[") {
		t.Errorf("second update did not redraw in place")
	}
	h.OnComplete(model.Counters{})
	if !strings.Contains(out.String(), "Latency test completed") {
		t.Errorf("missing completion message")
	}

	h.OnSummary(&model.Summary{Region: "DE, Berlin, Berlin", P50: stats.Unavailable,
		P95: stats.Unavailable, P99: stats.Unavailable})
	var decoded map[string]interface{}
	if err := json.Unmarshal(summaryOut.Bytes(), &decoded); err != nil {
		t.Fatalf("summary output is not JSON: %v", err)
	}
	if decoded["region"] != "DE, Berlin, Berlin" || decoded["p50"] != nil {
		t.Errorf("unexpected summary output: %s", summaryOut.String())
	}

	quiet := &bytes.Buffer{}
	h = &HumanReadable{Out: quiet}
	h.OnUpdate(stats.Describe([]float64{1}))
	h.OnDebug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("live table or debug output written while disabled: %q", quiet.String())
	}
}
