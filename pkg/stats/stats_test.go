package stats_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/erebus-edge/edgeprobe/pkg/stats"
)

func oneToTen() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		{name: "p95 of 1..10", data: oneToTen(), p: 95, want: 10},
		{name: "p50 of 1..10", data: oneToTen(), p: 50, want: 5},
		{name: "p99 of 1..10", data: oneToTen(), p: 99, want: 10},
		{name: "p0 clamps to the first rank", data: oneToTen(), p: 0, want: 1},
		{name: "p1 of 1..10", data: oneToTen(), p: 1, want: 1},
		{name: "half ranks round to even", data: []float64{1, 2, 3, 4, 5}, p: 50, want: 2},
		{name: "p70 of five samples", data: []float64{1, 2, 3, 4, 5}, p: 70, want: 4},
		{name: "unsorted input", data: []float64{30, 10, 20}, p: 100, want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stats.Percentile(tt.data, tt.p).Float64()
			if !ok {
				t.Fatalf("Percentile() unavailable, want %v", tt.want)
			}
			if got != tt.want {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.data, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_singleSample(t *testing.T) {
	for p := 1.0; p <= 100; p++ {
		if got := stats.Percentile([]float64{42.5}, p); float64(got) != 42.5 {
			t.Fatalf("Percentile([42.5], %v) = %v", p, got)
		}
	}
}

func TestPercentile_maxAtHundred(t *testing.T) {
	inputs := [][]float64{
		{1},
		{3, 1, 2},
		{0.5, 12.25, 7, 7, 99.9, 3},
		{5, 4, 3, 2, 1, 0, -1},
	}
	for _, data := range inputs {
		max := math.Inf(-1)
		for _, v := range data {
			max = math.Max(max, v)
		}
		if got := stats.Percentile(data, 100); float64(got) != max {
			t.Errorf("Percentile(%v, 100) = %v, want %v", data, got, max)
		}
	}
}

func TestRankIndex(t *testing.T) {
	for n := 1; n <= 200; n++ {
		for p := 0.0; p <= 100; p += 0.5 {
			i := stats.RankIndex(n, p)
			if i < 0 || i > n-1 {
				t.Fatalf("RankIndex(%d, %v) = %d out of range", n, p, i)
			}
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		data []float64
		want float64
	}{
		{data: []float64{10, 20, 30}, want: 20},
		{data: []float64{10, 20, 30, 40}, want: 25},
		{data: []float64{40, 10, 30, 20}, want: 25},
		{data: []float64{7}, want: 7},
	}
	for _, tt := range tests {
		if got := stats.Median(tt.data); float64(got) != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	if got := stats.Latest([]float64{3, 1, 2}); float64(got) != 2 {
		t.Errorf("Latest() = %v, want 2", got)
	}
}

func TestEmpty(t *testing.T) {
	if stats.Latest(nil).Valid() || stats.Median(nil).Valid() ||
		stats.Percentile(nil, 95).Valid() {
		t.Errorf("statistics over zero samples must be unavailable")
	}
	s := stats.Describe([]float64{})
	if s.Count != 0 || s.Latest.Valid() || s.P50.Valid() || s.P95.Valid() || s.P99.Valid() {
		t.Errorf("Describe(empty) = %+v", s)
	}
}

func TestDescribe_doesNotMutate(t *testing.T) {
	data := []float64{5, 3, 9, 1}
	s := stats.Describe(data)
	if data[0] != 5 || data[3] != 1 {
		t.Errorf("Describe() reordered its input: %v", data)
	}
	if s.Latest != 1 || s.P50 != 4 || s.P95 != 9 || s.P99 != 9 || s.Count != 4 {
		t.Errorf("Describe() = %+v", s)
	}
}

func TestValue(t *testing.T) {
	t.Run("formatting", func(t *testing.T) {
		if got := stats.Value(12.345).String(); got != "12.35" && got != "12.34" {
			t.Errorf("String() = %q", got)
		}
		if got := stats.Unavailable.String(); got != "-" {
			t.Errorf("Unavailable.String() = %q, want -", got)
		}
	})
	t.Run("json", func(t *testing.T) {
		b, err := json.Marshal(struct {
			A stats.Value `json:"a"`
			B stats.Value `json:"b"`
		}{A: stats.Value(1.5).Round(2), B: stats.Unavailable})
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		if string(b) != `{"a":1.5,"b":null}` {
			t.Errorf("Marshal() = %s", b)
		}
	})
	t.Run("round", func(t *testing.T) {
		if got := stats.Value(3.14159).Round(2); got != 3.14 {
			t.Errorf("Round(2) = %v, want 3.14", got)
		}
		if stats.Unavailable.Round(2).Valid() {
			t.Errorf("rounding an unavailable value must stay unavailable")
		}
	})
}
