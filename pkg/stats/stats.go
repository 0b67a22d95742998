// Package stats computes descriptive statistics over RTT samples.
//
// Every function works on a private sorted copy of its input, so callers
// can pass a snapshot that other goroutines keep reading.
package stats

import (
	"math"
	"sort"
)

// Snapshot is the set of statistics shown while a session runs and used to
// build its final summary.
type Snapshot struct {
	Latest Value
	P50    Value
	P95    Value
	P99    Value
	Count  int
}

// Latest returns the last value of data.
func Latest(data []float64) Value {
	if len(data) == 0 {
		return Unavailable
	}
	return Value(data[len(data)-1])
}

// Median returns the median of data. With an even number of samples it is
// the mean of the two middle values.
func Median(data []float64) Value {
	if len(data) == 0 {
		return Unavailable
	}
	return median(sorted(data))
}

// Percentile returns the nearest-rank p-th percentile of data, with p in
// [0, 100]. The rank is round(p/100*N) with halves rounded to even, clamped
// to [1, N]. No interpolation takes place.
func Percentile(data []float64, p float64) Value {
	if len(data) == 0 {
		return Unavailable
	}
	return nearestRank(sorted(data), p)
}

// Describe computes a Snapshot over data.
func Describe(data []float64) Snapshot {
	if len(data) == 0 {
		return Snapshot{
			Latest: Unavailable,
			P50:    Unavailable,
			P95:    Unavailable,
			P99:    Unavailable,
		}
	}
	s := sorted(data)
	return Snapshot{
		Latest: Value(data[len(data)-1]),
		P50:    median(s),
		P95:    nearestRank(s, 95),
		P99:    nearestRank(s, 99),
		Count:  len(data),
	}
}

// RankIndex returns the zero-based index of the nearest-rank p-th percentile
// in a sorted slice of n > 0 elements.
func RankIndex(n int, p float64) int {
	k := int(math.RoundToEven(p / 100 * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k - 1
}

func nearestRank(s []float64, p float64) Value {
	return Value(s[RankIndex(len(s), p)])
}

func median(s []float64) Value {
	n := len(s)
	if n%2 == 1 {
		return Value(s[n/2])
	}
	return Value((s[n/2-1] + s[n/2]) / 2)
}

func sorted(data []float64) []float64 {
	s := make([]float64, len(data))
	copy(s, data)
	sort.Float64s(s)
	return s
}
