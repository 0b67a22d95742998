package stats

import (
	"math"
	"strconv"
)

// Value is a statistic in milliseconds. A statistic over zero samples is
// Unavailable, which is NaN underneath.
type Value float64

// Unavailable is the Value of any statistic computed over zero samples.
var Unavailable = Value(math.NaN())

// Valid reports whether v holds a number.
func (v Value) Valid() bool {
	return !math.IsNaN(float64(v))
}

// Float64 returns v as a float64 and whether it is valid.
func (v Value) Float64() (float64, bool) {
	return float64(v), v.Valid()
}

// Round returns v rounded to the given number of decimal places.
func (v Value) Round(places int) Value {
	if !v.Valid() {
		return v
	}
	p := math.Pow10(places)
	return Value(math.Round(float64(v)*p) / p)
}

// String formats v with two decimals, or "-" when unavailable.
func (v Value) String() string {
	if !v.Valid() {
		return "-"
	}
	return strconv.FormatFloat(float64(v), 'f', 2, 64)
}

// MarshalJSON encodes v as a JSON number, or null when unavailable.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(v), 'f', -1, 64), nil
}

// UnmarshalJSON decodes a JSON number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Unavailable
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}
