// Package models defines data structures for ValueScout
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OptionalFloat is a numeric field that an upstream source may omit or send
// in the wrong shape. Valid is false when the value was absent or unparseable;
// Value is then 0.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float wraps a known value. NaN and infinities are treated as absent.
func Float(v float64) OptionalFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return OptionalFloat{}
	}
	return OptionalFloat{Value: v, Valid: true}
}

// Missing returns an absent value.
func Missing() OptionalFloat {
	return OptionalFloat{}
}

// Or returns the value when present, otherwise def.
func (o OptionalFloat) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// Positive returns the value and true only when it is present and > 0.
func (o OptionalFloat) Positive() (float64, bool) {
	if !o.Valid || o.Value <= 0 {
		return 0, false
	}
	return o.Value, true
}

// PositiveOr returns the value when present and > 0, otherwise def.
func (o OptionalFloat) PositiveOr(def float64) float64 {
	if v, ok := o.Positive(); ok {
		return v
	}
	return def
}

// MarshalJSON writes null for an absent value.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON accepts numbers, numeric strings, and null / "" / "NA" as absent.
// It never fails on a wrong-shaped value; the field is simply left absent.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptionalFloat{}
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*o = Float(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = ParseFloat(s)
		return nil
	}
	*o = OptionalFloat{}
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller; an absent value is an empty cell.
func (o OptionalFloat) MarshalCSV() (string, error) {
	if !o.Valid {
		return "", nil
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (o *OptionalFloat) UnmarshalCSV(s string) error {
	*o = ParseFloat(s)
	return nil
}

// multiplierSuffixes covers screener abbreviations such as "1.52B" or "640.3M".
var multiplierSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// ParseFloat parses a loosely formatted number as shown by screeners and
// CSV files: "12.34", "1,234.5", "$10", "12.5%", "1.52B". Placeholders like
// "-", "N/A", "NA" and the empty string yield an absent value.
func ParseFloat(s string) OptionalFloat {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "-", "N/A", "NA", "NAN", "NONE", "NULL":
		return OptionalFloat{}
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	if n := len(s); n > 1 {
		if m, ok := multiplierSuffixes[s[n-1]]; ok {
			mult = m
			s = s[:n-1]
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return OptionalFloat{}
	}
	return Float(v * mult)
}
