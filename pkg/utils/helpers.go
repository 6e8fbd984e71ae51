package utils

import (
	"math"
)

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// ClampLimit bounds a requested page size, falling back to def when out of range
func ClampLimit(limit, def, max int) int {
	if limit < 1 || limit > max {
		return def
	}
	return limit
}
