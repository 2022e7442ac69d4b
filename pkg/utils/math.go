package utils

import "math"

// SafeDivide returns numerator/denominator, or 0 when the denominator is 0.
// All ratio calculations (progress, margin, averages) go through here.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// RoundHalfUp rounds to the nearest integer, with .5 rounding away from zero
// for positive values.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundTo rounds v to the given number of decimal places (half up).
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}

// Percent returns round(part/whole*100), or 0 when whole is 0.
func Percent(part, whole int) int {
	return RoundHalfUp(SafeDivide(float64(part)*100, float64(whole)))
}
