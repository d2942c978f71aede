package service

import "math"

// round4 rounds return values to 4 decimal places before persisting or
// comparing them.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// round2 rounds percentile values to 2 decimal places for presentation.
func round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
