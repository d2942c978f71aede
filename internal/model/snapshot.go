package model

import (
	"fmt"
	"time"
)

// Horizon is a trailing-return lookback window.
type Horizon string

const (
	HorizonYTD Horizon = "ytd"
	Horizon1Y  Horizon = "1y"
	Horizon3Y  Horizon = "3y"
	Horizon5Y  Horizon = "5y"
)

// Horizons lists all supported horizons.
var Horizons = []Horizon{HorizonYTD, Horizon1Y, Horizon3Y, Horizon5Y}

// ParseHorizon validates and converts a horizon string.
func ParseHorizon(s string) (Horizon, error) {
	switch Horizon(s) {
	case HorizonYTD, Horizon1Y, Horizon3Y, Horizon5Y:
		return Horizon(s), nil
	}
	return "", fmt.Errorf("invalid horizon: %q (must be one of ytd, 1y, 3y, 5y)", s)
}

// ReturnSnapshot is one row of the append-only trailing-return time series
// for a fund/class. Return values are nil when the upstream source did not
// report them. Eligibility flags mark whether the fund has existed long
// enough for the corresponding horizon; YTD has no eligibility gate.
type ReturnSnapshot struct {
	ID               string
	ProjID           string
	ClassAbbr        string
	AsOfDate         time.Time
	YTDReturn        *float64
	Trailing1YReturn *float64
	Trailing3YReturn *float64
	Trailing5YReturn *float64
	Eligible1Y       bool
	Eligible3Y       bool
	Eligible5Y       bool
}

// Return returns the trailing return for the given horizon, or nil.
func (s ReturnSnapshot) Return(h Horizon) *float64 {
	switch h {
	case HorizonYTD:
		return s.YTDReturn
	case Horizon1Y:
		return s.Trailing1YReturn
	case Horizon3Y:
		return s.Trailing3YReturn
	case Horizon5Y:
		return s.Trailing5YReturn
	}
	return nil
}

// Eligible reports whether the snapshot is eligible for the given horizon.
// YTD is always eligible.
func (s ReturnSnapshot) Eligible(h Horizon) bool {
	switch h {
	case HorizonYTD:
		return true
	case Horizon1Y:
		return s.Eligible1Y
	case Horizon3Y:
		return s.Eligible3Y
	case Horizon5Y:
		return s.Eligible5Y
	}
	return false
}

// EligibleReturn returns the horizon's return only when the snapshot is
// eligible for that horizon and the value is present.
func (s ReturnSnapshot) EligibleReturn(h Horizon) *float64 {
	if !s.Eligible(h) {
		return nil
	}
	return s.Return(h)
}
