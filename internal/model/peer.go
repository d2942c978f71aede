package model

import "time"

// HedgeFlag classifies a fund's FX hedging approach, derived from the AIMC
// category name.
type HedgeFlag string

const (
	HedgeFlagHedged   HedgeFlag = "Hedged"
	HedgeFlagUnhedged HedgeFlag = "Unhedged"
	HedgeFlagMixed    HedgeFlag = "Mixed"
	HedgeFlagUnknown  HedgeFlag = "Unknown"
)

// DistributionPolicy is a fund's dividend policy code.
type DistributionPolicy string

const (
	DistributionDividend     DistributionPolicy = "D"
	DistributionAccumulation DistributionPolicy = "A"
)

// Quartile is a peer-relative performance quartile; Q1 is best.
type Quartile string

const (
	QuartileQ1 Quartile = "Q1"
	QuartileQ2 Quartile = "Q2"
	QuartileQ3 Quartile = "Q3"
	QuartileQ4 Quartile = "Q4"
)

// UnavailableReason names the single cause when a peer rank could not be
// produced. These are expected business outcomes, not errors.
type UnavailableReason string

const (
	ReasonPeerKeyMissing    UnavailableReason = "PEER_KEY_MISSING"
	ReasonReturnDataMissing UnavailableReason = "RETURN_DATA_MISSING"
	ReasonPeerGroupNotFound UnavailableReason = "PEER_GROUP_NOT_FOUND"
	ReasonInsufficientPeers UnavailableReason = "INSUFFICIENT_PEER_SET"
)

// PeerReturn is one cohort member's contribution to a peer statistics
// record: the member's identifier ("proj_id|class_abbr") and its trailing
// return for the record's horizon.
type PeerReturn struct {
	FundID string  `json:"fund_id"`
	Return float64 `json:"return"`
}

// PeerStats is the persisted cohort aggregate for one
// (peer_key, horizon, as_of_date) tuple. Entries holds the eligible
// returns sorted descending (best first). Percentile fields are nil
// whenever fewer than four eligible returns exist.
type PeerStats struct {
	ID                string
	PeerKey           string
	Horizon           Horizon
	AsOfDate          time.Time
	PeerCountTotal    int
	PeerCountEligible int
	PeerMedianReturn  *float64
	PeerP25Return     *float64
	PeerP75Return     *float64
	Entries           []PeerReturn
	ComputedAt        time.Time

	// Insufficient is set during computation when the eligible count falls
	// below the configured hard minimum. Derived, not persisted.
	Insufficient bool
}

// PeerRankResult is the outcome of ranking one fund against its peer
// cohort. When ranking is unavailable, the percentile/rank/quartile fields
// are nil and UnavailableReason names the cause; counts and median are
// still populated as far as they are known.
type PeerRankResult struct {
	Percentile         *float64           `json:"percentile"`
	Rank               *int               `json:"rank"`
	Quartile           *Quartile          `json:"quartile"`
	PeerCountEligible  int                `json:"peer_count_eligible"`
	PeerCountTotal     int                `json:"peer_count_total"`
	PeerMedianReturn   *float64           `json:"peer_median_return"`
	ExcessVsPeerMedian *float64           `json:"excess_vs_peer_median"`
	PeerKey            string             `json:"peer_key"`
	AsOfDate           time.Time          `json:"as_of_date"`
	UnavailableReason  *UnavailableReason `json:"unavailable_reason"`
}

// Available reports whether a rank was actually produced.
func (r PeerRankResult) Available() bool {
	return r.UnavailableReason == nil
}
