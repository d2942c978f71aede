package model

import "time"

// Fund represents a single fund share class as ingested from the SEC
// Thailand fund registry. ClassAbbr is empty for funds without distinct
// share classes. The peer_* fields are a denormalized classification
// projection maintained by the classification service.
type Fund struct {
	ProjID             string
	ClassAbbr          string
	FundNameTH         *string
	FundNameEN         string
	FundAbbr           string
	AMCID              string
	FundStatus         string
	Category           *string
	AimcCategory       *string
	AimcCategorySource *string
	RiskLevel          *string

	PeerFocus              *string
	PeerCurrency           *string
	PeerFXHedgedFlag       HedgeFlag
	PeerDistributionPolicy *DistributionPolicy
	PeerKey                *string
	PeerKeyFallbackLevel   int

	LastUpdDate *time.Time
}

// FundStatusActive marks a registered, active fund in the SEC registry.
const FundStatusActive = "RG"

// Identifier returns the canonical fund/class identifier "proj_id|class_abbr".
// This is the form stored in peer statistics payloads.
func (f Fund) Identifier() string {
	return f.ProjID + "|" + f.ClassAbbr
}

// AMC represents an Asset Management Company.
type AMC struct {
	UniqueID    string
	NameTH      *string
	NameEN      string
	LastUpdDate *time.Time
}

// FundSummary is the listing representation of a fund with its AMC name.
type FundSummary struct {
	FundID       string  `json:"fund_id"`
	ClassAbbr    string  `json:"class_abbr,omitempty"`
	FundName     string  `json:"fund_name"`
	AMCName      string  `json:"amc_name"`
	Category     *string `json:"category"`
	AimcCategory *string `json:"aimc_category"`
	RiskLevel    *string `json:"risk_level"`
	PeerKey      *string `json:"peer_key"`
}
