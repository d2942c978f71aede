package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
)

// MakeID generates a unique ID for test records.
func MakeID() string {
	return uuid.New().String()
}

// CreateAMC creates an AMC row and returns it. Fund rows carry a foreign
// key to amc, so most fund fixtures start here.
func CreateAMC(t *testing.T, db *sql.DB, uniqueID, nameEN string) model.AMC {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO amc (unique_id, name_en) VALUES (?, ?)
	`, uniqueID, nameEN)
	if err != nil {
		t.Fatalf("Failed to create test AMC: %v", err)
	}

	return model.AMC{UniqueID: uniqueID, NameEN: nameEN}
}

// FundBuilder provides a fluent interface for creating test funds.
//
// Example usage:
//
//	// Simple creation with defaults
//	fund := testutil.NewFund("M0001").Build(t, db)
//
//	// Customized fund
//	fund := testutil.NewFund("M0002").
//	    WithClassAbbr("K-EQ-A").
//	    WithAimcCategory("Global Equity").
//	    WithPeerKey("Global Equity|Global Equity|THB|Hedged|A").
//	    Build(t, db)
type FundBuilder struct {
	fund model.Fund
}

// NewFund creates a FundBuilder with sensible defaults. The AMC referenced
// by the default AMCID must exist; Build creates it on demand.
func NewFund(projID string) *FundBuilder {
	return &FundBuilder{
		fund: model.Fund{
			ProjID:           projID,
			FundNameEN:       "Test Fund " + projID,
			FundAbbr:         "TF-" + projID,
			AMCID:            "AMC-TEST",
			FundStatus:       model.FundStatusActive,
			PeerFXHedgedFlag: model.HedgeFlagUnknown,
		},
	}
}

// WithClassAbbr sets the share class abbreviation.
func (b *FundBuilder) WithClassAbbr(classAbbr string) *FundBuilder {
	b.fund.ClassAbbr = classAbbr
	return b
}

// WithFundAbbr sets the fund abbreviation.
func (b *FundBuilder) WithFundAbbr(abbr string) *FundBuilder {
	b.fund.FundAbbr = abbr
	return b
}

// WithAMC sets the AMC ID.
func (b *FundBuilder) WithAMC(amcID string) *FundBuilder {
	b.fund.AMCID = amcID
	return b
}

// WithStatus sets the fund status.
func (b *FundBuilder) WithStatus(status string) *FundBuilder {
	b.fund.FundStatus = status
	return b
}

// Inactive marks the fund as liquidated.
func (b *FundBuilder) Inactive() *FundBuilder {
	b.fund.FundStatus = "LQ"
	return b
}

// WithAimcCategory sets the AIMC category.
func (b *FundBuilder) WithAimcCategory(category string) *FundBuilder {
	b.fund.AimcCategory = &category
	return b
}

// WithPeerFocus sets the peer focus.
func (b *FundBuilder) WithPeerFocus(focus string) *FundBuilder {
	b.fund.PeerFocus = &focus
	return b
}

// WithPeerKey sets the peer key.
func (b *FundBuilder) WithPeerKey(peerKey string) *FundBuilder {
	b.fund.PeerKey = &peerKey
	return b
}

// WithFallbackLevel sets the peer key fallback level.
func (b *FundBuilder) WithFallbackLevel(level int) *FundBuilder {
	b.fund.PeerKeyFallbackLevel = level
	return b
}

// Build creates the fund in the database and returns it, creating the
// referenced AMC first if it does not exist.
func (b *FundBuilder) Build(t *testing.T, db *sql.DB) model.Fund {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO amc (unique_id, name_en) VALUES (?, ?)
		ON CONFLICT(unique_id) DO NOTHING
	`, b.fund.AMCID, "Test AMC")
	if err != nil {
		t.Fatalf("Failed to ensure test AMC: %v", err)
	}

	query := `
		INSERT INTO fund (
			proj_id, class_abbr_name, fund_name_en, fund_abbr, amc_id,
			fund_status, aimc_category, peer_focus, peer_currency,
			peer_fx_hedged_flag, peer_distribution_policy, peer_key,
			peer_key_fallback_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var policy *string
	if b.fund.PeerDistributionPolicy != nil {
		p := string(*b.fund.PeerDistributionPolicy)
		policy = &p
	}

	_, err = db.Exec(query,
		b.fund.ProjID, b.fund.ClassAbbr, b.fund.FundNameEN, b.fund.FundAbbr,
		b.fund.AMCID, b.fund.FundStatus, b.fund.AimcCategory, b.fund.PeerFocus,
		b.fund.PeerCurrency, string(b.fund.PeerFXHedgedFlag), policy,
		b.fund.PeerKey, b.fund.PeerKeyFallbackLevel,
	)
	if err != nil {
		t.Fatalf("Failed to create test fund: %v", err)
	}

	return b.fund
}

// SnapshotBuilder provides a fluent interface for creating return snapshot
// rows.
//
// Example usage:
//
//	testutil.NewSnapshot("M0001", date).
//	    WithReturn1Y(9.0, true).
//	    Build(t, db)
type SnapshotBuilder struct {
	snapshot model.ReturnSnapshot
}

// NewSnapshot creates a SnapshotBuilder for the given fund and date.
func NewSnapshot(projID string, asOfDate time.Time) *SnapshotBuilder {
	return &SnapshotBuilder{
		snapshot: model.ReturnSnapshot{
			ID:       MakeID(),
			ProjID:   projID,
			AsOfDate: asOfDate,
		},
	}
}

// WithClassAbbr sets the share class abbreviation.
func (b *SnapshotBuilder) WithClassAbbr(classAbbr string) *SnapshotBuilder {
	b.snapshot.ClassAbbr = classAbbr
	return b
}

// WithReturnYTD sets the YTD return.
func (b *SnapshotBuilder) WithReturnYTD(value float64) *SnapshotBuilder {
	b.snapshot.YTDReturn = &value
	return b
}

// WithReturn1Y sets the 1-year return and its eligibility flag.
func (b *SnapshotBuilder) WithReturn1Y(value float64, eligible bool) *SnapshotBuilder {
	b.snapshot.Trailing1YReturn = &value
	b.snapshot.Eligible1Y = eligible
	return b
}

// WithReturn3Y sets the 3-year return and its eligibility flag.
func (b *SnapshotBuilder) WithReturn3Y(value float64, eligible bool) *SnapshotBuilder {
	b.snapshot.Trailing3YReturn = &value
	b.snapshot.Eligible3Y = eligible
	return b
}

// WithReturn5Y sets the 5-year return and its eligibility flag.
func (b *SnapshotBuilder) WithReturn5Y(value float64, eligible bool) *SnapshotBuilder {
	b.snapshot.Trailing5YReturn = &value
	b.snapshot.Eligible5Y = eligible
	return b
}

// Eligible1Y sets the 1-year eligibility flag without a value.
func (b *SnapshotBuilder) Eligible1Y(eligible bool) *SnapshotBuilder {
	b.snapshot.Eligible1Y = eligible
	return b
}

// Build creates the snapshot row in the database and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.ReturnSnapshot {
	t.Helper()

	query := `
		INSERT INTO fund_return_snapshot (
			id, proj_id, class_abbr_name, as_of_date,
			ytd_return, trailing_1y_return, trailing_3y_return, trailing_5y_return,
			eligible_1y, eligible_3y, eligible_5y
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.snapshot.ID, b.snapshot.ProjID, b.snapshot.ClassAbbr,
		b.snapshot.AsOfDate.Format("2006-01-02"),
		b.snapshot.YTDReturn, b.snapshot.Trailing1YReturn,
		b.snapshot.Trailing3YReturn, b.snapshot.Trailing5YReturn,
		b.snapshot.Eligible1Y, b.snapshot.Eligible3Y, b.snapshot.Eligible5Y,
	)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	return b.snapshot
}

// Convenience functions

// CreatePeerCohort creates count active funds sharing one peer key, each
// with a 1-year-eligible snapshot at the given date carrying the
// corresponding return from returns. Returns the created funds.
//
// Example usage:
//
//	funds := testutil.CreatePeerCohort(t, db, "EQ|EQ|THB|Hedged|A", date, 12.0, 9.0, 9.0, 5.0, 1.0)
func CreatePeerCohort(t *testing.T, db *sql.DB, peerKey string, asOfDate time.Time, returns ...float64) []model.Fund {
	t.Helper()

	funds := make([]model.Fund, len(returns))
	for i, r := range returns {
		projID := fmt.Sprintf("PEER%03d", i+1)
		funds[i] = NewFund(projID).WithPeerKey(peerKey).Build(t, db)
		NewSnapshot(projID, asOfDate).WithReturn1Y(r, true).Build(t, db)
	}
	return funds
}
