package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
)

// FundRepository provides data access methods for the fund and amc tables.
type FundRepository struct {
	db *sql.DB
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

const fundColumns = `
	f.proj_id, f.class_abbr_name, f.fund_name_th, f.fund_name_en, f.fund_abbr,
	f.amc_id, f.fund_status, f.category, f.aimc_category, f.aimc_category_source,
	f.risk_level, f.peer_focus, f.peer_currency, f.peer_fx_hedged_flag,
	f.peer_distribution_policy, f.peer_key, f.peer_key_fallback_level, f.last_upd_date`

// GetFundByIdentifier resolves a fund by its public identifier: first as a
// share-class abbreviation, then as a proj_id with no distinct class.
// Returns apperrors.ErrFundNotFound when neither matches.
func (r *FundRepository) GetFundByIdentifier(identifier string) (model.Fund, error) {
	if identifier == "" {
		return model.Fund{}, apperrors.ErrEmptyID
	}

	query := `SELECT ` + fundColumns + ` FROM fund f WHERE f.class_abbr_name = ? LIMIT 1`

	fund, err := r.queryOneFund(query, identifier)
	if err == nil {
		return fund, nil
	}
	if err != apperrors.ErrFundNotFound {
		return model.Fund{}, err
	}

	query = `SELECT ` + fundColumns + ` FROM fund f WHERE f.proj_id = ? AND f.class_abbr_name = '' LIMIT 1`

	return r.queryOneFund(query, identifier)
}

// GetFund retrieves a fund by its (proj_id, class_abbr_name) primary key.
func (r *FundRepository) GetFund(projID, classAbbr string) (model.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM fund f WHERE f.proj_id = ? AND f.class_abbr_name = ?`

	return r.queryOneFund(query, projID, classAbbr)
}

// GetPeerGroupMembers retrieves all active fund/class records whose current
// peer_key equals the given key. Each share class counts as a distinct
// member. Membership deliberately uses the fund's current classification,
// not a historical snapshot, so re-ranking a past date after a fund is
// reclassified uses the new cohort.
func (r *FundRepository) GetPeerGroupMembers(peerKey string) ([]model.Fund, error) {
	if peerKey == "" {
		return nil, apperrors.ErrEmptyPeerKey
	}

	query := `SELECT ` + fundColumns + ` FROM fund f WHERE f.peer_key = ? AND f.fund_status = ?`

	rows, err := r.db.Query(query, peerKey, model.FundStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query peer group members: %w", err)
	}
	defer rows.Close()

	return scanFunds(rows)
}

// GetActiveFunds retrieves all active fund/class records.
func (r *FundRepository) GetActiveFunds() ([]model.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM fund f WHERE f.fund_status = ? ORDER BY f.fund_name_en ASC, f.proj_id ASC, f.class_abbr_name ASC`

	rows, err := r.db.Query(query, model.FundStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund table: %w", err)
	}
	defer rows.Close()

	return scanFunds(rows)
}

// ListFundSummaries retrieves active funds joined with their AMC names for
// the listing endpoint.
func (r *FundRepository) ListFundSummaries() ([]model.FundSummary, error) {
	query := `
		SELECT f.proj_id, f.class_abbr_name, f.fund_name_en, a.name_en,
		       f.category, f.aimc_category, f.risk_level, f.peer_key
		FROM fund f
		JOIN amc a ON a.unique_id = f.amc_id
		WHERE f.fund_status = ?
		ORDER BY f.fund_name_en ASC, f.proj_id ASC, f.class_abbr_name ASC
	`

	rows, err := r.db.Query(query, model.FundStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund listing: %w", err)
	}
	defer rows.Close()

	summaries := []model.FundSummary{}

	for rows.Next() {
		var s model.FundSummary
		var category, aimcCategory, riskLevel, peerKey sql.NullString

		err := rows.Scan(
			&s.FundID,
			&s.ClassAbbr,
			&s.FundName,
			&s.AMCName,
			&category,
			&aimcCategory,
			&riskLevel,
			&peerKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund listing: %w", err)
		}

		s.Category = nullableString(category)
		s.AimcCategory = nullableString(aimcCategory)
		s.RiskLevel = nullableString(riskLevel)
		s.PeerKey = nullableString(peerKey)

		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund listing: %w", err)
	}

	return summaries, nil
}

// UpdatePeerClassification persists the five peer classification fields and
// the fallback level onto a fund row.
func (r *FundRepository) UpdatePeerClassification(ctx context.Context, fund model.Fund) error {
	query := `
		UPDATE fund
		SET peer_focus = ?,
		    peer_currency = ?,
		    peer_fx_hedged_flag = ?,
		    peer_distribution_policy = ?,
		    peer_key = ?,
		    peer_key_fallback_level = ?
		WHERE proj_id = ? AND class_abbr_name = ?
	`

	var hedge any
	if fund.PeerFXHedgedFlag != "" {
		hedge = string(fund.PeerFXHedgedFlag)
	}
	var dist any
	if fund.PeerDistributionPolicy != nil {
		dist = string(*fund.PeerDistributionPolicy)
	}

	result, err := r.db.ExecContext(ctx, query,
		fund.PeerFocus,
		fund.PeerCurrency,
		hedge,
		dist,
		fund.PeerKey,
		fund.PeerKeyFallbackLevel,
		fund.ProjID,
		fund.ClassAbbr,
	)
	if err != nil {
		return fmt.Errorf("failed to update peer classification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrFundNotFound
	}

	return nil
}

// InsertFund inserts a fund row. Used by ingestion-shaped callers and tests.
func (r *FundRepository) InsertFund(ctx context.Context, fund model.Fund) error {
	query := `
		INSERT INTO fund (
			proj_id, class_abbr_name, fund_name_th, fund_name_en, fund_abbr,
			amc_id, fund_status, category, aimc_category, aimc_category_source,
			risk_level, peer_key_fallback_level, last_upd_date
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lastUpd any
	if fund.LastUpdDate != nil {
		lastUpd = fund.LastUpdDate.Format(time.RFC3339)
	}

	_, err := r.db.ExecContext(ctx, query,
		fund.ProjID,
		fund.ClassAbbr,
		fund.FundNameTH,
		fund.FundNameEN,
		fund.FundAbbr,
		fund.AMCID,
		fund.FundStatus,
		fund.Category,
		fund.AimcCategory,
		fund.AimcCategorySource,
		fund.RiskLevel,
		fund.PeerKeyFallbackLevel,
		lastUpd,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund: %w", err)
	}

	return nil
}

// InsertAMC inserts an asset management company row.
func (r *FundRepository) InsertAMC(ctx context.Context, amc model.AMC) error {
	query := `INSERT INTO amc (unique_id, name_th, name_en) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, amc.UniqueID, amc.NameTH, amc.NameEN)
	if err != nil {
		return fmt.Errorf("failed to insert amc: %w", err)
	}

	return nil
}

func (r *FundRepository) queryOneFund(query string, args ...any) (model.Fund, error) {
	fund, err := scanFund(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return model.Fund{}, apperrors.ErrFundNotFound
	}
	if err != nil {
		return model.Fund{}, fmt.Errorf("failed to query fund table: %w", err)
	}
	return fund, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFund(row rowScanner) (model.Fund, error) {
	var f model.Fund
	var nameTH, category, aimcCategory, aimcSource, riskLevel sql.NullString
	var fundAbbr, peerFocus, peerCurrency, hedgeFlag, distPolicy, peerKey sql.NullString
	var lastUpdStr sql.NullString

	err := row.Scan(
		&f.ProjID,
		&f.ClassAbbr,
		&nameTH,
		&f.FundNameEN,
		&fundAbbr,
		&f.AMCID,
		&f.FundStatus,
		&category,
		&aimcCategory,
		&aimcSource,
		&riskLevel,
		&peerFocus,
		&peerCurrency,
		&hedgeFlag,
		&distPolicy,
		&peerKey,
		&f.PeerKeyFallbackLevel,
		&lastUpdStr,
	)
	if err != nil {
		return model.Fund{}, err
	}

	f.FundNameTH = nullableString(nameTH)
	if fundAbbr.Valid {
		f.FundAbbr = fundAbbr.String
	}
	f.Category = nullableString(category)
	f.AimcCategory = nullableString(aimcCategory)
	f.AimcCategorySource = nullableString(aimcSource)
	f.RiskLevel = nullableString(riskLevel)
	f.PeerFocus = nullableString(peerFocus)
	f.PeerCurrency = nullableString(peerCurrency)
	if hedgeFlag.Valid {
		f.PeerFXHedgedFlag = model.HedgeFlag(hedgeFlag.String)
	}
	if distPolicy.Valid {
		policy := model.DistributionPolicy(distPolicy.String)
		f.PeerDistributionPolicy = &policy
	}
	f.PeerKey = nullableString(peerKey)

	if lastUpdStr.Valid {
		parsed, err := ParseTime(lastUpdStr.String)
		if err != nil {
			return model.Fund{}, fmt.Errorf("failed to parse last_upd_date: %w", err)
		}
		f.LastUpdDate = &parsed
	}

	return f, nil
}

func scanFunds(rows *sql.Rows) ([]model.Fund, error) {
	funds := []model.Fund{}

	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund table results: %w", err)
		}
		funds = append(funds, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund table: %w", err)
	}

	return funds, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	value := s.String
	return &value
}
