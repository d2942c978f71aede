package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
)

// PeerStatsRepository provides data access methods for the peer_stats
// table. The table is keyed by the natural (peer_key, horizon, as_of_date)
// tuple; recomputation overwrites the prior record in full, which keeps
// stored statistics reproducible after return data is corrected or
// backfilled.
type PeerStatsRepository struct {
	db *sql.DB
}

// NewPeerStatsRepository creates a new repository instance.
func NewPeerStatsRepository(db *sql.DB) *PeerStatsRepository {
	return &PeerStatsRepository{db: db}
}

// statsPayload is the stored JSON shape of the sorted returns list.
type statsPayload struct {
	Returns []float64 `json:"returns"`
	FundIDs []string  `json:"fund_ids"`
}

// GetLatest retrieves the most recently computed stats record for a peer
// key and horizon with as_of_date at or before the given date. Statistics
// computed for an earlier date remain usable when no later computation
// exists. Returns apperrors.ErrPeerStatsNotFound when no record exists.
func (r *PeerStatsRepository) GetLatest(peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error) {
	query := `
		SELECT id, peer_key, horizon, as_of_date,
		       peer_count_total, peer_count_eligible,
		       peer_median_return, peer_p25_return, peer_p75_return,
		       stats_json, computed_at
		FROM peer_stats
		WHERE peer_key = ?
		AND horizon = ?
		AND as_of_date <= ?
		ORDER BY as_of_date DESC
		LIMIT 1
	`

	var stats model.PeerStats
	var dateStr, computedAtStr, statsJSON string
	var median, p25, p75 sql.NullFloat64

	err := r.db.QueryRow(query, peerKey, string(horizon), asOfDate.Format("2006-01-02")).Scan(
		&stats.ID,
		&stats.PeerKey,
		&stats.Horizon,
		&dateStr,
		&stats.PeerCountTotal,
		&stats.PeerCountEligible,
		&median,
		&p25,
		&p75,
		&statsJSON,
		&computedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.PeerStats{}, apperrors.ErrPeerStatsNotFound
	}
	if err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to query peer_stats: %w", err)
	}

	stats.AsOfDate, err = ParseTime(dateStr)
	if err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to parse as_of_date: %w", err)
	}
	stats.ComputedAt, err = ParseTime(computedAtStr)
	if err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to parse computed_at: %w", err)
	}

	stats.PeerMedianReturn = nullableFloat(median)
	stats.PeerP25Return = nullableFloat(p25)
	stats.PeerP75Return = nullableFloat(p75)

	var payload statsPayload
	if err := json.Unmarshal([]byte(statsJSON), &payload); err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to decode stats payload: %w", err)
	}
	if len(payload.Returns) != len(payload.FundIDs) {
		return model.PeerStats{}, fmt.Errorf("corrupt stats payload for %s/%s: %d returns vs %d fund ids",
			peerKey, horizon, len(payload.Returns), len(payload.FundIDs))
	}

	stats.Entries = make([]model.PeerReturn, len(payload.Returns))
	for i := range payload.Returns {
		stats.Entries[i] = model.PeerReturn{FundID: payload.FundIDs[i], Return: payload.Returns[i]}
	}

	return stats, nil
}

// Upsert inserts or fully replaces the stats record for the natural
// (peer_key, horizon, as_of_date) key. Concurrent upserts for the same key
// are safe: both writers compute from the same source rows and the single
// atomic statement makes last-write-wins converge on the same record.
func (r *PeerStatsRepository) Upsert(ctx context.Context, stats model.PeerStats) error {
	payload := statsPayload{
		Returns: make([]float64, len(stats.Entries)),
		FundIDs: make([]string, len(stats.Entries)),
	}
	for i, entry := range stats.Entries {
		payload.Returns[i] = entry.Return
		payload.FundIDs[i] = entry.FundID
	}

	statsJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode stats payload: %w", err)
	}

	query := `
		INSERT INTO peer_stats (
			id, peer_key, horizon, as_of_date,
			peer_count_total, peer_count_eligible,
			peer_median_return, peer_p25_return, peer_p75_return,
			stats_json, computed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(peer_key, horizon, as_of_date) DO UPDATE SET
			peer_count_total = excluded.peer_count_total,
			peer_count_eligible = excluded.peer_count_eligible,
			peer_median_return = excluded.peer_median_return,
			peer_p25_return = excluded.peer_p25_return,
			peer_p75_return = excluded.peer_p75_return,
			stats_json = excluded.stats_json,
			computed_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(),
		stats.PeerKey,
		string(stats.Horizon),
		stats.AsOfDate.Format("2006-01-02"),
		stats.PeerCountTotal,
		stats.PeerCountEligible,
		stats.PeerMedianReturn,
		stats.PeerP25Return,
		stats.PeerP75Return,
		string(statsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert peer_stats: %w", err)
	}

	return nil
}
