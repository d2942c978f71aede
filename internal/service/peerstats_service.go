package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
)

// minCountForQuartiles is the smallest eligible cohort for which 25th/75th
// percentiles are estimated; below it the percentile fields stay nil.
const minCountForQuartiles = 4

// PeerStatsService computes and persists peer cohort statistics. Each share
// class counts as a separate cohort member.
type PeerStatsService struct {
	fundRepo     *repository.FundRepository
	snapshotRepo *repository.SnapshotRepository
	statsRepo    *repository.PeerStatsRepository
	minCountHard int
}

// NewPeerStatsService creates a new PeerStatsService. minCountHard is the
// configured minimum eligible cohort size below which statistics are marked
// insufficient.
func NewPeerStatsService(
	fundRepo *repository.FundRepository,
	snapshotRepo *repository.SnapshotRepository,
	statsRepo *repository.PeerStatsRepository,
	minCountHard int,
) *PeerStatsService {
	return &PeerStatsService{
		fundRepo:     fundRepo,
		snapshotRepo: snapshotRepo,
		statsRepo:    statsRepo,
		minCountHard: minCountHard,
	}
}

// GetPeerGroupMembers returns the active fund/class records currently
// sharing the given peer key.
func (s *PeerStatsService) GetPeerGroupMembers(peerKey string) ([]model.Fund, error) {
	return s.fundRepo.GetPeerGroupMembers(peerKey)
}

// ComputeStats computes cohort statistics for a peer key and horizon as of
// a date, without persisting them.
//
// Each member contributes its latest return snapshot at or before the
// as-of date. Members whose value for the horizon is missing, or who fail
// the horizon's eligibility flag (YTD has none), are excluded from the
// eligible set. Eligible returns are sorted descending; the median is
// always computed when any eligible return exists, percentiles only when
// at least four do.
func (s *PeerStatsService) ComputeStats(ctx context.Context, peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error) {
	stats := model.PeerStats{
		PeerKey:      peerKey,
		Horizon:      horizon,
		AsOfDate:     asOfDate,
		Entries:      []model.PeerReturn{},
		Insufficient: true,
	}

	members, err := s.fundRepo.GetPeerGroupMembers(peerKey)
	if err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to resolve peer group %q: %w", peerKey, err)
	}
	stats.PeerCountTotal = len(members)

	if len(members) == 0 {
		return stats, nil
	}

	snapshots, err := s.snapshotRepo.GetLatestSnapshots(members, asOfDate)
	if err != nil {
		return model.PeerStats{}, fmt.Errorf("failed to load member snapshots: %w", err)
	}

	eligible := []model.PeerReturn{}
	for _, member := range members {
		snapshot, ok := snapshots[member.Identifier()]
		if !ok {
			continue
		}
		value := snapshot.EligibleReturn(horizon)
		if value == nil {
			continue
		}
		eligible = append(eligible, model.PeerReturn{
			FundID: member.Identifier(),
			Return: round4(*value),
		})
	}

	stats.PeerCountEligible = len(eligible)
	stats.Insufficient = stats.PeerCountEligible < s.minCountHard

	if len(eligible) == 0 {
		return stats, nil
	}

	// Best return first; ties keep member order stable.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Return > eligible[j].Return
	})
	stats.Entries = eligible

	values := make([]float64, len(eligible))
	for i, entry := range eligible {
		values[i] = entry.Return
	}

	median := round4(medianOf(values))
	stats.PeerMedianReturn = &median

	if len(values) >= minCountForQuartiles {
		p25, p75 := quartilesOf(values)
		p25 = round4(p25)
		p75 = round4(p75)
		stats.PeerP25Return = &p25
		stats.PeerP75Return = &p75
	}

	return stats, nil
}

// StoreStats persists computed statistics via upsert on the natural key.
// Recomputing and storing for the same (peer_key, horizon, as_of_date)
// fully overwrites the prior record, so the operation is idempotent.
func (s *PeerStatsService) StoreStats(ctx context.Context, stats model.PeerStats) error {
	return s.statsRepo.Upsert(ctx, stats)
}

// GetLatestStats returns the most recently computed statistics record with
// as_of_date at or before the query date, or apperrors.ErrPeerStatsNotFound.
func (s *PeerStatsService) GetLatestStats(peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error) {
	return s.statsRepo.GetLatest(peerKey, horizon, asOfDate)
}

// medianOf computes the median of the values. Order does not matter; the
// computation sorts a copy ascending.
func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quartilesOf computes the 25th and 75th percentiles using the standard
// exclusive quantile method (interpolating between order statistics at
// positions i*(n+1)/4). Callers must pass at least four values.
func quartilesOf(values []float64) (p25, p75 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quantileExclusive(sorted, 1), quantileExclusive(sorted, 3)
}

// quantileExclusive returns the i-th quartile (i in 1..3) of an
// ascending-sorted slice using the exclusive method.
func quantileExclusive(sortedAsc []float64, i int) float64 {
	n := len(sortedAsc)
	m := n + 1

	j := i * m / 4
	if j < 1 {
		j = 1
	}
	if j > n-1 {
		j = n - 1
	}

	delta := i*m - j*4
	return (sortedAsc[j-1]*float64(4-delta) + sortedAsc[j]*float64(delta)) / 4
}
