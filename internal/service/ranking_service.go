package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
)

// PeerStatsProvider supplies cohort statistics to the ranking engine. It is
// satisfied by PeerStatsService; tests substitute counting or canned
// implementations.
type PeerStatsProvider interface {
	ComputeStats(ctx context.Context, peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error)
	StoreStats(ctx context.Context, stats model.PeerStats) error
	GetLatestStats(peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error)
}

// RankingService ranks a fund's trailing return against its peer cohort.
// Every business-level absence of data yields a structured result with an
// unavailable reason; only infrastructure failures return an error.
type RankingService struct {
	fundRepo     *repository.FundRepository
	snapshotRepo *repository.SnapshotRepository
	stats        PeerStatsProvider
	minCountHard int
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	fundRepo *repository.FundRepository,
	snapshotRepo *repository.SnapshotRepository,
	stats PeerStatsProvider,
	minCountHard int,
) *RankingService {
	return &RankingService{
		fundRepo:     fundRepo,
		snapshotRepo: snapshotRepo,
		stats:        stats,
		minCountHard: minCountHard,
	}
}

// Rank ranks one fund against its peer cohort for a horizon as of a date.
// The identifier is matched against class abbreviations first, then
// project IDs.
func (s *RankingService) Rank(ctx context.Context, identifier string, horizon model.Horizon, asOfDate time.Time) (model.PeerRankResult, error) {
	return s.rankMemoized(ctx, identifier, horizon, asOfDate, map[string]*model.PeerStats{})
}

// RankBatch ranks each identifier for the same horizon and as-of date,
// computing statistics at most once per distinct peer key. A single fund's
// failure degrades to RETURN_DATA_MISSING for that entry only.
func (s *RankingService) RankBatch(ctx context.Context, identifiers []string, horizon model.Horizon, asOfDate time.Time) (map[string]model.PeerRankResult, error) {
	statsByKey := map[string]*model.PeerStats{}
	results := make(map[string]model.PeerRankResult, len(identifiers))

	for _, identifier := range identifiers {
		result, err := s.rankMemoized(ctx, identifier, horizon, asOfDate, statsByKey)
		if err != nil {
			log.Printf("Peer rank failed for %s: %v", identifier, err)
			result = unavailable(model.PeerRankResult{AsOfDate: asOfDate}, model.ReasonReturnDataMissing)
		}
		results[identifier] = result
	}

	return results, nil
}

func (s *RankingService) rankMemoized(ctx context.Context, identifier string, horizon model.Horizon, asOfDate time.Time, statsByKey map[string]*model.PeerStats) (model.PeerRankResult, error) {
	result := model.PeerRankResult{AsOfDate: asOfDate}

	fund, err := s.fundRepo.GetFundByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrFundNotFound) {
			return unavailable(result, model.ReasonReturnDataMissing), nil
		}
		return model.PeerRankResult{}, err
	}

	if fund.PeerKey == nil {
		return unavailable(result, model.ReasonPeerKeyMissing), nil
	}
	result.PeerKey = *fund.PeerKey

	ownReturn, err := s.ownEligibleReturn(fund, horizon, asOfDate)
	if err != nil {
		return model.PeerRankResult{}, err
	}
	if ownReturn == nil {
		return unavailable(result, model.ReasonReturnDataMissing), nil
	}

	stats, seen := statsByKey[*fund.PeerKey]
	if !seen {
		stats, err = s.latestOrComputedStats(ctx, *fund.PeerKey, horizon, asOfDate)
		if err != nil {
			return model.PeerRankResult{}, err
		}
		statsByKey[*fund.PeerKey] = stats
	}
	if stats == nil {
		return unavailable(result, model.ReasonPeerGroupNotFound), nil
	}

	return s.rankAgainst(result, *stats, *ownReturn), nil
}

// ownEligibleReturn loads the fund's latest snapshot at or before the
// as-of date and applies the horizon's eligibility rule. A nil return with
// a nil error means the value is legitimately absent.
func (s *RankingService) ownEligibleReturn(fund model.Fund, horizon model.Horizon, asOfDate time.Time) (*float64, error) {
	snapshot, err := s.snapshotRepo.GetLatestSnapshot(fund.ProjID, fund.ClassAbbr, asOfDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return snapshot.EligibleReturn(horizon), nil
}

// latestOrComputedStats resolves statistics for a peer key, computing and
// persisting them on demand when no stored record covers the date. A nil
// stats pointer with a nil error means the cohort could not be resolved.
func (s *RankingService) latestOrComputedStats(ctx context.Context, peerKey string, horizon model.Horizon, asOfDate time.Time) (*model.PeerStats, error) {
	stats, err := s.stats.GetLatestStats(peerKey, horizon, asOfDate)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, apperrors.ErrPeerStatsNotFound) {
		return nil, err
	}

	computed, err := s.stats.ComputeStats(ctx, peerKey, horizon, asOfDate)
	if err != nil {
		return nil, err
	}
	if err := s.stats.StoreStats(ctx, computed); err != nil {
		return nil, err
	}

	stats, err = s.stats.GetLatestStats(peerKey, horizon, asOfDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrPeerStatsNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// rankAgainst evaluates the fund's return against resolved cohort
// statistics, gating on the configured minimum eligible count first.
func (s *RankingService) rankAgainst(result model.PeerRankResult, stats model.PeerStats, fundReturn float64) model.PeerRankResult {
	result.PeerCountTotal = stats.PeerCountTotal
	result.PeerCountEligible = stats.PeerCountEligible
	result.PeerMedianReturn = stats.PeerMedianReturn

	if stats.PeerCountEligible < s.minCountHard {
		return unavailable(result, model.ReasonInsufficientPeers)
	}
	if len(stats.Entries) == 0 {
		return unavailable(result, model.ReasonPeerGroupNotFound)
	}

	rank := rankInCohort(stats.Entries, fundReturn)
	percentile := percentileForRank(rank, len(stats.Entries))
	quartile := quartileFor(percentile)

	result.Rank = &rank
	result.Percentile = &percentile
	result.Quartile = &quartile

	if stats.PeerMedianReturn != nil {
		excess := round4(fundReturn - *stats.PeerMedianReturn)
		result.ExcessVsPeerMedian = &excess
	}

	return result
}

// rankInCohort returns the 1-indexed rank of fundReturn within entries,
// which must be sorted descending. Ties share the better rank: the rank is
// one more than the count of members strictly better than the fund. A
// return below every entry clamps to the last rank; this happens when a
// stored record predates the fund's own snapshot.
func rankInCohort(entries []model.PeerReturn, fundReturn float64) int {
	for i, entry := range entries {
		if fundReturn >= entry.Return {
			return i + 1
		}
	}
	return len(entries)
}

// percentileForRank maps a rank to a 0..100 percentile, rounded to 2
// decimal places. A single-member cohort sits exactly at the median.
func percentileForRank(rank, cohortSize int) float64 {
	if cohortSize <= 1 {
		return 50.0
	}
	return round2((1 - float64(rank-1)/float64(cohortSize-1)) * 100)
}

func quartileFor(percentile float64) model.Quartile {
	switch {
	case percentile >= 75:
		return model.QuartileQ1
	case percentile >= 50:
		return model.QuartileQ2
	case percentile >= 25:
		return model.QuartileQ3
	default:
		return model.QuartileQ4
	}
}

func unavailable(result model.PeerRankResult, reason model.UnavailableReason) model.PeerRankResult {
	result.UnavailableReason = &reason
	return result
}
