package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
	"github.com/nattapongd/Fund-Compare-Backend/internal/testutil"
)

// countingStatsProvider wraps a real stats provider and counts compute
// calls, proving the batch orchestrator memoizes per peer key.
type countingStatsProvider struct {
	inner        service.PeerStatsProvider
	computeCalls int
}

func (c *countingStatsProvider) ComputeStats(ctx context.Context, peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error) {
	c.computeCalls++
	return c.inner.ComputeStats(ctx, peerKey, horizon, asOfDate)
}

func (c *countingStatsProvider) StoreStats(ctx context.Context, stats model.PeerStats) error {
	return c.inner.StoreStats(ctx, stats)
}

func (c *countingStatsProvider) GetLatestStats(peerKey string, horizon model.Horizon, asOfDate time.Time) (model.PeerStats, error) {
	return c.inner.GetLatestStats(peerKey, horizon, asOfDate)
}

// TestRankingService_Rank tests single-fund peer ranking.
//
// WHY: Rank, percentile and quartile feed fund comparison pages directly.
// A fixed cohort (12/9/9/5/1, fund at 9.0) pins the tie policy and the
// percentile formula against hand-computed values.
func TestRankingService_Rank(t *testing.T) {
	const peerKey = "Equity General|Equity General|THB|Unhedged|A"
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("ranks a fund within its cohort with tie sharing", func(t *testing.T) {
		// Setup: PEER002 returns 9.0, tied with PEER003
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		// Execute
		result, err := svc.Rank(context.Background(), "PEER002", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if !result.Available() {
			t.Fatalf("Expected available result, got reason %v", *result.UnavailableReason)
		}
		if result.Rank == nil || *result.Rank != 2 {
			t.Errorf("Expected rank 2, got %v", result.Rank)
		}
		if result.Percentile == nil || *result.Percentile != 75.0 {
			t.Errorf("Expected percentile 75.0, got %v", result.Percentile)
		}
		if result.Quartile == nil || *result.Quartile != model.QuartileQ1 {
			t.Errorf("Expected quartile Q1, got %v", result.Quartile)
		}
		if result.ExcessVsPeerMedian == nil || *result.ExcessVsPeerMedian != 0.0 {
			t.Errorf("Expected excess vs median 0.0, got %v", result.ExcessVsPeerMedian)
		}

		// The tied member shares the same rank
		tied, err := svc.Rank(context.Background(), "PEER003", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}
		if tied.Rank == nil || *tied.Rank != 2 {
			t.Errorf("Expected tied member to share rank 2, got %v", tied.Rank)
		}
	})

	t.Run("single-member cohort is exactly median", func(t *testing.T) {
		// Setup: hard minimum of 1 so the gate does not trip
		db := testutil.SetupTestDB(t)
		stats := testutil.NewTestPeerStatsServiceWithMinCount(t, db, 1)
		svc := testutil.NewTestRankingServiceWith(t, db, stats, 1)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 7.0)

		// Execute
		result, err := svc.Rank(context.Background(), "PEER001", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if !result.Available() {
			t.Fatalf("Expected available result, got reason %v", *result.UnavailableReason)
		}
		if result.Percentile == nil || *result.Percentile != 50.0 {
			t.Errorf("Expected percentile 50.0, got %v", result.Percentile)
		}
		if result.Quartile == nil || *result.Quartile != model.QuartileQ2 {
			t.Errorf("Expected quartile Q2, got %v", result.Quartile)
		}
	})

	t.Run("fund below every stored entry clamps to the last rank", func(t *testing.T) {
		// Setup: a stored stats record one month older than the fund's own
		// snapshot, so the fund's return is absent from the entry list
		db := testutil.SetupTestDB(t)
		stats := testutil.NewTestPeerStatsService(t, db)
		svc := testutil.NewTestRankingServiceWith(t, db, stats, testutil.DefaultMinCountHard)

		median := 3.0
		err := stats.StoreStats(context.Background(), model.PeerStats{
			PeerKey:           peerKey,
			Horizon:           model.Horizon1Y,
			AsOfDate:          asOf.AddDate(0, -1, 0),
			PeerCountTotal:    5,
			PeerCountEligible: 5,
			PeerMedianReturn:  &median,
			Entries: []model.PeerReturn{
				{FundID: "PEER001|", Return: 5.0},
				{FundID: "PEER002|", Return: 4.0},
				{FundID: "PEER003|", Return: 3.0},
				{FundID: "PEER004|", Return: 2.0},
				{FundID: "PEER005|", Return: 2.0},
			},
		})
		if err != nil {
			t.Fatalf("StoreStats() returned unexpected error: %v", err)
		}

		testutil.NewFund("LAG01").WithPeerKey(peerKey).Build(t, db)
		testutil.NewSnapshot("LAG01", asOf).WithReturn1Y(1.0, true).Build(t, db)

		// Execute
		result, err := svc.Rank(context.Background(), "LAG01", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert: last place, not past it
		if !result.Available() {
			t.Fatalf("Expected available result, got reason %v", *result.UnavailableReason)
		}
		if result.Rank == nil || *result.Rank != 5 {
			t.Errorf("Expected rank 5, got %v", result.Rank)
		}
		if result.Percentile == nil || *result.Percentile != 0.0 {
			t.Errorf("Expected percentile 0.0, got %v", result.Percentile)
		}
		if result.Quartile == nil || *result.Quartile != model.QuartileQ4 {
			t.Errorf("Expected quartile Q4, got %v", result.Quartile)
		}
		if result.ExcessVsPeerMedian == nil || *result.ExcessVsPeerMedian != -2.0 {
			t.Errorf("Expected excess vs median -2.0, got %v", result.ExcessVsPeerMedian)
		}
	})

	t.Run("compares the raw return against the stored entries", func(t *testing.T) {
		// Setup: the fund sits a hair below a stored 9.0 entry, so it must
		// rank behind the tie, not inside it
		db := testutil.SetupTestDB(t)
		stats := testutil.NewTestPeerStatsService(t, db)
		svc := testutil.NewTestRankingServiceWith(t, db, stats, testutil.DefaultMinCountHard)

		median := 9.0
		err := stats.StoreStats(context.Background(), model.PeerStats{
			PeerKey:           peerKey,
			Horizon:           model.Horizon1Y,
			AsOfDate:          asOf,
			PeerCountTotal:    5,
			PeerCountEligible: 5,
			PeerMedianReturn:  &median,
			Entries: []model.PeerReturn{
				{FundID: "PEER001|", Return: 12.0},
				{FundID: "PEER002|", Return: 9.0},
				{FundID: "PEER003|", Return: 9.0},
				{FundID: "PEER004|", Return: 5.0},
				{FundID: "PEER005|", Return: 1.0},
			},
		})
		if err != nil {
			t.Fatalf("StoreStats() returned unexpected error: %v", err)
		}

		testutil.NewFund("EDGE1").WithPeerKey(peerKey).Build(t, db)
		testutil.NewSnapshot("EDGE1", asOf).WithReturn1Y(8.99996, true).Build(t, db)

		// Execute
		result, err := svc.Rank(context.Background(), "EDGE1", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if !result.Available() {
			t.Fatalf("Expected available result, got reason %v", *result.UnavailableReason)
		}
		if result.Rank == nil || *result.Rank != 4 {
			t.Errorf("Expected rank 4, got %v", result.Rank)
		}
		if result.Percentile == nil || *result.Percentile != 25.0 {
			t.Errorf("Expected percentile 25.0, got %v", result.Percentile)
		}
		if result.Quartile == nil || *result.Quartile != model.QuartileQ3 {
			t.Errorf("Expected quartile Q3, got %v", result.Quartile)
		}
	})

	t.Run("missing peer key reports PEER_KEY_MISSING", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		testutil.NewFund("M0001").Build(t, db)

		// Execute
		result, err := svc.Rank(context.Background(), "M0001", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if result.UnavailableReason == nil || *result.UnavailableReason != model.ReasonPeerKeyMissing {
			t.Errorf("Expected PEER_KEY_MISSING, got %v", result.UnavailableReason)
		}
		if result.Rank != nil || result.Percentile != nil || result.Quartile != nil {
			t.Error("Expected nil rank fields on unavailable result")
		}
	})

	t.Run("missing own return reports RETURN_DATA_MISSING with peer key populated", func(t *testing.T) {
		// Setup: cohort exists, target fund has no eligible 1y value
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 12.0, 9.0, 5.0, 3.0, 1.0)
		testutil.NewFund("M0001").WithPeerKey(peerKey).Build(t, db)
		testutil.NewSnapshot("M0001", asOf).WithReturnYTD(2.0).Build(t, db)

		// Execute
		result, err := svc.Rank(context.Background(), "M0001", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if result.UnavailableReason == nil || *result.UnavailableReason != model.ReasonReturnDataMissing {
			t.Errorf("Expected RETURN_DATA_MISSING, got %v", result.UnavailableReason)
		}
		if result.PeerKey != peerKey {
			t.Errorf("Expected peer key %q on unavailable result, got %q", peerKey, result.PeerKey)
		}
		if result.Percentile != nil {
			t.Errorf("Expected nil percentile, got %v", *result.Percentile)
		}
	})

	t.Run("unknown fund reports RETURN_DATA_MISSING", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		// Execute
		result, err := svc.Rank(context.Background(), "NOPE", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if result.UnavailableReason == nil || *result.UnavailableReason != model.ReasonReturnDataMissing {
			t.Errorf("Expected RETURN_DATA_MISSING, got %v", result.UnavailableReason)
		}
	})

	t.Run("small cohort reports INSUFFICIENT_PEER_SET with counts", func(t *testing.T) {
		// Setup: eligible 3 against hard minimum 10
		db := testutil.SetupTestDB(t)
		stats := testutil.NewTestPeerStatsServiceWithMinCount(t, db, 10)
		svc := testutil.NewTestRankingServiceWith(t, db, stats, 10)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 7.0, 4.0, 2.0)

		// Execute
		result, err := svc.Rank(context.Background(), "PEER001", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if result.UnavailableReason == nil || *result.UnavailableReason != model.ReasonInsufficientPeers {
			t.Errorf("Expected INSUFFICIENT_PEER_SET, got %v", result.UnavailableReason)
		}
		if result.PeerCountEligible != 3 {
			t.Errorf("Expected eligible count 3, got %d", result.PeerCountEligible)
		}
		if result.Percentile != nil {
			t.Errorf("Expected nil percentile, got %v", *result.Percentile)
		}
	})

	t.Run("computes stats on demand and persists them", func(t *testing.T) {
		// Setup: no precomputed peer_stats row
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)
		testutil.AssertRowCount(t, db, "peer_stats", 0)

		// Execute
		result, err := svc.Rank(context.Background(), "PEER001", model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("Rank() returned unexpected error: %v", err)
		}

		// Assert
		if !result.Available() {
			t.Fatalf("Expected available result, got reason %v", *result.UnavailableReason)
		}
		testutil.AssertRowCount(t, db, "peer_stats", 1)
	})
}

// TestRankingService_RankBatch tests the batch orchestrator.
//
// WHY: Batch ranking over a fund list must compute cohort statistics at
// most once per peer key and degrade per-fund failures without aborting.
func TestRankingService_RankBatch(t *testing.T) {
	const peerKey = "Equity General|Equity General|THB|Unhedged|A"
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("memoizes stats computation per peer key", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		counting := &countingStatsProvider{inner: testutil.NewTestPeerStatsService(t, db)}
		svc := testutil.NewTestRankingServiceWith(t, db, counting, testutil.DefaultMinCountHard)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		// Execute
		results, err := svc.RankBatch(context.Background(),
			[]string{"PEER001", "PEER002", "PEER003", "PEER004", "PEER005"},
			model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("RankBatch() returned unexpected error: %v", err)
		}

		// Assert
		if len(results) != 5 {
			t.Fatalf("Expected 5 results, got %d", len(results))
		}
		if counting.computeCalls != 1 {
			t.Errorf("Expected exactly 1 stats computation for a shared cohort, got %d", counting.computeCalls)
		}
		for id, result := range results {
			if !result.Available() {
				t.Errorf("Expected available result for %s, got reason %v", id, *result.UnavailableReason)
			}
		}
	})

	t.Run("a failing fund degrades without aborting the batch", func(t *testing.T) {
		// Setup: one unknown identifier among valid ones
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRankingService(t, db)

		testutil.CreatePeerCohort(t, db, peerKey, asOf, 12.0, 9.0, 9.0, 5.0, 1.0)

		// Execute
		results, err := svc.RankBatch(context.Background(),
			[]string{"PEER001", "NOPE", "PEER002"},
			model.Horizon1Y, asOf)
		if err != nil {
			t.Fatalf("RankBatch() returned unexpected error: %v", err)
		}

		// Assert
		if len(results) != 3 {
			t.Fatalf("Expected 3 results, got %d", len(results))
		}
		missing := results["NOPE"]
		if missing.UnavailableReason == nil || *missing.UnavailableReason != model.ReasonReturnDataMissing {
			t.Errorf("Expected RETURN_DATA_MISSING for unknown fund, got %v", missing.UnavailableReason)
		}
		if !results["PEER001"].Available() || !results["PEER002"].Available() {
			t.Error("Expected valid funds to still rank")
		}
	})
}
