package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
	"github.com/nattapongd/Fund-Compare-Backend/internal/testutil"
)

var snapshotDate = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

// TestSnapshotRepository_GetLatestSnapshot tests as-of-date selection.
//
// WHY: Rankings are computed against the freshest snapshot at or before
// the requested date. Future snapshots must never leak in.
func TestSnapshotRepository_GetLatestSnapshot(t *testing.T) {
	t.Run("picks the latest snapshot at or before the date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		testutil.NewFund("M0001").Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate.AddDate(0, -1, 0)).WithReturn1Y(3.0, true).Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate.AddDate(0, 0, -3)).WithReturn1Y(5.0, true).Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate.AddDate(0, 0, 7)).WithReturn1Y(9.0, true).Build(t, db)

		snapshot, err := repo.GetLatestSnapshot("M0001", "", snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshot() returned unexpected error: %v", err)
		}

		if snapshot.Trailing1YReturn == nil || *snapshot.Trailing1YReturn != 5.0 {
			t.Errorf("Expected the 5.0 snapshot, got %v", snapshot.Trailing1YReturn)
		}
	})

	t.Run("treats main-class snapshots as the empty class", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		testutil.NewFund("M0001").Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate).WithClassAbbr("Main").WithReturn1Y(4.5, true).Build(t, db)

		snapshot, err := repo.GetLatestSnapshot("M0001", "", snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshot() returned unexpected error: %v", err)
		}

		if snapshot.Trailing1YReturn == nil || *snapshot.Trailing1YReturn != 4.5 {
			t.Errorf("Expected the Main-class snapshot, got %v", snapshot.Trailing1YReturn)
		}
	})

	t.Run("keeps named share classes separate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		testutil.NewFund("M0001").WithClassAbbr("A").Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate).WithClassAbbr("A").WithReturn1Y(7.0, true).Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate).WithClassAbbr("B").WithReturn1Y(2.0, true).Build(t, db)

		snapshot, err := repo.GetLatestSnapshot("M0001", "A", snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshot() returned unexpected error: %v", err)
		}

		if snapshot.Trailing1YReturn == nil || *snapshot.Trailing1YReturn != 7.0 {
			t.Errorf("Expected the class A snapshot, got %v", snapshot.Trailing1YReturn)
		}
	})

	t.Run("returns ErrSnapshotNotFound when only future snapshots exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		testutil.NewFund("M0001").Build(t, db)
		testutil.NewSnapshot("M0001", snapshotDate.AddDate(0, 0, 1)).WithReturn1Y(5.0, true).Build(t, db)

		_, err := repo.GetLatestSnapshot("M0001", "", snapshotDate)
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
		}
	})
}

// TestSnapshotRepository_InsertSnapshot tests the append-only ingestion
// path.
func TestSnapshotRepository_InsertSnapshot(t *testing.T) {
	t.Run("round-trips a snapshot with partial horizons", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		testutil.NewFund("M0001").Build(t, db)

		oneYear := 7.25
		err := repo.InsertSnapshot(context.Background(), model.ReturnSnapshot{
			ProjID:           "M0001",
			AsOfDate:         snapshotDate,
			Trailing1YReturn: &oneYear,
			Eligible1Y:       true,
		})
		if err != nil {
			t.Fatalf("InsertSnapshot() returned unexpected error: %v", err)
		}

		snapshot, err := repo.GetLatestSnapshot("M0001", "", snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshot() returned unexpected error: %v", err)
		}

		if snapshot.Trailing1YReturn == nil || *snapshot.Trailing1YReturn != 7.25 {
			t.Errorf("Expected 1y return 7.25, got %v", snapshot.Trailing1YReturn)
		}
		if snapshot.Trailing3YReturn != nil {
			t.Errorf("Expected no 3y return, got %v", snapshot.Trailing3YReturn)
		}
		if !snapshot.Eligible1Y || snapshot.Eligible3Y {
			t.Errorf("Unexpected eligibility flags: %+v", snapshot)
		}
	})
}

// TestSnapshotRepository_GetLatestSnapshots tests the batched cohort
// lookup used by the statistics engine.
func TestSnapshotRepository_GetLatestSnapshots(t *testing.T) {
	t.Run("returns one latest snapshot per member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		const peerKey = "Equity General|Equity General|THB|Unhedged|A"
		members := testutil.CreatePeerCohort(t, db, peerKey, snapshotDate, 12, 9, 5)

		// A stale earlier snapshot for the first member must lose.
		testutil.NewSnapshot(members[0].ProjID, snapshotDate.AddDate(0, -2, 0)).WithReturn1Y(99.0, true).Build(t, db)

		snapshots, err := repo.GetLatestSnapshots(members, snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshots() returned unexpected error: %v", err)
		}

		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		first, ok := snapshots[members[0].Identifier()]
		if !ok {
			t.Fatalf("Expected a snapshot for %s", members[0].Identifier())
		}
		if first.Trailing1YReturn == nil || *first.Trailing1YReturn != 12.0 {
			t.Errorf("Expected the fresh 12.0 snapshot, got %v", first.Trailing1YReturn)
		}
	})

	t.Run("omits members without snapshots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		const peerKey = "Equity General|Equity General|THB|Unhedged|A"
		members := testutil.CreatePeerCohort(t, db, peerKey, snapshotDate, 8)
		bare := testutil.NewFund("M0099").WithPeerKey(peerKey).Build(t, db)
		members = append(members, bare)

		snapshots, err := repo.GetLatestSnapshots(members, snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshots() returned unexpected error: %v", err)
		}

		if len(snapshots) != 1 {
			t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
		}
		if _, ok := snapshots[bare.Identifier()]; ok {
			t.Error("Expected no snapshot for the bare member")
		}
	})

	t.Run("returns an empty map for an empty member list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSnapshotRepository(db)

		snapshots, err := repo.GetLatestSnapshots(nil, snapshotDate)
		if err != nil {
			t.Fatalf("GetLatestSnapshots() returned unexpected error: %v", err)
		}

		if len(snapshots) != 0 {
			t.Errorf("Expected empty map, got %d entries", len(snapshots))
		}
	})
}
