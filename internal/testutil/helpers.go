package testutil

import (
	"database/sql"
	"testing"

	"github.com/nattapongd/Fund-Compare-Backend/internal/repository"
	"github.com/nattapongd/Fund-Compare-Backend/internal/sec"
	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// DefaultMinCountHard is the minimum eligible cohort size used by test
// service wiring unless a test overrides it.
const DefaultMinCountHard = 5

func NewTestPeerStatsService(t *testing.T, db *sql.DB) *service.PeerStatsService {
	t.Helper()

	return NewTestPeerStatsServiceWithMinCount(t, db, DefaultMinCountHard)
}

func NewTestPeerStatsServiceWithMinCount(t *testing.T, db *sql.DB, minCountHard int) *service.PeerStatsService {
	t.Helper()

	fundRepo := repository.NewFundRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	statsRepo := repository.NewPeerStatsRepository(db)

	return service.NewPeerStatsService(
		fundRepo,
		snapshotRepo,
		statsRepo,
		minCountHard,
	)
}

func NewTestRankingService(t *testing.T, db *sql.DB) *service.RankingService {
	t.Helper()

	return NewTestRankingServiceWith(t, db, NewTestPeerStatsService(t, db), DefaultMinCountHard)
}

// NewTestRankingServiceWith wires a RankingService around an arbitrary
// stats provider, typically a counting wrapper.
func NewTestRankingServiceWith(t *testing.T, db *sql.DB, stats service.PeerStatsProvider, minCountHard int) *service.RankingService {
	t.Helper()

	fundRepo := repository.NewFundRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	return service.NewRankingService(
		fundRepo,
		snapshotRepo,
		stats,
		minCountHard,
	)
}

func NewTestClassificationService(t *testing.T, db *sql.DB, secClient sec.Client) *service.ClassificationService {
	t.Helper()

	fundRepo := repository.NewFundRepository(db)

	return service.NewClassificationService(
		fundRepo,
		secClient,
	)
}

func NewTestFundService(t *testing.T, db *sql.DB) *service.FundService {
	t.Helper()

	return service.NewFundService(repository.NewFundRepository(db))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
