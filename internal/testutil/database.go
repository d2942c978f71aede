package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production database schema.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Asset Management Company table
		CREATE TABLE amc (
			unique_id VARCHAR(20) NOT NULL PRIMARY KEY,
			name_th VARCHAR(255),
			name_en VARCHAR(255) NOT NULL,
			last_upd_date DATETIME
		);

		-- Fund table
		CREATE TABLE fund (
			proj_id VARCHAR(50) NOT NULL,
			class_abbr_name VARCHAR(50) NOT NULL DEFAULT '',
			fund_name_th VARCHAR(500),
			fund_name_en VARCHAR(500) NOT NULL,
			fund_abbr VARCHAR(50),
			amc_id VARCHAR(20) NOT NULL,
			fund_status VARCHAR(10) NOT NULL,
			category VARCHAR(100),
			aimc_category VARCHAR(100),
			aimc_category_source VARCHAR(20),
			risk_level VARCHAR(20),
			peer_focus VARCHAR(100),
			peer_currency VARCHAR(10),
			peer_fx_hedged_flag VARCHAR(10),
			peer_distribution_policy VARCHAR(1),
			peer_key VARCHAR(255),
			peer_key_fallback_level INTEGER NOT NULL DEFAULT 3,
			last_upd_date DATETIME,
			PRIMARY KEY (proj_id, class_abbr_name),
			FOREIGN KEY(amc_id) REFERENCES amc(unique_id)
		);

		-- Trailing return snapshots
		CREATE TABLE fund_return_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			proj_id VARCHAR(50) NOT NULL,
			class_abbr_name VARCHAR(50) NOT NULL DEFAULT '',
			as_of_date DATE NOT NULL,
			ytd_return FLOAT,
			trailing_1y_return FLOAT,
			trailing_3y_return FLOAT,
			trailing_5y_return FLOAT,
			eligible_1y BOOLEAN NOT NULL DEFAULT 0,
			eligible_3y BOOLEAN NOT NULL DEFAULT 0,
			eligible_5y BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Peer cohort aggregates
		CREATE TABLE peer_stats (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			peer_key VARCHAR(255) NOT NULL,
			horizon VARCHAR(3) NOT NULL,
			as_of_date DATE NOT NULL,
			peer_count_total INTEGER NOT NULL,
			peer_count_eligible INTEGER NOT NULL,
			peer_median_return FLOAT,
			peer_p25_return FLOAT,
			peer_p75_return FLOAT,
			stats_json TEXT NOT NULL,
			computed_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			CONSTRAINT uq_peer_stats_natural_key UNIQUE (peer_key, horizon, as_of_date)
		);

		-- System setting table
		CREATE TABLE system_setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			value TEXT NOT NULL,
			encrypted BOOLEAN NOT NULL DEFAULT 0,
			updated_at DATETIME
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS ix_fund_status ON fund(fund_status);
		CREATE INDEX IF NOT EXISTS ix_fund_peer_key ON fund(peer_key);
		CREATE INDEX IF NOT EXISTS ix_fund_class_abbr ON fund(class_abbr_name);
		CREATE INDEX IF NOT EXISTS ix_snapshot_fund_date ON fund_return_snapshot(proj_id, class_abbr_name, as_of_date);
		CREATE INDEX IF NOT EXISTS ix_snapshot_date ON fund_return_snapshot(as_of_date);
		CREATE INDEX IF NOT EXISTS ix_peer_stats_lookup ON peer_stats(peer_key, horizon, as_of_date);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"peer_stats",
		"fund_return_snapshot",
		"fund",
		"amc",
		"system_setting",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
