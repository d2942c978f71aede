package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Open opens the SQLite database and applies connection pragmas. All dates
// are stored as ISO-8601 strings and interpreted as UTC on read.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// fund.amc_id is the only enforced foreign key; busy_timeout covers the
	// cron reclassification pass writing while requests read
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	return db, nil
}

// HealthCheck reports whether the database connection is usable. Backs the
// /api/system/health endpoint.
func HealthCheck(db *sql.DB) error {
	return db.Ping()
}
