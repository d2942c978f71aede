package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nattapongd/Fund-Compare-Backend/internal/apperrors"
	"github.com/nattapongd/Fund-Compare-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the
// fund_return_snapshot table. Snapshots are an append-only time series;
// "latest" always means the single snapshot with the greatest as_of_date
// at or before the query date.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// classAbbrConditions returns the SQL predicate and args matching a fund's
// class abbreviation in the snapshot table. An empty class also matches the
// "main"/"Main" spellings some snapshots carry.
func classAbbrConditions(classAbbr string) (string, []any) {
	if classAbbr == "" {
		return "class_abbr_name IN ('', 'main', 'Main')", nil
	}
	return "class_abbr_name = ?", []any{classAbbr}
}

// GetLatestSnapshot retrieves the latest return snapshot for a fund/class
// with as_of_date at or before the given date.
// Returns apperrors.ErrSnapshotNotFound when no snapshot exists.
func (r *SnapshotRepository) GetLatestSnapshot(projID, classAbbr string, asOfDate time.Time) (model.ReturnSnapshot, error) {
	classCond, classArgs := classAbbrConditions(classAbbr)

	//#nosec G202 -- Safe: classCond is built from fixed strings, not user input
	query := `
		SELECT id, proj_id, class_abbr_name, as_of_date,
		       ytd_return, trailing_1y_return, trailing_3y_return, trailing_5y_return,
		       eligible_1y, eligible_3y, eligible_5y
		FROM fund_return_snapshot
		WHERE proj_id = ?
		AND ` + classCond + `
		AND as_of_date <= ?
		ORDER BY as_of_date DESC
		LIMIT 1
	`

	args := append([]any{projID}, classArgs...)
	args = append(args, asOfDate.Format("2006-01-02"))

	snapshot, err := scanSnapshot(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return model.ReturnSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.ReturnSnapshot{}, fmt.Errorf("failed to query fund_return_snapshot: %w", err)
	}

	return snapshot, nil
}

// GetLatestSnapshots retrieves the latest snapshot at or before asOfDate for
// each member fund/class, in a single query using a window function.
// The result map is keyed by the normalized "proj_id|class_abbr" identifier;
// members without any snapshot are absent from the map.
func (r *SnapshotRepository) GetLatestSnapshots(members []model.Fund, asOfDate time.Time) (map[string]model.ReturnSnapshot, error) {
	if len(members) == 0 {
		return map[string]model.ReturnSnapshot{}, nil
	}

	conditions := make([]string, 0, len(members))
	args := []any{}
	for _, m := range members {
		classCond, classArgs := classAbbrConditions(m.ClassAbbr)
		conditions = append(conditions, "(proj_id = ? AND "+classCond+")")
		args = append(args, m.ProjID)
		args = append(args, classArgs...)
	}

	//#nosec G202 -- Safe: conditions are built from fixed fragments with placeholders
	query := `
		SELECT id, proj_id, class_abbr_name, as_of_date,
		       ytd_return, trailing_1y_return, trailing_3y_return, trailing_5y_return,
		       eligible_1y, eligible_3y, eligible_5y
		FROM (
			SELECT *,
			       ROW_NUMBER() OVER (
			           PARTITION BY proj_id, class_abbr_name
			           ORDER BY as_of_date DESC
			       ) AS row_num
			FROM fund_return_snapshot
			WHERE (` + strings.Join(conditions, " OR ") + `)
			AND as_of_date <= ?
		)
		WHERE row_num = 1
	`

	args = append(args, asOfDate.Format("2006-01-02"))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := map[string]model.ReturnSnapshot{}

	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		key := snapshot.ProjID + "|" + NormalizeClassAbbr(snapshot.ClassAbbr)
		snapshots[key] = snapshot
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

// InsertSnapshot appends a return snapshot. Snapshots are never mutated or
// deleted; ingestion only ever appends new as-of dates.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, s model.ReturnSnapshot) error {
	query := `
		INSERT INTO fund_return_snapshot (
			id, proj_id, class_abbr_name, as_of_date,
			ytd_return, trailing_1y_return, trailing_3y_return, trailing_5y_return,
			eligible_1y, eligible_3y, eligible_5y
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		s.ProjID,
		s.ClassAbbr,
		s.AsOfDate.Format("2006-01-02"),
		s.YTDReturn,
		s.Trailing1YReturn,
		s.Trailing3YReturn,
		s.Trailing5YReturn,
		s.Eligible1Y,
		s.Eligible3Y,
		s.Eligible5Y,
	)
	if err != nil {
		return fmt.Errorf("failed to insert return snapshot: %w", err)
	}

	return nil
}

func scanSnapshot(row rowScanner) (model.ReturnSnapshot, error) {
	var s model.ReturnSnapshot
	var dateStr string
	var ytd, r1y, r3y, r5y sql.NullFloat64

	err := row.Scan(
		&s.ID,
		&s.ProjID,
		&s.ClassAbbr,
		&dateStr,
		&ytd,
		&r1y,
		&r3y,
		&r5y,
		&s.Eligible1Y,
		&s.Eligible3Y,
		&s.Eligible5Y,
	)
	if err != nil {
		return model.ReturnSnapshot{}, err
	}

	s.AsOfDate, err = ParseTime(dateStr)
	if err != nil {
		return model.ReturnSnapshot{}, fmt.Errorf("failed to parse as_of_date: %w", err)
	}

	s.YTDReturn = nullableFloat(ytd)
	s.Trailing1YReturn = nullableFloat(r1y)
	s.Trailing3YReturn = nullableFloat(r3y)
	s.Trailing5YReturn = nullableFloat(r5y)

	return s, nil
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	value := f.Float64
	return &value
}
