package library

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const seriesColumns = "id, title, year, tvdb_id, root_path, added_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeries(row rowScanner) (*Series, error) {
	s := &Series{}
	if err := row.Scan(&s.ID, &s.Title, &s.Year, &s.TVDBID, &s.RootPath, &s.AddedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func addSeries(ctx context.Context, q querier, s *Series) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO series (title, year, tvdb_id, root_path, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Title, s.Year, s.TVDBID, s.RootPath, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert series: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	s.ID = id
	s.AddedAt = now
	s.UpdatedAt = now
	return nil
}

// AddSeries inserts a new series.
// Sets ID, AddedAt, and UpdatedAt on the struct.
// Returns ErrDuplicate if a series with the same directory exists.
func (s *Store) AddSeries(ctx context.Context, series *Series) error {
	return addSeries(ctx, s.db, series)
}

// AddSeries inserts a new series within a transaction.
func (t *Tx) AddSeries(ctx context.Context, series *Series) error {
	return addSeries(ctx, t.tx, series)
}

func getSeries(ctx context.Context, q querier, id int64) (*Series, error) {
	s, err := scanSeries(q.QueryRowContext(ctx, "SELECT "+seriesColumns+" FROM series WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, mapSQLiteError(err))
	}
	return s, nil
}

// GetSeries retrieves a series by ID.
// Returns ErrNotFound if the series does not exist.
func (s *Store) GetSeries(ctx context.Context, id int64) (*Series, error) {
	return getSeries(ctx, s.db, id)
}

// GetSeries retrieves a series by ID within a transaction.
func (t *Tx) GetSeries(ctx context.Context, id int64) (*Series, error) {
	return getSeries(ctx, t.tx, id)
}

func getSeriesByPath(ctx context.Context, q querier, path string) (*Series, error) {
	s, err := scanSeries(q.QueryRowContext(ctx, "SELECT "+seriesColumns+" FROM series WHERE root_path = ?", path))
	if err != nil {
		return nil, fmt.Errorf("get series at %s: %w", path, mapSQLiteError(err))
	}
	return s, nil
}

// GetSeriesByPath retrieves the series stored for a directory.
// Returns ErrNotFound if the directory is not tracked.
func (s *Store) GetSeriesByPath(ctx context.Context, path string) (*Series, error) {
	return getSeriesByPath(ctx, s.db, path)
}

// GetSeriesByPath retrieves the series for a directory within a transaction.
func (t *Tx) GetSeriesByPath(ctx context.Context, path string) (*Series, error) {
	return getSeriesByPath(ctx, t.tx, path)
}

func listSeries(ctx context.Context, q querier, f SeriesFilter) ([]*Series, int, error) {
	var conditions []string
	var args []any

	if f.TVDBID != nil {
		conditions = append(conditions, "tvdb_id = ?")
		args = append(args, *f.TVDBID)
	}
	if f.HasTVDBID != nil {
		if *f.HasTVDBID {
			conditions = append(conditions, "tvdb_id IS NOT NULL")
		} else {
			conditions = append(conditions, "tvdb_id IS NULL")
		}
	}
	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, *f.Title)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM series "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count series: %w", err)
	}

	query := "SELECT " + seriesColumns + " FROM series " + whereClause + " ORDER BY title COLLATE NOCASE, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan series: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate series: %w", err)
	}

	return results, total, nil
}

// ListSeries returns series matching the filter, ordered by title.
// Returns (results, totalCount, error).
func (s *Store) ListSeries(ctx context.Context, f SeriesFilter) ([]*Series, int, error) {
	return listSeries(ctx, s.db, f)
}

// ListSeries returns series matching the filter within a transaction.
func (t *Tx) ListSeries(ctx context.Context, f SeriesFilter) ([]*Series, int, error) {
	return listSeries(ctx, t.tx, f)
}

func updateSeries(ctx context.Context, q querier, s *Series) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		UPDATE series SET title = ?, year = ?, tvdb_id = ?, root_path = ?, updated_at = ?
		WHERE id = ?`,
		s.Title, s.Year, s.TVDBID, s.RootPath, now, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update series %d: %w", s.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update series %d: %w", s.ID, ErrNotFound)
	}
	s.UpdatedAt = now
	return nil
}

// UpdateSeries updates an existing series and sets UpdatedAt.
// Returns ErrNotFound if the series does not exist.
func (s *Store) UpdateSeries(ctx context.Context, series *Series) error {
	return updateSeries(ctx, s.db, series)
}

// UpdateSeries updates an existing series within a transaction.
func (t *Tx) UpdateSeries(ctx context.Context, series *Series) error {
	return updateSeries(ctx, t.tx, series)
}

func deleteSeries(ctx context.Context, q querier, id int64) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM series WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete series %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteSeries removes a series by ID. Deleting a missing series is not an error.
func (s *Store) DeleteSeries(ctx context.Context, id int64) error {
	return deleteSeries(ctx, s.db, id)
}

// DeleteSeries removes a series by ID within a transaction.
func (t *Tx) DeleteSeries(ctx context.Context, id int64) error {
	return deleteSeries(ctx, t.tx, id)
}
