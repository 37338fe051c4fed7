// Package store holds the process-lifetime breed table.
//
// The table lives in an in-memory SQLite database. The pool is pinned to a single
// connection because every new ":memory:" connection would open a fresh, empty database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/iafilius/DoggiesWorld/src/types"
)

// DefaultDSN keeps the table in memory only.
const DefaultDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS dogs (
	id INTEGER PRIMARY KEY,
	breed_name TEXT,
	avg_height REAL,
	avg_weight REAL,
	avg_life_span REAL,
	image_url TEXT
);`

const dogColumns = `id, breed_name, avg_height, avg_weight, avg_life_span, image_url`

// Store is the dogs table.
type Store struct {
	db *sql.DB
}

// Open creates the database and an empty dogs table.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dogs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database; an in-memory table is gone afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}

// Clear deletes every row. Clearing an empty table is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dogs`); err != nil {
		return fmt.Errorf("clear dogs: %w", err)
	}
	return nil
}

// InsertAll adds recs in a single transaction; nothing is visible until the one commit.
func (s *Store) InsertAll(ctx context.Context, recs []types.BreedRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertRows(ctx, tx, recs)
	})
}

// Replace swaps the table contents for recs in one transaction.
func (s *Store) Replace(ctx context.Context, recs []types.BreedRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dogs`); err != nil {
			return fmt.Errorf("clear dogs: %w", err)
		}
		return insertRows(ctx, tx, recs)
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, recs []types.BreedRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dogs (`+dogColumns+`) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.AvgHeight, r.AvgWeight, r.AvgLifeSpan, r.ImageURL); err != nil {
			return fmt.Errorf("insert breed %d (%s): %w", r.ID, r.Name, err)
		}
	}
	return nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dogs: %w", err)
	}
	return n, nil
}

// Average returns AVG(metric) and whether any row contributed.
func (s *Store) Average(ctx context.Context, m types.Metric) (float64, bool, error) {
	if !m.Valid() {
		return 0, false, fmt.Errorf("average: invalid metric %d", int(m))
	}
	var avg sql.NullFloat64
	q := fmt.Sprintf(`SELECT AVG(%s) FROM dogs`, m.Column())
	if err := s.db.QueryRowContext(ctx, q).Scan(&avg); err != nil {
		return 0, false, fmt.Errorf("average %s: %w", m.Column(), err)
	}
	return avg.Float64, avg.Valid, nil
}

// RandomPoints returns up to n rows in random order as (name, metric value).
func (s *Store) RandomPoints(ctx context.Context, m types.Metric, n int) ([]types.ChartPoint, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("sample: invalid metric %d", int(m))
	}
	q := fmt.Sprintf(`SELECT breed_name, %s FROM dogs ORDER BY RANDOM() LIMIT ?`, m.Column())
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", m.Column(), err)
	}
	defer rows.Close()

	var out []types.ChartPoint
	for rows.Next() {
		var p types.ChartPoint
		if err := rows.Scan(&p.Breed, &p.Value); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample: %w", err)
	}
	return out, nil
}

// RandomBreed returns one random row; ok is false when the table is empty.
func (s *Store) RandomBreed(ctx context.Context) (types.BreedRecord, bool, error) {
	var r types.BreedRecord
	err := s.db.QueryRowContext(ctx, `SELECT `+dogColumns+` FROM dogs ORDER BY RANDOM() LIMIT 1`).
		Scan(&r.ID, &r.Name, &r.AvgHeight, &r.AvgWeight, &r.AvgLifeSpan, &r.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return types.BreedRecord{}, false, nil
	}
	if err != nil {
		return types.BreedRecord{}, false, fmt.Errorf("random breed: %w", err)
	}
	return r, true, nil
}

// All returns every row ordered by id.
func (s *Store) All(ctx context.Context) ([]types.BreedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+dogColumns+` FROM dogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query dogs: %w", err)
	}
	defer rows.Close()

	var out []types.BreedRecord
	for rows.Next() {
		var r types.BreedRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.AvgHeight, &r.AvgWeight, &r.AvgLifeSpan, &r.ImageURL); err != nil {
			return nil, fmt.Errorf("scan breed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dogs: %w", err)
	}
	return out, nil
}
