package namedb

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/proptree/pkg/proptree/internalerr"
)

// SQLiteStore persists the dictionary in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a dictionary database with WAL mode
// enabled.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, internalerr.ErrStoreUnavailable)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS equivalent_names (
	name TEXT NOT NULL,
	equivalent TEXT NOT NULL,
	score REAL NOT NULL CHECK (score > 0 AND score <= 1),
	PRIMARY KEY(name, equivalent)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert adds or replaces one equivalence. Names are stored in their lookup
// form.
func (s *SQLiteStore) Upsert(ctx context.Context, name, equivalent string, score float64) error {
	if score <= 0 || score > 1 {
		return fmt.Errorf("score %v for %q: %w", score, name, internalerr.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO equivalent_names (name, equivalent, score) VALUES (?, ?, ?)
ON CONFLICT(name, equivalent) DO UPDATE SET score=excluded.score;
`, key(name), equivalent, score)
	return err
}

// Equivalents returns the stored equivalents of name, best first.
func (s *SQLiteStore) Equivalents(ctx context.Context, name string) ([]Equivalent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT equivalent, score FROM equivalent_names WHERE name=? ORDER BY score DESC, equivalent`, key(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Equivalent
	for rows.Next() {
		var e Equivalent
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// All returns every row ordered by name.
func (s *SQLiteStore) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, equivalent, score FROM equivalent_names ORDER BY name, equivalent`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Equivalent, &e.Score); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equivalent_names`).Scan(&n)
	return n, err
}
