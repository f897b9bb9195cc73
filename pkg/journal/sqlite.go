package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	endpoint    TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	bytes       INTEGER NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal(created_at);
`

// SQLiteStorer persists entries in a SQLite database.
type SQLiteStorer struct {
	db *sql.DB
}

// NewSQLiteStorer opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStorer(dbPath string) (*SQLiteStorer, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorer{db: db}, nil
}

func (s *SQLiteStorer) Put(ctx context.Context, entry *Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO journal
			(id, method, endpoint, url, status, kind, error, bytes, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Method,
		entry.Endpoint,
		entry.URL,
		entry.Status,
		entry.Kind,
		entry.Error,
		entry.Bytes,
		int64(entry.Duration),
		entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	return nil
}

func (s *SQLiteStorer) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, method, endpoint, url, status, kind, error, bytes, duration_ns, created_at
		FROM journal
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e          Entry
			durationNS int64
			createdAt  int64
		)
		if err := rows.Scan(
			&e.ID, &e.Method, &e.Endpoint, &e.URL, &e.Status,
			&e.Kind, &e.Error, &e.Bytes, &durationNS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationNS)
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStorer) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned entries: %w", err)
	}

	return int(n), nil
}

func (s *SQLiteStorer) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	return n, nil
}

func (s *SQLiteStorer) Close() error {
	return s.db.Close()
}
