package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Cache persisted in a SQLite database, so rendered pages
// survive restarts.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the database at path, ensures the data
// directory exists, and creates the pages table.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a page is being written; writers wait
	// on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLite{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    key TEXT PRIMARY KEY,
    body BLOB NOT NULL,
    content_type TEXT NOT NULL,
    generated_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
`)
	return err
}

func (s *SQLite) Get(ctx context.Context, key string) (Entry, error) {
	var (
		e           Entry
		generatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT body, content_type, generated_at FROM pages WHERE key = ? AND expires_at > ?`,
		key, s.now().UnixNano(),
	).Scan(&e.Body, &e.ContentType, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, err
	}
	e.GeneratedAt = time.Unix(0, generatedAt)
	return e, nil
}

func (s *SQLite) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pages (key, body, content_type, generated_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    body = excluded.body,
    content_type = excluded.content_type,
    generated_at = excluded.generated_at,
    expires_at = excluded.expires_at
`, key, e.Body, e.ContentType, e.GeneratedAt.UnixNano(), s.now().Add(ttl).UnixNano())
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE key = ?`, key)
	return err
}

func (s *SQLite) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pages`)
	return err
}

// Prune removes expired rows and returns how many were deleted.
func (s *SQLite) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
