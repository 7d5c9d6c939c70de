// Package store persists resolved resource content in SQLite,
// so that resources survive process restarts.
//
// It is used as the second level of the resource manager:
// the in-memory map is consulted first, then the store,
// then the scene loader.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS resources (
	fingerprint TEXT PRIMARY KEY,
	scene       TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  INTEGER NOT NULL
)`

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

func defaults() config {
	return config{busyTimeout: 10_000, synchronous: "NORMAL"}
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// SQLite is a content store backed by an SQLite database.
// It is safe for concurrent use.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path, applying
// the WAL and busy timeout pragmas, and creates the schema.
func Open(path string, opts ...Option) (*SQLite, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range append(pragmas, schema) {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// OpenMemory opens an in-memory store for testing.
// It sets MaxOpenConns(1) so that all queries hit the same database,
// and registers t.Cleanup to close it.
func OpenMemory(t testing.TB) *SQLite {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Get returns the content stored for fp.
func (s *SQLite) Get(ctx context.Context, fp string) (string, bool, error) {
	var content string
	err := s.db.QueryRowContext(ctx, "SELECT content FROM resources WHERE fingerprint = ?", fp).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %s: %w", fp, err)
	}
	return content, true, nil
}

// Put stores content for fp, replacing any previous value.
func (s *SQLite) Put(ctx context.Context, fp, scene, content string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO resources (fingerprint, scene, content, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET scene = excluded.scene, content = excluded.content, created_at = excluded.created_at`,
		fp, scene, content, s.now().Unix())
	if err != nil {
		return fmt.Errorf("store: put %s: %w", fp, err)
	}
	return nil
}

// Count returns the number of stored resources of a scene,
// or of all scenes when scene is empty.
func (s *SQLite) Count(ctx context.Context, scene string) (int, error) {
	var n int
	var err error
	if scene == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resources").Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resources WHERE scene = ?", scene).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
