package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the dettato SQLite database.
type DB struct {
	*sql.DB
	Path string

	now func() time.Time
}

// Option configures a DB at open time.
type Option func(*DB)

// WithClock overrides the wall clock used for note timestamps and
// retention cutoffs.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// DefaultDBPath returns the default database path: ~/.dettato/notes.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".dettato", "notes.db"), nil
}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, and runs migrations.
func Open(path string, opts ...Option) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return initDB(sqlDB, path, opts)
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory(opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	return initDB(sqlDB, ":memory:", opts)
}

func initDB(sqlDB *sql.DB, path string, opts []Option) (*DB, error) {
	db := &DB{DB: sqlDB, Path: path, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// Now returns the database clock's current time in UTC.
func (db *DB) Now() time.Time {
	return db.now().UTC()
}
