// Package store implements the catalog store on top of a local SQLite file.
// It owns every persisted entity and exposes single-statement CRUD operations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time check to ensure SQLiteStore implements CatalogStore
var _ interfaces.CatalogStore = (*SQLiteStore)(nil)

// Config locates the database file and its bootstrap inputs.
type Config struct {
	Path       string
	SchemaPath string // empty: embedded schema.sql
	SeedPath   string // empty: embedded seed.yaml
}

// SQLiteStore is the CatalogStore backed by database/sql and go-sqlite3.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (and bootstraps when missing) the database described by cfg.
func Open(ctx context.Context, cfg Config) (*SQLiteStore, error) {
	created, err := ensureDataDir(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single-user tool: one connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Dangling classification references are part of the data model.
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = OFF;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, path: cfg.Path}

	if created {
		if err := s.bootstrap(ctx, cfg); err != nil {
			_ = db.Close()
			// Leave no half-initialised file behind so the next start retries.
			_ = os.Remove(cfg.Path)
			return nil, err
		}
		logging.Info("Database created", "path", cfg.Path)
	}

	return s, nil
}

// ensureDataDir creates the parent directory and reports whether the
// database file is about to be created.
func ensureDataDir(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure data dir: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case os.IsNotExist(err):
		return true, nil
	default:
		return false, fmt.Errorf("stat database file: %w", err)
	}
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
