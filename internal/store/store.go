// Package store persists tasks in a local SQLite database. Every
// mutation runs in its own transaction, so a crash or a concurrent pydo
// process cannot observe a half-applied state change.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

const dirPerms = 0o750

// Store holds the SQLite handle for all task CRUD and scan operations.
type Store struct {
	path string
	sql  *sql.DB
}

// Open initializes the task database at path, creating the parent
// directory and the schema as needed. A schema version mismatch is
// migrated forward; a database from a newer build is rejected.
func Open(ctx context.Context, path string) (*Store, error) {
	if ctx == nil {
		return nil, fmt.Errorf("open store: %w", ErrNilContext)
	}

	if path == "" {
		return nil, fmt.Errorf("open store: %w", ErrEmptyPath)
	}

	dbPath := filepath.Clean(path)

	err := os.MkdirAll(filepath.Dir(dbPath), dirPerms)
	if err != nil {
		return nil, fmt.Errorf("open store: create data directory: %w", err)
	}

	db, err := openSqlite(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = migrate(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Store{path: dbPath, sql: db}, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close releases the SQLite handle opened by Open.
func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}

	err := s.sql.Close()
	s.sql = nil

	if err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}

	return nil
}
