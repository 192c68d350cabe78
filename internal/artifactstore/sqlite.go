package artifactstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
)

const createArtifactsTable = `
CREATE TABLE IF NOT EXISTS artifacts (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite stores artifacts in a single table, keyed by artifact name. It lets
// the flat-file layout be swapped for a real database without touching
// orchestration logic.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path with WAL mode enabled.
func NewSQLite(path string) (*SQLite, error) {
	err := naming.EnsureDir(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	_, err = db.Exec(createArtifactsTable)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to create artifacts table: %w (close: %w)", err, closeErr)
		}

		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Download reads the artifact stored under key.
func (s *SQLite) Download(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM artifacts WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("artifact %q: %w", key, core.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to read artifact %q: %w", key, err)
	}

	return data, nil
}

// Upload writes the artifact under key, replacing any prior content.
func (s *SQLite) Upload(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write artifact %q: %w", key, err)
	}

	return nil
}

// Exists reports whether an artifact is stored under key.
func (s *SQLite) Exists(ctx context.Context, key string) (bool, error) {
	var one int

	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM artifacts WHERE key = ?`, key).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check artifact %q: %w", key, err)
	}

	return true, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
