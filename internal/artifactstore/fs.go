// Package artifactstore provides key-value stores for persisted pipeline
// artifacts. Three backends implement core.ArtifactStore: flat JSON files on
// disk (the default layout), a SQLite table, and a NATS JetStream object
// store bucket.
package artifactstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
)

const filePermissions = 0o600

// FS stores each artifact as one file under a base directory, named by its
// key. This is the canonical on-disk layout: keys like
// "<document_id>_extracted.json" land directly in the translation directory.
type FS struct {
	dir string
}

// NewFS creates a filesystem store rooted at dir, creating it when absent.
func NewFS(dir string) (*FS, error) {
	err := naming.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare artifact directory: %w", err)
	}

	return &FS{dir: dir}, nil
}

// Download reads the artifact stored under key.
func (s *FS) Download(_ context.Context, key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %q: %w", key, core.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to read artifact %q: %w", key, err)
	}

	return data, nil
}

// Upload writes the artifact under key, replacing any prior content.
func (s *FS) Upload(_ context.Context, key string, data []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write artifact %q: %w", key, err)
	}

	return nil
}

// Exists reports whether an artifact is stored under key.
func (s *FS) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return false, err
	}

	_, statErr := os.Stat(path)
	if statErr == nil {
		return true, nil
	}

	if os.IsNotExist(statErr) {
		return false, nil
	}

	return false, fmt.Errorf("failed to stat artifact %q: %w", key, statErr)
}

// keyPath resolves a key inside the base directory. Keys carrying path
// separators are rejected so a crafted key cannot escape the directory.
func (s *FS) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("%w: invalid artifact key %q", core.ErrValidation, key)
	}

	return filepath.Join(s.dir, key), nil
}
