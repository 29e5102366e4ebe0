package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ArtifactStore writes evidence artifacts under a configured root directory.
// The digest recorded in the database, not the path, is the identity of the
// content; the store only has to keep bytes exactly as they were written.
type ArtifactStore struct {
	root   string
	logger *zap.Logger
}

// NewArtifactStore creates the root directory if needed.
func NewArtifactStore(root string, logger *zap.Logger) (*ArtifactStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %q: %w", root, err)
	}
	return &ArtifactStore{root: root, logger: logger}, nil
}

// Save writes content to name under the root and returns the full path.
func (s *ArtifactStore) Save(name string, content []byte) (string, error) {
	path := filepath.Join(s.root, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %q: %w", name, err)
	}
	return path, nil
}

// Read returns the stored bytes at path.
func (s *ArtifactStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether a regular file is present at path.
func (s *ArtifactStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the artifact at path. Used only to undo a write whose
// database registration failed; committed evidence is never removed.
func (s *ArtifactStore) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove artifact", zap.String("path", path), zap.Error(err))
	}
}
