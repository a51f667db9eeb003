package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/domain/shared"
)

// FilesystemStore archives documents under a directory on local disk.
// Intended for development and single-node deployments.
type FilesystemStore struct {
	basePath string
}

// NewFilesystemStore creates a filesystem-backed document store rooted at basePath
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("docstore base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create docstore directory: %w", err)
	}
	return &FilesystemStore{basePath: basePath}, nil
}

// Put writes the document to disk. The content type is ignored; the file
// extension in the key carries the format.
func (s *FilesystemStore) Put(_ context.Context, key string, data []byte, _ string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	return nil
}

// Get reads a previously archived document from disk
func (s *FilesystemStore) Get(_ context.Context, key string) ([]byte, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document %s: %w", key, err)
	}
	return data, nil
}

// resolve joins the key under the base path and rejects traversal outside it
func (s *FilesystemStore) resolve(key string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	base := filepath.Clean(s.basePath)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid document key: %s", key)
	}
	return full, nil
}

var _ delivery.DocumentStore = (*FilesystemStore)(nil)
