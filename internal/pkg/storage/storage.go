package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
)

// Store is the blob store the report pipeline writes evidence photos to. It
// is keyed by generated filename only; callers never see storage mechanics.
type Store interface {
	Save(src io.Reader, filename string) (string, error)
	Delete(filename string) error
	// Path returns a local filesystem path for the blob, or "" when the
	// backend has no local representation.
	Path(filename string) string
}

// NewStoreFromEnv selects the configured backend: S3 when S3_STORAGE_ENABLED
// is true, the local uploads directory otherwise.
func NewStoreFromEnv() Store {
	if env.GetEnv("S3_STORAGE_ENABLED", "false") == "true" {
		s3Store, err := NewS3StoreFromEnv()
		if err == nil {
			return s3Store
		}
		fiberlog.Errorf("[Storage] S3 store unavailable, falling back to local: %v", err)
	}
	return NewLocalStore(env.GetEnv("UPLOADS_DIR", "./uploads"))
}

// LocalStore writes blobs beneath a base directory on the local disk.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a local blob store rooted at baseDir.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Save streams src to baseDir/filename, creating parent directories as
// needed. The file is synced before returning so a crash immediately after a
// successful save cannot lose the blob.
func (s *LocalStore) Save(src io.Reader, filename string) (string, error) {
	fullPath := filepath.Join(s.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if err := dst.Sync(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to sync file %s: %w", fullPath, err)
	}

	return filename, nil
}

// Delete removes a stored blob. Deleting a missing blob is not an error.
func (s *LocalStore) Delete(filename string) error {
	err := os.Remove(filepath.Join(s.baseDir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the full local path of a stored blob.
func (s *LocalStore) Path(filename string) string {
	return filepath.Join(s.baseDir, filename)
}
