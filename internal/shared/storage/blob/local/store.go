package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"reporthub-backend/internal/shared/storage/blob"
	"reporthub-backend/internal/shared/util"
)

// Store implements blob.Store on a local filesystem rooted at baseDir, with
// one subdirectory per report.
type Store struct {
	fs      afero.Fs
	baseDir string
}

// New creates a local blob store rooted at baseDir.
func New(fs afero.Fs, baseDir string) *Store {
	return &Store{fs: fs, baseDir: baseDir}
}

// Save writes the reader to disk under the report's directory with a random
// name that preserves the original extension, and returns the relative key.
func (s *Store) Save(ctx context.Context, reportID string, fileName string, contentType string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, fmt.Errorf("sanitize file name: %w", err)
	}

	finalName := util.NewID() + strings.ToLower(filepath.Ext(sanitized))

	dirPath := filepath.Join(s.baseDir, reportID)
	if err := s.fs.MkdirAll(dirPath, 0o755); err != nil {
		return "", 0, fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, finalName)
	f, err := s.fs.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return "", 0, fmt.Errorf("write body: %w", err)
	}
	_ = contentType

	return filepath.Join(reportID, finalName), written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	exists, err := afero.Exists(s.fs, fullPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if !exists {
		return nil, blob.ErrNotFound
	}

	f, err := s.fs.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the object if present. Deleting an absent object is not an
// error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(s.fs, fullPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", key, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Remove(fullPath); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is present at the given key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, fullPath)
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ blob.Store = (*Store)(nil)
