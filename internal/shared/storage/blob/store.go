package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound reports that no object exists at the given key.
var ErrNotFound = errors.New("blob not found")

// Store defines the contract for saving and retrieving attachment blobs.
// Keys are storage-relative locators, never absolute paths or public URLs.
type Store interface {
	Save(ctx context.Context, reportID string, fileName string, contentType string, r io.Reader) (key string, sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
