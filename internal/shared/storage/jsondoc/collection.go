package jsondoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Collection is a typed view over one JSON document holding a flat array of
// records. Every mutation is a full-document replacement; the collection
// mutex serializes read-modify-write cycles so overlapping mutations cannot
// drop each other's updates.
type Collection[T any] struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewCollection returns a collection backed by the named document under dir.
func NewCollection[T any](fs afero.Fs, dir, name string) *Collection[T] {
	return &Collection[T]{
		fs:   fs,
		path: filepath.Join(dir, name),
	}
}

// Read returns all records in the document. A document that does not exist
// yet reads as empty; unreadable or corrupt content is an error.
func (c *Collection[T]) Read() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLocked()
}

// Write replaces the document contents with the given records. The document
// is written to a temporary file and renamed into place so readers never see
// a half-written file.
func (c *Collection[T]) Write(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(records)
}

// Update runs a read-modify-write cycle under the collection lock. fn
// receives the current records and returns the records to persist; if fn
// returns an error nothing is written.
func (c *Collection[T]) Update(fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.readLocked()
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	return c.writeLocked(updated)
}

func (c *Collection[T]) readLocked() ([]T, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) writeLocked(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	dir := filepath.Dir(c.path)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp := c.path + "." + uuid.NewString() + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := c.fs.Rename(tmp, c.path); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", c.path, err)
	}
	return nil
}
