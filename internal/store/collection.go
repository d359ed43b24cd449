// Package store implements a generic flat-file record store. Each
// collection is a single JSON array on disk; every operation loads the
// whole array, and every mutation rewrites it through an atomic
// temp-file-and-rename so a crash mid-write never corrupts the file.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound indicates that no record matches the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrKeyConflict indicates an append whose key is already present.
	ErrKeyConflict = errors.New("record key already exists")
)

// Collection persists a homogeneous set of records identified by a key
// function. Mutations hold a write lock for the whole
// read-modify-write-persist sequence; reads may run concurrently.
type Collection[T any] struct {
	mu   sync.RWMutex
	path string
	key  func(T) string
}

// NewCollection creates a collection backed by the JSON array at path.
// The parent directory is created if needed; the file itself is created
// lazily (a missing file reads as an empty collection).
func NewCollection[T any](path string, key func(T) string) (*Collection[T], error) {
	if key == nil {
		return nil, errors.New("key function is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create collection dir: %w", err)
	}
	return &Collection[T]{path: path, key: key}, nil
}

// Init materializes an empty collection file if none exists yet.
func (c *Collection[T]) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat collection file: %w", err)
	}
	return c.persist([]T{})
}

// ListAll returns every record in storage order.
func (c *Collection[T]) ListAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.load()
}

// FindByKey returns the first record whose key equals key, or ErrNotFound.
func (c *Collection[T]) FindByKey(ctx context.Context, key string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.load()
	if err != nil {
		return zero, err
	}
	for _, rec := range records {
		if c.key(rec) == key {
			return rec, nil
		}
	}
	return zero, ErrNotFound
}

// Append adds rec to the end of the collection and persists it.
// Returns ErrKeyConflict if a record with the same key already exists.
func (c *Collection[T]) Append(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	k := c.key(rec)
	for _, existing := range records {
		if c.key(existing) == k {
			return ErrKeyConflict
		}
	}
	return c.persist(append(records, rec))
}

// ReplaceByKey removes the first record matching key and appends rec,
// so the replacement moves to the end of the collection. Storage is left
// untouched when no record matches.
func (c *Collection[T]) ReplaceByKey(ctx context.Context, key string, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range records {
		if c.key(existing) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	records = append(records[:idx], records[idx+1:]...)
	return c.persist(append(records, rec))
}

// DeleteByKey removes the first record matching key and persists the
// reduced collection.
func (c *Collection[T]) DeleteByKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	for i, existing := range records {
		if c.key(existing) == key {
			return c.persist(append(records[:i], records[i+1:]...))
		}
	}
	return ErrNotFound
}

func (c *Collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection file: %w", err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", filepath.Base(c.path), err)
	}
	return records, nil
}

// persist writes records to a temp file in the same directory, syncs it
// and renames it over the collection file. Callers must hold the write lock.
func (c *Collection[T]) persist(records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", filepath.Base(c.path), err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp collection file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp collection file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp collection file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp collection file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp collection file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replace collection file: %w", err)
	}
	return nil
}
