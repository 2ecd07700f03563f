// Package filestore keeps each collection as one JSON document on disk.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
)

// document is the on-disk envelope. Legacy files hold a bare JSON array instead.
type document[T any] struct {
	Version int64 `json:"version"`
	Records []T   `json:"records"`
}

// Collection implements repository.CollectionStore over a single JSON file.
// The mutex makes compare-and-write atomic within the process only.
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

var (
	_ repository.UserStore  = (*Collection[model.User])(nil)
	_ repository.GroupStore = (*Collection[model.Group])(nil)
)

// New constructs a collection stored at dir/<name>.json, creating dir if needed.
func New[T any](dir string, name repository.Collection) (*Collection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Collection[T]{path: filepath.Join(dir, string(name)+".json")}, nil
}

// Open returns both collections rooted at dir.
func Open(dir string) (*repository.Stores, error) {
	users, err := New[model.User](dir, repository.Users)
	if err != nil {
		return nil, err
	}
	groups, err := New[model.Group](dir, repository.Groups)
	if err != nil {
		return nil, err
	}
	return &repository.Stores{Users: users, Groups: groups, Close: func() error { return nil }}, nil
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the whole collection.
func (c *Collection[T]) Load(ctx context.Context) (repository.Snapshot[T], error) {
	if err := ctx.Err(); err != nil {
		return repository.Snapshot[T]{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Save overwrites the collection if nobody saved since baseVer.
func (c *Collection[T]) Save(ctx context.Context, records []T, baseVer int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := c.read()
	if err != nil {
		return 0, err
	}
	if cur.Version != baseVer {
		return 0, fmt.Errorf("%s: %w", filepath.Base(c.path), errs.ErrVersionConflict)
	}
	if records == nil {
		records = []T{}
	}
	doc := document[T]{Version: baseVer + 1, Records: records}
	if err := c.write(doc); err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (c *Collection[T]) read() (repository.Snapshot[T], error) {
	b, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return repository.Snapshot[T]{Records: []T{}}, nil
	}
	if err != nil {
		return repository.Snapshot[T]{}, fmt.Errorf("read %s: %w", c.path, err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return repository.Snapshot[T]{Records: []T{}}, nil
	}

	if b[0] == '[' {
		recs, err := decodeLegacy[T](b)
		if err != nil {
			return repository.Snapshot[T]{}, fmt.Errorf("decode %s: %w", c.path, err)
		}
		return repository.Snapshot[T]{Records: recs}, nil
	}

	var doc document[T]
	if err := json.Unmarshal(b, &doc); err != nil {
		return repository.Snapshot[T]{}, fmt.Errorf("decode %s: %w", c.path, err)
	}
	if doc.Records == nil {
		doc.Records = []T{}
	}
	return repository.Snapshot[T]{Records: doc.Records, Version: doc.Version}, nil
}

// write replaces the file through a temp file + rename so readers never see a torn document.
func (c *Collection[T]) write(doc document[T]) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err = enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
