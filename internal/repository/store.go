// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/secret-santa/internal/model"
)

// Collection names a wholesale-persisted record set.
type Collection string

const (
	// Users holds model.User records.
	Users Collection = "users"
	// Groups holds model.Group records.
	Groups Collection = "groups"
)

// Snapshot is a complete, self-consistent view of a collection as of the last save.
type Snapshot[T any] struct {
	Records []T
	Version int64 // 0 for a collection that was never saved
}

// CollectionStore loads and saves one collection as a whole.
type CollectionStore[T any] interface {
	// Load returns the current snapshot; a missing collection is empty at version 0.
	Load(ctx context.Context) (Snapshot[T], error)
	// Save atomically overwrites the collection if its version still equals baseVer
	// and returns the new version. Otherwise it fails with errs.ErrVersionConflict.
	Save(ctx context.Context, records []T, baseVer int64) (int64, error)
}

// UserStore persists the Users collection.
type UserStore = CollectionStore[model.User]

// GroupStore persists the Groups collection.
type GroupStore = CollectionStore[model.Group]

// Stores bundles both collections of one backend.
type Stores struct {
	Users  UserStore
	Groups GroupStore
	Close  func() error
}
