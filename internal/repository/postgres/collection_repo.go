package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
)

// CollectionRepo stores a whole collection as one JSONB row keyed by collection name.
type CollectionRepo[T any] struct {
	db   *DB
	name repository.Collection
}

var (
	_ repository.UserStore  = (*CollectionRepo[model.User])(nil)
	_ repository.GroupStore = (*CollectionRepo[model.Group])(nil)
)

// NewCollectionRepo constructs a collection repository.
func NewCollectionRepo[T any](db *DB, name repository.Collection) *CollectionRepo[T] {
	return &CollectionRepo[T]{db: db, name: name}
}

// Load selects the current records and version.
func (r *CollectionRepo[T]) Load(ctx context.Context) (repository.Snapshot[T], error) {
	const q = `SELECT version, records FROM collections WHERE name=$1`
	var (
		ver int64
		raw []byte
	)
	if err := r.db.Pool.QueryRow(ctx, q, string(r.name)).Scan(&ver, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Snapshot[T]{Records: []T{}}, nil
		}
		return repository.Snapshot[T]{}, err
	}
	recs := []T{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &recs); err != nil {
			return repository.Snapshot[T]{}, fmt.Errorf("decode %s: %w", r.name, err)
		}
	}
	return repository.Snapshot[T]{Records: recs, Version: ver}, nil
}

// Save replaces the records with optimistic concurrency on the collection version.
func (r *CollectionRepo[T]) Save(ctx context.Context, records []T, baseVer int64) (newVer int64, err error) {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", r.name, err)
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `SELECT version FROM collections WHERE name=$1 FOR UPDATE`
	const ins = `INSERT INTO collections (name, version, records) VALUES ($1,$2,$3)`
	const upd = `UPDATE collections SET version=$2, records=$3, updated_at=now() WHERE name=$1`

	var curVer int64
	scanErr := tx.QueryRow(ctx, sel, string(r.name)).Scan(&curVer)
	switch {
	case scanErr == nil:
		if curVer != baseVer {
			return 0, fmt.Errorf("%s: %w", r.name, errs.ErrVersionConflict)
		}
		newVer = curVer + 1
		if _, err = tx.Exec(ctx, upd, string(r.name), newVer, payload); err != nil {
			return 0, err
		}
	case errors.Is(scanErr, pgx.ErrNoRows):
		if baseVer != 0 {
			return 0, fmt.Errorf("%s: %w", r.name, errs.ErrVersionConflict)
		}
		newVer = 1
		if _, err = tx.Exec(ctx, ins, string(r.name), newVer, payload); err != nil {
			// a concurrent first save won the insert
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("%s: %w", r.name, errs.ErrVersionConflict)
			}
			return 0, err
		}
	default:
		return 0, scanErr
	}
	return newVer, nil
}
