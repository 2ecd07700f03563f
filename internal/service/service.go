// Package service contains application services for accounts and Secret Santa groups.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/repository"
)

// Metrics receives domain events. A nil Metrics in options is replaced with a no-op.
type Metrics interface {
	// ObserveDraw records one draw outcome and how many shuffles it used.
	ObserveDraw(attempts int, err error)
	// VersionConflict counts lost compare-and-swap races per collection.
	VersionConflict(collection repository.Collection)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDraw(int, error)                 {}
func (nopMetrics) VersionConflict(repository.Collection) {}

// defaultBackoff bounds how often a read-modify-write cycle is replayed after a lost race.
func defaultBackoff() retry.Backoff {
	b := retry.NewExponential(2 * time.Millisecond)
	b = retry.WithJitterPercent(25, b)
	b = retry.WithCappedDuration(200*time.Millisecond, b)
	return retry.WithMaxRetries(12, b)
}

// collection pairs a store with what mutate needs to retry against it.
type collection[T any] struct {
	store   repository.CollectionStore[T]
	name    repository.Collection
	backoff func() retry.Backoff
	metrics Metrics
}

// load returns the current records without locking anything.
func (c collection[T]) load(ctx context.Context) ([]T, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// mutate loads a fresh snapshot, applies fn and saves the result against the
// snapshot's version, replaying the whole cycle when another writer won the race.
// fn may run several times and must only touch the records it is given.
// Returning nil records skips the write.
func mutate[T, R any](ctx context.Context, c collection[T], fn func(recs []T) ([]T, R, error)) (R, error) {
	var out R
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		snap, err := c.store.Load(ctx)
		if err != nil {
			return err
		}
		recs, res, err := fn(snap.Records)
		if err != nil {
			return err
		}
		if recs != nil {
			if _, err := c.store.Save(ctx, recs, snap.Version); err != nil {
				if errors.Is(err, errs.ErrVersionConflict) {
					c.metrics.VersionConflict(c.name)
					return retry.RetryableError(err)
				}
				return err
			}
		}
		out = res
		return nil
	})
	return out, err
}
