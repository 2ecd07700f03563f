package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
)

type fakeStore struct {
	recs      []model.Group
	ver       int64
	conflicts int // next N saves fail with a version conflict
	loadErr   error
	saveErr   error
	loads     int
	saves     int
}

var _ repository.GroupStore = (*fakeStore)(nil)

func (f *fakeStore) Load(context.Context) (repository.Snapshot[model.Group], error) {
	f.loads++
	if f.loadErr != nil {
		return repository.Snapshot[model.Group]{}, f.loadErr
	}
	cp := append([]model.Group(nil), f.recs...)
	return repository.Snapshot[model.Group]{Records: cp, Version: f.ver}, nil
}

func (f *fakeStore) Save(_ context.Context, recs []model.Group, base int64) (int64, error) {
	f.saves++
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return 0, errs.ErrVersionConflict
	}
	if base != f.ver {
		return 0, errs.ErrVersionConflict
	}
	f.recs = recs
	f.ver++
	return f.ver, nil
}

func quick() retry.Backoff { return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond)) }

func testColl(st *fakeStore, m Metrics) collection[model.Group] {
	return collection[model.Group]{store: st, name: repository.Groups, backoff: quick, metrics: m}
}

func appendGroup(name string) func([]model.Group) ([]model.Group, string, error) {
	return func(gs []model.Group) ([]model.Group, string, error) {
		return append(gs, model.Group{Name: name}), name, nil
	}
}

func TestMutate_RetriesOnConflict(t *testing.T) {
	t.Parallel()
	st := &fakeStore{conflicts: 2}
	m := &fakeMetrics{}

	got, err := mutate(context.Background(), testColl(st, m), appendGroup("g"))
	require.NoError(t, err)
	require.Equal(t, "g", got)
	require.Equal(t, 3, st.loads)
	require.Len(t, st.recs, 1)
	require.Equal(t, int64(1), st.ver)
	require.Equal(t, 2, m.conflicts[repository.Groups])
}

func TestMutate_GivesUp(t *testing.T) {
	t.Parallel()
	st := &fakeStore{conflicts: 100}

	_, err := mutate(context.Background(), testColl(st, nopMetrics{}), appendGroup("g"))
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	require.Equal(t, 4, st.saves) // first try + 3 retries
	require.Empty(t, st.recs)
}

func TestMutate_NilRecordsSkipSave(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}

	got, err := mutate(context.Background(), testColl(st, nopMetrics{}),
		func([]model.Group) ([]model.Group, int, error) { return nil, 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Zero(t, st.saves)
}

func TestMutate_ErrorsAreNotRetried(t *testing.T) {
	t.Parallel()
	boom := errors.New("disk")

	st := &fakeStore{saveErr: boom}
	_, err := mutate(context.Background(), testColl(st, nopMetrics{}), appendGroup("g"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, st.saves)

	st = &fakeStore{loadErr: boom}
	_, err = mutate(context.Background(), testColl(st, nopMetrics{}), appendGroup("g"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, st.loads)

	st = &fakeStore{}
	_, err = mutate(context.Background(), testColl(st, nopMetrics{}),
		func([]model.Group) ([]model.Group, int, error) { return nil, 0, errs.ErrNotFound })
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 1, st.loads)
}

func TestGroups_FailedSaveLeavesGroupActive(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	ann, bob := e.register(t, "ann"), e.register(t, "bob")
	cg := e.createGroup(t, ann, model.GroupSpec{})
	_, err := e.groups.Join(ctx, bob, cg.Code, "")
	require.NoError(t, err)

	snap, err := e.stores.Groups.Load(ctx)
	require.NoError(t, err)
	st := &fakeStore{recs: snap.Records, ver: snap.Version, saveErr: errors.New("disk full")}
	e.groups.groups.store = st

	_, err = e.groups.Draw(ctx, ann, cg.ID)
	require.Error(t, err)
	require.Equal(t, model.StatusActive, st.recs[0].Status)
	require.Empty(t, st.recs[0].Assignments)
}
