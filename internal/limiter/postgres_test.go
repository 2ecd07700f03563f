package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var testPolicy = Policy{Window: 5 * time.Minute, MaxFails: 5, BlockFor: 10 * time.Minute}

func newPG(t *testing.T) (*PG, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	l := NewPG(mock, testPolicy)
	l.now = func() time.Time { return now }
	return l, mock, now
}

func TestPG_Allow_NoRow(t *testing.T) {
	l, mock, _ := newPG(t)
	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter`).
		WithArgs("login:a@b.c", []byte("h")).
		WillReturnError(pgx.ErrNoRows)

	ok, dur, err := l.Allow(context.Background(), "login:a@b.c", []byte("h"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, dur)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Allow_Blocked(t *testing.T) {
	l, mock, now := newPG(t)
	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter`).
		WithArgs("g", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(3 * time.Minute)))

	ok, dur, err := l.Allow(context.Background(), "g", []byte("h"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 3*time.Minute, dur)
}

func TestPG_Allow_Expired(t *testing.T) {
	l, mock, now := newPG(t)
	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter`).
		WithArgs("g", []byte("h")).
		WillReturnRows(pgxmock.NewRows([]string{"blocked_until"}).AddRow(now.Add(-time.Second)))

	ok, _, err := l.Allow(context.Background(), "g", []byte("h"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPG_Allow_DBError(t *testing.T) {
	l, mock, _ := newPG(t)
	mock.ExpectQuery(`SELECT blocked_until FROM auth_limiter`).
		WithArgs("g", []byte("h")).
		WillReturnError(errors.New("db boom"))

	ok, _, err := l.Allow(context.Background(), "g", []byte("h"))
	require.Error(t, err)
	require.False(t, ok)
}

func TestPG_Success(t *testing.T) {
	l, mock, _ := newPG(t)
	mock.ExpectExec(`INSERT INTO auth_limiter`).
		WithArgs("g", []byte("h")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, l.Success(context.Background(), "g", []byte("h")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Failure_BelowThreshold(t *testing.T) {
	l, mock, _ := newPG(t)
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("g", []byte("h"), testPolicy.Window).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(2))

	blocked, dur, err := l.Failure(context.Background(), "g", []byte("h"))
	require.NoError(t, err)
	require.False(t, blocked)
	require.Zero(t, dur)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Failure_BlocksAtThreshold(t *testing.T) {
	l, mock, now := newPG(t)
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("g", []byte("h"), testPolicy.Window).
		WillReturnRows(pgxmock.NewRows([]string{"fail_count"}).AddRow(5))
	mock.ExpectExec(`UPDATE auth_limiter SET blocked_until=\$3`).
		WithArgs("g", []byte("h"), now.Add(testPolicy.BlockFor)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	blocked, dur, err := l.Failure(context.Background(), "g", []byte("h"))
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, testPolicy.BlockFor, dur)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPG_Failure_QueryError(t *testing.T) {
	l, mock, _ := newPG(t)
	mock.ExpectQuery(`RETURNING fail_count`).
		WithArgs("g", []byte("h"), testPolicy.Window).
		WillReturnError(errors.New("query error"))

	_, _, err := l.Failure(context.Background(), "g", []byte("h"))
	require.Error(t, err)
}

func TestHashIP_Determinism(t *testing.T) {
	t.Parallel()
	a := HashIP("1.2.3.4:123")
	require.Equal(t, a, HashIP("1.2.3.4:123"))
	require.NotEqual(t, a, HashIP("5.6.7.8:321"))
	require.Len(t, a, 32)
}
