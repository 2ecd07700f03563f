package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_BlocksAfterMaxFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemory(Policy{Window: time.Minute, MaxFails: 3, BlockFor: 5 * time.Minute})
	l.now = func() time.Time { return now }
	ip := HashIP("10.0.0.1")

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "g", ip)
		require.NoError(t, err)
		require.False(t, blocked)
	}
	blocked, dur, err := l.Failure(ctx, "g", ip)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 5*time.Minute, dur)

	ok, retry, err := l.Allow(ctx, "g", ip)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 5*time.Minute, retry)

	// other clients and subjects are unaffected
	ok, _, _ = l.Allow(ctx, "g", HashIP("10.0.0.2"))
	require.True(t, ok)
	ok, _, _ = l.Allow(ctx, "other", ip)
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	ok, _, _ = l.Allow(ctx, "g", ip)
	require.True(t, ok)
}

func TestMemory_WindowResetsCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()
	l := NewMemory(Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	l.now = func() time.Time { return now }

	blocked, _, _ := l.Failure(ctx, "s", nil)
	require.False(t, blocked)
	now = now.Add(2 * time.Minute)
	blocked, _, _ = l.Failure(ctx, "s", nil)
	require.False(t, blocked)
}

func TestMemory_SuccessResets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewMemory(Policy{Window: time.Hour, MaxFails: 2, BlockFor: time.Hour})

	_, _, _ = l.Failure(ctx, "s", nil)
	require.NoError(t, l.Success(ctx, "s", nil))
	blocked, _, _ := l.Failure(ctx, "s", nil)
	require.False(t, blocked)
}

func TestSubjects(t *testing.T) {
	t.Parallel()
	require.Equal(t, "login:a@b.c", LoginSubject("a@b.c"))
	require.Equal(t, "group:42", GroupSubject("42"))
}
