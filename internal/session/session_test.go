package session

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
)

func ident() model.Identity {
	return model.Identity{UserID: uuid.Must(uuid.NewV4()), Name: "Ann", Email: "ann@example.com"}
}

// both stores must honour the same contract
func TestStores_IssueResolveRevoke(t *testing.T) {
	t.Parallel()
	j, err := NewJWT([]byte("test-key-0123456789"), time.Hour)
	require.NoError(t, err)

	for name, st := range map[string]Store{"memory": NewMemory(time.Hour), "jwt": j} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := ident()

			sess, err := st.Issue(ctx, id)
			require.NoError(t, err)
			require.NotEmpty(t, sess.Token)
			require.True(t, sess.ExpiresAt.After(time.Now()))

			got, err := st.Resolve(ctx, sess.Token)
			require.NoError(t, err)
			require.Equal(t, id, got)

			require.NoError(t, st.Revoke(ctx, sess.Token))
			_, err = st.Resolve(ctx, sess.Token)
			require.ErrorIs(t, err, errs.ErrUnauthorized)

			_, err = st.Resolve(ctx, "garbage")
			require.ErrorIs(t, err, errs.ErrUnauthorized)
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()
	st := NewMemory(time.Minute)
	st.now = func() time.Time { return now }

	sess, err := st.Issue(ctx, ident())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = st.Resolve(ctx, sess.Token)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, 0, st.Len())
}

func TestMemory_IssuePurgesExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()
	st := NewMemory(time.Minute)
	st.now = func() time.Time { return now }

	_, _ = st.Issue(ctx, ident())
	_, _ = st.Issue(ctx, ident())
	now = now.Add(time.Hour)
	_, _ = st.Issue(ctx, ident())
	require.Equal(t, 1, st.Len())
}

func TestMemory_RevokeUnknown(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, NewMemory(time.Minute).Revoke(context.Background(), "nope"), errs.ErrUnauthorized)
}

func TestJWT_EmptyKey(t *testing.T) {
	t.Parallel()
	_, err := NewJWT(nil, time.Hour)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, err := NewJWT([]byte("k"), time.Minute)
	require.NoError(t, err)
	now := time.Now()
	st.now = func() time.Time { return now }

	sess, err := st.Issue(ctx, ident())
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	_, err = st.Resolve(ctx, sess.Token)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestJWT_WrongKeyAndAlg(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, _ := NewJWT([]byte("key-a"), time.Hour)
	b, _ := NewJWT([]byte("key-b"), time.Hour)

	sess, err := a.Issue(ctx, ident())
	require.NoError(t, err)
	_, err = b.Resolve(ctx, sess.Token)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	// unsigned token
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "x",
		Subject:   uuid.Must(uuid.NewV4()).String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Resolve(ctx, raw)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestJWT_RevokeKeepsOtherSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st, _ := NewJWT([]byte("k"), time.Hour)
	id := ident()

	s1, _ := st.Issue(ctx, id)
	s2, _ := st.Issue(ctx, id)
	require.NotEqual(t, s1.Token, s2.Token)

	require.NoError(t, st.Revoke(ctx, s1.Token))
	got, err := st.Resolve(ctx, s2.Token)
	require.NoError(t, err)
	require.Equal(t, id.UserID, got.UserID)
}
