package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/secret-santa/internal/errs"
)

func TestAuth_RegisterLoginLogout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	id, sess, err := e.auth.Register(ctx, " Ann ", "Ann@Example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "Ann", id.Name)
	require.Equal(t, "ann@example.com", id.Email)
	require.NotEmpty(t, sess.Token)

	me, err := e.auth.Me(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, id, me)

	stored := e.user(t, id)
	require.NotEmpty(t, stored.PwdHash)
	require.NotContains(t, string(stored.PwdHash), "secret")
	require.Empty(t, stored.Groups)

	id2, sess2, err := e.auth.Login(ctx, "ANN@example.com", "secret", "10.0.0.1:5000")
	require.NoError(t, err)
	require.Equal(t, id.UserID, id2.UserID)
	require.NotEqual(t, sess.Token, sess2.Token)

	require.NoError(t, e.auth.Logout(ctx, sess2.Token))
	_, err = e.auth.Me(ctx, sess2.Token)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	// the first session is still valid
	_, err = e.auth.Me(ctx, sess.Token)
	require.NoError(t, err)
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct{ name, email, pw string }{
		{"", "a@b.c", "pw"},
		{"A", "", "pw"},
		{"A", "a@b.c", ""},
		{"A", "not-an-email", "pw"},
	}
	for _, c := range cases {
		_, _, err := e.auth.Register(ctx, c.name, c.email, c.pw)
		require.ErrorIs(t, err, errs.ErrValidation, "%+v", c)
	}
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.auth.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)
	_, _, err = e.auth.Register(ctx, "Other Ann", "ANN@example.com", "pw2")
	require.ErrorIs(t, err, errs.ErrEmailTaken)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestAuth_Login_NoEnumeration(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "bob")

	_, _, errWrong := e.auth.Login(ctx, "bob@example.com", "nope", "1.1.1.1")
	_, _, errUnknown := e.auth.Login(ctx, "nobody@example.com", "nope", "1.1.1.1")
	require.ErrorIs(t, errWrong, errs.ErrUnauthorized)
	require.ErrorIs(t, errUnknown, errs.ErrUnauthorized)
	require.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestAuth_Login_RateLimited(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "carl")

	// policy in newEnv blocks on the third failure
	for i := 0; i < 2; i++ {
		_, _, err := e.auth.Login(ctx, "carl@example.com", "bad", "9.9.9.9")
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	}
	_, _, err := e.auth.Login(ctx, "carl@example.com", "bad", "9.9.9.9")
	require.ErrorIs(t, err, errs.ErrRateLimited)

	// even the right password is refused while blocked
	_, _, err = e.auth.Login(ctx, "carl@example.com", "pw-carl", "9.9.9.9")
	require.ErrorIs(t, err, errs.ErrRateLimited)

	// another client is not affected
	_, _, err = e.auth.Login(ctx, "carl@example.com", "pw-carl", "8.8.8.8")
	require.NoError(t, err)
}

func TestAuth_Me_Empty(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.auth.Me(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}
