package grpcserver

import (
	"context"

	"github.com/and161185/secret-santa/internal/model"
)

type ctxKey string

const (
	identityKey ctxKey = "santa.identity"
	tokenKey    ctxKey = "santa.token"
)

// WithIdentity stores the authenticated caller and its bearer token in context.
func WithIdentity(ctx context.Context, id model.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	return context.WithValue(ctx, tokenKey, token)
}

// IdentityFromCtx fetches the authenticated caller from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

// TokenFromCtx fetches the bearer token the caller authenticated with.
func TokenFromCtx(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}
