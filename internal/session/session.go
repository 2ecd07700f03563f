// Package session issues and resolves bearer tokens for authenticated users.
package session

import (
	"context"

	"github.com/and161185/secret-santa/internal/model"
)

// Store issues, resolves and revokes session tokens.
// Resolve and Revoke fail with errs.ErrUnauthorized for unknown or expired tokens.
type Store interface {
	Issue(ctx context.Context, id model.Identity) (model.Session, error)
	Resolve(ctx context.Context, token string) (model.Identity, error)
	Revoke(ctx context.Context, token string) error
}
