package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/secret-santa/internal/crypto"
	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/limiter"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
	"github.com/and161185/secret-santa/internal/session"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a user and signs them in.
	Register(ctx context.Context, name, email, password string) (model.Identity, model.Session, error)
	// Login applies rate limiting by (email, ip) and authenticates the user.
	Login(ctx context.Context, email, password, ip string) (model.Identity, model.Session, error)
	// Logout revokes token.
	Logout(ctx context.Context, token string) error
	// Me resolves token to the signed-in identity.
	Me(ctx context.Context, token string) (model.Identity, error)
}

// AuthOptions carries the optional collaborators of AuthServiceImpl.
type AuthOptions struct {
	Hasher  pkgcrypto.Hasher
	Limiter limiter.Limiter
	Log     *zap.Logger
	Metrics Metrics
}

type AuthServiceImpl struct {
	users    collection[model.User]
	sessions session.Store
	hasher   pkgcrypto.Hasher
	lim      limiter.Limiter
	log      *zap.Logger
	now      func() time.Time
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserStore, sessions session.Store, opt AuthOptions) *AuthServiceImpl {
	if opt.Hasher == (pkgcrypto.Hasher{}) {
		opt.Hasher = pkgcrypto.Default()
	}
	if opt.Limiter == nil {
		opt.Limiter = limiter.NewMemory(limiter.DefaultPolicy())
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	if opt.Metrics == nil {
		opt.Metrics = nopMetrics{}
	}
	return &AuthServiceImpl{
		users:    collection[model.User]{store: users, name: repository.Users, backoff: defaultBackoff, metrics: opt.Metrics},
		sessions: sessions,
		hasher:   opt.Hasher,
		lim:      opt.Limiter,
		log:      opt.Log,
		now:      time.Now,
	}
}

// normalizeEmail makes email comparison case-insensitive.
func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates a new user record with a salted password hash.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (model.Identity, model.Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return model.Identity{}, model.Session{}, errs.Validation("name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Identity{}, model.Session{}, errs.Validation("malformed email %q", email)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	hash, salt, err := s.hasher.New(password)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	u := model.User{
		ID:        uid,
		Name:      name,
		Email:     email,
		PwdHash:   hash,
		PwdSalt:   salt,
		Groups:    []uuid.UUID{},
		CreatedAt: s.now().UTC(),
	}

	_, err = mutate(ctx, s.users, func(users []model.User) ([]model.User, struct{}, error) {
		for i := range users {
			if normalizeEmail(users[i].Email) == email {
				return nil, struct{}{}, errs.ErrEmailTaken
			}
		}
		return append(users, u), struct{}{}, nil
	})
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}

	id := model.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
	sess, err := s.sessions.Issue(ctx, id)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.String()))
	return id, sess, nil
}

// Login authenticates with rate limiting by (email, ip).
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Identity, model.Session, error) {
	email = normalizeEmail(email)
	subject := limiter.LoginSubject(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, subject, ipHash)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	if !allowed {
		return model.Identity{}, model.Session{}, errs.ErrRateLimited
	}

	users, err := s.users.load(ctx)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	var found *model.User
	for i := range users {
		if normalizeEmail(users[i].Email) == email {
			found = &users[i]
			break
		}
	}

	if found == nil || !s.hasher.Verify(password, found.PwdSalt, found.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, subject, ipHash); ferr == nil && blocked {
			s.log.Warn("login blocked", zap.String("subject", subject))
			return model.Identity{}, model.Session{}, errs.ErrRateLimited
		}
		return model.Identity{}, model.Session{}, errs.ErrUnauthorized
	}

	// best-effort reset
	_ = s.lim.Success(ctx, subject, ipHash)

	id := model.Identity{UserID: found.ID, Name: found.Name, Email: found.Email}
	sess, err := s.sessions.Issue(ctx, id)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	return id, sess, nil
}

// Logout revokes the session token.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Me resolves the session token.
func (s *AuthServiceImpl) Me(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, errs.ErrUnauthorized
	}
	return s.sessions.Resolve(ctx, token)
}
