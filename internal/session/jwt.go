package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
)

// claims is the HS256 payload. Subject carries the user ID.
type claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWT issues self-contained signed tokens. Logout is tracked in an in-process
// deny list keyed by token ID until the token would have expired anyway.
type JWT struct {
	key    []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> exp
}

var _ Store = (*JWT)(nil)

// NewJWT constructs a JWT store signing with key.
func NewJWT(key []byte, ttl time.Duration) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("empty jwt key")
	}
	return &JWT{key: key, ttl: ttl, leeway: 30 * time.Second, now: time.Now, revoked: make(map[string]time.Time)}, nil
}

// Issue signs a token for id.
func (s *JWT) Issue(_ context.Context, id model.Identity) (model.Session, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return model.Session{}, err
	}
	now := s.now()
	exp := now.Add(s.ttl)
	c := claims{
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: signed, ExpiresAt: exp}, nil
}

// Resolve verifies token and returns the identity it carries.
func (s *JWT) Resolve(_ context.Context, token string) (model.Identity, error) {
	c, err := s.parse(token)
	if err != nil {
		return model.Identity{}, err
	}
	s.mu.Lock()
	_, gone := s.revoked[c.ID]
	s.mu.Unlock()
	if gone {
		return model.Identity{}, errs.ErrUnauthorized
	}

	uid, err := uuid.FromString(c.Subject)
	if err != nil {
		return model.Identity{}, errs.ErrUnauthorized
	}
	return model.Identity{UserID: uid, Name: c.Name, Email: c.Email}, nil
}

// Revoke denies token until its expiry.
func (s *JWT) Revoke(_ context.Context, token string) error {
	c, err := s.parse(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for jti, exp := range s.revoked {
		if now.After(exp.Add(s.leeway)) {
			delete(s.revoked, jti)
		}
	}
	s.revoked[c.ID] = c.ExpiresAt.Time
	return nil
}

func (s *JWT) parse(token string) (*claims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithLeeway(s.leeway), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || c.ID == "" {
		return nil, errs.ErrUnauthorized
	}
	return &c, nil
}
