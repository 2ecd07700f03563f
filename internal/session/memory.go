package session

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secret-santa/internal/errs"
	"github.com/and161185/secret-santa/internal/model"
)

type memEntry struct {
	id  model.Identity
	exp time.Time
}

// Memory keeps opaque random tokens in process memory. A restart logs everyone out.
type Memory struct {
	mu  sync.Mutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an in-memory store with the given token lifetime.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

// Issue creates a new token for id.
func (s *Memory) Issue(_ context.Context, id model.Identity) (model.Session, error) {
	tok, err := uuid.NewV4()
	if err != nil {
		return model.Session{}, err
	}
	exp := s.now().Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.m[tok.String()] = memEntry{id: id, exp: exp}
	return model.Session{Token: tok.String(), ExpiresAt: exp}, nil
}

// Resolve returns the identity bound to token.
func (s *Memory) Resolve(_ context.Context, token string) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[token]
	if !ok {
		return model.Identity{}, errs.ErrUnauthorized
	}
	if !s.now().Before(e.exp) {
		delete(s.m, token)
		return model.Identity{}, errs.ErrUnauthorized
	}
	return e.id, nil
}

// Revoke forgets token.
func (s *Memory) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[token]; !ok {
		return errs.ErrUnauthorized
	}
	delete(s.m, token)
	return nil
}

// Len returns the number of live entries.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Memory) purgeLocked() {
	now := s.now()
	for k, e := range s.m {
		if !now.Before(e.exp) {
			delete(s.m, k)
		}
	}
}
