// Package limiter throttles repeated password failures per subject and client.
//
// A subject is whatever the password protects: "login:<email>" for accounts,
// "group:<id>" for protected groups.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter controls password attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether an attempt is currently allowed and, if not, the retry-after.
	Allow(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a correct password.
	Success(ctx context.Context, subject string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, subject string, ipHash []byte) (bool, time.Duration, error)
}

// Policy is shared by all implementations.
type Policy struct {
	Window   time.Duration // failures older than this no longer count
	MaxFails int
	BlockFor time.Duration
}

// DefaultPolicy allows five failures per fifteen minutes.
func DefaultPolicy() Policy {
	return Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// LoginSubject keys attempts against an account.
func LoginSubject(email string) string { return "login:" + email }

// GroupSubject keys attempts against a protected group.
func GroupSubject(groupID string) string { return "group:" + groupID }
