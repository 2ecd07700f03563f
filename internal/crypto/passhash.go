// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher holds Argon2id parameters. The zero value is not usable; start from Default.
type Hasher struct {
	Time      uint32 // iterations
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   int
}

// Default returns parameters tuned for server-side hashing.
func Default() Hasher {
	return Hasher{Time: 3, MemoryKiB: 64 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
}

// ErrEmptyPassword is returned when asked to hash an empty secret.
var ErrEmptyPassword = errors.New("empty password")

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash derives a key for password using the provided salt.
func (h Hasher) Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, h.Time, h.MemoryKiB, h.Threads, h.KeyLen)
}

// New salts and hashes password, returning (hash, salt).
func (h Hasher) New(password string) ([]byte, []byte, error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}
	salt, err := RandBytes(h.SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return h.Hash([]byte(password), salt), salt, nil
}

// IsBcrypt reports whether hash is a modular-crypt bcrypt hash ($2a$, $2b$, $2y$).
// Such hashes carry their own salt and come from imported legacy records.
func IsBcrypt(hash []byte) bool {
	return len(hash) == 60 && (bytes.HasPrefix(hash, []byte("$2a$")) ||
		bytes.HasPrefix(hash, []byte("$2b$")) ||
		bytes.HasPrefix(hash, []byte("$2y$")))
}

// Verify reports whether password matches the stored hash and salt.
// Records with no stored hash never verify. A bcrypt hash stored without a
// separate salt is checked with bcrypt.
func (h Hasher) Verify(password string, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	if len(salt) == 0 && IsBcrypt(expected) {
		return bcrypt.CompareHashAndPassword(expected, []byte(password)) == nil
	}
	got := h.Hash([]byte(password), salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
