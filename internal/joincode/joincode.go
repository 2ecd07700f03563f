// Package joincode generates short human-friendly group invite codes.
package joincode

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet omits I, O, 0 and 1 so codes read unambiguously.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Length of every code.
	Length = 6
	// maxTries bounds re-sampling against taken codes.
	maxTries = 64
)

// ErrExhausted is returned when no free code was found within the retry bound.
var ErrExhausted = errors.New("join code space exhausted")

var generate = func() (string, error) { return gonanoid.Generate(Alphabet, Length) }

// New returns a code for which taken reports false.
func New(taken func(code string) bool) (string, error) {
	for i := 0; i < maxTries; i++ {
		code, err := generate()
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrExhausted
}

// Valid reports whether s is shaped like a join code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !inAlphabet(s[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	for i := 0; i < len(Alphabet); i++ {
		if Alphabet[i] == c {
			return true
		}
	}
	return false
}
