// Package cryptox wraps password hashing for the credential flow.
//
// Hashes are bcrypt with a per-call random salt. Verification separates a
// plain mismatch (false, nil) from a malformed stored hash, which is an
// operational fault and reported as an error.
package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vmatveev/registerd/internal/common"
)

// hashCost is the bcrypt work factor. bcrypt.DefaultCost (10) matches the
// original deployment and keeps login latency in the tens of milliseconds.
const hashCost = bcrypt.DefaultCost

// HashPassword produces a salted one-way hash of password. Each call draws a
// fresh salt, so hashing the same password twice yields different hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hashing error: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
// A mismatch returns (false, nil); a hash that bcrypt cannot parse returns
// common.ErrInvalidHash so callers do not confuse corruption with a bad login.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", common.ErrInvalidHash, err)
}
