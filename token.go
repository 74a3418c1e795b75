package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// EmailVerificationWindow is how long a verification link stays valid.
	EmailVerificationWindow = 24 * time.Hour
	// PasswordResetWindow is how long a reset link stays valid.
	PasswordResetWindow = time.Hour

	tokenEntropyBytes = 32
)

// IssueToken mints an opaque single-use token. The raw value is handed
// to the account holder exactly once, embedded in an outbound link; only
// the hash is ever persisted.
func IssueToken(ttl time.Duration) (raw, hash string, expires time.Time, err error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}

	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), time.Now().Add(ttl), nil
}

// HashToken returns the persisted one-way digest of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyToken compares a presented raw token against a persisted hash in
// constant time.
func VerifyToken(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}
	computed := HashToken(raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
