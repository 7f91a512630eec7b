package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewRandomToken returns a fresh 32-byte hex token and its sha256 hash.
// Only the hash is ever persisted; the raw token goes out by email.
func NewRandomToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken returns the hex sha256 digest of a raw reset/verification token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
