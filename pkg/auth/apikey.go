package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
)

// KeyVerifier checks the static capability key presented on admin signup.
// Pluggable so the configured key can be rotated to a hashed form without
// touching handler code.
type KeyVerifier interface {
	Verify(presented string) bool
}

// NewKeyVerifier picks a strategy from the configured key material: an
// argon2id hash gets hash comparison, anything else constant-time equality.
func NewKeyVerifier(configured string) KeyVerifier {
	if strings.HasPrefix(configured, "$argon2id$") {
		return &argon2KeyVerifier{hash: configured}
	}
	return &plainKeyVerifier{key: configured}
}

type plainKeyVerifier struct {
	key string
}

func (v *plainKeyVerifier) Verify(presented string) bool {
	if v.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.key), []byte(presented)) == 1
}

type argon2KeyVerifier struct {
	hash string
}

func (v *argon2KeyVerifier) Verify(presented string) bool {
	match, err := argon2id.ComparePasswordAndHash(presented, v.hash)
	return err == nil && match
}
