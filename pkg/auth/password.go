package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// dummyHash is a valid cost-12 bcrypt hash that no password maps to in
// practice. Login paths compare against it when the account does not
// exist so both outcomes cost exactly one hash comparison.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckDummy burns one bcrypt comparison against the fixed dummy hash.
// Always returns false.
func CheckDummy(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password)) == nil
}
