package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. Admin tokens carry id+role only;
// user tokens additionally carry the KYC completion flag.
type Claims struct {
	ID            string `json:"id"`
	Role          string `json:"role"`
	IsKycComplete *bool  `json:"isKycComplete,omitempty"`
	jwt.RegisteredClaims
}

// IsUser reports whether the token was issued for a portal user rather
// than an admin.
func (c *Claims) IsUser() bool {
	return c.IsKycComplete != nil
}

func NewAdminToken(id, role, secret string, ttl time.Duration) (string, error) {
	return signToken(Claims{ID: id, Role: role}, secret, ttl)
}

func NewUserToken(id, role string, isKycComplete bool, secret string, ttl time.Duration) (string, error) {
	return signToken(Claims{ID: id, Role: role, IsKycComplete: &isKycComplete}, secret, ttl)
}

func signToken(claims Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Audience:  []string{"claims-portal-api"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
