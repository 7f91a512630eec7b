package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/repository"
	"github.com/heliohq/claims-portal/pkg/auth"
	"github.com/heliohq/claims-portal/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFrom returns the authenticated session claims, or nil when the
// request passed through no auth middleware.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// Guard carries everything the route guards need: token verification plus
// the account lookups that back the revocation checks.
type Guard struct {
	secret  string
	users   repository.UserRepository
	admins  repository.AdminRepository
	limiter repository.RateLimiter
}

func NewGuard(secret string, users repository.UserRepository, admins repository.AdminRepository, limiter repository.RateLimiter) *Guard {
	return &Guard{secret: secret, users: users, admins: admins, limiter: limiter}
}

// Authenticate resolves the session cookie (or bearer token) into claims,
// rejecting tokens issued before the account's last password change or
// for accounts that no longer exist.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			response.Error(w, r, response.Unauthorized("You are not logged in"))
			return
		}

		claims, err := auth.Parse(token, g.secret)
		if err != nil {
			response.Error(w, r, response.Unauthorized("Invalid token. Please log in again"))
			return
		}

		changedAt, err := g.passwordChangedAt(r.Context(), claims)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		if claims.IssuedAt != nil && changedAt != nil && changedAt.After(claims.IssuedAt.Time) {
			response.Error(w, r, response.Unauthorized("Password was recently changed. Please log in again"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, logger.AccountIDKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// passwordChangedAt also confirms the account behind the token still
// exists and is active.
func (g *Guard) passwordChangedAt(ctx context.Context, claims *auth.Claims) (*time.Time, error) {
	if claims.IsUser() {
		user, err := g.users.FindByID(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, response.Unauthorized("The account for this token no longer exists")
		}
		return user.PasswordChangedAt, nil
	}

	admin, err := g.admins.FindByID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, response.Unauthorized("The account for this token no longer exists")
	}
	return admin.PasswordChangedAt, nil
}

// RequireRoles gates a route to the listed roles. Runs after Authenticate.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFrom(r.Context())
			if claims == nil {
				response.Error(w, r, response.Unauthorized("You are not logged in"))
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, r, response.Forbidden("You do not have permission to perform this action"))
		})
	}
}

// RequireKycComplete blocks users who have not finished KYC.
func RequireKycComplete(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || !claims.IsUser() {
			response.Error(w, r, response.Unauthorized("You are not logged in"))
			return
		}
		if !*claims.IsKycComplete {
			response.Error(w, r, response.Forbidden("Please complete KYC to access this resource"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit throttles a route per client IP inside a rolling window.
func (g *Guard) RateLimit(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := g.limiter.Allow(r.Context(), name+":"+clientIP(r), limit, window)
			if err != nil {
				response.Error(w, r, err)
				return
			}
			if !allowed {
				response.Error(w, r, response.NewAppError(http.StatusTooManyRequests, "Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
