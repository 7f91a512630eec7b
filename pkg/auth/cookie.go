package auth

import (
	"net/http"
	"net/url"
	"time"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "jwt"

type CookieOptions struct {
	ExpiresDays int
	Production  bool
	FrontendURL string // cookie domain is scoped to this origin in production
}

func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(opts.ExpiresDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   opts.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.Production {
		cookie.SameSite = http.SameSiteStrictMode
		if u, err := url.Parse(opts.FrontendURL); err == nil && u.Hostname() != "" {
			cookie.Domain = u.Hostname()
		}
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie must carry the same Domain/Secure/SameSite attributes
// as SetSessionCookie, or browsers treat it as a different cookie and keep
// the session alive.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.Production {
		cookie.SameSite = http.SameSiteStrictMode
		if u, err := url.Parse(opts.FrontendURL); err == nil && u.Hostname() != "" {
			cookie.Domain = u.Hostname()
		}
	}
	http.SetCookie(w, cookie)
}
