package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie carrying the session token.
const CookieName = "auth-token"

// Resolver locates a candidate token on a request. It does not verify it.
type Resolver struct {
	CookieName string
}

// NewResolver returns a resolver reading the default auth cookie.
func NewResolver() Resolver {
	return Resolver{CookieName: CookieName}
}

// Resolve returns the bearer token from the Authorization header when it is
// well formed, otherwise the auth cookie value.
func (r Resolver) Resolve(req *http.Request) (string, bool) {
	if token, ok := bearerToken(req.Header.Get("Authorization")); ok {
		return token, true
	}

	name := r.CookieName
	if name == "" {
		name = CookieName
	}
	cookie, err := req.Cookie(name)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
