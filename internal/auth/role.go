package auth

import (
	"net/http"

	"github.com/hongminglow/bilingual-site/internal/http/respond"
)

// RequireRole fails closed: a nil principal is unauthenticated and a role
// outside allowed is forbidden.
func RequireRole(p *Principal, allowed ...string) error {
	if p == nil {
		return ErrMissingToken
	}
	if !p.HasRole(allowed...) {
		return ErrInsufficientRole
	}
	return nil
}

// ForbidSelf rejects operations that would delete or demote the caller's own
// account, independent of role checks.
func ForbidSelf(p *Principal, targetID string) error {
	if p == nil {
		return ErrMissingToken
	}
	if p.SubjectID == targetID {
		return ErrSelfModificationForbidden
	}
	return nil
}

// RequireRoleHTTP wraps next with RequireRole against the principal attached
// by the access gate.
func RequireRoleHTTP(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := RequireRole(FromContext(r.Context()), allowed...); err != nil {
				respond.Error(w, HTTPStatus(err), PublicMessage(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
