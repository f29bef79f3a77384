package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/bilingual-site/internal/models"
)

// Principal is the identity decoded from a verified token.
type Principal struct {
	SubjectID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// PrincipalFromUser builds the token payload for u.
func PrincipalFromUser(u models.User) Principal {
	return Principal{
		SubjectID: u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Claims is the JWT body. The subject carries SubjectID.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, &p)
}

// FromContext returns the principal attached by the access gate, or nil.
func FromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p == nil {
		return nil
	}
	cp := *p
	return &cp
}
