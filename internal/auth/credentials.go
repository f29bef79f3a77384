package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// UserLookup is the slice of the user store the verifier reads.
type UserLookup interface {
	FindActiveByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
}

// CredentialVerifier checks a username-or-email and password against the
// stored bcrypt hash. It knows nothing about tokens.
type CredentialVerifier struct {
	users UserLookup
}

// NewCredentialVerifier creates a verifier backed by users.
func NewCredentialVerifier(users UserLookup) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// dummyHash is compared against when no user matches so unknown identifiers
// cost the same bcrypt work as wrong passwords.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no-such-user-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generate dummy hash: %v", err))
	}
	return hash
})

// Verify returns the matching active user. Unknown or ambiguous identifiers,
// inactive accounts and wrong passwords all yield ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, identifier, password string) (models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.User{}, ErrMissingCredentials
	}

	user, err := v.users.FindActiveByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrAmbiguous) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword derives the bcrypt hash stored for a new password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
