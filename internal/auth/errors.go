package auth

import (
	"errors"
	"net/http"
)

// Authentication and authorization failures. Token failures are told apart
// internally but all reach the client as "Unauthorized".
var (
	ErrMissingCredentials        = errors.New("missing credentials")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrMissingToken              = errors.New("missing token")
	ErrMalformedToken            = errors.New("malformed token")
	ErrExpiredToken              = errors.New("token expired")
	ErrInvalidSignature          = errors.New("invalid token signature")
	ErrInsufficientRole          = errors.New("insufficient role")
	ErrSelfModificationForbidden = errors.New("cannot modify own account")
)

// Classify returns a stable class name for err, safe to log.
func Classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInsufficientRole):
		return "insufficient_role"
	case errors.Is(err, ErrSelfModificationForbidden):
		return "self_modification_forbidden"
	default:
		return "internal"
	}
}

// HTTPStatus maps err onto the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrMalformedToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientRole), errors.Is(err, ErrSelfModificationForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing text for err.
func PublicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "username and password are required"
	case http.StatusUnauthorized:
		if errors.Is(err, ErrInvalidCredentials) {
			return "invalid credentials"
		}
		return "Unauthorized"
	case http.StatusForbidden:
		if errors.Is(err, ErrSelfModificationForbidden) {
			return "cannot modify your own account"
		}
		return "Forbidden"
	default:
		return "internal server error"
	}
}
