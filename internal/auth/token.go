package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued token. Tokens are not renewed.
const TokenTTL = 7 * 24 * time.Hour

// TokenService issues and verifies signed session tokens. Every entry point
// (access gate, login, API handlers) shares one implementation.
type TokenService interface {
	Issue(p Principal) (string, error)
	Verify(token string) (Principal, error)
}

// TokenOption customises a JWTService.
type TokenOption func(*JWTService)

// WithIssuer sets the "iss" claim written and required on tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *JWTService) { s.issuer = issuer }
}

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *JWTService) { s.now = now }
}

// WithTTL overrides TokenTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *JWTService) { s.ttl = ttl }
}

// JWTService is the HS256 TokenService. It is the only holder of the secret
// and is safe for concurrent use.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

var _ TokenService = (*JWTService)(nil)

// NewJWTService creates a service signing with secret.
func NewJWTService(secret []byte, opts ...TokenOption) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	s := &JWTService{
		secret: append([]byte(nil), secret...),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}
	s.parser = jwt.NewParser(parserOpts...)
	return s, nil
}

// Issue signs a token for p that expires TokenTTL after issuance.
func (s *JWTService) Issue(p Principal) (string, error) {
	if p.SubjectID == "" || p.Role == "" {
		return "", errors.New("principal subject and role are required")
	}
	now := s.now()
	claims := Claims{
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry and returns the principal.
func (s *JWTService) Verify(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrMissingToken
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// WithValidMethods already pins HS256; the type check guards the key type.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Principal{}, mapJWTError(err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidSignature
	}
	if claims.Subject == "" || claims.Role == "" {
		return Principal{}, fmt.Errorf("%w: missing sub or role", ErrMalformedToken)
	}

	return Principal{
		SubjectID: claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
