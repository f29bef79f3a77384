package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage/memory"
)

var handlerTestSecret = []byte("handlers-test-secret-0123456789ab")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokens(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(handlerTestSecret)
	require.NoError(t, err)
	return svc
}

func createUser(t *testing.T, store *memory.Store, username, password, role string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, err := store.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
	return u
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asPrincipal(req *http.Request, u models.User) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.PrincipalFromUser(u)))
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
