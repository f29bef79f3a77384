package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/models/dto"
	"github.com/hongminglow/bilingual-site/internal/storage/memory"
)

func newAuthMux(t *testing.T) (*http.ServeMux, *memory.Store, *auth.JWTService) {
	t.Helper()
	store := memory.NewUserStore()
	tokens := newTokens(t)
	mux := http.NewServeMux()
	NewAuthHandler(store, tokens, auth.NewCookieWriter(true), testLogger()).Register(mux)
	return mux, store, tokens
}

func TestLogin_Success(t *testing.T) {
	mux, store, tokens := newAuthMux(t)
	alice := createUser(t, store, "alice", "s3cret-pass", models.RoleAdmin)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "s3cret-pass",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var body dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))

	assert.Equal(t, alice.ID, body.User.ID)
	assert.NotNil(t, body.User.LastLoginAt)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), alice.PasswordHash)

	principal, err := tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.PrincipalFromUser(alice), principal)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
	assert.True(t, cookies[0].Secure)

	stored, err := store.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLogin_AcceptsEmailAsIdentifier(t *testing.T) {
	mux, store, _ := newAuthMux(t)
	createUser(t, store, "bob", "another-pass", models.RoleUser)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"identifier": "bob@example.com",
		"password":   "another-pass",
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_Failures(t *testing.T) {
	mux, store, _ := newAuthMux(t)
	createUser(t, store, "alice", "s3cret-pass", models.RoleAdmin)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "bad json", body: `{"username":`, status: http.StatusBadRequest},
		{name: "missing password", body: `{"username":"alice"}`, status: http.StatusBadRequest},
		{name: "missing username", body: `{"password":"x"}`, status: http.StatusBadRequest},
		{name: "unknown user", body: `{"username":"mallory","password":"s3cret-pass"}`, status: http.StatusUnauthorized},
		{name: "wrong password", body: `{"username":"alice","password":"nope-nope"}`, status: http.StatusUnauthorized},
	}

	var unauthorizedBodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
			if tt.status == http.StatusUnauthorized {
				unauthorizedBodies = append(unauthorizedBodies, rec.Body.String())
			}
		})
	}

	require.Len(t, unauthorizedBodies, 2)
	assert.Equal(t, unauthorizedBodies[0], unauthorizedBodies[1])
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	mux, _, _ := newAuthMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	mux, _, _ := newAuthMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestMe(t *testing.T) {
	mux, store, _ := newAuthMux(t)
	alice := createUser(t, store, "alice", "s3cret-pass", models.RoleEditor)

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, asPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), alice))
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			Principal auth.Principal `json:"principal"`
			User      models.Summary `json:"user"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
		assert.Equal(t, "alice", data.Principal.Username)
		assert.Equal(t, alice.ID, data.User.ID)
	})
}
