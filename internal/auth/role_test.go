package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	admin := &Principal{SubjectID: "1", Role: "admin"}
	user := &Principal{SubjectID: "2", Role: "user"}

	require.NoError(t, RequireRole(admin, "admin"))
	require.NoError(t, RequireRole(admin, "editor", "admin"))
	require.ErrorIs(t, RequireRole(user, "admin"), ErrInsufficientRole)
	require.ErrorIs(t, RequireRole(user), ErrInsufficientRole)
	require.ErrorIs(t, RequireRole(nil, "admin"), ErrMissingToken)
}

func TestRequireRole_ForbiddenIsDistinctFromUnauthenticated(t *testing.T) {
	forbidden := RequireRole(&Principal{SubjectID: "2", Role: "user"}, "admin")
	unauthenticated := RequireRole(nil, "admin")

	assert.Equal(t, http.StatusForbidden, HTTPStatus(forbidden))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(unauthenticated))
}

func TestForbidSelf(t *testing.T) {
	admin := &Principal{SubjectID: "1", Role: "admin"}

	require.NoError(t, RequireRole(admin, "admin"))
	require.ErrorIs(t, ForbidSelf(admin, "1"), ErrSelfModificationForbidden)
	require.NoError(t, ForbidSelf(admin, "2"))
	require.ErrorIs(t, ForbidSelf(nil, "1"), ErrMissingToken)
}

func TestRequireRoleHTTP(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{name: "no principal", principal: nil, want: http.StatusUnauthorized},
		{name: "wrong role", principal: &Principal{SubjectID: "2", Role: "user"}, want: http.StatusForbidden},
		{name: "admin", principal: &Principal{SubjectID: "1", Role: "admin"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireRoleHTTP("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/3", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, called)
		})
	}
}
