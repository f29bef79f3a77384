package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocales = []string{"en", "zh"}

func TestRoutePolicy_Match(t *testing.T) {
	policy := DefaultRoutePolicy()

	tests := []struct {
		path      string
		protected bool
		kind      RouteKind
	}{
		{path: "/en/admin", protected: true, kind: RouteKindPage},
		{path: "/zh/admin/users", protected: true, kind: RouteKindPage},
		{path: "/fr/admin/users", protected: true, kind: RouteKindPage},
		{path: "/en/administrator", protected: false},
		{path: "/en/about", protected: false},
		{path: "/", protected: false},
		{path: "/en/login", protected: false},
		{path: "/api/admin/users", protected: true, kind: RouteKindAPI},
		{path: "/api/auth/me", protected: true, kind: RouteKindAPI},
		{path: "/api/auth/login", protected: false},
		{path: "/en/./admin", protected: true, kind: RouteKindPage},
		{path: "//en//admin/", protected: true, kind: RouteKindPage},
		{path: "/en/login/../admin", protected: true, kind: RouteKindPage},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rule, ok := policy.Match(tt.path, testLocales)
			assert.Equal(t, tt.protected, ok)
			if tt.protected {
				assert.Equal(t, tt.kind, rule.Kind)
			}
		})
	}
}

func TestRoutePolicy_PublicOverridesProtectedPrefix(t *testing.T) {
	policy := RoutePolicy{
		Protected: []RouteRule{{Prefix: "/{locale}", Kind: RouteKindPage}},
		Public:    []string{"/{locale}/login"},
	}

	_, ok := policy.Match("/en/login", testLocales)
	assert.False(t, ok)

	_, ok = policy.Match("/en/news", testLocales)
	assert.True(t, ok)

	// Exclusions only apply to known locales.
	_, ok = policy.Match("/fr/login", testLocales)
	assert.True(t, ok)
}

func TestRoutePolicy_LongestPrefixWins(t *testing.T) {
	policy := RoutePolicy{
		Protected: []RouteRule{
			{Prefix: "/{locale}/admin", Kind: RouteKindPage},
			{Prefix: "/{locale}/admin/api", Kind: RouteKindAPI},
		},
	}

	rule, ok := policy.Match("/en/admin/api/things", testLocales)
	require.True(t, ok)
	assert.Equal(t, RouteKindAPI, rule.Kind)
}

func TestLoadRoutePolicy(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
protected:
  - prefix: /{locale}/dashboard
    kind: page
  - prefix: /api/private
    kind: api
public:
  - /{locale}/dashboard/help
`), 0o600))

	policy, err := LoadRoutePolicy(file)
	require.NoError(t, err)
	require.Len(t, policy.Protected, 2)

	rule, ok := policy.Match("/zh/dashboard", testLocales)
	require.True(t, ok)
	assert.Equal(t, RouteKindPage, rule.Kind)

	_, ok = policy.Match("/zh/dashboard/help", testLocales)
	assert.False(t, ok)
}

func TestLoadRoutePolicy_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"unknown kind":    "protected:\n  - prefix: /x\n    kind: widget\n",
		"relative prefix": "protected:\n  - prefix: x\n    kind: api\n",
		"empty":           "public:\n  - /login\n",
		"bad yaml":        "protected: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(file, []byte(body), 0o600))
			_, err := LoadRoutePolicy(file)
			require.Error(t, err)
		})
	}

	_, err := LoadRoutePolicy(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestRoutePolicy_LiteralBeatsPlaceholderAtSameDepth(t *testing.T) {
	policy := DefaultRoutePolicy()

	rule, ok := policy.Match("/api/admin", testLocales)
	require.True(t, ok)
	assert.Equal(t, RouteKindAPI, rule.Kind)
	assert.Equal(t, "/api/admin", rule.Prefix)
}
