package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/bilingual-site/internal/http/respond"
)

// GateState is a step of the per-request gate decision.
type GateState int

const (
	StateUnchecked GateState = iota
	StateResolving
	StateVerifying
	StateAllowed
	StateDenied
)

func (s GateState) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StateResolving:
		return "resolving"
	case StateVerifying:
		return "verifying"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is the outcome of gating one request.
type Decision struct {
	State     GateState
	Protected bool
	Rule      RouteRule
	Principal *Principal
	Err       error
}

// GateConfig wires the gate's collaborators.
type GateConfig struct {
	Tokens        TokenService
	Resolver      Resolver
	Policy        RoutePolicy
	Locales       []string
	DefaultLocale string
	// LoginPath may contain {locale}. Defaults to /{locale}/login.
	LoginPath string
	Logger    *slog.Logger
}

// Gate allows or denies requests to protected routes.
type Gate struct {
	tokens        TokenService
	resolver      Resolver
	policy        RoutePolicy
	locales       []string
	defaultLocale string
	loginPath     string
	logger        *slog.Logger
}

// NewGate builds a gate from cfg.
func NewGate(cfg GateConfig) *Gate {
	g := &Gate{
		tokens:        cfg.Tokens,
		resolver:      cfg.Resolver,
		policy:        cfg.Policy,
		locales:       cfg.Locales,
		defaultLocale: cfg.DefaultLocale,
		loginPath:     cfg.LoginPath,
		logger:        cfg.Logger,
	}
	if g.loginPath == "" {
		g.loginPath = "/" + LocalePlaceholder + "/login"
	}
	if g.defaultLocale == "" && len(g.locales) > 0 {
		g.defaultLocale = g.locales[0]
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Decide runs the gate state machine for r without writing a response.
func (g *Gate) Decide(r *http.Request) Decision {
	rule, protected := g.policy.Match(CleanPath(r.URL.Path), g.locales)
	if !protected {
		return Decision{State: StateAllowed}
	}

	d := Decision{State: StateResolving, Protected: true, Rule: rule}
	token, ok := g.resolver.Resolve(r)
	if !ok {
		d.State, d.Err = StateDenied, ErrMissingToken
		return d
	}

	d.State = StateVerifying
	principal, err := g.tokens.Verify(token)
	if err != nil {
		d.State, d.Err = StateDenied, err
		return d
	}

	d.State, d.Principal = StateAllowed, &principal
	return d
}

// Middleware applies the gate in front of next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		if !d.Protected {
			next.ServeHTTP(w, r)
			return
		}

		if d.State == StateAllowed {
			g.logger.DebugContext(r.Context(), "access granted",
				"path", r.URL.Path,
				"kind", d.Rule.Kind,
				"role", d.Principal.Role,
			)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *d.Principal)))
			return
		}

		g.logger.InfoContext(r.Context(), "access denied",
			"path", r.URL.Path,
			"kind", d.Rule.Kind,
			"reason", Classify(d.Err),
		)
		if d.Rule.Kind == RouteKindPage {
			http.Redirect(w, r, g.LoginRedirect(r), http.StatusFound)
			return
		}
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
	})
}

// LoginRedirect builds the locale-qualified login URL that returns to the
// originally requested path after sign-in.
func (g *Gate) LoginRedirect(r *http.Request) string {
	original := CleanPath(r.URL.Path)
	if r.URL.RawQuery != "" {
		original += "?" + r.URL.RawQuery
	}
	login := strings.ReplaceAll(g.loginPath, LocalePlaceholder, g.localeOf(original))
	return login + "?redirect=" + escapeRedirect(original)
}

// escapeRedirect query-escapes v but leaves slashes readable, so the value
// reads as /en/admin/users. A literal "%" is always escaped first, so every
// "%2F" in the escaped form came from a slash.
func escapeRedirect(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "%2F", "/")
}

func (g *Gate) localeOf(p string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	first, _, _ = strings.Cut(first, "?")
	if isLocale(first, g.locales) {
		return first
	}
	return g.defaultLocale
}
