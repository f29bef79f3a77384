package auth

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// RouteKind decides how a denied request is answered.
type RouteKind string

const (
	RouteKindPage RouteKind = "page"
	RouteKindAPI  RouteKind = "api"
)

// LocalePlaceholder in a prefix matches any configured locale segment.
const LocalePlaceholder = "{locale}"

// RouteRule protects every path under Prefix.
type RouteRule struct {
	Prefix string    `yaml:"prefix"`
	Kind   RouteKind `yaml:"kind"`
}

// RoutePolicy is the protected/public route table consulted by the gate.
// Public entries win over protected ones.
type RoutePolicy struct {
	Protected []RouteRule `yaml:"protected"`
	Public    []string    `yaml:"public"`
}

// DefaultRoutePolicy protects the admin area and the session APIs.
func DefaultRoutePolicy() RoutePolicy {
	return RoutePolicy{
		Protected: []RouteRule{
			{Prefix: "/{locale}/admin", Kind: RouteKindPage},
			{Prefix: "/api/admin", Kind: RouteKindAPI},
			{Prefix: "/api/auth/me", Kind: RouteKindAPI},
			{Prefix: "/api/auth/logout", Kind: RouteKindAPI},
		},
		Public: []string{
			"/{locale}/login",
			"/api/auth/login",
		},
	}
}

// LoadRoutePolicy reads a YAML policy file.
func LoadRoutePolicy(file string) (RoutePolicy, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return RoutePolicy{}, fmt.Errorf("reading route policy: %w", err)
	}
	var policy RoutePolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return RoutePolicy{}, fmt.Errorf("parsing route policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return RoutePolicy{}, fmt.Errorf("validating route policy: %w", err)
	}
	return policy, nil
}

// Validate checks every rule has an absolute prefix and a known kind.
func (p RoutePolicy) Validate() error {
	if len(p.Protected) == 0 {
		return fmt.Errorf("no protected routes defined")
	}
	for _, rule := range p.Protected {
		if !strings.HasPrefix(rule.Prefix, "/") {
			return fmt.Errorf("prefix %q must start with /", rule.Prefix)
		}
		if rule.Kind != RouteKindPage && rule.Kind != RouteKindAPI {
			return fmt.Errorf("prefix %q: unknown kind %q", rule.Prefix, rule.Kind)
		}
	}
	for _, public := range p.Public {
		if !strings.HasPrefix(public, "/") {
			return fmt.Errorf("public path %q must start with /", public)
		}
	}
	return nil
}

// Match returns the rule protecting urlPath, if any. Excluded paths and
// paths outside every protected prefix are not protected. When several
// prefixes match, the longest one wins, then the one with fewer placeholders.
//
// In protected prefixes the locale placeholder matches any segment, so an
// unknown locale still lands behind the gate. In public paths it only
// matches configured locales.
func (p RoutePolicy) Match(urlPath string, locales []string) (RouteRule, bool) {
	segments := splitPath(urlPath)

	for _, public := range p.Public {
		if matchSegments(splitPath(public), segments, locales) {
			return RouteRule{}, false
		}
	}

	var (
		best        RouteRule
		bestLen     = -1
		bestLiteral = -1
	)
	for _, rule := range p.Protected {
		pattern := splitPath(rule.Prefix)
		if !matchSegments(pattern, segments, nil) {
			continue
		}
		literal := literalSegments(pattern)
		if len(pattern) > bestLen || (len(pattern) == bestLen && literal > bestLiteral) {
			best, bestLen, bestLiteral = rule, len(pattern), literal
		}
	}
	return best, bestLen >= 0
}

// literalSegments counts non-placeholder segments; among equally long
// prefixes the more literal one is more specific.
func literalSegments(pattern []string) int {
	n := 0
	for _, seg := range pattern {
		if seg != LocalePlaceholder {
			n++
		}
	}
	return n
}

// CleanPath normalises a request path so dot segments and doubled slashes
// cannot step around a prefix.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(CleanPath(p), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, segments, locales []string) bool {
	if len(pattern) > len(segments) {
		return false
	}
	for i, want := range pattern {
		if want == LocalePlaceholder {
			if locales != nil && !isLocale(segments[i], locales) {
				return false
			}
			continue
		}
		if segments[i] != want {
			return false
		}
	}
	return true
}

func isLocale(segment string, locales []string) bool {
	for _, l := range locales {
		if segment == l {
			return true
		}
	}
	return false
}
