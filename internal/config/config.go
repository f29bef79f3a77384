package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DevelopmentSecret signs tokens when JWT_SECRET is unset outside production.
// Anything signed with it must be treated as forgeable.
const DevelopmentSecret = "insecure-development-secret-do-not-use"

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	Environment     string
	DatabaseURL     string
	JWTSecret       string
	JWTIssuer       string
	InsecureSecret  bool
	Locales         []string
	DefaultLocale   string
	CORSOrigins     []string
	RoutePolicyFile string
	LogLevel        string
	LogFormat       string
	BootstrapAdmin  BootstrapAdmin
}

// BootstrapAdmin seeds the first admin account into an empty store.
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// Enabled reports whether all bootstrap fields are present.
func (b BootstrapAdmin) Enabled() bool {
	return b.Username != "" && b.Email != "" && b.Password != ""
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("PORT"), "8080"),
		Environment:     strings.ToLower(fallback(os.Getenv("APP_ENV"), "development")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:       fallback(os.Getenv("JWT_ISSUER"), "bilingual-site"),
		Locales:         parseCSV(fallback(os.Getenv("SITE_LOCALES"), "en,zh"), "en"),
		DefaultLocale:   fallback(os.Getenv("SITE_DEFAULT_LOCALE"), "en"),
		CORSOrigins:     parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*"), "*"),
		RoutePolicyFile: strings.TrimSpace(os.Getenv("ROUTE_POLICY_FILE")),
		LogLevel:        strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:       strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "text")),
		BootstrapAdmin: BootstrapAdmin{
			Username: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),
			Email:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = DevelopmentSecret
		cfg.InsecureSecret = true
	}

	if !contains(cfg.Locales, cfg.DefaultLocale) {
		return Config{}, fmt.Errorf("SITE_DEFAULT_LOCALE %q is not listed in SITE_LOCALES", cfg.DefaultLocale)
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input, def string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
