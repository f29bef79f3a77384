package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/config"
	"github.com/hongminglow/bilingual-site/internal/http/handlers"
	"github.com/hongminglow/bilingual-site/internal/middleware"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, logger *slog.Logger) (*Server, error) {
	handler, err := NewHandler(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer}, nil
}

// NewHandler builds the full handler chain: CORS, request logging, the
// access gate, then the route mux.
func NewHandler(cfg config.Config, store storage.UserStore, logger *slog.Logger) (http.Handler, error) {
	if cfg.InsecureSecret {
		logger.Warn("JWT_SECRET is not set: signing tokens with the built-in development secret; tokens are forgeable, never run this way in production")
	}

	tokens, err := auth.NewJWTService([]byte(cfg.JWTSecret), auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return nil, fmt.Errorf("create token service: %w", err)
	}

	policy := auth.DefaultRoutePolicy()
	if cfg.RoutePolicyFile != "" {
		policy, err = auth.LoadRoutePolicy(cfg.RoutePolicyFile)
		if err != nil {
			return nil, err
		}
	}

	gate := auth.NewGate(auth.GateConfig{
		Tokens:        tokens,
		Resolver:      auth.NewResolver(),
		Policy:        policy,
		Locales:       cfg.Locales,
		DefaultLocale: cfg.DefaultLocale,
		Logger:        logger.With("component", "gate"),
	})

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store, logger).Register(mux)
	handlers.NewPagesHandler(cfg.Locales, cfg.DefaultLocale).Register(mux)
	handlers.NewAuthHandler(store, tokens, auth.NewCookieWriter(cfg.IsProduction()), logger).Register(mux)
	handlers.NewUserAdminHandler(store, logger).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, gate.Middleware(mux))), nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
