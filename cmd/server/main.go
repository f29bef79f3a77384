package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/bilingual-site/internal/config"
	"github.com/hongminglow/bilingual-site/internal/logging"
	"github.com/hongminglow/bilingual-site/internal/server"
	"github.com/hongminglow/bilingual-site/internal/storage"
	"github.com/hongminglow/bilingual-site/internal/storage/memory"
	postgres "github.com/hongminglow/bilingual-site/internal/storage/postgres"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	warnInsecureSecret(logger, cfg)
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if err := server.BootstrapAdmin(ctx, store, cfg.BootstrapAdmin, logger); err != nil {
		logger.Error("bootstrap admin", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		logger.Error("init server", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("site backend listening", "addr", cfg.HTTPAddress(), "env", cfg.Environment)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL is not set: using in-memory user store, accounts are lost on restart")
		return memory.NewUserStore(), func() {}, nil
	}
	store, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func warnInsecureSecret(logger *slog.Logger, cfg config.Config) {
	if cfg.InsecureSecret {
		logger.Warn("JWT_SECRET is not set: using the built-in development secret")
	}
}
