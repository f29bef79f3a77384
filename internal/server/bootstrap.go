package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hongminglow/bilingual-site/internal/auth"
	"github.com/hongminglow/bilingual-site/internal/config"
	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// BootstrapAdmin creates the configured admin account when the store holds
// no users yet. It is a no-op otherwise.
func BootstrapAdmin(ctx context.Context, store storage.UserStore, admin config.BootstrapAdmin, logger *slog.Logger) error {
	if !admin.Enabled() {
		return nil
	}
	if !models.ValidUsername(admin.Username) {
		return fmt.Errorf("bootstrap admin username %q must not contain @ or spaces", admin.Username)
	}
	n, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	created, err := store.CreateUser(ctx, models.User{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	})
	if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	if err == nil {
		logger.InfoContext(ctx, "bootstrap admin created", "user_id", created.ID)
	}
	return nil
}
