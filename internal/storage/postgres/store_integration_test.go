package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

// TestStoreIntegration exercises the user store against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	for _, p := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(p)
	}
	dbURL := os.Getenv("DATABASE_URL")
	require.NotEmpty(t, dbURL, "DATABASE_URL is required")

	ctx := context.Background()
	store, err := NewUserStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	suffix := time.Now().UnixNano()
	user := models.User{
		Username:     fmt.Sprintf("it_%d", suffix),
		Email:        fmt.Sprintf("it_%d@example.com", suffix),
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehold",
		Role:         models.RoleUser,
		Active:       true,
	}
	created, err := store.CreateUser(ctx, user)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteUser(context.Background(), created.ID) })

	_, err = store.CreateUser(ctx, user)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := store.FindActiveByUsernameOrEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	updated, err := store.UpdateRole(ctx, created.ID, models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, updated.Role)

	require.NoError(t, store.TouchLastLogin(ctx, created.ID, time.Now()))

	_, err = store.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	_, err = store.FindActiveByUsernameOrEmail(ctx, user.Username)
	require.ErrorIs(t, err, storage.ErrNotFound)

	clash, err := store.CreateUser(ctx, models.User{
		Username:     fmt.Sprintf("clash_%d", suffix),
		Email:        fmt.Sprintf("clash_%d@example.com", suffix),
		PasswordHash: user.PasswordHash,
		Role:         models.RoleUser,
		Active:       true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteUser(context.Background(), clash.ID) })
	shadow, err := store.CreateUser(ctx, models.User{
		Username:     clash.Email,
		Email:        fmt.Sprintf("shadow_%d@example.com", suffix),
		PasswordHash: user.PasswordHash,
		Role:         models.RoleUser,
		Active:       true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteUser(context.Background(), shadow.ID) })
	_, err = store.FindActiveByUsernameOrEmail(ctx, clash.Email)
	require.ErrorIs(t, err, storage.ErrAmbiguous)

	_, err = store.FindByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
