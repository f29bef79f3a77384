package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/bilingual-site/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrAmbiguous indicates a lookup matched more than one record.
var ErrAmbiguous = errors.New("lookup matched more than one record")

// UserStore captures persistence operations needed by handlers and the
// credential verifier.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindActiveByUsernameOrEmail matches identifier against username or
	// email, ignoring inactive accounts. More than one match is
	// ErrAmbiguous.
	FindActiveByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id, role string) (models.User, error)
	SetActive(ctx context.Context, id string, active bool) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
