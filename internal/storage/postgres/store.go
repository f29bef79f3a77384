package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage"
	"github.com/hongminglow/bilingual-site/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const userColumns = `id::text, username, email, password_hash, role, active, last_login_at, created_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new Store and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO users (id, username, email, password_hash, role, active)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.Active)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByID fetches a user by identifier.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, storage.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1::uuid`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindActiveByUsernameOrEmail fetches the single active user matching the
// identifier as username or email.
func (s *Store) FindActiveByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	query := `
	SELECT ` + userColumns + `
	FROM users
	WHERE (username = $1 OR email = $1) AND active
	LIMIT 2`
	rows, err := s.pool.Query(ctx, query, identifier)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	defer rows.Close()

	var found []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return models.User{}, err
		}
		found = append(found, user)
	}
	if err := rows.Err(); err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	switch len(found) {
	case 0:
		return models.User{}, storage.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return models.User{}, storage.ErrAmbiguous
	}
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, username`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// UpdateRole changes a user's role.
func (s *Store) UpdateRole(ctx context.Context, id, role string) (models.User, error) {
	if !validID(id) {
		return models.User{}, storage.ErrNotFound
	}
	query := `UPDATE users SET role = $2 WHERE id = $1::uuid RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, role))
}

// SetActive enables or disables a user.
func (s *Store) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	if !validID(id) {
		return models.User{}, storage.ErrNotFound
	}
	query := `UPDATE users SET active = $2 WHERE id = $1::uuid RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, active))
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1::uuid`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.Active, &user.LastLoginAt, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
