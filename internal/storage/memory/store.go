package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/bilingual-site/internal/models"
	"github.com/hongminglow/bilingual-site/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in process memory. Used for local development without
// DATABASE_URL and in tests.
type Store struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{users: make(map[string]models.User), now: time.Now}
}

// CreateUser inserts user, assigning an ID when absent.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := s.users[user.ID]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.users[user.ID] = user
	return user, nil
}

// FindByID fetches a user by identifier.
func (s *Store) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// FindActiveByUsernameOrEmail fetches the active user matching identifier.
func (s *Store) FindActiveByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		match   models.User
		matches int
	)
	for _, user := range s.users {
		if !user.Active {
			continue
		}
		if user.Username == identifier || user.Email == identifier {
			match = user
			matches++
		}
	}
	switch matches {
	case 0:
		return models.User{}, storage.ErrNotFound
	case 1:
		return match, nil
	default:
		return models.User{}, storage.ErrAmbiguous
	}
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// UpdateRole changes a user's role.
func (s *Store) UpdateRole(_ context.Context, id, role string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.Role = role })
}

// SetActive enables or disables a user.
func (s *Store) SetActive(_ context.Context, id string, active bool) (models.User, error) {
	return s.update(id, func(u *models.User) { u.Active = active })
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	at = at.UTC()
	_, err := s.update(id, func(u *models.User) { u.LastLoginAt = &at })
	return err
}

func (s *Store) update(id string, fn func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	fn(&user)
	s.users[id] = user
	return user, nil
}
