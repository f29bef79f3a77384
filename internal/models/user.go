package models

import (
	"strings"
	"time"
)

// User captures application-facing fields for a site account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Summary is the sanitized view of a user returned by the API.
type Summary struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Summary strips credential material from the user.
func (u User) Summary() Summary {
	return Summary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}

// ValidUsername reports whether name can be stored as a username. An "@" is
// refused so a username can never equal another account's email.
func ValidUsername(name string) bool {
	return name != "" && !strings.ContainsAny(name, "@ \t\r\n")
}
