package tenancy

import (
	"context"
	"errors"
	"time"
)

// User is a dormitory system account (admin, manager, mechanic or tenant).
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	FullName     string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks user invariants.
func (u User) Validate() error {
	if u.ID == "" {
		return errors.New("user: empty id")
	}
	if u.Username == "" {
		return errors.New("user: empty username")
	}
	if u.PasswordHash == "" {
		return errors.New("user: empty password hash")
	}
	if u.Role == "" {
		return errors.New("user: empty role")
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
}
