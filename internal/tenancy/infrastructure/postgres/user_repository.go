package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tenancy "dormitory-cloud/internal/tenancy/domain"
)

const defaultUsersTable = "users"

// UserRepository is a Postgres implementation for users.
type UserRepository struct {
	db    *sql.DB
	table string
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB, opts ...UserOption) *UserRepository {
	repo := &UserRepository{db: db, table: defaultUsersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// UserOption configures the repository.
type UserOption func(*UserRepository)

// WithUserTable overrides the default table name.
func WithUserTable(table string) UserOption {
	return func(repo *UserRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*tenancy.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if id == "" {
		return nil, errors.New("user repo: empty id")
	}
	query := fmt.Sprintf(`
SELECT id, username, password_hash, role, full_name, phone, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername loads a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*tenancy.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if username == "" {
		return nil, errors.New("user repo: empty username")
	}
	query := fmt.Sprintf(`
SELECT id, username, password_hash, role, full_name, phone, created_at, updated_at
FROM %s
WHERE username = $1
LIMIT 1`, r.table)
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// Save upserts a user.
func (r *UserRepository) Save(ctx context.Context, user *tenancy.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if user == nil {
		return errors.New("user repo: nil user")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, username, password_hash, role, full_name, phone
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (id)
DO UPDATE SET
	username = EXCLUDED.username,
	password_hash = EXCLUDED.password_hash,
	role = EXCLUDED.role,
	full_name = EXCLUDED.full_name,
	phone = EXCLUDED.phone,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Role, user.FullName, user.Phone)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*tenancy.User, error) {
	var user tenancy.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.FullName,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
