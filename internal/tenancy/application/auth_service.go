package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dormitory-cloud/internal/auth"
	"dormitory-cloud/internal/observability/metrics"
	tenancy "dormitory-cloud/internal/tenancy/domain"
)

// AuthService handles registration and login.
type AuthService struct {
	users    tenancy.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService constructs the service.
func NewAuthService(users tenancy.UserRepository, secret []byte, tokenTTL time.Duration) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("auth service: nil user repository")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth service: empty jwt secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}, nil
}

// RegisterInput carries registration parameters.
type RegisterInput struct {
	Username string
	Password string
	Role     string
	FullName string
	Phone    string
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*tenancy.User, error) {
	role, ok := auth.NormalizeRole(input.Role)
	if !ok {
		return nil, errors.New("auth service: invalid role")
	}
	existing, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, tenancy.ErrUsernameTaken
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &tenancy.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		Role:         string(role),
		FullName:     input.FullName,
		Phone:        input.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *tenancy.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		metrics.IncLogin(metrics.ResultError)
		return "", nil, err
	}
	if user == nil {
		metrics.IncLogin(metrics.ResultError)
		return "", nil, auth.ErrPasswordMismatch
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		metrics.IncLogin(metrics.ResultError)
		return "", nil, err
	}
	role, ok := auth.NormalizeRole(user.Role)
	if !ok {
		metrics.IncLogin(metrics.ResultError)
		return "", nil, errors.New("auth service: stored role invalid")
	}
	token, err := auth.SignJWT(user.ID, role, s.secret, s.tokenTTL)
	if err != nil {
		metrics.IncLogin(metrics.ResultError)
		return "", nil, err
	}
	metrics.IncLogin(metrics.ResultSuccess)
	return token, user, nil
}
