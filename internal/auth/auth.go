package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

var (
	// ErrInvalidCredentials is returned when a login does not match an active user
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for tokens that are malformed, forged or expired
	ErrInvalidToken = errors.New("invalid authentication credentials")
	// ErrInactiveUser is returned when a valid token belongs to a deactivated user
	ErrInactiveUser = errors.New("inactive user")
	// ErrInsufficientPermissions is returned when no role of the user grants a permission
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Permission is a capability granted by roles
type Permission string

const (
	PermRead   Permission = "read"
	PermWrite  Permission = "write"
	PermDelete Permission = "delete"
	PermAdmin  Permission = "admin"
)

// Seeded role names
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service handles accounts, tokens and permission checks
type Service struct {
	store  storage.Storage
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewService creates an auth Service
func NewService(store storage.Storage, tokens *TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, tokens: tokens, logger: logger.With("component", "auth")}
}

// Signup registers a user with the default user role
func (s *Service) Signup(ctx context.Context, username, password string) (*storage.User, error) {
	return s.createWithRole(ctx, username, password, RoleUser)
}

// CreateAdmin registers a user with the admin role
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*storage.User, error) {
	return s.createWithRole(ctx, username, password, RoleAdmin)
}

func (s *Service) createWithRole(ctx context.Context, username, password, role string) (*storage.User, error) {
	if err := validateSignup(username, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	user := &storage.User{Username: username, PasswordHash: hash, IsActive: true}
	if err := tx.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("username '%s' already exists: %w", username, err)
		}
		return nil, err
	}
	if err := tx.SetUserRoles(ctx, user.ID, []string{role}); err != nil {
		return nil, fmt.Errorf("failed to assign role %s: %w", role, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit signup: %w", err)
	}

	user.Roles = []string{role}
	s.logger.Info("user registered", "username", username, "role", role)
	return user, nil
}

// Login checks credentials and returns a bearer token
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user account is inactive", ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to its active user
func (s *Service) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found", ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// Authorize returns nil when any role of user grants perm
func (s *Service) Authorize(ctx context.Context, user *storage.User, perm Permission) error {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}
	if HasPermission(roles, user.Roles, perm) {
		return nil
	}
	return fmt.Errorf("%w: %s required", ErrInsufficientPermissions, perm)
}

// HasPermission reports whether any of the named roles grants perm.
// Admin roles grant everything.
func HasPermission(roles []*storage.Role, names []string, perm Permission) bool {
	for _, r := range roles {
		if !slices.Contains(names, r.Name) {
			continue
		}
		if r.IsAdmin {
			return true
		}
		switch perm {
		case PermRead:
			if r.CanRead {
				return true
			}
		case PermWrite:
			if r.CanWrite {
				return true
			}
		case PermDelete:
			if r.CanDelete {
				return true
			}
		}
	}
	return false
}

func validateSignup(username, password string) error {
	if n := len(username); n < 3 || n > 100 {
		return types.Validationf("username must be between 3 and 100 characters")
	}
	if n := len(password); n < 8 || n > 72 {
		return types.Validationf("password must be between 8 and 72 characters")
	}
	return nil
}
