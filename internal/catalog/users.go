package catalog

import (
	"context"
	"fmt"

	"github.com/dshills/bookcatalog/internal/storage"
)

// UserUpdate changes only the fields that are set
type UserUpdate struct {
	Username  *string   `json:"username"`
	IsActive  *bool     `json:"is_active"`
	RoleNames *[]string `json:"role_names"`
}

func (s *Service) ListUsers(ctx context.Context) ([]*storage.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user with id %d: %w", id, err)
	}
	return user, nil
}

// UpdateUser applies the set fields in one transaction. Unknown role names yield ErrNotFound.
func (s *Service) UpdateUser(ctx context.Context, id int64, u UserUpdate) (*storage.User, error) {
	if u.Username != nil {
		if err := checkLen("username", *u.Username, 3, 100); err != nil {
			return nil, err
		}
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	user, err := tx.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user with id %d: %w", id, err)
	}
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if err := tx.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if u.RoleNames != nil {
		if err := tx.SetUserRoles(ctx, id, *u.RoleNames); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}

	return s.GetUser(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("user with id %d: %w", id, err)
	}
	return nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*storage.Role, error) {
	return s.store.ListRoles(ctx)
}
