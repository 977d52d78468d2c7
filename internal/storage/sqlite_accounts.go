package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// User and role operations

const userSelect = `
	SELECT u.id, u.username, u.password_hash, u.is_active, u.created_at,
	       COALESCE(GROUP_CONCAT(r.name, ','), '')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id
`

func scanUser(row rowScanner) (*User, error) {
	var user User
	var createdAt int64
	var roles string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsActive, &createdAt, &roles); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)
	user.Roles = splitRoles(roles)
	return &user, nil
}

// splitRoles parses a GROUP_CONCAT result; concatenation order is unspecified so roles are sorted
func splitRoles(joined string) []string {
	if joined == "" {
		return []string{}
	}
	roles := strings.Split(joined, ",")
	sort.Strings(roles)
	return roles
}

func (s *SQLiteStorage) CreateUser(ctx context.Context, user *User) error {
	now := time.Now()
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, is_active, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		user.Username, user.PasswordHash, user.IsActive, toUnix(now)).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classifyError(err))
	}
	user.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) getUserWhere(ctx context.Context, where string, arg interface{}) (*User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx, userSelect+` WHERE `+where+` GROUP BY u.id`, arg))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.getUserWhere(ctx, "u.id = ?", userID)
}

func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUserWhere(ctx, "u.username = ?", username)
}

func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.q.QueryContext(ctx, userSelect+` GROUP BY u.id ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *SQLiteStorage) UpdateUser(ctx context.Context, user *User) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE users SET username = ?, password_hash = ?, is_active = ? WHERE id = ?`,
		user.Username, user.PasswordHash, user.IsActive, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", classifyError(err))
	}
	return requireAffected(result)
}

func (s *SQLiteStorage) DeleteUser(ctx context.Context, userID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result)
}

// SetUserRoles replaces the user's role assignments. Unknown role names fail with ErrNotFound.
func (s *SQLiteStorage) SetUserRoles(ctx context.Context, userID int64, roles []string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear roles: %w", err)
	}

	for _, name := range roles {
		result, err := s.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?`,
			userID, name)
		if err != nil {
			return fmt.Errorf("failed to assign role %s: %w", name, classifyError(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Either the role is unknown or it was listed twice
			var exists int
			err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE name = ?`, name).Scan(&exists)
			if err != nil {
				return err
			}
			if exists == 0 {
				return fmt.Errorf("role %q: %w", name, ErrNotFound)
			}
		}
	}
	return nil
}

func (s *SQLiteStorage) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, can_read, can_write, can_delete, is_admin FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	roles := make([]*Role, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CanRead, &role.CanWrite, &role.CanDelete, &role.IsAdmin); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}
