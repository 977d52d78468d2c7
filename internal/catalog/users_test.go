package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bookcatalog/internal/storage"
)

func TestUpdateUser(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	user := &storage.User{Username: "reader", PasswordHash: "x", IsActive: true}
	require.NoError(t, f.store.CreateUser(ctx, user))
	require.NoError(t, f.store.SetUserRoles(ctx, user.ID, []string{"user"}))

	inactive := false
	roles := []string{"editor", "user"}
	updated, err := f.svc.UpdateUser(ctx, user.ID, UserUpdate{IsActive: &inactive, RoleNames: &roles})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, []string{"editor", "user"}, updated.Roles)

	unknown := []string{"wizard"}
	_, err = f.svc.UpdateUser(ctx, user.ID, UserUpdate{RoleNames: &unknown})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The failed update rolled back
	got, err := f.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "user"}, got.Roles)

	_, err = f.svc.UpdateUser(ctx, 999, UserUpdate{IsActive: &inactive})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteUserAndRoles(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	user := &storage.User{Username: "temp", PasswordHash: "x", IsActive: true}
	require.NoError(t, f.store.CreateUser(ctx, user))

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, user.ID), storage.ErrNotFound)

	roles, err := f.svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
