package main

import (
	"context"
	"fmt"
	"testing"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	taken map[string]bool
	got   service.CreateUserInput
}

func (f *fakeCreator) Create(_ context.Context, in service.CreateUserInput) (*domain.User, error) {
	f.got = in
	if f.taken[in.Username] {
		return nil, fmt.Errorf("user: %w", service.ErrDuplicate)
	}
	return &domain.User{ID: 1, Username: in.Username, Role: in.Role}, nil
}

func TestCreateAdminUser(t *testing.T) {
	f := &fakeCreator{taken: map[string]bool{"admin": true}}
	ctx := context.Background()

	created, err := createAdminUser(ctx, f, adminOptions{username: "admin", password: "admin"})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = createAdminUser(ctx, f, adminOptions{username: "gaffer", password: "pw"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, f.got.Role)
	assert.True(t, *f.got.IsActive)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"migrate", "status"})
	require.NoError(t, err)
	assert.Equal(t, "status", cmd.Name())

	cmd, _, err = root.Find([]string{"create-admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", cmd.Flags().Lookup("username").DefValue)
}
