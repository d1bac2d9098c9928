package service

import (
	"context"
	"testing"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/logger"
	"cinelight-api/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (AuthService, UserService) {
	t.Helper()
	users := newMemUsers()
	log := logger.Discard()
	return AuthService{
			Users:  users,
			Tokens: security.NewTokenManager("test-secret", time.Hour),
			Logger: log,
		}, UserService{
			Users:  users,
			Logger: log,
		}
}

func TestLogin(t *testing.T) {
	auth, users := newAuthService(t)
	ctx := context.Background()
	_, err := users.Create(ctx, CreateUserInput{Username: "admin", Password: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = users.Create(ctx, CreateUserInput{Username: "former", Password: "secret", IsActive: ptr(false)})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := auth.Login(ctx, LoginInput{Username: "admin", Password: "admin"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "admin", res.User.Username)

		user, err := auth.Authenticate(ctx, res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginInput{Username: "admin", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginInput{Username: "ghost", Password: "admin"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("inactive user", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginInput{Username: "former", Password: "secret"})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
	t.Run("missing fields", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginInput{Username: "admin"})
		var verr ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAuthenticateRejectsDeactivatedAndDeletedUsers(t *testing.T) {
	auth, users := newAuthService(t)
	ctx := context.Background()
	u, err := users.Create(ctx, CreateUserInput{Username: "grip", Password: "pw"})
	require.NoError(t, err)
	res, err := auth.Login(ctx, LoginInput{Username: "grip", Password: "pw"})
	require.NoError(t, err)

	_, err = users.Update(ctx, u.ID, UpdateUserInput{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = auth.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrAccountDisabled)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = auth.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserPasswordHashedOnce(t *testing.T) {
	_, users := newAuthService(t)
	ctx := context.Background()

	u, err := users.Create(ctx, CreateUserInput{Username: "dop", Password: "plain"})
	require.NoError(t, err)
	assert.True(t, security.IsHashed(u.PasswordHash))
	assert.True(t, u.IsActive)
	assert.Equal(t, domain.RoleUser, u.Role)

	same, err := users.Update(ctx, u.ID, UpdateUserInput{Password: ptr(u.PasswordHash)})
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, same.PasswordHash)
	assert.True(t, security.CheckPassword(same.PasswordHash, "plain"))

	changed, err := users.Update(ctx, u.ID, UpdateUserInput{Password: ptr("new-plain")})
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(changed.PasswordHash, "new-plain"))
}

func TestUserDuplicateUsername(t *testing.T) {
	_, users := newAuthService(t)
	ctx := context.Background()
	_, err := users.Create(ctx, CreateUserInput{Username: "dup", Password: "a"})
	require.NoError(t, err)
	_, err = users.Create(ctx, CreateUserInput{Username: "dup", Password: "b"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
