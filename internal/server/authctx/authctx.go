package authctx

import (
	"context"

	"cinelight-api/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the authenticated caller, re-loaded from storage on every request.
type CurrentUser struct {
	ID       int64
	Username string
	Role     domain.UserRole
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
