package service

import (
	"context"
	"fmt"
	"log/slog"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/pagination"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/security"
)

type UserService struct {
	Users  UserStore
	Logger *slog.Logger
}

type CreateUserInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	IsActive  *bool
	Role      domain.UserRole
}

type UpdateUserInput struct {
	Username  *string
	Password  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	Role      *domain.UserRole
}

func (s UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
		Role:         domain.RoleUser,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	created, err := s.Users.Create(ctx, u)
	if err != nil {
		return nil, mapRepoErr("User", err)
	}
	s.Logger.Info("user created", "id", created.ID, "username", created.Username)
	return created, nil
}

func (s UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("User", err)
	}
	return u, nil
}

func (s UserService) List(ctx context.Context, f repository.UserFilter, p pagination.Params) (pagination.Page[domain.User], error) {
	p = p.Normalize()
	items, total, err := s.Users.List(ctx, f, p)
	if err != nil {
		return pagination.Page[domain.User]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// Update applies the given fields. A password is hashed only when it is not
// already a bcrypt hash, so echoing the stored value back is a no-op.
func (s UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("User", err)
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Password != nil {
		hash, err := security.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	updated, err := s.Users.Update(ctx, u)
	if err != nil {
		return nil, mapRepoErr("User", err)
	}
	return updated, nil
}

func (s UserService) Delete(ctx context.Context, id int64) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		return mapRepoErr("User", err)
	}
	s.Logger.Info("user deleted", "id", id)
	return nil
}
