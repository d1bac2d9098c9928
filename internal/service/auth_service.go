package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinelight-api/internal/domain"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/security"
)

var ErrInvalidToken = errors.New("invalid token")

type AuthService struct {
	Users  UserStore
	Tokens *security.TokenManager
	Logger *slog.Logger
}

type AuthResult struct {
	AccessToken string
	User        domain.User
	ExpiresAt   time.Time
}

type LoginInput struct {
	Username string
	Password string
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ValidationError{Fields: []FieldError{
			{Field: "username", Message: "username and password are required"},
		}}
	}
	user, err := s.Users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.CheckPassword(user.PasswordHash, in.Password) {
		s.Logger.Debug("login rejected", "username", in.Username)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issueToken(user)
}

// Authenticate resolves a bearer token to a user that still exists and is active.
func (s AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr("User", err)
	}
	return user, nil
}

func (s AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{
		AccessToken: token,
		User:        *user,
		ExpiresAt:   exp,
	}, nil
}
