package service

import (
	"errors"
	"fmt"
	"strings"

	"cinelight-api/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInUse              = errors.New("resource is still referenced")
	ErrDuplicate          = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account deactivated")
)

// NotFoundError names the missing resource, e.g. "Quotation not found".
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(resource string) error {
	return NotFoundError{Resource: resource}
}

// FieldError is one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError rejects input before any mutation.
type ValidationError struct {
	Fields []FieldError
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) error {
	return ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// mapRepoErr translates repository failures for the given resource.
func mapRepoErr(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(resource)
	case repository.IsDuplicate(err):
		return fmt.Errorf("%s: %w", strings.ToLower(resource), ErrDuplicate)
	case repository.IsInUse(err):
		return fmt.Errorf("%s: %w", strings.ToLower(resource), ErrInUse)
	default:
		return err
	}
}
