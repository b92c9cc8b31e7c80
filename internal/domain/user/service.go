package user

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

// Service exposes user management operations.
type Service interface {
	Create(ctx context.Context, in CreateInput) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, filters Filters) ([]User, error)
	Update(ctx context.Context, id int64, in UpdateInput) (User, error)
	Delete(ctx context.Context, id int64) error
}

// Invalidator clears per-user cached state when an account is removed.
type Invalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

type service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
}

// NewService wires up the user domain.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		cache:  cache,
		logger: logger.With("component", "user.service"),
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" {
		return User{}, apperrors.Wrap("invalid_input", "name and email are required", nil)
	}
	if _, exists, err := s.repo.GetByEmail(ctx, in.Email); err != nil {
		return User{}, apperrors.Wrap("user_error", "email lookup failed", err)
	} else if exists {
		return User{}, apperrors.Wrap("conflict", "email already registered", nil)
	}
	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to create user", err)
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id int64) (User, error) {
	u, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "user lookup failed", err)
	}
	if !found {
		return User{}, apperrors.Wrap("not_found", "user not found", nil)
	}
	return u, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap("user_error", "failed to list users", err)
	}
	return users, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	existing, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "user lookup failed", err)
	}
	if !found {
		return User{}, apperrors.Wrap("not_found", "user not found", nil)
	}
	if in.Name != nil {
		existing.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		existing.Email = strings.TrimSpace(*in.Email)
	}
	if in.Metadata != nil {
		existing.Metadata = in.Metadata
	}
	updated, found, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		return User{}, apperrors.Wrap("user_error", "failed to update user", err)
	}
	if !found {
		return User{}, apperrors.Wrap("not_found", "user not found", nil)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap("user_error", "failed to delete user", err)
	}
	if !deleted {
		return apperrors.Wrap("not_found", "user not found", nil)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}
