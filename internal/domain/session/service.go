package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/faq-assistant/internal/domain/user"
	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

const defaultLifetime = 24 * time.Hour

// SnapshotCache mirrors the latest session data into the per-user cache so
// the hot path can skip a store read. Purely additive; failures are ignored.
type SnapshotCache interface {
	SetSession(ctx context.Context, userID int64, data map[string]any)
}

// Service exposes session management operations.
type Service interface {
	Create(ctx context.Context, in CreateInput) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, data map[string]any) (Session, error)
	Extend(ctx context.Context, id string, minutes int) (Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID int64) ([]Session, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo   Repository
	users  user.Repository
	cache  SnapshotCache
	logger *slog.Logger
}

// NewService wires up the session domain.
func NewService(repo Repository, users user.Repository, cache SnapshotCache, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		users:  users,
		cache:  cache,
		logger: logger.With("component", "session.service"),
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (Session, error) {
	if in.UserID <= 0 {
		return Session{}, apperrors.Wrap("invalid_input", "userId is required", nil)
	}
	if _, found, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return Session{}, apperrors.Wrap("session_error", "user lookup failed", err)
	} else if !found {
		return Session{}, apperrors.Wrap("not_found", "user not found", nil)
	}

	expiresAt := time.Now().Add(defaultLifetime)
	if in.ExpiresAt != nil {
		expiresAt = *in.ExpiresAt
	}
	data := in.Data
	if data == nil {
		data = map[string]any{}
	}

	created, err := s.repo.Create(ctx, Session{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Data:      data,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return Session{}, apperrors.Wrap("session_error", "failed to create session", err)
	}
	s.cache.SetSession(ctx, created.UserID, created.Data)
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (Session, error) {
	sess, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Session{}, apperrors.Wrap("session_error", "session lookup failed", err)
	}
	if !found {
		return Session{}, apperrors.Wrap("not_found", "session not found or expired", nil)
	}
	return sess, nil
}

func (s *service) Update(ctx context.Context, id string, data map[string]any) (Session, error) {
	updated, found, err := s.repo.Update(ctx, id, data)
	if err != nil {
		return Session{}, apperrors.Wrap("session_error", "failed to update session", err)
	}
	if !found {
		return Session{}, apperrors.Wrap("not_found", "session not found or expired", nil)
	}
	s.cache.SetSession(ctx, updated.UserID, updated.Data)
	return updated, nil
}

func (s *service) Extend(ctx context.Context, id string, minutes int) (Session, error) {
	if minutes <= 0 {
		minutes = 60
	}
	extended, found, err := s.repo.Extend(ctx, id, time.Duration(minutes)*time.Minute)
	if err != nil {
		return Session{}, apperrors.Wrap("session_error", "failed to extend session", err)
	}
	if !found {
		return Session{}, apperrors.Wrap("not_found", "session not found or expired", nil)
	}
	return extended, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap("session_error", "failed to delete session", err)
	}
	if !deleted {
		return apperrors.Wrap("not_found", "session not found", nil)
	}
	return nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("session_error", "failed to list sessions", err)
	}
	return sessions, nil
}

func (s *service) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, apperrors.Wrap("session_error", "failed to cleanup sessions", err)
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
	return removed, nil
}
