package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-assistant/internal/domain/user"
	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

type stubUsers struct {
	known map[int64]bool
}

func (s *stubUsers) Create(context.Context, user.CreateInput) (user.User, error) {
	return user.User{}, nil
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	return user.User{ID: id}, s.known[id], nil
}

func (s *stubUsers) GetByEmail(context.Context, string) (user.User, bool, error) {
	return user.User{}, false, nil
}

func (s *stubUsers) List(context.Context, user.Filters) ([]user.User, error) {
	return nil, nil
}

func (s *stubUsers) Update(context.Context, int64, user.User) (user.User, bool, error) {
	return user.User{}, false, nil
}

func (s *stubUsers) Delete(context.Context, int64) (bool, error) {
	return false, nil
}

type stubRepo struct {
	sessions map[string]Session
}

func (s *stubRepo) Create(_ context.Context, sess Session) (Session, error) {
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (Session, bool, error) {
	sess, ok := s.sessions[id]
	return sess, ok, nil
}

func (s *stubRepo) Update(_ context.Context, id string, data map[string]any) (Session, bool, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false, nil
	}
	sess.Data = data
	s.sessions[id] = sess
	return sess, true, nil
}

func (s *stubRepo) Extend(_ context.Context, id string, by time.Duration) (Session, bool, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false, nil
	}
	sess.ExpiresAt = time.Now().Add(by)
	s.sessions[id] = sess
	return sess, true, nil
}

func (s *stubRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok, nil
}

func (s *stubRepo) ListByUser(context.Context, int64) ([]Session, error) {
	return nil, nil
}

func (s *stubRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

type stubSnapshotCache struct {
	sets int
}

func (s *stubSnapshotCache) SetSession(context.Context, int64, map[string]any) {
	s.sets++
}

func newTestService() (Service, *stubRepo, *stubSnapshotCache) {
	repo := &stubRepo{sessions: map[string]Session{}}
	cache := &stubSnapshotCache{}
	users := &stubUsers{known: map[int64]bool{1: true}}
	return NewService(repo, users, cache, slog.New(slog.DiscardHandler)), repo, cache
}

func TestCreateAssignsUUIDAndDefaults(t *testing.T) {
	svc, _, cache := newTestService()

	sess, err := svc.Create(context.Background(), CreateInput{UserID: 1})
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(sess.ID))
	require.NotNil(t, sess.Data)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)
	require.Equal(t, 1, cache.sets)
}

func TestCreateRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{UserID: 42})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestExtendDefaultsToOneHour(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: 1})
	require.NoError(t, err)

	extended, err := svc.Extend(context.Background(), created.ID, 0)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), extended.ExpiresAt, time.Minute)
}

func TestUpdateRefreshesSnapshot(t *testing.T) {
	svc, _, cache := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{UserID: 1})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, map[string]any{"topic": "returns"})
	require.NoError(t, err)
	require.Equal(t, 2, cache.sets)
}

func TestGetMissingSession(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "not_found"))
}
