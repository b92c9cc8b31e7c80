package faq

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

type stubRepo struct {
	records map[int64]Record
	nextID  int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: map[int64]Record{}}
}

func (s *stubRepo) Create(_ context.Context, rec Record) (Record, error) {
	s.nextID++
	rec.ID = s.nextID
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (Record, bool, error) {
	rec, ok := s.records[id]
	return rec, ok, nil
}

func (s *stubRepo) List(context.Context, Filters) ([]Record, error) {
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubRepo) Update(_ context.Context, rec Record) (Record, bool, error) {
	if _, ok := s.records[rec.ID]; !ok {
		return Record{}, false, nil
	}
	s.records[rec.ID] = rec
	return rec, true, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

type stubEmbedder struct {
	vector []float32
	calls  []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) []float32 {
	s.calls = append(s.calls, text)
	return s.vector
}

func newTestService(embedder *stubEmbedder) (Service, *stubRepo) {
	repo := newStubRepo()
	return NewService(repo, embedder, slog.New(slog.DiscardHandler)), repo
}

func TestCreateStoresEmbedding(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5, 0.25}}
	svc, _ := newTestService(embedder)

	rec, err := svc.Create(context.Background(), CreateInput{
		Question: "How do I pay?",
		Answer:   "By card.",
		Category: "billing",
	})
	require.NoError(t, err)
	require.Equal(t, "[0.5,0.25]", rec.Embedding)
	require.Equal(t, []string{"How do I pay? By card."}, embedder.calls)
}

func TestCreateWithoutEmbeddingProvider(t *testing.T) {
	svc, _ := newTestService(&stubEmbedder{})

	rec, err := svc.Create(context.Background(), CreateInput{Question: "q text", Answer: "a text"})
	require.NoError(t, err)
	require.Empty(t, rec.Embedding)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	svc, _ := newTestService(&stubEmbedder{})

	_, err := svc.Create(context.Background(), CreateInput{Question: " ", Answer: "a"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestUpdateRegeneratesEmbeddingOnContentChange(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1}}
	svc, _ := newTestService(embedder)

	created, err := svc.Create(context.Background(), CreateInput{Question: "old question", Answer: "old answer"})
	require.NoError(t, err)

	newAnswer := "new answer"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Answer: &newAnswer})
	require.NoError(t, err)
	require.Len(t, embedder.calls, 2)
	require.Equal(t, "old question new answer", embedder.calls[1])
}

func TestUpdateCategoryOnlyKeepsEmbedding(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1}}
	svc, _ := newTestService(embedder)

	created, err := svc.Create(context.Background(), CreateInput{Question: "question", Answer: "answer"})
	require.NoError(t, err)

	category := "general"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Category: &category})
	require.NoError(t, err)
	require.Len(t, embedder.calls, 1)
	require.Equal(t, created.Embedding, updated.Embedding)
	require.Equal(t, "general", updated.Category)
}

func TestUpdateMissingRecord(t *testing.T) {
	svc, _ := newTestService(&stubEmbedder{})

	question := "anything"
	_, err := svc.Update(context.Background(), 42, UpdateInput{Question: &question})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestDeleteMissingRecord(t *testing.T) {
	svc, _ := newTestService(&stubEmbedder{})

	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "not_found"))
}
