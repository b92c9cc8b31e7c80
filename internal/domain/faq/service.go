package faq

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

// Embedder turns text into a vector, or nil when embeddings are unavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Service exposes FAQ management. Creating or changing question/answer text
// regenerates the stored embedding; a nil vector from the provider is stored
// as an absent embedding, never surfaced as an error.
type Service interface {
	Create(ctx context.Context, in CreateInput) (Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, filters Filters) ([]Record, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Record, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(repo Repository, embedder Embedder, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		embedder: embedder,
		logger:   logger.With("component", "faq.service"),
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (Record, error) {
	question := strings.TrimSpace(in.Question)
	answer := strings.TrimSpace(in.Answer)
	if question == "" || answer == "" {
		return Record{}, apperrors.Wrap("invalid_input", "question and answer are required", nil)
	}
	rec := Record{
		Question:  question,
		Answer:    answer,
		Category:  strings.TrimSpace(in.Category),
		Embedding: s.embedText(ctx, question, answer),
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Record{}, apperrors.Wrap("faq_error", "failed to create faq", err)
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id int64) (Record, error) {
	rec, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap("faq_error", "faq lookup failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "faq not found", nil)
	}
	return rec, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]Record, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap("faq_error", "failed to list faqs", err)
	}
	return records, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (Record, error) {
	existing, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap("faq_error", "faq lookup failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "faq not found", nil)
	}

	contentChanged := false
	if in.Question != nil && strings.TrimSpace(*in.Question) != existing.Question {
		existing.Question = strings.TrimSpace(*in.Question)
		contentChanged = true
	}
	if in.Answer != nil && strings.TrimSpace(*in.Answer) != existing.Answer {
		existing.Answer = strings.TrimSpace(*in.Answer)
		contentChanged = true
	}
	if in.Category != nil {
		existing.Category = strings.TrimSpace(*in.Category)
	}
	if contentChanged {
		existing.Embedding = s.embedText(ctx, existing.Question, existing.Answer)
	}

	updated, found, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Record{}, apperrors.Wrap("faq_error", "failed to update faq", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "faq not found", nil)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap("faq_error", "failed to delete faq", err)
	}
	if !deleted {
		return apperrors.Wrap("not_found", "faq not found", nil)
	}
	return nil
}

// embedText requests an embedding for the combined question+answer text and
// serializes it for storage. Returns "" when the provider is unavailable.
func (s *service) embedText(ctx context.Context, question, answer string) string {
	vector := s.embedder.Embed(ctx, question+" "+answer)
	if len(vector) == 0 {
		s.logger.Info("embedding unavailable, storing faq without vector")
		return ""
	}
	return EncodeVector(vector)
}

// EncodeVector serializes a vector into the text form stored alongside FAQs.
func EncodeVector(vector []float32) string {
	payload, err := json.Marshal(vector)
	if err != nil {
		return ""
	}
	return string(payload)
}
