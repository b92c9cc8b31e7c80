package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	"github.com/yanqian/faq-assistant/internal/domain/user"
	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

// Config holds runtime knobs for query processing.
type Config struct {
	SemanticMatchLimit  int
	RecentQueriesLimit  int
	SimilarityThreshold float64
	FallbackAnswer      string
	AnalyticsLimit      int
}

// Matcher ranks the FAQ corpus against a question.
type Matcher interface {
	FindSimilarFAQs(ctx context.Context, question string, limit int) ([]semantics.Match, error)
}

// MetricsRecorder receives query-level observations.
type MetricsRecorder interface {
	RecordQuery(confidence float64, source string)
	RecordCacheLookup(hit bool)
}

// Service exposes the query processing pipeline and its read side.
type Service interface {
	AssembleContext(ctx context.Context, userID *int64, question, sessionID string) (ContextResult, error)
	GenerateContextualAnswer(question string, bundle Bundle) AnswerResult
	Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, filters Filters) ([]Record, error)
	Analytics(ctx context.Context, filters audit.Filters) (AnalyticsReport, error)
}

// AnalyticsSummary aggregates audit history.
type AnalyticsSummary struct {
	TotalQueries      int        `json:"totalQueries"`
	AverageConfidence float64    `json:"averageConfidence"`
	CacheStats        CacheStats `json:"cacheStats"`
}

// AnalyticsReport pairs the summary with the raw audit entries.
type AnalyticsReport struct {
	Analytics AnalyticsSummary `json:"analytics"`
	Logs      []audit.Entry    `json:"logs"`
}

type service struct {
	cfg          Config
	repo         Repository
	users        user.Repository
	matcher      Matcher
	cache        RecencyCache
	audits       audit.Repository
	personalizer Personalizer
	metrics      MetricsRecorder
	logger       *slog.Logger
}

// NewService wires up the query domain.
func NewService(cfg Config, repo Repository, users user.Repository, matcher Matcher, cache RecencyCache, audits audit.Repository, metrics MetricsRecorder, logger *slog.Logger) Service {
	return &service{
		cfg:          cfg,
		repo:         repo,
		users:        users,
		matcher:      matcher,
		cache:        cache,
		audits:       audits,
		personalizer: IdentityPersonalizer{},
		metrics:      metrics,
		logger:       logger.With("component", "query.service"),
	}
}

// Process runs the full pipeline: assemble context, generate the answer,
// persist the query record, refresh the recency cache and write a
// best-effort audit entry.
func (s *service) Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return ProcessResponse{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}

	assembled, err := s.AssembleContext(ctx, req.UserID, question, req.SessionID)
	if err != nil {
		return ProcessResponse{}, err
	}
	answer := s.GenerateContextualAnswer(question, assembled.Context)

	snapshot, err := json.Marshal(assembled.Context)
	if err != nil {
		s.logger.Warn("context snapshot marshal failed", "error", err)
		snapshot = []byte("{}")
	}

	rec, err := s.repo.Create(ctx, Record{
		UserID:          req.UserID,
		SessionID:       req.SessionID,
		Question:        question,
		Answer:          answer.Answer,
		ContextUsed:     snapshot,
		SimilarityScore: answer.Confidence,
		ResponseTimeMs:  time.Since(start).Milliseconds(),
	})
	if err != nil {
		return ProcessResponse{}, apperrors.Wrap("query_error", "failed to persist query", err)
	}

	if req.UserID != nil {
		s.cache.Put(ctx, *req.UserID, RecentQuery{
			Question:   question,
			Answer:     answer.Answer,
			Similarity: answer.Confidence,
		})
	}

	s.logAssembly(ctx, rec.ID, assembled, start)
	s.metrics.RecordQuery(assembled.Confidence, string(answer.Source))

	return ProcessResponse{
		Question:       question,
		Answer:         answer.Answer,
		Confidence:     answer.Confidence,
		Source:         answer.Source,
		QueryID:        rec.ID,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Context: ContextSummary{
			MatchesFound:   len(assembled.Context.SemanticMatches),
			RecentQueries:  len(assembled.Context.RecentQueries),
			HasUserContext: assembled.Context.User != nil,
		},
	}, nil
}

func (s *service) logAssembly(ctx context.Context, queryID int64, assembled ContextResult, start time.Time) {
	entry := audit.Entry{
		QueryID: queryID,
		ContextSources: audit.ContextSources{
			SemanticMatches: len(assembled.Context.SemanticMatches),
			RecentQueries:   len(assembled.Context.RecentQueries),
			UserContext:     assembled.Context.User != nil,
		},
		MatchingAlgorithm: "semantic_similarity",
		AssemblyDetails: audit.AssemblyDetails{
			Confidence:       assembled.Confidence,
			ProcessingTimeMs: assembled.Context.ProcessingTimeMs,
		},
		PerformanceMetrics: audit.PerformanceMetrics{
			TotalResponseTimeMs:   time.Since(start).Milliseconds(),
			ContextAssemblyTimeMs: assembled.Context.ProcessingTimeMs,
		},
	}
	if assembled.PrimaryMatch != nil {
		entry.AssemblyDetails.PrimaryMatchID = assembled.PrimaryMatch.ID
	}
	if _, err := s.audits.Log(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", "query_id", queryID, "error", err)
	}
}

func (s *service) Get(ctx context.Context, id int64) (Record, error) {
	rec, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap("query_error", "query lookup failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "query not found", nil)
	}
	return rec, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]Record, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap("query_error", "failed to list queries", err)
	}
	return records, nil
}

// Analytics aggregates audit entries into totals plus cache statistics.
func (s *service) Analytics(ctx context.Context, filters audit.Filters) (AnalyticsReport, error) {
	if filters.Limit <= 0 {
		filters.Limit = s.cfg.AnalyticsLimit
	}
	logs, err := s.audits.List(ctx, filters)
	if err != nil {
		return AnalyticsReport{}, apperrors.Wrap("query_error", "failed to load audit logs", err)
	}

	var confidenceSum float64
	for _, entry := range logs {
		confidenceSum += entry.AssemblyDetails.Confidence
	}
	average := 0.0
	if len(logs) > 0 {
		average = confidenceSum / float64(len(logs))
	}

	return AnalyticsReport{
		Analytics: AnalyticsSummary{
			TotalQueries:      len(logs),
			AverageConfidence: average,
			CacheStats:        s.cache.Stats(ctx),
		},
		Logs: logs,
	}, nil
}
