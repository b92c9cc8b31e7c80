package query

import (
	"context"
	"math"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

// AssembleContext gathers everything known about a question into a single
// bundle: the user profile (when a user id is supplied), semantic matches
// from the similarity engine, and recent queries from the recency cache
// with a persistent-store fallback on cache miss. Any collaborator failure
// aborts the whole assembly; partial bundles are never returned.
func (s *service) AssembleContext(ctx context.Context, userID *int64, question, sessionID string) (ContextResult, error) {
	start := time.Now()

	var userCtx *UserContext
	if userID != nil {
		u, found, err := s.users.GetByID(ctx, *userID)
		if err != nil {
			return ContextResult{}, apperrors.Wrap("context_assembly", "failed to assemble context: user lookup", err)
		}
		if found {
			userCtx = &UserContext{
				Profile:     Profile{Name: u.Name, Email: u.Email},
				Preferences: u.Preferences(),
				Metadata:    u.Metadata,
			}
		}
	}

	matches, err := s.matcher.FindSimilarFAQs(ctx, question, s.cfg.SemanticMatchLimit)
	if err != nil {
		return ContextResult{}, apperrors.Wrap("context_assembly", "failed to assemble context: semantic matching", err)
	}

	recent := []RecentQuery{}
	if userID != nil {
		if cached, ok := s.cache.Get(ctx, *userID); ok {
			s.metrics.RecordCacheLookup(true)
			recent = cached
		} else {
			s.metrics.RecordCacheLookup(false)
			recent, err = s.repo.RecentByUser(ctx, *userID, s.cfg.RecentQueriesLimit)
			if err != nil {
				return ContextResult{}, apperrors.Wrap("context_assembly", "failed to assemble context: recent queries", err)
			}
		}
	}

	bundle := Bundle{
		User:              userCtx,
		SemanticMatches:   matches,
		RecentQueries:     recent,
		SessionID:         sessionID,
		AssemblyTimestamp: time.Now().UTC(),
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
	}

	var primary *semantics.Match
	if len(matches) > 0 {
		first := matches[0]
		primary = &first
	}

	return ContextResult{
		Context:      bundle,
		PrimaryMatch: primary,
		Confidence:   CalculateConfidence(bundle),
	}, nil
}

// GenerateContextualAnswer derives the final answer from a bundle. The
// returned confidence is the primary match's raw similarity, deliberately
// distinct from the bundle's blended confidence.
func (s *service) GenerateContextualAnswer(_ string, bundle Bundle) AnswerResult {
	if len(bundle.SemanticMatches) == 0 || bundle.SemanticMatches[0].Similarity < s.cfg.SimilarityThreshold {
		return AnswerResult{
			Answer:     s.cfg.FallbackAnswer,
			Confidence: 0.1,
			Source:     SourceFallback,
		}
	}

	primary := bundle.SemanticMatches[0]
	answer := primary.Answer
	if bundle.User != nil {
		answer = s.personalizer.Personalize(answer, bundle.User.Preferences)
	}

	return AnswerResult{
		Answer:     answer,
		Confidence: primary.Similarity,
		Source:     SourceSemanticMatch,
		FAQID:      primary.ID,
		Category:   primary.Category,
	}
}

// CalculateConfidence blends the primary similarity with small bonuses for
// recent-history presence and match count:
// min(primary + recencyBonus + matchCountBonus, 1), zero without matches.
func CalculateConfidence(bundle Bundle) float64 {
	if len(bundle.SemanticMatches) == 0 {
		return 0
	}
	primary := bundle.SemanticMatches[0].Similarity
	recencyBonus := 0.0
	if len(bundle.RecentQueries) > 0 {
		recencyBonus = 0.1
	}
	matchCountBonus := math.Min(float64(len(bundle.SemanticMatches))/5, 1) * 0.1
	return math.Min(primary+recencyBonus+matchCountBonus, 1)
}
