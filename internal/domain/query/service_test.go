package query

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	"github.com/yanqian/faq-assistant/internal/domain/user"
	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

type stubQueryRepo struct {
	created []Record
	recent  []RecentQuery
	nextID  int64

	recentCalls int
	recentLimit int
}

func (s *stubQueryRepo) Create(_ context.Context, rec Record) (Record, error) {
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = time.Now().UTC()
	s.created = append(s.created, rec)
	return rec, nil
}

func (s *stubQueryRepo) GetByID(_ context.Context, id int64) (Record, bool, error) {
	for _, rec := range s.created {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

func (s *stubQueryRepo) List(context.Context, Filters) ([]Record, error) {
	return s.created, nil
}

func (s *stubQueryRepo) RecentByUser(_ context.Context, _ int64, limit int) ([]RecentQuery, error) {
	s.recentCalls++
	s.recentLimit = limit
	return s.recent, nil
}

func (s *stubQueryRepo) Delete(context.Context, int64) (bool, error) {
	return false, nil
}

type stubUserRepo struct {
	users map[int64]user.User
	calls int
}

func (s *stubUserRepo) Create(context.Context, user.CreateInput) (user.User, error) {
	return user.User{}, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	s.calls++
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (user.User, bool, error) {
	return user.User{}, false, nil
}

func (s *stubUserRepo) List(context.Context, user.Filters) ([]user.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Update(context.Context, int64, user.User) (user.User, bool, error) {
	return user.User{}, false, nil
}

func (s *stubUserRepo) Delete(context.Context, int64) (bool, error) {
	return false, nil
}

type stubMatcher struct {
	matches []semantics.Match
	err     error
	limit   int
}

func (s *stubMatcher) FindSimilarFAQs(_ context.Context, _ string, limit int) ([]semantics.Match, error) {
	s.limit = limit
	return s.matches, s.err
}

type stubCache struct {
	entries map[int64][]RecentQuery
	puts    []RecentQuery
}

func (s *stubCache) Put(_ context.Context, _ int64, entry RecentQuery) {
	s.puts = append(s.puts, entry)
}

func (s *stubCache) Get(_ context.Context, userID int64) ([]RecentQuery, bool) {
	entries, ok := s.entries[userID]
	return entries, ok
}

func (s *stubCache) SetSession(context.Context, int64, map[string]any) {}

func (s *stubCache) Session(context.Context, int64) (map[string]any, bool) {
	return nil, false
}

func (s *stubCache) Invalidate(context.Context, int64) {}

func (s *stubCache) Stats(context.Context) CacheStats {
	return CacheStats{Keys: int64(len(s.entries))}
}

type stubAuditRepo struct {
	entries []audit.Entry
}

func (s *stubAuditRepo) Log(_ context.Context, entry audit.Entry) (audit.Entry, error) {
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *stubAuditRepo) List(context.Context, audit.Filters) ([]audit.Entry, error) {
	return s.entries, nil
}

type stubMetrics struct {
	queries      int
	lastSource   string
	cacheLookups []bool
}

func (s *stubMetrics) RecordQuery(_ float64, source string) {
	s.queries++
	s.lastSource = source
}

func (s *stubMetrics) RecordCacheLookup(hit bool) {
	s.cacheLookups = append(s.cacheLookups, hit)
}

type testFixture struct {
	svc     Service
	repo    *stubQueryRepo
	users   *stubUserRepo
	matcher *stubMatcher
	cache   *stubCache
	audits  *stubAuditRepo
	metrics *stubMetrics
}

func newFixture(matches []semantics.Match) *testFixture {
	f := &testFixture{
		repo:    &stubQueryRepo{},
		users:   &stubUserRepo{users: map[int64]user.User{}},
		matcher: &stubMatcher{matches: matches},
		cache:   &stubCache{entries: map[int64][]RecentQuery{}},
		audits:  &stubAuditRepo{},
		metrics: &stubMetrics{},
	}
	cfg := Config{
		SemanticMatchLimit:  5,
		RecentQueriesLimit:  5,
		SimilarityThreshold: 0.5,
		FallbackAnswer:      "I don't know yet.",
		AnalyticsLimit:      100,
	}
	f.svc = NewService(cfg, f.repo, f.users, f.matcher, f.cache, f.audits, f.metrics, slog.New(slog.DiscardHandler))
	return f
}

func TestProcessRejectsEmptyQuestion(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Process(context.Background(), ProcessRequest{Question: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestProcessSemanticMatch(t *testing.T) {
	f := newFixture([]semantics.Match{
		{ID: 9, Question: "How do refunds work?", Answer: "Refunds take 5 days.", Category: "billing", Similarity: 0.82},
	})

	resp, err := f.svc.Process(context.Background(), ProcessRequest{Question: "refund time?"})
	require.NoError(t, err)
	require.Equal(t, "Refunds take 5 days.", resp.Answer)
	require.Equal(t, SourceSemanticMatch, resp.Source)
	require.InDelta(t, 0.82, resp.Confidence, 1e-9)
	require.Equal(t, 1, resp.Context.MatchesFound)
	require.False(t, resp.Context.HasUserContext)

	require.Len(t, f.repo.created, 1)
	require.NotEmpty(t, f.repo.created[0].ContextUsed)
	require.Len(t, f.audits.entries, 1)
	require.Equal(t, "semantic_similarity", f.audits.entries[0].MatchingAlgorithm)
	require.Equal(t, 1, f.metrics.queries)
	require.Equal(t, "semantic_match", f.metrics.lastSource)
}

func TestProcessFallbackBelowThreshold(t *testing.T) {
	f := newFixture([]semantics.Match{
		{ID: 3, Answer: "Partially related.", Similarity: 0.3},
	})

	resp, err := f.svc.Process(context.Background(), ProcessRequest{Question: "unrelated question"})
	require.NoError(t, err)
	require.Equal(t, "I don't know yet.", resp.Answer)
	require.Equal(t, SourceFallback, resp.Source)
	require.InDelta(t, 0.1, resp.Confidence, 1e-9)
}

func TestProcessAnonymousSkipsUserLookupAndCache(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Process(context.Background(), ProcessRequest{Question: "hello there"})
	require.NoError(t, err)
	require.Zero(t, f.users.calls)
	require.Empty(t, f.cache.puts)
	require.Empty(t, f.metrics.cacheLookups)
}

func TestProcessKnownUserRefreshesCache(t *testing.T) {
	userID := int64(4)
	f := newFixture([]semantics.Match{{ID: 1, Answer: "yes", Similarity: 0.9}})
	f.users.users[userID] = user.User{ID: userID, Name: "Dana", Email: "dana@example.com"}

	resp, err := f.svc.Process(context.Background(), ProcessRequest{Question: "is it possible?", UserID: &userID})
	require.NoError(t, err)
	require.True(t, resp.Context.HasUserContext)
	require.Len(t, f.cache.puts, 1)
	require.Equal(t, "is it possible?", f.cache.puts[0].Question)
}

func TestAssembleContextCacheMissFallsBackToStore(t *testing.T) {
	userID := int64(8)
	f := newFixture(nil)
	f.users.users[userID] = user.User{ID: userID}
	f.repo.recent = []RecentQuery{{Question: "earlier question"}}

	result, err := f.svc.AssembleContext(context.Background(), &userID, "new question", "")
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.recentCalls)
	require.Equal(t, 5, f.repo.recentLimit)
	require.Len(t, result.Context.RecentQueries, 1)
	require.Equal(t, []bool{false}, f.metrics.cacheLookups)
}

func TestAssembleContextCacheHitSkipsStore(t *testing.T) {
	userID := int64(8)
	f := newFixture(nil)
	f.users.users[userID] = user.User{ID: userID}
	f.cache.entries[userID] = []RecentQuery{{Question: "cached question"}}

	result, err := f.svc.AssembleContext(context.Background(), &userID, "new question", "")
	require.NoError(t, err)
	require.Zero(t, f.repo.recentCalls)
	require.Equal(t, "cached question", result.Context.RecentQueries[0].Question)
	require.Equal(t, []bool{true}, f.metrics.cacheLookups)
}

func TestAssembleContextUnknownUserIsAnonymous(t *testing.T) {
	userID := int64(999)
	f := newFixture(nil)

	result, err := f.svc.AssembleContext(context.Background(), &userID, "question", "")
	require.NoError(t, err)
	require.Nil(t, result.Context.User)
}

func TestAssembleContextPassesConfiguredMatchLimit(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.AssembleContext(context.Background(), nil, "question", "")
	require.NoError(t, err)
	require.Equal(t, 5, f.matcher.limit)
}

func TestCalculateConfidenceNoMatches(t *testing.T) {
	require.Zero(t, CalculateConfidence(Bundle{}))
}

func TestCalculateConfidenceBlendsBonuses(t *testing.T) {
	bundle := Bundle{
		SemanticMatches: []semantics.Match{{Similarity: 0.6}, {Similarity: 0.4}},
		RecentQueries:   []RecentQuery{{Question: "prior"}},
	}
	// 0.6 primary + 0.1 recency + (2/5)*0.1 match count
	require.InDelta(t, 0.74, CalculateConfidence(bundle), 1e-9)
}

func TestCalculateConfidenceCapsAtOne(t *testing.T) {
	bundle := Bundle{
		SemanticMatches: []semantics.Match{
			{Similarity: 0.95}, {Similarity: 0.9}, {Similarity: 0.9}, {Similarity: 0.9}, {Similarity: 0.9},
		},
		RecentQueries: []RecentQuery{{Question: "prior"}},
	}
	require.InDelta(t, 1.0, CalculateConfidence(bundle), 1e-9)
}

func TestGenerateContextualAnswerUsesRawSimilarityAsConfidence(t *testing.T) {
	f := newFixture(nil)
	bundle := Bundle{
		SemanticMatches: []semantics.Match{{ID: 2, Answer: "primary answer", Similarity: 0.7}},
		RecentQueries:   []RecentQuery{{Question: "prior"}},
	}

	answer := f.svc.GenerateContextualAnswer("question", bundle)
	require.Equal(t, "primary answer", answer.Answer)
	require.InDelta(t, 0.7, answer.Confidence, 1e-9)
	require.Equal(t, int64(2), answer.FAQID)
}

func TestAnalyticsAveragesConfidence(t *testing.T) {
	f := newFixture(nil)
	f.audits.entries = []audit.Entry{
		{AssemblyDetails: audit.AssemblyDetails{Confidence: 0.4}},
		{AssemblyDetails: audit.AssemblyDetails{Confidence: 0.8}},
	}

	report, err := f.svc.Analytics(context.Background(), audit.Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, report.Analytics.TotalQueries)
	require.InDelta(t, 0.6, report.Analytics.AverageConfidence, 1e-9)
}
