package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
	"github.com/yanqian/faq-assistant/internal/domain/query"
	"github.com/yanqian/faq-assistant/internal/domain/semantics"
	"github.com/yanqian/faq-assistant/internal/domain/session"
	"github.com/yanqian/faq-assistant/internal/domain/user"
	"github.com/yanqian/faq-assistant/internal/infra/auditrepo"
	"github.com/yanqian/faq-assistant/internal/infra/config"
	"github.com/yanqian/faq-assistant/internal/infra/faqrepo"
	"github.com/yanqian/faq-assistant/internal/infra/metrics"
	"github.com/yanqian/faq-assistant/internal/infra/queryrepo"
	"github.com/yanqian/faq-assistant/internal/infra/recencycache"
	"github.com/yanqian/faq-assistant/internal/infra/sessionrepo"
	"github.com/yanqian/faq-assistant/internal/infra/userrepo"
)

type nilEmbedder struct{}

func (nilEmbedder) Embed(_ context.Context, _ string) []float32 { return nil }

func newTestServer(t *testing.T) *http.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Context: config.ContextConfig{
			SemanticMatchLimit:  5,
			RecentQueriesLimit:  5,
			SimilarityThreshold: 0.5,
			FallbackAnswer:      "I don't know yet.",
		},
		Analytics: config.AnalyticsConfig{DefaultLimit: 100},
	}

	faqRepo := faqrepo.NewMemory()
	userRepo := userrepo.NewMemory()
	queryRepo := queryrepo.NewMemory()
	auditRepo := auditrepo.NewMemory()
	sessionRepo := sessionrepo.NewMemory()
	cache := recencycache.NewMemory(time.Hour, 100, 0, logger)
	t.Cleanup(cache.Close)

	m := metrics.New()
	embedder := nilEmbedder{}
	engine := semantics.NewEngine(faqRepo, embedder, logger)

	faqSvc := faq.NewService(faqRepo, embedder, logger)
	userSvc := user.NewService(userRepo, cache, logger)
	sessionSvc := session.NewService(sessionRepo, userRepo, cache, logger)
	querySvc := query.NewService(query.Config{
		SemanticMatchLimit:  cfg.Context.SemanticMatchLimit,
		RecentQueriesLimit:  cfg.Context.RecentQueriesLimit,
		SimilarityThreshold: cfg.Context.SimilarityThreshold,
		FallbackAnswer:      cfg.Context.FallbackAnswer,
		AnalyticsLimit:      cfg.Analytics.DefaultLimit,
	}, queryRepo, userRepo, engine, cache, auditRepo, m, logger)

	handler := NewHandler(querySvc, faqSvc, userSvc, sessionSvc, logger)
	return NewRouter(cfg, handler, m)
}

func doJSON(t *testing.T, server *http.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(encoded)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestFAQLifecycle(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/faqs", map[string]string{
		"question": "How do I reset my password?",
		"answer":   "Use the reset link on the login page.",
		"category": "account",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created faq.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/faqs?category=account", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "reset link")

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/faqs/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/faqs/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessQueryEndToEnd(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/faqs", map[string]string{
		"question": "What are the shipping costs?",
		"answer":   "Shipping is free over $50.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/queries", map[string]any{
		"question": "how much are shipping costs",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp query.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, query.SourceSemanticMatch, resp.Source)
	require.Equal(t, "Shipping is free over $50.", resp.Answer)
	require.NotZero(t, resp.QueryID)
}

func TestProcessQueryFallbackWithEmptyCorpus(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/queries", map[string]any{
		"question": "anything at all",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp query.ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, query.SourceFallback, resp.Source)
	require.Equal(t, "I don't know yet.", resp.Answer)
}

func TestProcessQueryRejectsEmptyQuestion(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/queries", map[string]any{"question": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserAndSessionLifecycle(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/users", map[string]any{
		"name":  "Dana",
		"email": "dana@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, server, http.MethodPost, "/api/v1/users", map[string]any{
		"name":  "Other",
		"email": "dana@example.com",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/sessions", map[string]any{
		"userId":      created.ID,
		"sessionData": map[string]any{"topic": "billing"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionCleanupEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/sessions/cleanup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "removed")
}

func TestAnalyticsEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/queries", map[string]any{
		"question": "anything at all",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report query.AnalyticsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, 1, report.Analytics.TotalQueries)
	require.Len(t, report.Logs, 1)
}
