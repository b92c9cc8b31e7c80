package embeddings

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type noopRecorder struct{}

func (noopRecorder) RecordEmbedding(string) {}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL: server.URL,
		Token:   "test-token",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, noopRecorder{}, testLogger())
}

func TestEmbedReturnsVector(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.Equal(t, "/test-model/pipeline/feature-extraction", r.URL.Path)
		w.Write([]byte(`[0.1, 0.2, 0.3]`))
	})

	vector := client.Embed(context.Background(), "what is the return policy")
	require.Len(t, vector, 3)
	require.InDelta(t, 0.2, vector[1], 1e-6)
}

func TestEmbedWithoutToken(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1", Model: "m"}, noopRecorder{}, testLogger())
	require.Nil(t, client.Embed(context.Background(), "anything"))
}

func TestEmbedUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	require.Nil(t, client.Embed(context.Background(), "question"))
}

func TestEmbedRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	require.Nil(t, client.Embed(context.Background(), "question"))
}

func TestEmbedRejectsNestedArrays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[0.1, 0.2], [0.3, 0.4]]`))
	})
	require.Nil(t, client.Embed(context.Background(), "question"))
}

func TestEmbedRejectsNonArrayPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "model loading"}`))
	})
	require.Nil(t, client.Embed(context.Background(), "question"))
}

func TestEmbedNetworkFailure(t *testing.T) {
	client := NewClient(Config{
		BaseURL: "http://127.0.0.1:1",
		Token:   "test-token",
		Model:   "m",
		Timeout: time.Second,
	}, noopRecorder{}, testLogger())
	require.Nil(t, client.Embed(context.Background(), "question"))
}
