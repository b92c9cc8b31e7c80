package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Recorder counts embedding call outcomes.
type Recorder interface {
	RecordEmbedding(outcome string)
}

// Client produces sentence embeddings via the HuggingFace inference API.
// Every failure mode degrades to a nil vector so callers can fall back to
// keyword matching; Embed never returns an error.
type Client struct {
	baseURL  string
	token    string
	model    string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]float32]
	recorder Recorder
	logger   *slog.Logger
}

// Config carries the inference endpoint settings.
type Config struct {
	BaseURL string
	Token   string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config, recorder Recorder, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := logger.With("component", "embeddings.huggingface")
	breaker := gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:    "huggingface-embeddings",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
		breaker:  breaker,
		recorder: recorder,
		logger:   log,
	}
}

// Embed returns the embedding vector for text, or nil when the service is
// unavailable, unauthorized, rate limited, or responds with an unexpected
// payload shape.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	if c.token == "" {
		c.logger.Debug("no api token configured, skipping embedding")
		c.recorder.RecordEmbedding("skipped")
		return nil
	}

	vector, err := c.breaker.Execute(func() ([]float32, error) {
		return c.fetch(ctx, text)
	})
	if err != nil {
		c.logger.Warn("embedding request failed", "error", err)
		c.recorder.RecordEmbedding("error")
		return nil
	}
	c.recorder.RecordEmbedding("success")
	return vector
}

func (c *Client) fetch(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/pipeline/feature-extraction", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("invalid api token (status %d)", resp.StatusCode)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limit exceeded (status %d)", resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(body))
	}

	return parseVector(body)
}

// parseVector accepts only a flat numeric array. Token-level responses
// (arrays of arrays) and any other shape are rejected.
func parseVector(body []byte) ([]float32, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}
	vector := make([]float32, 0, len(raw))
	for _, item := range raw {
		var v float32
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("invalid embedding format: expected flat numeric array")
		}
		vector = append(vector, v)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("invalid embedding format: empty array")
	}
	return vector, nil
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
