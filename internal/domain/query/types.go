package query

import (
	"encoding/json"
	"time"

	"github.com/yanqian/faq-assistant/internal/domain/semantics"
)

// Record represents a processed query row. ContextUsed holds the JSON
// snapshot of the assembled context bundle for audit/history purposes.
type Record struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"userId,omitempty"`
	SessionID       string          `json:"sessionId,omitempty"`
	Question        string          `json:"question"`
	Answer          string          `json:"answer"`
	ContextUsed     json.RawMessage `json:"contextUsed,omitempty"`
	SimilarityScore float64         `json:"similarityScore"`
	ResponseTimeMs  int64           `json:"responseTimeMs"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RecentQuery is one entry of a user's recent question/answer history.
type RecentQuery struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Similarity float64   `json:"similarity"`
	Timestamp  time.Time `json:"timestamp"`
}

// Profile is the user identity surfaced inside a context bundle.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserContext is the known-user slice of a bundle. A nil *UserContext means
// the query was anonymous; downstream logic branches on presence, never on
// struct emptiness.
type UserContext struct {
	Profile     Profile        `json:"profile"`
	Preferences map[string]any `json:"preferences"`
	Metadata    map[string]any `json:"metadata"`
}

// Bundle is the evidence assembled for one query. Built fresh per request
// and never persisted as-is; a JSON snapshot lands on the Query record.
type Bundle struct {
	User              *UserContext      `json:"user"`
	SemanticMatches   []semantics.Match `json:"semanticMatches"`
	RecentQueries     []RecentQuery     `json:"recentQueries"`
	SessionID         string            `json:"sessionContext,omitempty"`
	AssemblyTimestamp time.Time         `json:"assemblyTimestamp"`
	ProcessingTimeMs  int64             `json:"processingTimeMs"`
}

// ContextResult is what context assembly hands to answer generation.
type ContextResult struct {
	Context      Bundle
	PrimaryMatch *semantics.Match
	Confidence   float64
}

// Source tags where an answer came from.
type Source string

const (
	SourceSemanticMatch Source = "semantic_match"
	SourceFallback      Source = "fallback"
)

// AnswerResult is the final outcome for one question.
type AnswerResult struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
	FAQID      int64   `json:"faq_id,omitempty"`
	Category   string  `json:"category,omitempty"`
}

// ProcessRequest is the caller-facing query input.
type ProcessRequest struct {
	Question  string `json:"question"`
	UserID    *int64 `json:"userId"`
	SessionID string `json:"sessionId"`
}

// ContextSummary condenses the bundle for the HTTP response.
type ContextSummary struct {
	MatchesFound   int  `json:"matchesFound"`
	RecentQueries  int  `json:"recentQueries"`
	HasUserContext bool `json:"hasUserContext"`
}

// ProcessResponse is returned to the HTTP transport.
type ProcessResponse struct {
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	Confidence     float64        `json:"confidence"`
	Source         Source         `json:"source"`
	QueryID        int64          `json:"queryId"`
	ResponseTimeMs int64          `json:"responseTime"`
	Context        ContextSummary `json:"context"`
}
