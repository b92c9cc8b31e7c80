package audit

import "time"

// ContextSources counts where the assembled evidence came from.
type ContextSources struct {
	SemanticMatches int  `json:"semanticMatches"`
	RecentQueries   int  `json:"recentQueries"`
	UserContext     bool `json:"userContext"`
}

// AssemblyDetails captures what the assembler concluded.
type AssemblyDetails struct {
	PrimaryMatchID   int64   `json:"primaryMatchId,omitempty"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMs int64   `json:"processingTime"`
}

// PerformanceMetrics captures request timing.
type PerformanceMetrics struct {
	TotalResponseTimeMs   int64 `json:"totalResponseTime"`
	ContextAssemblyTimeMs int64 `json:"contextAssemblyTime"`
}

// Entry is one context-assembly audit record. Question and Answer are
// populated on reads by joining the owning query row.
type Entry struct {
	ID                 int64              `json:"id"`
	QueryID            int64              `json:"queryId"`
	ContextSources     ContextSources     `json:"contextSources"`
	MatchingAlgorithm  string             `json:"matchingAlgorithm"`
	AssemblyDetails    AssemblyDetails    `json:"assemblyDetails"`
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics"`
	CreatedAt          time.Time          `json:"createdAt"`
	Question           string             `json:"question,omitempty"`
	Answer             string             `json:"answer,omitempty"`
}

// Filters narrows audit log reads.
type Filters struct {
	QueryID int64
	From    time.Time
	To      time.Time
	Limit   int
}
