package semantics

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
)

// relevanceFloor discards vector matches that are too weak to be worth
// surfacing. This is a pre-filter, independent of the answer acceptance
// threshold applied later during answer generation.
const relevanceFloor = 0.2

// Match is a FAQ record paired with its similarity to the query.
type Match struct {
	ID         int64   `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
}

// FAQSource supplies the corpus to rank against. The full set is re-read on
// every call; there is no persistent index. Acceptable at small corpus
// sizes, revisit if the knowledge base grows past a few thousand entries.
type FAQSource interface {
	List(ctx context.Context, filters faq.Filters) ([]faq.Record, error)
}

// Embedder turns text into a vector, or nil when embeddings are unavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Engine ranks the FAQ corpus against a question, preferring cosine
// similarity over stored embeddings and falling back to keyword overlap
// when the query cannot be embedded or no FAQ carries a usable vector.
type Engine struct {
	faqs     FAQSource
	embedder Embedder
	logger   *slog.Logger
}

// NewEngine wires up the similarity engine.
func NewEngine(faqs FAQSource, embedder Embedder, logger *slog.Logger) *Engine {
	return &Engine{
		faqs:     faqs,
		embedder: embedder,
		logger:   logger.With("component", "semantics.engine"),
	}
}

// FindSimilarFAQs returns up to limit matches sorted by descending
// similarity. A corpus read failure propagates; an unavailable embedding
// provider does not.
func (e *Engine) FindSimilarFAQs(ctx context.Context, question string, limit int) ([]Match, error) {
	records, err := e.faqs.List(ctx, faq.Filters{})
	if err != nil {
		return nil, err
	}

	if queryVector := e.embedder.Embed(ctx, question); queryVector != nil {
		matches, usable := e.rankByVector(queryVector, records)
		if usable {
			return truncate(matches, limit), nil
		}
		e.logger.Info("no usable faq embeddings, falling back to keyword matching")
	} else {
		e.logger.Info("query embedding unavailable, falling back to keyword matching")
	}

	return truncate(e.rankByKeywords(question, records), limit), nil
}

// rankByVector scores each FAQ by clamped cosine similarity. Records with a
// missing, unparseable, mismatched or zero-norm embedding are skipped;
// usable reports whether at least one record could be compared at all.
func (e *Engine) rankByVector(queryVector []float32, records []faq.Record) ([]Match, bool) {
	query := toFloat64(queryVector)
	matches := make([]Match, 0, len(records))
	usable := false

	for _, rec := range records {
		if rec.Embedding == "" {
			continue
		}
		vector, err := ParseVector(rec.Embedding)
		if err != nil {
			e.logger.Warn("skipping faq with unparseable embedding", "faq_id", rec.ID, "error", err)
			continue
		}
		if len(vector) != len(query) {
			e.logger.Warn("skipping faq with mismatched embedding dimension", "faq_id", rec.ID, "got", len(vector), "want", len(query))
			continue
		}
		if isZero(vector) {
			e.logger.Warn("skipping faq with zero-norm embedding", "faq_id", rec.ID)
			continue
		}
		usable = true
		score := CosineSimilarity(query, vector)
		if score < relevanceFloor {
			continue
		}
		matches = append(matches, newMatch(rec, score))
	}

	sortBySimilarity(matches)
	return matches, usable
}

// rankByKeywords scores each FAQ by the share of query words (longer than
// two characters) found in its lower-cased question+answer text. FAQs with
// zero overlap are excluded.
func (e *Engine) rankByKeywords(question string, records []faq.Record) []Match {
	words := strings.Fields(strings.ToLower(question))
	if len(words) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(records))
	for _, rec := range records {
		text := strings.ToLower(rec.Question + " " + rec.Answer)
		hits := 0
		for _, word := range words {
			if len(word) > 2 && strings.Contains(text, word) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(words))
		if score > 1 {
			score = 1
		}
		matches = append(matches, newMatch(rec, score))
	}

	sortBySimilarity(matches)
	return matches
}

// CosineSimilarity returns dot(a,b)/(||a||*||b||) clamped to [0,1]. Negative
// cosine is floored at zero: opposite vectors are treated as unrelated, not
// anti-matching. Mismatched lengths and zero vectors score zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ParseVector decodes the serialized embedding text stored with a FAQ.
func ParseVector(text string) ([]float64, error) {
	var vector []float64
	if err := json.Unmarshal([]byte(text), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}

func newMatch(rec faq.Record, score float64) Match {
	return Match{
		ID:         rec.ID,
		Question:   rec.Question,
		Answer:     rec.Answer,
		Category:   rec.Category,
		Similarity: score,
	}
}

// sortBySimilarity orders matches descending. The sort is stable so equal
// scores keep corpus order.
func sortBySimilarity(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
}

func truncate(matches []Match, limit int) []Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func toFloat64(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}

func isZero(vector []float64) bool {
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}
