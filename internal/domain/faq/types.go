package faq

import "time"

// Record represents a knowledge base entry. Embedding holds the serialized
// vector text ("[0.1,0.2,...]") or is empty when no embedding could be
// produced; the similarity engine parses and validates it per matching pass.
type Record struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category,omitempty"`
	Embedding string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput carries the fields accepted when creating a FAQ.
type CreateInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// UpdateInput carries optional fields for a partial update.
type UpdateInput struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Category *string `json:"category"`
}

// Filters narrows FAQ listings.
type Filters struct {
	Category string
	Limit    int
}
