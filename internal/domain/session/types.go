package session

import "time"

// Session represents a user session row keyed by a uuid.
type Session struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"userId"`
	Data      map[string]any `json:"sessionData"`
	ExpiresAt time.Time      `json:"expiresAt"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CreateInput carries the fields accepted when opening a session.
type CreateInput struct {
	UserID    int64          `json:"userId"`
	Data      map[string]any `json:"sessionData"`
	ExpiresAt *time.Time     `json:"expiresAt"`
}
