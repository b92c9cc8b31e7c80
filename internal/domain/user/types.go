package user

import "time"

// User represents a registered user row.
type User struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Preferences extracts the preference block nested in user metadata.
func (u User) Preferences() map[string]any {
	prefs, _ := u.Metadata["preferences"].(map[string]any)
	if prefs == nil {
		return map[string]any{}
	}
	return prefs
}

// CreateInput carries the fields accepted when registering a user.
type CreateInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata"`
}

// UpdateInput carries optional fields for a partial update.
type UpdateInput struct {
	Name     *string        `json:"name"`
	Email    *string        `json:"email"`
	Metadata map[string]any `json:"metadata"`
}

// Filters narrows user listings.
type Filters struct {
	Limit  int
	Offset int
}
