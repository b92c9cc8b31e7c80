package query

// Personalizer adapts an answer to user preferences before it is returned.
type Personalizer interface {
	Personalize(answer string, preferences map[string]any) string
}

// IdentityPersonalizer returns every answer unchanged regardless of the
// detail_level preference. It exists as the seam for future personalization
// logic.
type IdentityPersonalizer struct{}

func (IdentityPersonalizer) Personalize(answer string, _ map[string]any) string {
	return answer
}
