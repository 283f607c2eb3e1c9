package schema

// CharacterTemplate is a reusable supporting character drawn from the
// roster pool during Phase 2. Templates outlive stories; an assignment
// of one to a placeholder lasts a single generation run.
type CharacterTemplate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Archetype string   `json:"archetype"`
	Nature    []string `json:"nature,omitempty"`
	Visual    string   `json:"visual"`
	Palette   []string `json:"palette,omitempty"`
}

// CharacterAssignment maps skeleton placeholders to the pool characters
// cast for them. Lifetime is one generation run.
type CharacterAssignment map[string]CharacterTemplate
