package schema

// AvatarRef is a read-only reference to a user-owned avatar. The pipeline
// never mutates or persists these; ownership stays with the caller.
type AvatarRef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Profile     *VisualProfile `json:"visual_profile,omitempty"`
}

// VisualProfile is the loosely-typed appearance record attached to an
// avatar. Every field is optional; the canon builder resolves defaults
// so nothing downstream has to deal with missing values.
type VisualProfile struct {
	Species     string   `json:"species,omitempty"`
	Hair        string   `json:"hair,omitempty"`
	Eyes        string   `json:"eyes,omitempty"`
	Skin        string   `json:"skin,omitempty"`
	Clothing    string   `json:"clothing,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
	Features    []string `json:"distinctive_features,omitempty"`
	Age         *int     `json:"age,omitempty"`
	HeightCM    *int     `json:"height_cm,omitempty"`
}
