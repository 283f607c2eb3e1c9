package schema

import (
	"regexp"
	"slices"
)

// PlaceholderRX matches supporting-role placeholders such as {{GUIDE}}.
var PlaceholderRX = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// StorySkeleton is the Phase 1 output: the structural outline a story is
// finalized from. Field names are part of the wire contract between
// phases and must stay stable.
type StorySkeleton struct {
	Title    string              `json:"title" jsonschema_description:"Working title for the story"`
	Chapters []SkeletonChapter   `json:"chapters" jsonschema_description:"Structural outline, one entry per chapter"`
	Artifact ArtifactRequirement `json:"artifact" jsonschema_description:"The reward artifact woven through the story"`
}

// SkeletonChapter holds the structural beats for one chapter before any
// prose exists. Supporting characters appear as {{ROLE}} placeholders
// inside Beats.
type SkeletonChapter struct {
	Title           string   `json:"title" jsonschema_description:"Short chapter title"`
	Beats           string   `json:"beats" jsonschema_description:"50-100 words of structural beats for this chapter"`
	SupportingRoles []string `json:"supporting_roles" jsonschema_description:"Placeholder tokens like {{GUIDE}} for not-yet-cast supporting characters"`
}

// ArtifactRequirement pins where the reward artifact enters and pays off.
// Usage must come strictly after discovery.
type ArtifactRequirement struct {
	Category         string `json:"category" jsonschema_description:"Artifact category, e.g. magic, tool, nature"`
	Ability          string `json:"ability" jsonschema_description:"What the artifact lets the heroes do"`
	DiscoveryChapter int    `json:"discovery_chapter" jsonschema_description:"1-based chapter index where the artifact is found"`
	UsageChapter     int    `json:"usage_chapter" jsonschema_description:"1-based chapter index where the artifact is used, after discovery"`
}

// Placeholders returns the deduplicated placeholder tokens across all
// chapters, both from the declared role lists and from tokens embedded
// in beat text, sorted for deterministic iteration.
func (s *StorySkeleton) Placeholders() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(tok string) {
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	for _, ch := range s.Chapters {
		for _, role := range ch.SupportingRoles {
			if PlaceholderRX.MatchString(role) {
				add(role)
			}
		}
		for _, m := range PlaceholderRX.FindAllString(ch.Beats, -1) {
			add(m)
		}
	}
	slices.Sort(out)
	return out
}
