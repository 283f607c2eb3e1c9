package schema

import "time"

// FinalizedStory is the Phase 3 output and the shape any persistence
// layer consumes. Field names are part of the wire contract.
type FinalizedStory struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title" jsonschema_description:"Final story title"`
	Description string            `json:"description" jsonschema_description:"One-paragraph teaser for the story"`
	Chapters    []Chapter         `json:"chapters" jsonschema_description:"Full prose chapters in reading order"`
	TraitDeltas map[string]int    `json:"trait_deltas,omitempty" jsonschema_description:"Signed avatar-development changes per trait, derived from the narrative"`
	Artifact    *UnlockedArtifact `json:"artifact,omitempty" jsonschema_description:"The reward artifact unlocked by this story, if any"`
	CoverURL    string            `json:"cover_url,omitempty"`
}

// Chapter is one finished chapter of prose plus the scene its image is
// rendered from.
type Chapter struct {
	Title            string `json:"title" jsonschema_description:"Chapter title"`
	Body             string `json:"body" jsonschema_description:"Chapter prose, roughly 310-350 words"`
	ImageDescription string `json:"image_description" jsonschema_description:"One visual scene from this chapter, described for an illustrator"`
	Summary          string `json:"summary,omitempty" jsonschema_description:"Optional one-line beat summary"`
	ImageURL         string `json:"image_url,omitempty"`
}

// UnlockedArtifact is the concrete reward the finalizer named for the
// skeleton's artifact requirement.
type UnlockedArtifact struct {
	Name        string `json:"name" jsonschema_description:"Artifact name"`
	Description string `json:"description" jsonschema_description:"What the artifact is and looks like"`
	Ability     string `json:"ability" jsonschema_description:"The ability the artifact grants"`
}

// QualityReport is produced and consumed inside the quality-gated retry
// loop. It never leaves the finalizer.
type QualityReport struct {
	Score       float64  `json:"score"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// PhaseTiming records how long one pipeline phase took.
type PhaseTiming struct {
	Phase    string        `json:"phase"`
	Duration time.Duration `json:"duration"`
}

// GenerationTelemetry aggregates usage across one orchestration call.
// Written once by the orchestrator and attached to the final response.
type GenerationTelemetry struct {
	PromptTokens     int64         `json:"prompt_tokens"`
	CompletionTokens int64         `json:"completion_tokens"`
	Phases           []PhaseTiming `json:"phases"`
	Images           int           `json:"images"`
	CostUSD          float64       `json:"cost_usd"`
	Total            time.Duration `json:"total"`
}

// AddUsage accumulates provider-reported token counts.
func (t *GenerationTelemetry) AddUsage(prompt, completion int64) {
	t.PromptTokens += prompt
	t.CompletionTokens += completion
}
