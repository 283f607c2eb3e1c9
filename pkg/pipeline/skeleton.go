package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

// generateSkeleton runs Phase 1: one strict-JSON completion for the
// story structure, validated before anything downstream sees it. This
// phase only needs structure, so reasoning effort stays low and the
// sampling seed is high-entropy to vary outputs across identical
// requests.
func (p *Pipeline) generateSkeleton(ctx context.Context, cfg *schema.StoryConfig, avatars []schema.AvatarRef, telemetry *schema.GenerationTelemetry) (*schema.StorySkeleton, error) {
	chapters := cfg.Length.Chapters()
	user := skeletonUserPrompt(cfg, avatars, chapters)

	params := &openai.ChatCompletionNewParams{
		ResponseFormat:  schema.SkeletonResponseFormat(),
		ReasoningEffort: shared.ReasoningEffortLow,
		Seed:            openai.Int(samplingSeed(cfg.Genre, cfg.Setting, user)),
	}

	content, err := p.complete(ctx, PhaseSkeleton, 1, params, skeletonSystemPrompt, user, telemetry)
	if err != nil {
		return nil, err
	}

	var skeleton schema.StorySkeleton
	if err := json.Unmarshal([]byte(utils.CleanJSON(content)), &skeleton); err != nil {
		return nil, &StructuralError{Phase: PhaseSkeleton, Attempt: 1, Reason: "unparseable skeleton response", Err: err}
	}

	if err := validateSkeleton(&skeleton, chapters, p.Tuning.MinBeatWords); err != nil {
		return nil, err
	}
	repairSkeleton(&skeleton, chapters)
	return &skeleton, nil
}

// validateSkeleton enforces the hard shape invariants. Chapter count
// and the beat-word floor are fatal; a malformed placeholder is only
// logged, since the matcher skips what it cannot parse.
func validateSkeleton(s *schema.StorySkeleton, chapters, minBeatWords int) error {
	if len(s.Chapters) != chapters {
		return &StructuralError{
			Phase: PhaseSkeleton, Attempt: 1,
			Reason: fmt.Sprintf("expected %d chapters, got %d", chapters, len(s.Chapters)),
		}
	}
	for i, ch := range s.Chapters {
		if words := utils.WordCount(ch.Beats); words < minBeatWords {
			return &StructuralError{
				Phase: PhaseSkeleton, Attempt: 1,
				Reason: fmt.Sprintf("chapter %d beats too thin: %d words, floor is %d", i+1, words, minBeatWords),
			}
		}
		for _, role := range ch.SupportingRoles {
			if !schema.PlaceholderRX.MatchString(role) {
				log.Warn("malformed placeholder tolerated", "chapter", i+1, "role", role)
			}
		}
	}
	return nil
}

// repairSkeleton runs once after validation and fills every best-effort
// default, so everything downstream works with an always-valid object.
func repairSkeleton(s *schema.StorySkeleton, chapters int) {
	a := &s.Artifact
	if a.Category == "" {
		a.Category = "magic"
	}
	if a.Ability == "" {
		a.Ability = "reveal the way forward"
	}
	if a.DiscoveryChapter < 1 || a.DiscoveryChapter > chapters {
		a.DiscoveryChapter = min(2, chapters)
	}
	if a.UsageChapter <= a.DiscoveryChapter || a.UsageChapter > chapters {
		a.UsageChapter = min(max(4, a.DiscoveryChapter+1), chapters)
	}
	if a.UsageChapter <= a.DiscoveryChapter && a.DiscoveryChapter > 1 {
		a.DiscoveryChapter = a.UsageChapter - 1
	}
	if s.Title == "" {
		s.Title = "An Unexpected Adventure"
	}
}
