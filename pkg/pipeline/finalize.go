package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"fabler/pkg/canon"
	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

// traitDeltaClamp bounds per-trait development changes.
const traitDeltaClamp = 3

// finalize runs Phase 3: placeholder substitution, one big completion
// per attempt, and the quality-gated retry loop. The loop accepts the
// first draft scoring at or above the threshold, otherwise keeps the
// best draft across the budget. A quality shortfall never fails the
// story; only structural errors do.
func (p *Pipeline) finalize(ctx context.Context, cfg *schema.StoryConfig, skeleton *schema.StorySkeleton, avatars []schema.AvatarRef, assignment schema.CharacterAssignment, telemetry *schema.GenerationTelemetry) (*schema.FinalizedStory, schema.QualityReport, error) {
	named := substitutePlaceholders(skeleton, assignment)
	cast := castCanons(avatars, assignment, skeleton.Placeholders(), cfg.AgeGroup)
	natures := make(map[string][]string, len(assignment))
	for _, tmpl := range assignment {
		natures[tmpl.Name] = tmpl.Nature
	}

	var (
		best       *schema.FinalizedStory
		bestReport schema.QualityReport
		bestBody   string
		feedback   string
		lastErr    error
	)
	bestReport.Score = -1

	attempts := 1 + p.Tuning.RetryBudget
	for attempt := 1; attempt <= attempts; attempt++ {
		story, err := p.finalizeOnce(ctx, cfg, named, cast, natures, feedback, attempt, telemetry)
		if err != nil {
			var ce *ContentPolicyError
			if errors.As(err, &ce) {
				return nil, schema.QualityReport{}, err
			}
			lastErr = err
			log.Warn("finalize attempt failed", "attempt", attempt, "err", err)
			continue
		}

		report := scoreStory(story, avatars, p.Tuning.QualityWordFloor)
		logWordBand(story, p.Tuning.WordTargetLow, p.Tuning.WordTargetHigh)

		body := storyText(story)
		if best != nil {
			log.Debug("draft delta", "attempt", attempt, "changed_words", utils.ChangedWords(bestBody, body))
		}

		// Ties go to the newer draft: it was written with the previous
		// attempt's feedback.
		if report.Score >= bestReport.Score {
			best, bestReport, bestBody = story, report, body
		}
		if report.Score >= p.Tuning.AcceptScore {
			log.Info("draft accepted", "attempt", attempt, "score", report.Score)
			return best, bestReport, nil
		}

		feedback = feedbackString(report)
		log.Warn("draft below threshold", "attempt", attempt, "score", report.Score, "issues", len(report.Issues))
	}

	if best == nil {
		if lastErr != nil {
			return nil, schema.QualityReport{}, lastErr
		}
		return nil, schema.QualityReport{}, &StructuralError{Phase: PhaseFinalize, Attempt: attempts, Reason: "no usable draft produced"}
	}
	log.Warn("retry budget exhausted, keeping best draft", "score", bestReport.Score)
	return best, bestReport, nil
}

// finalizeOnce runs one completion attempt and the post-parse repair
// pass.
func (p *Pipeline) finalizeOnce(ctx context.Context, cfg *schema.StoryConfig, skeleton *schema.StorySkeleton, cast []canon.Canon, natures map[string][]string, feedback string, attempt int, telemetry *schema.GenerationTelemetry) (*schema.FinalizedStory, error) {
	user := finalizeUserPrompt(cfg, skeleton, cast, natures, p.Tuning.WordTargetLow, p.Tuning.WordTargetHigh, feedback)

	params := &openai.ChatCompletionNewParams{
		ResponseFormat: schema.StoryResponseFormat(),
		Seed:           openai.Int(samplingSeed(skeleton.Title, fmt.Sprint(attempt))),
	}
	// The response is full prose, several times the outline's size.
	if tokens, err := utils.EstimateTokens(user); err == nil {
		params.MaxCompletionTokens = openai.Int(int64(max(tokens*3, 8192)))
	}

	content, err := p.complete(ctx, PhaseFinalize, attempt, params, finalizeSystemPrompt, user, telemetry)
	if err != nil {
		return nil, err
	}

	var story schema.FinalizedStory
	if err := json.Unmarshal([]byte(utils.CleanJSON(content)), &story); err != nil {
		return nil, &StructuralError{Phase: PhaseFinalize, Attempt: attempt, Reason: "unparseable story response", Err: err}
	}
	if len(story.Chapters) != len(skeleton.Chapters) {
		return nil, &StructuralError{
			Phase: PhaseFinalize, Attempt: attempt,
			Reason: fmt.Sprintf("expected %d chapters, got %d", len(skeleton.Chapters), len(story.Chapters)),
		}
	}

	repairStory(&story, skeleton, cfg)
	return &story, nil
}

// repairStory runs once after parsing and fills every best-effort
// fallback, producing a single always-valid object.
func repairStory(story *schema.FinalizedStory, skeleton *schema.StorySkeleton, cfg *schema.StoryConfig) {
	if strings.TrimSpace(story.Title) == "" {
		story.Title = skeleton.Title
	}
	if strings.TrimSpace(story.Description) == "" {
		story.Description = fmt.Sprintf("A %d-chapter %s story: %s.", len(story.Chapters), cfg.Genre, story.Title)
	}
	for i := range story.Chapters {
		if strings.TrimSpace(story.Chapters[i].Title) == "" {
			story.Chapters[i].Title = skeleton.Chapters[i].Title
		}
		if strings.TrimSpace(story.Chapters[i].ImageDescription) == "" {
			story.Chapters[i].ImageDescription = skeleton.Chapters[i].Beats
		}
	}
	if story.Artifact == nil {
		story.Artifact = &schema.UnlockedArtifact{
			Name:        fmt.Sprintf("The %s of %s", capitalize(skeleton.Artifact.Category), story.Title),
			Description: fmt.Sprintf("A %s artifact found on the journey.", skeleton.Artifact.Category),
			Ability:     skeleton.Artifact.Ability,
		}
	}
	for trait, delta := range story.TraitDeltas {
		if delta > traitDeltaClamp {
			story.TraitDeltas[trait] = traitDeltaClamp
		} else if delta < -traitDeltaClamp {
			story.TraitDeltas[trait] = -traitDeltaClamp
		}
	}
}

// substitutePlaceholders returns a copy of the skeleton with every
// placeholder occurrence replaced by its assigned character's name.
func substitutePlaceholders(skeleton *schema.StorySkeleton, assignment schema.CharacterAssignment) *schema.StorySkeleton {
	replace := func(s string) string {
		return schema.PlaceholderRX.ReplaceAllStringFunc(s, func(ph string) string {
			if tmpl, ok := assignment[ph]; ok {
				return tmpl.Name
			}
			return ph
		})
	}

	named := &schema.StorySkeleton{
		Title:    replace(skeleton.Title),
		Artifact: skeleton.Artifact,
		Chapters: make([]schema.SkeletonChapter, len(skeleton.Chapters)),
	}
	for i, ch := range skeleton.Chapters {
		named.Chapters[i] = schema.SkeletonChapter{
			Title: replace(ch.Title),
			Beats: replace(ch.Beats),
		}
	}
	return named
}

func logWordBand(story *schema.FinalizedStory, low, high int) {
	for i, ch := range story.Chapters {
		words := utils.WordCount(ch.Body)
		if words < low || words > high {
			log.Warn("chapter outside word band", "chapter", i+1, "words", words, "band", fmt.Sprintf("%d-%d", low, high))
		}
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func storyText(story *schema.FinalizedStory) string {
	var b strings.Builder
	for _, ch := range story.Chapters {
		b.WriteString(ch.Body)
		b.WriteString("\n")
	}
	return b.String()
}
