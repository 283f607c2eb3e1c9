// Package pipeline runs the four-phase story generation: structural
// skeleton, supporting-character matching, quality-gated finalization,
// and per-chapter image synthesis.
package pipeline

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"fabler/pkg/canon"
	"fabler/pkg/inference"
	"fabler/pkg/prompt"
	"fabler/pkg/queue"
	"fabler/pkg/retry"
	"fabler/pkg/schema"
)

// CharacterPool is the supporting-character store Phase 2 draws from.
type CharacterPool interface {
	QueryCandidates(roleTags []string) []schema.CharacterTemplate
	RecordUsage(characterID, storyID string)
	UsedIn(characterID string) []string
}

// Tuning holds the empirically-tuned knobs of the quality loop. These
// are deployment configuration, not invariants; DefaultTuning matches
// production experience but any deployment may override them.
type Tuning struct {
	// AcceptScore is the quality score at which a draft is accepted
	// without further retries.
	AcceptScore float64
	// RetryBudget is how many extra finalize attempts are allowed after
	// the first.
	RetryBudget int
	// MinBeatWords is the hard per-chapter floor for skeleton beats.
	MinBeatWords int
	// WordTargetLow and WordTargetHigh bound the requested chapter
	// prose length. Outside the band is a warning, not a rejection.
	WordTargetLow  int
	WordTargetHigh int
	// QualityWordFloor is the per-chapter prose floor below which the
	// scorer applies a penalty.
	QualityWordFloor int
	// RecentWindow is how many of a character's recent story
	// appearances count against it during matching.
	RecentWindow int
}

// DefaultTuning returns the production values.
func DefaultTuning() Tuning {
	return Tuning{
		AcceptScore:      8.5,
		RetryBudget:      2,
		MinBeatWords:     35,
		WordTargetLow:    310,
		WordTargetHigh:   350,
		QualityWordFloor: 150,
		RecentWindow:     5,
	}
}

// Result is one finished generation run.
type Result struct {
	Story     *schema.FinalizedStory      `json:"story"`
	Telemetry *schema.GenerationTelemetry `json:"telemetry"`
}

// Pipeline orchestrates one story-generation call. It is safe for
// concurrent use; all per-run state lives on the stack.
type Pipeline struct {
	Completer inference.Completer
	Synth     queue.Synthesizer
	Pool      CharacterPool
	Assembler *prompt.Assembler
	Tuning    Tuning

	// Retry governs individual provider calls. Zero value means
	// retry.DefaultPolicy with the inference transient classifier.
	Retry retry.Policy
}

// New wires a pipeline with default tuning and retry policy.
func New(completer inference.Completer, synth queue.Synthesizer, pool CharacterPool) *Pipeline {
	policy := retry.DefaultPolicy()
	policy.Transient = inference.Transient
	return &Pipeline{
		Completer: completer,
		Synth:     synth,
		Pool:      pool,
		Assembler: prompt.NewAssembler(),
		Tuning:    DefaultTuning(),
		Retry:     policy,
	}
}

// Generate runs the full pipeline for one request. Phases 1-3 are
// sequential; Phase 4 renders the cover and chapters concurrently. A
// cancellation during Phase 4 still returns the finalized text-only
// story.
func (p *Pipeline) Generate(ctx context.Context, cfg *schema.StoryConfig, avatars []schema.AvatarRef) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(avatars) == 0 {
		return nil, &StructuralError{Phase: PhaseSkeleton, Attempt: 0, Reason: "at least one avatar is required"}
	}

	telemetry := &schema.GenerationTelemetry{}
	start := time.Now()
	phase := func(name Phase, began time.Time) {
		telemetry.Phases = append(telemetry.Phases, schema.PhaseTiming{Phase: string(name), Duration: time.Since(began)})
	}

	began := time.Now()
	skeleton, err := p.generateSkeleton(ctx, cfg, avatars, telemetry)
	if err != nil {
		return nil, err
	}
	phase(PhaseSkeleton, began)
	log.Info("skeleton generated", "title", skeleton.Title, "chapters", len(skeleton.Chapters), "placeholders", len(skeleton.Placeholders()))

	began = time.Now()
	assignment := p.match(skeleton, cfg.Setting, avatars)
	phase(PhaseMatch, began)

	began = time.Now()
	story, report, err := p.finalize(ctx, cfg, skeleton, avatars, assignment, telemetry)
	if err != nil {
		return nil, err
	}
	phase(PhaseFinalize, began)
	log.Info("story finalized", "title", story.Title, "score", report.Score)

	story.ID = ksuid.New().String()
	for _, tmpl := range assignment {
		p.Pool.RecordUsage(tmpl.ID, story.ID)
	}

	began = time.Now()
	rendered := p.renderImages(ctx, cfg, story, avatars, assignment)
	phase(PhaseImages, began)
	telemetry.Images = rendered

	telemetry.Total = time.Since(start)
	telemetry.CostUSD = estimateCost(telemetry)
	return &Result{Story: story, Telemetry: telemetry}, nil
}

// complete runs one provider call under the retry policy and folds
// usage into the telemetry.
func (p *Pipeline) complete(ctx context.Context, phase Phase, attempt int, params *openai.ChatCompletionNewParams, system, user string, telemetry *schema.GenerationTelemetry) (string, error) {
	policy := p.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
		policy.Transient = inference.Transient
	}

	var content string
	err := policy.Do(ctx, func(ctx context.Context) error {
		res, err := p.Completer.Complete(ctx, params, system, user)
		if res != nil {
			telemetry.AddUsage(res.Usage.PromptTokens, res.Usage.CompletionTokens)
		}
		if err != nil {
			return err
		}
		content = res.Content
		return nil
	})
	if err != nil {
		return "", wrapProvider(phase, attempt, err)
	}
	return content, nil
}

// samplingSeed biases the completion provider toward varied outputs on
// repeated identical requests. It mixes wall clock, an input hash and a
// random component; it has nothing to do with image seeds.
func samplingSeed(parts ...string) int64 {
	h := fnv.New64a()
	for _, s := range parts {
		h.Write([]byte(s))
	}
	mixed := int64(h.Sum64()>>1) ^ time.Now().UnixNano() ^ rand.Int64()
	if mixed < 0 {
		mixed = -mixed
	}
	return mixed
}

// castCanons resolves the full cast of a story into canons: the avatars
// first, then the assigned pool characters in placeholder order.
func castCanons(avatars []schema.AvatarRef, assignment schema.CharacterAssignment, placeholders []string, ageGroup schema.AgeGroup) []canon.Canon {
	canons := make([]canon.Canon, 0, len(avatars)+len(assignment))
	for _, a := range avatars {
		canons = append(canons, canon.Build(a, ageGroup))
	}
	for _, ph := range placeholders {
		if tmpl, ok := assignment[ph]; ok {
			canons = append(canons, canon.FromTemplate(tmpl, ageGroup))
		}
	}
	return canons
}

// estimateCost is a coarse blended-rate estimate used for telemetry
// only, never billing.
func estimateCost(t *schema.GenerationTelemetry) float64 {
	const perMillionPrompt, perMillionCompletion = 2.50, 10.00
	return float64(t.PromptTokens)/1e6*perMillionPrompt + float64(t.CompletionTokens)/1e6*perMillionCompletion
}
