package pipeline

import (
	"fmt"
	"strings"

	"fabler/pkg/canon"
	"fabler/pkg/schema"
)

const skeletonSystemPrompt = `You are a structural story architect for illustrated children's books. Your task is to produce the skeleton of a multi-chapter story as a single JSON object. Do not write any prose; this phase is structure only.

**Rules:**
- Produce exactly the requested number of chapters, in reading order.
- Each chapter gets 50-100 words of structural beats: what happens, who is present, how it connects to the next chapter.
- The named heroes appear by name. Supporting characters you invent appear ONLY as placeholder tokens in double braces, e.g. {{WISE_GUIDE}} or {{RIVAL}}. Never invent a proper name for a supporting character.
- List every placeholder a chapter uses in that chapter's supporting_roles array.
- Weave exactly one reward artifact through the story: pick a category and an ability, have the heroes discover it in one chapter and use it in a strictly later chapter.
- Keep stakes and vocabulary appropriate for the stated age group.
- Output only the JSON object.`

const finalizeSystemPrompt = `You are a children's book author. You receive a story skeleton with the full cast already named, and you write the finished book as a single JSON object.

**Rules:**
- Expand every chapter's beats into warm, vivid prose within the stated word target. Follow the beats; do not invent new plot.
- Use each character's visual description naturally so an illustrator could draw them from the text alone.
- Every chapter also gets an image_description: one concrete visual moment from that chapter, described for an illustrator in present tense.
- The final chapter must end on a complete sentence with an emotionally warm closing.
- If a riddle or mystery is introduced, it must be resolved on the page.
- Report trait_deltas: small signed changes (-3 to 3) to hero traits such as courage, kindness, curiosity, derived from what actually happens in the story.
- Respect the tone, pacing and age-group guidance exactly.
- Output only the JSON object.`

// skeletonUserPrompt renders the structural request for Phase 1.
func skeletonUserPrompt(cfg *schema.StoryConfig, avatars []schema.AvatarRef, chapters int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a %d-chapter %s story set in %s for readers aged %s.\n\n", chapters, cfg.Genre, orDefault(cfg.Setting, "a place of your choosing"), cfg.AgeGroup)
	b.WriteString("Heroes:\n")
	for _, a := range avatars {
		fmt.Fprintf(&b, "- %s", a.Name)
		if a.Description != "" {
			fmt.Fprintf(&b, ": %s", a.Description)
		}
		b.WriteString("\n")
	}
	if cfg.Tone != "" {
		fmt.Fprintf(&b, "\nTone: %s\n", cfg.Tone)
	}
	if cfg.Pacing != "" {
		fmt.Fprintf(&b, "Pacing: %s\n", cfg.Pacing)
	}
	if cfg.CustomInstructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions: %s\n", cfg.CustomInstructions)
	}
	return b.String()
}

// finalizeUserPrompt renders the Phase 3 request: the named skeleton,
// the full cast with visual descriptions, and the word-count band.
// feedback carries the previous attempt's quality issues, empty on the
// first attempt.
func finalizeUserPrompt(cfg *schema.StoryConfig, skeleton *schema.StorySkeleton, cast []canon.Canon, natures map[string][]string, wordLow, wordHigh int, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the full story %q: %d chapters, each %d-%d words of prose, for readers aged %s.\n", skeleton.Title, len(skeleton.Chapters), wordLow, wordHigh, cfg.AgeGroup)
	fmt.Fprintf(&b, "Genre: %s. Setting: %s.\n", cfg.Genre, orDefault(cfg.Setting, "as established in the outline"))
	if cfg.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", cfg.Tone)
	}
	if cfg.Pacing != "" {
		fmt.Fprintf(&b, "Pacing: %s.\n", cfg.Pacing)
	}

	b.WriteString("\nCast:\n")
	for _, c := range cast {
		fmt.Fprintf(&b, "- %s", c.Identity())
		if tags := natures[c.Name]; len(tags) > 0 {
			fmt.Fprintf(&b, "; nature: %s", strings.Join(tags, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nReward artifact: a %s artifact granting %q, discovered in chapter %d and used in chapter %d.\n",
		skeleton.Artifact.Category, skeleton.Artifact.Ability, skeleton.Artifact.DiscoveryChapter, skeleton.Artifact.UsageChapter)

	b.WriteString("\nOutline:\n")
	for i, ch := range skeleton.Chapters {
		fmt.Fprintf(&b, "Chapter %d - %s: %s\n", i+1, ch.Title, ch.Beats)
	}

	if cfg.CustomInstructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions: %s\n", cfg.CustomInstructions)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\nThe previous draft had problems. Fix all of them this time:\n%s\n", feedback)
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
