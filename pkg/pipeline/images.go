package pipeline

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"fabler/pkg/queue"
	"fabler/pkg/schema"
	"fabler/pkg/seed"
)

// imageWorkers caps concurrent image-synthesis calls per story.
const imageWorkers = 4

// renderImages runs Phase 4: the cover plus one image per chapter,
// rendered concurrently. Each image derives its own seed from the
// story's base seed, so identical stories re-render identically. A
// failed image downgrades its chapter to no image; it never aborts the
// story, and neither does cancellation at this point. Returns how many
// images rendered.
func (p *Pipeline) renderImages(ctx context.Context, cfg *schema.StoryConfig, story *schema.FinalizedStory, avatars []schema.AvatarRef, assignment schema.CharacterAssignment) int {
	if p.Synth == nil {
		return 0
	}

	names := make([]string, 0, len(avatars))
	for _, a := range avatars {
		names = append(names, a.Name)
	}
	base := seed.Derive(seed.StoryKey(story.Title, names))

	// Placeholder order must be stable or the assembled prompt, and
	// with it the render cache key, would vary between runs.
	placeholders := make([]string, 0, len(assignment))
	for ph := range assignment {
		placeholders = append(placeholders, ph)
	}
	slices.Sort(placeholders)
	canons := castCanons(avatars, assignment, placeholders, cfg.AgeGroup)

	scenes := make([]string, len(story.Chapters)+1)
	scenes[0] = coverScene(story)
	for i, ch := range story.Chapters {
		scenes[i+1] = ch.ImageDescription
	}

	urls := make([]string, len(scenes))
	var rendered int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageWorkers)
	for i, scene := range scenes {
		g.Go(func() error {
			built := p.Assembler.Build(canons, scene)
			req := queue.DefaultRequest()
			req.Positive = built.Positive
			req.Negative = built.Negative
			req.Seed = seed.ForImage(base, i)

			res, err := p.Synth.Generate(gctx, req)
			if err != nil {
				log.Warn("image generation failed, continuing without", "index", i, "seed", req.Seed, "err", err)
				return nil
			}
			urls[i] = res.URL
			return nil
		})
	}
	// Workers never return errors; failures downgrade in place.
	_ = g.Wait()

	if urls[0] != "" {
		story.CoverURL = urls[0]
		rendered++
	}
	for i := range story.Chapters {
		if urls[i+1] != "" {
			story.Chapters[i].ImageURL = urls[i+1]
			rendered++
		}
	}
	return rendered
}

// coverScene builds the cover's scene description from the teaser.
func coverScene(story *schema.FinalizedStory) string {
	if story.Description != "" {
		return "book cover: " + story.Description
	}
	return "book cover for " + story.Title
}
