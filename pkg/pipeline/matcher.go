package pipeline

import (
	"strings"

	"github.com/charmbracelet/log"

	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

// match runs Phase 2: every placeholder in the skeleton gets exactly
// one pool character. Candidates are scored on archetype fit against
// the placeholder and the story setting, with a freshness penalty for
// recent appearances. Avatars in the main cast are never cast as
// supporting characters, and no pool character is assigned twice in
// one story.
func (p *Pipeline) match(skeleton *schema.StorySkeleton, setting string, avatars []schema.AvatarRef) schema.CharacterAssignment {
	placeholders := skeleton.Placeholders()
	assignment := make(schema.CharacterAssignment, len(placeholders))
	if len(placeholders) == 0 {
		return assignment
	}

	avatarNames := make(map[string]struct{}, len(avatars))
	for _, a := range avatars {
		avatarNames[strings.ToLower(a.Name)] = struct{}{}
	}
	taken := make(map[string]struct{})

	for _, ph := range placeholders {
		candidates := p.Pool.QueryCandidates([]string{ph})

		var best schema.CharacterTemplate
		bestScore := -1.0
		for _, c := range candidates {
			if _, dup := taken[c.ID]; dup {
				continue
			}
			if _, conflict := avatarNames[strings.ToLower(c.Name)]; conflict {
				continue
			}
			score := p.matchScore(ph, setting, c)
			if score > bestScore {
				best, bestScore = c, score
			}
		}

		if bestScore < 0 {
			// Pool exhausted for this story; reuse becomes the lesser
			// evil, still never an avatar.
			for _, c := range candidates {
				if _, conflict := avatarNames[strings.ToLower(c.Name)]; conflict {
					continue
				}
				if score := p.matchScore(ph, setting, c); score > bestScore {
					best, bestScore = c, score
				}
			}
		}
		if bestScore < 0 {
			// Every candidate collides with an avatar name. A raw
			// placeholder must never reach the prose, so invent a
			// one-off character for this story.
			best = fallbackTemplate(ph, avatarNames, assignment)
			bestScore = 0
			log.Warn("pool exhausted, synthesized a character", "placeholder", ph, "character", best.Name)
		}

		assignment[ph] = best
		taken[best.ID] = struct{}{}
		log.Debug("cast supporting character", "placeholder", ph, "character", best.Name, "score", bestScore)
	}
	return assignment
}

// fallbackNames seeds synthesized characters. Short, neutral names
// unlikely to collide with avatars or the built-in roster.
var fallbackNames = []string{"Rowan", "Ivy", "Alder", "Briar", "Linden"}

// fallbackTemplate builds a minimal character for a placeholder the
// pool could not cover, with the archetype taken from the tag itself.
func fallbackTemplate(ph string, avatarNames map[string]struct{}, assignment schema.CharacterAssignment) schema.CharacterTemplate {
	tag := strings.ToLower(strings.Trim(ph, "{}"))
	tag = strings.ReplaceAll(tag, "_", " ")

	unavailable := make(map[string]struct{}, len(avatarNames)+len(assignment))
	for n := range avatarNames {
		unavailable[n] = struct{}{}
	}
	for _, tmpl := range assignment {
		unavailable[strings.ToLower(tmpl.Name)] = struct{}{}
	}
	name := fallbackNames[0]
	for _, n := range fallbackNames {
		if _, used := unavailable[strings.ToLower(n)]; !used {
			name = n
			break
		}
	}

	return schema.CharacterTemplate{
		ID:        "fallback-" + strings.ReplaceAll(tag, " ", "-"),
		Name:      name,
		Role:      tag,
		Archetype: tag,
		Visual:    "a friendly traveler in a plain gray cloak",
	}
}

// matchScore rates one candidate for one placeholder. Archetype fit
// dominates; recent appearances subtract a freshness penalty per story
// within the window.
func (p *Pipeline) matchScore(placeholder, setting string, c schema.CharacterTemplate) float64 {
	tag := strings.ToLower(strings.Trim(placeholder, "{}"))
	tag = strings.ReplaceAll(tag, "_", " ")

	fit := utils.Similarity(tag, c.Archetype)
	if roleFit := utils.Similarity(tag, c.Role); roleFit > fit {
		fit = roleFit
	}
	if strings.Contains(strings.ToLower(c.Archetype), tag) || strings.Contains(tag, strings.ToLower(c.Role)) {
		fit = 1
	}

	if setting != "" && strings.Contains(strings.ToLower(c.Visual), strings.ToLower(setting)) {
		fit += 0.1
	}

	recent := p.Pool.UsedIn(c.ID)
	window := p.Tuning.RecentWindow
	if window <= 0 {
		window = DefaultTuning().RecentWindow
	}
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	return fit - 0.2*float64(len(recent))
}
