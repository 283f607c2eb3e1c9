// Package prompt assembles positive and negative image prompts from
// character canons and a scene description.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"fabler/pkg/canon"
)

// DefaultStyle is the compact style declaration leading every positive
// prompt.
const DefaultStyle = "children's book illustration, soft watercolor, warm gentle lighting, storybook style, high quality"

// universalNegative applies to every image regardless of cast.
var universalNegative = []string{
	"duplicate characters",
	"extra characters",
	"watermark",
	"text",
	"signature",
	"logo",
	"blurry",
	"deformed hands",
	"extra limbs",
}

// ImagePrompt is one assembled request's prompt pair.
type ImagePrompt struct {
	Positive string
	Negative string
}

// Assembler builds image prompts. MaxLength caps the positive prompt in
// runes; when the cap bites, only the scene block shrinks — the style
// and CHARACTERS blocks are never truncated, since dropping a locked
// attribute breaks visual consistency for the rest of the story.
type Assembler struct {
	Style     string
	MaxLength int
}

// NewAssembler returns an assembler with the default style and a
// provider-safe length budget.
func NewAssembler() *Assembler {
	return &Assembler{Style: DefaultStyle, MaxLength: 2000}
}

// Build assembles the prompt pair for one scene featuring the given
// canons.
func (a *Assembler) Build(canons []canon.Canon, scene string) ImagePrompt {
	style := a.Style
	if style == "" {
		style = DefaultStyle
	}

	var b strings.Builder
	b.WriteString(style)
	b.WriteString("\n\nCHARACTERS:\n")
	for _, c := range canons {
		b.WriteString("- ")
		b.WriteString(c.Identity())
		b.WriteString("\n")
	}
	if line := heightOrderLine(canons); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fixed := b.String()

	scene = strings.TrimSpace(scene)
	sceneBlock := ""
	if scene != "" {
		sceneBlock = "\nSCENE: " + scene
	}

	if a.MaxLength > 0 {
		budget := a.MaxLength - len([]rune(fixed))
		if budget < 0 {
			// The fixed blocks alone exceed the cap; keep them whole and
			// drop the scene entirely.
			sceneBlock = ""
		} else if len([]rune(sceneBlock)) > budget {
			sceneBlock = truncateRunes(sceneBlock, budget)
		}
	}

	return ImagePrompt{
		Positive: fixed + sceneBlock,
		Negative: a.negative(canons),
	}
}

// negative unions every canon's forbidden features. Species-baseline
// terms are global and deduplicated; color-contrast terms are attributed
// to their character so one character's lock never reads as a ban on a
// scene partner who legitimately has that color.
func (a *Assembler) negative(canons []canon.Canon) string {
	var parts []string

	seen := make(map[string]struct{})
	for _, c := range canons {
		attributed := make(map[string]struct{}, len(c.ColorForbidden))
		for _, f := range c.ColorForbidden {
			attributed[strings.ToLower(f)] = struct{}{}
		}
		for _, f := range c.Forbidden {
			key := strings.ToLower(f)
			if _, ok := attributed[key]; ok {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			parts = append(parts, f)
		}
	}
	sort.Strings(parts)

	for _, c := range canons {
		if len(c.ColorForbidden) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("(%s: %s)", c.Name, strings.Join(c.ColorForbidden, ", ")))
	}

	parts = append(parts, universalNegative...)
	return strings.Join(parts, ", ")
}

// heightOrderLine renders an explicit relative-height ordering for
// scenes with two or more humans so downstream rendering keeps size
// relationships consistent.
func heightOrderLine(canons []canon.Canon) string {
	var humans []canon.Canon
	for _, c := range canons {
		if c.Species == canon.SpeciesHuman {
			humans = append(humans, c)
		}
	}
	if len(humans) < 2 {
		return ""
	}
	sort.SliceStable(humans, func(i, j int) bool { return humans[i].HeightCM < humans[j].HeightCM })
	names := make([]string, len(humans))
	for i, h := range humans {
		names[i] = fmt.Sprintf("%s (%d cm)", h.Name, h.HeightCM)
	}
	return "height order, shortest to tallest: " + strings.Join(names, " < ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
