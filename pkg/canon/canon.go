// Package canon converts loosely-typed visual profiles into locked,
// invariant-bearing character descriptions. Every image prompt in a
// story is assembled from these canons, which is what keeps a character
// looking the same across the cover and all chapters.
package canon

import (
	"fmt"
	"strings"

	"fabler/pkg/schema"
)

// Species classifies a character for prompt purposes.
type Species string

const (
	SpeciesHuman  Species = "human"
	SpeciesCat    Species = "cat"
	SpeciesDog    Species = "dog"
	SpeciesAnimal Species = "other-animal"
)

// Token is one must-include phrase with a priority from 1 (locked
// identity, never dropped) to 3 (nice to have).
type Token struct {
	Text     string
	Priority int
}

// Canon is the fully-resolved visual identity of one character. It is
// derived per generation run and never persisted; optionality from the
// raw profile does not leak past this type.
type Canon struct {
	Name        string
	Species     Species
	Hair        string
	Eyes        string
	Skin        string
	Age         int
	HeightCM    int
	MustInclude []Token

	// Forbidden is the full negative-feature list for this character:
	// the species baseline plus locked-color contrast terms.
	Forbidden []string
	// ColorForbidden is the contrast-term subset of Forbidden. The
	// prompt assembler attributes these to the character by name, so a
	// scene partner whose own canon requires one of them is never
	// contradicted.
	ColorForbidden []string
}

// Build resolves an avatar into its canon. Pure: same inputs, same
// canon. A profile may be nil or arbitrarily sparse; defaults come from
// the age band and the height table.
func Build(avatar schema.AvatarRef, ageGroup schema.AgeGroup) Canon {
	profile := avatar.Profile
	if profile == nil {
		profile = &schema.VisualProfile{}
	}

	c := Canon{
		Name:    avatar.Name,
		Species: classify(profile, avatar.Description),
		Hair:    strings.TrimSpace(profile.Hair),
		Eyes:    strings.TrimSpace(profile.Eyes),
		Skin:    strings.TrimSpace(profile.Skin),
	}

	if profile.Age != nil && *profile.Age > 0 {
		c.Age = *profile.Age
	} else {
		c.Age = ageGroup.Midpoint()
	}
	if profile.HeightCM != nil && *profile.HeightCM > 0 {
		c.HeightCM = *profile.HeightCM
	} else {
		c.HeightCM = heightForAge(c.Age)
	}

	c.MustInclude = mustInclude(c, profile)
	c.Forbidden, c.ColorForbidden = forbidden(c)
	return c
}

// FromTemplate resolves a pool character's free-text visual description
// into a canon so supporting characters get the same consistency
// treatment as avatars.
func FromTemplate(t schema.CharacterTemplate, ageGroup schema.AgeGroup) Canon {
	desc := t.Visual
	if len(t.Palette) > 0 {
		desc += ", " + strings.Join(t.Palette, ", ")
	}
	return Build(schema.AvatarRef{
		ID:          t.ID,
		Name:        t.Name,
		Description: desc,
	}, ageGroup)
}

// classify determines the species. Explicit profile fields win over
// keyword matches so "a girl with a cat plushie" stays human when the
// profile says so; with no signal at all, human is the soft default.
func classify(profile *schema.VisualProfile, description string) Species {
	if explicit := strings.ToLower(strings.TrimSpace(profile.Species)); explicit != "" {
		switch {
		case strings.Contains(explicit, "cat") || strings.Contains(explicit, "feline"):
			return SpeciesCat
		case strings.Contains(explicit, "dog") || strings.Contains(explicit, "canine"):
			return SpeciesDog
		case strings.Contains(explicit, "human"):
			return SpeciesHuman
		default:
			return SpeciesAnimal
		}
	}

	haystack := strings.ToLower(strings.Join(append([]string{description}, profile.Features...), " "))
	for _, group := range speciesKeywords {
		for _, kw := range group.keywords {
			if containsWord(haystack, kw) {
				return group.species
			}
		}
	}
	return SpeciesHuman
}

// mustInclude extracts the short, deduplicated token list the prompt
// assembler must always carry. Hair, eyes and skin are the locked
// identity for humans; animals lead with their coat and species marker.
func mustInclude(c Canon, profile *schema.VisualProfile) []Token {
	var tokens []Token
	add := func(text string, priority int) {
		text = strings.TrimSpace(text)
		if text == "" || len(tokens) >= 6 {
			return
		}
		lower := strings.ToLower(text)
		for _, t := range tokens {
			if strings.ToLower(t.Text) == lower {
				return
			}
		}
		tokens = append(tokens, Token{Text: text, Priority: priority})
	}

	if c.Species == SpeciesHuman {
		if c.Hair != "" {
			add(c.Hair+" hair", 1)
		}
		if c.Eyes != "" {
			add(c.Eyes+" eyes", 1)
		}
		if c.Skin != "" {
			add(c.Skin+" skin", 1)
		}
		add(profile.Clothing, 2)
		for _, a := range profile.Accessories {
			add(a, 2)
		}
		for _, f := range profile.Features {
			add(f, 3)
		}
		return tokens
	}

	// Animal characters: coat color and species marker come first.
	if c.Hair != "" {
		add(c.Hair+" fur", 1)
	}
	add(string(speciesNoun(c.Species)), 1)
	if c.Eyes != "" {
		add(c.Eyes+" eyes", 2)
	}
	add("four-legged", 2)
	for _, f := range profile.Features {
		add(f, 3)
	}
	for _, a := range profile.Accessories {
		add(a, 3)
	}
	return tokens
}

func speciesNoun(s Species) string {
	switch s {
	case SpeciesCat:
		return "cat"
	case SpeciesDog:
		return "dog"
	default:
		return "animal"
	}
}

// forbidden computes the negative-prompt contribution for one canon:
// the species baseline plus color-contrast terms for whatever colors
// are locked. Anything that would contradict the character's own
// must-include list is filtered out.
func forbidden(c Canon) (all, colors []string) {
	var base []string
	if c.Species == SpeciesHuman {
		base = append(base, animalAnatomy...)
	} else {
		base = append(base, anthropomorphic...)
	}
	colors = append(colors, contrastTerms(c.Hair, hairContrast)...)
	colors = append(colors, contrastTerms(c.Eyes, eyeContrast)...)

	keep := func(in []string) []string {
		kept := in[:0]
		for _, f := range in {
			if !contradictsMustInclude(f, c.MustInclude) {
				kept = append(kept, f)
			}
		}
		return dedupe(kept)
	}
	base = keep(base)
	colors = keep(colors)
	return dedupe(append(base, colors...)), colors
}

func contrastTerms(locked string, table []colorContrast) []string {
	locked = strings.ToLower(strings.TrimSpace(locked))
	if locked == "" {
		return nil
	}
	for _, cc := range table {
		if strings.Contains(locked, cc.color) {
			return cc.contrasts
		}
	}
	return nil
}

func contradictsMustInclude(term string, must []Token) bool {
	term = strings.ToLower(term)
	for _, t := range must {
		text := strings.ToLower(t.Text)
		if text == term || strings.Contains(text, term) || strings.Contains(term, text) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// containsWord reports whether the haystack contains kw as a whole
// word, so "category" never matches "cat".
func containsWord(haystack, kw string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Identity renders the canon's locked attributes as one line for the
// CHARACTERS prompt block.
func (c Canon) Identity() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s (%s, age %d, %d cm)", c.Name, c.Species, c.Age, c.HeightCM))
	for _, t := range c.MustInclude {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, ", ")
}
