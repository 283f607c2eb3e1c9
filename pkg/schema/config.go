package schema

import "fmt"

// Length selects how many chapters a story gets.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Chapters maps a story length to its fixed chapter count.
func (l Length) Chapters() int {
	switch l {
	case LengthShort:
		return 3
	case LengthLong:
		return 8
	default:
		return 5
	}
}

// AgeGroup is the target reader age band.
type AgeGroup string

const (
	AgeGroupPreschool AgeGroup = "3-5"
	AgeGroupEarly     AgeGroup = "6-8"
	AgeGroupMiddle    AgeGroup = "9-12"
)

// Midpoint returns the middle of the age band, used when an avatar
// has no explicit age.
func (a AgeGroup) Midpoint() int {
	switch a {
	case AgeGroupPreschool:
		return 4
	case AgeGroupMiddle:
		return 10
	default:
		return 7
	}
}

// StoryConfig is the immutable input to one generation run.
type StoryConfig struct {
	Genre              string   `json:"genre"`
	Setting            string   `json:"setting"`
	AgeGroup           AgeGroup `json:"age_group"`
	Length             Length   `json:"length"`
	Tone               string   `json:"tone,omitempty"`
	Pacing             string   `json:"pacing,omitempty"`
	CustomInstructions string   `json:"custom_instructions,omitempty"`
}

func (c *StoryConfig) Validate() error {
	if c.Genre == "" {
		return fmt.Errorf("story config: genre is required")
	}
	switch c.Length {
	case "", LengthShort, LengthMedium, LengthLong:
	default:
		return fmt.Errorf("story config: unknown length %q", c.Length)
	}
	if c.Length == "" {
		c.Length = LengthMedium
	}
	if c.AgeGroup == "" {
		c.AgeGroup = AgeGroupEarly
	}
	return nil
}
