// Package seed derives deterministic image seeds so re-rendering the
// same story chapter reproduces the same layout.
package seed

import (
	"slices"
	"strings"
)

const (
	// mask31 keeps seeds inside the positive int32 range image
	// providers expect.
	mask31 = 1<<31 - 1

	// chapterStride spaces sibling chapters apart in seed space.
	// A prime stride avoids collisions for any realistic chapter count.
	chapterStride = 7919

	fnvOffset = 2166136261
	fnvPrime  = 16777619
)

// Derive maps any string to a stable 31-bit seed. Pure and total: the
// same input yields the same seed on every run and platform.
func Derive(key string) uint32 {
	h := uint32(fnvOffset)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime
	}
	return h & mask31
}

// StoryKey builds the canonical base-seed key for a story from its
// title and participant names. Names are sorted so cast order never
// changes the seed.
func StoryKey(title string, participants []string) string {
	names := slices.Clone(participants)
	slices.Sort(names)
	return title + "|" + strings.Join(names, ",")
}

// ForImage derives the seed for one image of a story. Index 0 is the
// cover, chapter i uses index i. Chapters of the same story stay within
// a bounded offset of the base seed, offsets strictly increasing with
// the index, so the images share a family resemblance without repeating.
func ForImage(base uint32, index int) uint32 {
	return (base + uint32(index)*chapterStride) & mask31
}
