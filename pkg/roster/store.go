// Package roster is the supporting-character pool behind Phase 2. It
// answers candidate queries by role tag and remembers which stories a
// character recently appeared in, so the matcher can keep casts fresh.
package roster

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

// similarityFloor is how close a role tag must be to a template's
// archetype or role before the template counts as a candidate.
const similarityFloor = 0.6

// Store holds the reusable character templates and their recent-usage
// history. Usage entries expire on their own; a character unused for
// the freshness window carries no penalty at all.
type Store struct {
	mu        sync.RWMutex
	templates []schema.CharacterTemplate
	usage     *gocache.Cache
}

// New builds a store over the built-in template set.
func New() *Store {
	return &Store{
		templates: builtinTemplates(),
		usage:     gocache.New(30*24*time.Hour, time.Hour),
	}
}

// LoadFile replaces the built-in templates with a JSON file's contents.
// A missing or unreadable file keeps the built-ins.
func (s *Store) LoadFile(path string) {
	templates, err := utils.Load[[]schema.CharacterTemplate](path)
	if err != nil || len(templates) == 0 {
		log.Debug("keeping built-in roster", "path", path, "err", err)
		return
	}
	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
	log.Info("loaded roster templates", "path", path, "count", len(templates))
}

// QueryCandidates returns the templates plausible for the given role
// tags. With no tag match at all, the whole pool is returned and the
// matcher's scoring sorts it out.
func (s *Store) QueryCandidates(roleTags []string) []schema.CharacterTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.CharacterTemplate
	for _, t := range s.templates {
		if matchesAny(t, roleTags) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, s.templates...)
	}
	return out
}

// RecordUsage notes that a character appeared in a story. The
// get-append-set on the usage cache is guarded so concurrent runs
// never drop an entry.
func (s *Store) RecordUsage(characterID, storyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stories []string
	if v, ok := s.usage.Get(characterID); ok {
		stories = v.([]string)
	}
	stories = append(stories, storyID)
	s.usage.Set(characterID, stories, gocache.DefaultExpiration)
}

// UsedIn returns the story IDs a character appeared in within the
// freshness window.
func (s *Store) UsedIn(characterID string) []string {
	v, ok := s.usage.Get(characterID)
	if !ok {
		return nil
	}
	return v.([]string)
}

func matchesAny(t schema.CharacterTemplate, roleTags []string) bool {
	fields := append([]string{t.Archetype, t.Role}, t.Nature...)
	for _, tag := range roleTags {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		for _, f := range fields {
			f = strings.ToLower(f)
			if f == "" {
				continue
			}
			if strings.Contains(f, tag) || strings.Contains(tag, f) {
				return true
			}
			if utils.Similarity(f, tag) >= similarityFloor {
				return true
			}
		}
	}
	return false
}

// normalizeTag lowers a tag and strips placeholder braces and
// underscores, so {{WISE_GUIDE}} can match a "wise guide" archetype.
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.Trim(tag, "{}")
	tag = strings.ReplaceAll(tag, "_", " ")
	return strings.TrimSpace(tag)
}
