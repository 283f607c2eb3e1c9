package roster

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueryCandidatesByRoleTag(t *testing.T) {
	s := New()

	got := s.QueryCandidates([]string{"{{WISE_MENTOR}}"})
	if len(got) == 0 {
		t.Fatal("expected at least one mentor candidate")
	}
	found := false
	for _, c := range got {
		if c.Name == "Orla" {
			found = true
		}
	}
	if !found {
		t.Errorf("wise mentor query should surface Orla, got %d candidates", len(got))
	}
}

func TestQueryCandidatesFallsBackToWholePool(t *testing.T) {
	s := New()
	all := s.QueryCandidates(nil)
	if len(all) != len(builtinTemplates()) {
		t.Errorf("empty query should return the whole pool, got %d", len(all))
	}

	none := s.QueryCandidates([]string{"{{XYZZY_QUUX}}"})
	if len(none) != len(builtinTemplates()) {
		t.Errorf("unmatched tag should fall back to the whole pool, got %d", len(none))
	}
}

func TestQueryCandidatesMatchesNature(t *testing.T) {
	s := New()
	got := s.QueryCandidates([]string{"{{CLEVER_FRIEND}}"})
	found := false
	for _, c := range got {
		if c.Name == "Fig" {
			found = true
		}
	}
	if !found {
		t.Error("clever tag should surface the trickster fox")
	}
}

func TestUsageTracking(t *testing.T) {
	s := New()

	if used := s.UsedIn("tmpl-fig-fox"); used != nil {
		t.Fatalf("fresh character should have no usage, got %v", used)
	}

	s.RecordUsage("tmpl-fig-fox", "story-1")
	s.RecordUsage("tmpl-fig-fox", "story-2")

	used := s.UsedIn("tmpl-fig-fox")
	if len(used) != 2 || used[0] != "story-1" || used[1] != "story-2" {
		t.Errorf("usage history mismatch: %v", used)
	}

	if s.UsedIn("tmpl-orla-owl") != nil {
		t.Error("usage must not leak across characters")
	}
}

func TestRecordUsageConcurrent(t *testing.T) {
	s := New()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s.RecordUsage("tmpl-fig-fox", fmt.Sprintf("story-%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(s.UsedIn("tmpl-fig-fox")); got != n {
		t.Errorf("concurrent recordings lost entries: got %d, want %d", got, n)
	}
}

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"{{WISE_GUIDE}}": "wise guide",
		"  Helper  ":     "helper",
		"{{X}}":          "x",
	}
	for in, want := range cases {
		if got := normalizeTag(in); got != want {
			t.Errorf("normalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}
