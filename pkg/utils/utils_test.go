package utils

import (
	"path/filepath"
	"testing"
)

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"  \n{\"a\":1}\n  ":              `{"a":1}`,
		"```json\n{\n  \"a\": 1\n}\n```": "{\n  \"a\": 1\n}",
	}
	for in, want := range cases {
		if got := CleanJSON(in); got != want {
			t.Errorf("CleanJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWordCount(t *testing.T) {
	cases := map[string]int{
		"":                       0,
		"one":                    1,
		"  spaced   out  words ": 3,
		"line\nbreaks\tcount":    3,
	}
	for in, want := range cases {
		if got := WordCount(in); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"render-7.webp":    "render-7.webp",
		"../../etc/passwd": "____etc_passwd",
		`a\b:c/d`:          "a_b_c_d",
		"  spaced.webp  ":  "spaced.webp",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"guide", "guide", 0},
		{"guide", "guides", 1},
	}
	for _, c := range cases {
		if got := Levenshtein(c.a, c.b); got != c.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("wise guide", "wise guide"); s != 1 {
		t.Errorf("identical strings should score 1, got %v", s)
	}
	if s := Similarity("Wise Guide", "wise guide"); s != 1 {
		t.Errorf("similarity should be case-insensitive, got %v", s)
	}
	if s := Similarity("guide", "rival"); s > 0.5 {
		t.Errorf("unrelated words should score low, got %v", s)
	}
}

func TestChangedWords(t *testing.T) {
	if n := ChangedWords("the quick fox", "the quick fox"); n != 0 {
		t.Errorf("identical texts should report 0 changes, got %d", n)
	}
	if n := ChangedWords("the quick fox", "the slow fox"); n == 0 {
		t.Error("a replaced word must be counted")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	path := filepath.Join(t.TempDir(), "state.json")

	want := map[string]record{"a": {Name: "Orla", Count: 3}}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load[map[string]record](path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got["a"] != want["a"] {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := Load[map[string]record](filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("loading a missing file must error")
	}
}
