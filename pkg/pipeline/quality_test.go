package pipeline

import (
	"testing"

	"fabler/pkg/schema"
)

func TestScorePerfectStory(t *testing.T) {
	story := testStory(3)
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 5)
	if report.Score != 10 {
		t.Fatalf("clean story should score 10, got %v (issues: %v)", report.Score, report.Issues)
	}
	if len(report.Issues) != 0 {
		t.Errorf("clean story should have no issues, got %v", report.Issues)
	}
}

func TestScoreMissingAvatar(t *testing.T) {
	story := testStory(3)
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}, {Name: "Theo"}}, 5)
	if report.Score != 10-penaltyMissingAvatar {
		t.Errorf("missing hero should cost %v, got score %v", penaltyMissingAvatar, report.Score)
	}
}

func TestScoreRepeatedPattern(t *testing.T) {
	story := testStory(3)
	story.Chapters[0].Body += " The end. The end."
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 5)
	if report.Score != 10-penaltyRepeatedPattern {
		t.Errorf("degenerate repetition should cost %v, got score %v", penaltyRepeatedPattern, report.Score)
	}
}

func TestScoreThinChapters(t *testing.T) {
	story := testStory(3)
	story.Chapters[1].Body = "Mira walked home happy."
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 50)
	if report.Score >= 10 {
		t.Error("thin chapters must be penalized")
	}
}

func TestScoreWeakEnding(t *testing.T) {
	story := testStory(3)
	story.Chapters[2].Body = "Mira kept walking and then she"
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 5)
	if report.Score != 10-penaltyWeakEnding {
		t.Errorf("incomplete ending should cost %v, got score %v", penaltyWeakEnding, report.Score)
	}
}

func TestScoreUnresolvedRiddle(t *testing.T) {
	story := testStory(3)
	story.Chapters[0].Body += " A strange riddle was carved into the stone."
	report := scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 5)
	if report.Score != 10-penaltyUnresolvedMotif {
		t.Errorf("unresolved riddle should cost %v, got score %v", penaltyUnresolvedMotif, report.Score)
	}

	story.Chapters[2].Body += " At last Mira solved it, and they walked home together, happy and safe."
	report = scoreStory(story, []schema.AvatarRef{{Name: "Mira"}}, 5)
	if report.Score != 10 {
		t.Errorf("resolved riddle should not be penalized, got %v (issues: %v)", report.Score, report.Issues)
	}
}

func TestScoreFlooredAtZero(t *testing.T) {
	story := &schema.FinalizedStory{Chapters: []schema.Chapter{{Body: "and then and then"}}}
	avatars := []schema.AvatarRef{{Name: "Mira"}, {Name: "Theo"}, {Name: "Pip"}, {Name: "Nora"}, {Name: "Finn"}}
	report := scoreStory(story, avatars, 50)
	if report.Score != 0 {
		t.Errorf("score must floor at 0, got %v", report.Score)
	}
}

func TestWarmCompleteEnding(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"They walked home together, happy and safe.", true},
		{"Everyone smiled as the stars came out.", true},
		{`"Good night," she whispered, warm and asleep."`, true},
		{"And then she", false},
		{"The dragon attacked the village.", false},
		{"", false},
	}
	for _, c := range cases {
		if got := warmCompleteEnding(c.body); got != c.want {
			t.Errorf("warmCompleteEnding(%q) = %v, want %v", c.body, got, c.want)
		}
	}
}

func TestFeedbackString(t *testing.T) {
	report := schema.QualityReport{
		Issues:      []string{"hero missing", "ending weak"},
		Suggestions: []string{"add the hero", "warm up the ending"},
	}
	fb := feedbackString(report)
	for _, want := range []string{"hero missing", "add the hero", "ending weak"} {
		if !containsAny(fb, []string{want}) {
			t.Errorf("feedback %q should contain %q", fb, want)
		}
	}
	if feedbackString(schema.QualityReport{}) != "" {
		t.Error("clean report should produce no feedback")
	}
}
