package pipeline

import (
	"context"
	"strings"
	"testing"

	"fabler/pkg/schema"
)

func TestGenerateSkeletonValid(t *testing.T) {
	completer := &fakeCompleter{
		respond: func(n int, system, user string) (string, error) {
			return mustJSON(t, testSkeleton(3)), nil
		},
	}
	p := testPipeline(completer, nil, newFakePool())

	cfg := &schema.StoryConfig{Genre: "adventure", Length: schema.LengthShort}
	telemetry := &schema.GenerationTelemetry{}
	skeleton, err := p.generateSkeleton(context.Background(), cfg, []schema.AvatarRef{{Name: "Mira"}}, telemetry)
	if err != nil {
		t.Fatalf("valid skeleton rejected: %v", err)
	}
	if len(skeleton.Chapters) != 3 {
		t.Errorf("chapter count mismatch: %d", len(skeleton.Chapters))
	}
	if got := skeleton.Placeholders(); len(got) != 1 || got[0] != "{{WISE_GUIDE}}" {
		t.Errorf("placeholder extraction mismatch: %v", got)
	}
	if telemetry.PromptTokens == 0 {
		t.Error("usage not recorded")
	}
}

func TestGenerateSkeletonWrongChapterCount(t *testing.T) {
	completer := &fakeCompleter{
		respond: func(n int, system, user string) (string, error) {
			return mustJSON(t, testSkeleton(4)), nil
		},
	}
	p := testPipeline(completer, nil, newFakePool())

	cfg := &schema.StoryConfig{Genre: "adventure", Length: schema.LengthShort}
	_, err := p.generateSkeleton(context.Background(), cfg, []schema.AvatarRef{{Name: "Mira"}}, &schema.GenerationTelemetry{})
	if !IsStructural(err) {
		t.Fatalf("wrong chapter count must be structural, got %v", err)
	}
	if completer.callCount() != 1 {
		t.Errorf("the skeleton phase must not self-retry, made %d calls", completer.callCount())
	}
}

func TestGenerateSkeletonThinBeats(t *testing.T) {
	thin := testSkeleton(3)
	thin.Chapters[1].Beats = "not much happens here"
	completer := &fakeCompleter{
		respond: func(n int, system, user string) (string, error) {
			return mustJSON(t, thin), nil
		},
	}
	p := testPipeline(completer, nil, newFakePool())

	cfg := &schema.StoryConfig{Genre: "adventure", Length: schema.LengthShort}
	_, err := p.generateSkeleton(context.Background(), cfg, []schema.AvatarRef{{Name: "Mira"}}, &schema.GenerationTelemetry{})
	if !IsStructural(err) {
		t.Fatalf("beats below the word floor must be structural, got %v", err)
	}
	if !strings.Contains(err.Error(), "chapter 2") {
		t.Errorf("error should name the chapter: %v", err)
	}
}

func TestGenerateSkeletonUnparseable(t *testing.T) {
	completer := &fakeCompleter{
		respond: func(n int, system, user string) (string, error) {
			return "I would love to help with that story!", nil
		},
	}
	p := testPipeline(completer, nil, newFakePool())

	cfg := &schema.StoryConfig{Genre: "adventure", Length: schema.LengthShort}
	_, err := p.generateSkeleton(context.Background(), cfg, []schema.AvatarRef{{Name: "Mira"}}, &schema.GenerationTelemetry{})
	if !IsStructural(err) {
		t.Fatalf("unparseable response must be structural, got %v", err)
	}
}

func TestRepairSkeletonSynthesizesArtifact(t *testing.T) {
	s := testSkeleton(5)
	s.Artifact = schema.ArtifactRequirement{}
	repairSkeleton(s, 5)

	a := s.Artifact
	if a.Category != "magic" {
		t.Errorf("default category should be magic, got %q", a.Category)
	}
	if a.DiscoveryChapter != 2 || a.UsageChapter != 4 {
		t.Errorf("default placement should be discovery 2, usage 4; got %d/%d", a.DiscoveryChapter, a.UsageChapter)
	}
}

func TestRepairSkeletonUsageAfterDiscovery(t *testing.T) {
	s := testSkeleton(3)
	s.Artifact.DiscoveryChapter = 3
	s.Artifact.UsageChapter = 2
	repairSkeleton(s, 3)

	if s.Artifact.UsageChapter <= s.Artifact.DiscoveryChapter {
		t.Errorf("usage must come after discovery, got %d/%d", s.Artifact.DiscoveryChapter, s.Artifact.UsageChapter)
	}
	if s.Artifact.UsageChapter > 3 {
		t.Errorf("usage chapter out of range: %d", s.Artifact.UsageChapter)
	}
}
