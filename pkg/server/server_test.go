package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/openai/openai-go/v3"

	"fabler/pkg/inference"
	"fabler/pkg/pipeline"
	"fabler/pkg/queue"
	"fabler/pkg/roster"
	"fabler/pkg/schema"
)

type scriptedCompleter struct{}

func (scriptedCompleter) Complete(_ context.Context, _ *openai.ChatCompletionNewParams, system, _ string) (*inference.Result, error) {
	var payload any
	if strings.Contains(system, "structural story architect") {
		payload = fixtureSkeleton()
	} else {
		payload = fixtureStory()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &inference.Result{Content: string(data), Usage: inference.Usage{PromptTokens: 50, CompletionTokens: 100}}, nil
}

type urlSynth struct{}

func (urlSynth) Generate(_ context.Context, req *queue.Request) (*queue.Result, error) {
	return &queue.Result{URL: fmt.Sprintf("/api/stories/images/%d.webp", req.Seed)}, nil
}

func fixtureSkeleton() *schema.StorySkeleton {
	beats := strings.TrimSpace(strings.Repeat("the heroes keep moving through the tall grass while the wind carries a strange song from somewhere far ahead of them ", 2))
	s := &schema.StorySkeleton{
		Title:    "The Song in the Grass",
		Artifact: schema.ArtifactRequirement{Category: "nature", Ability: "call the wind", DiscoveryChapter: 2, UsageChapter: 3},
	}
	for i := 0; i < 3; i++ {
		s.Chapters = append(s.Chapters, schema.SkeletonChapter{
			Title:           fmt.Sprintf("Chapter %d", i+1),
			Beats:           "Mira follows the song with {{WISE_MENTOR}}. " + beats,
			SupportingRoles: []string{"{{WISE_MENTOR}}"},
		})
	}
	return s
}

func fixtureStory() *schema.FinalizedStory {
	s := &schema.FinalizedStory{
		Title:       "The Song in the Grass",
		Description: "Mira follows a song only she can hear.",
	}
	for i := 0; i < 3; i++ {
		body := "Mira pushed through the whispering grass, listening hard, and learned to trust what she heard."
		if i == 2 {
			body += " When the song ended they walked home together, happy and safe."
		}
		s.Chapters = append(s.Chapters, schema.Chapter{
			Title:            fmt.Sprintf("Chapter %d", i+1),
			Body:             body,
			ImageDescription: "Mira stands in tall silver grass under a wide sky",
		})
	}
	return s
}

func testServer(t *testing.T) *Server {
	t.Helper()
	p := pipeline.New(scriptedCompleter{}, urlSynth{}, roster.New())
	p.Tuning.QualityWordFloor = 5
	return NewServer(context.Background(), p, t.TempDir())
}

func postStory(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/stories", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestPostStory(t *testing.T) {
	s := testServer(t)

	rec := postStory(t, s, `{"config":{"genre":"adventure","length":"short","age_group":"6-8"},"avatars":[{"id":"av-1","name":"Mira"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/stories = %d: %s", rec.Code, rec.Body.String())
	}

	var res pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(res.Story.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(res.Story.Chapters))
	}
	for i, ch := range res.Story.Chapters {
		if !strings.Contains(ch.Body, "Mira") {
			t.Errorf("chapter %d missing the hero", i+1)
		}
		if ch.ImageURL == "" {
			t.Errorf("chapter %d missing image URL", i+1)
		}
	}
	if res.Telemetry == nil || res.Telemetry.PromptTokens == 0 {
		t.Error("response must carry telemetry")
	}

	// The story must be retrievable afterwards.
	req := httptest.NewRequest(http.MethodGet, "/api/stories/"+res.Story.ID, nil)
	rec2 := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("GET story = %d", rec2.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stories", nil)
	rec3 := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec3, req)
	var list []storyListEntry
	if err := json.Unmarshal(rec3.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Errorf("story listing broken: %v, %s", err, rec3.Body.String())
	}
}

func TestPostStoryValidation(t *testing.T) {
	s := testServer(t)

	cases := []string{
		`{"config":{"length":"short"},"avatars":[{"name":"Mira"}]}`,
		`{"config":{"genre":"adventure"},"avatars":[]}`,
		`{"config":{"genre":"adventure"},"avatars":[{"name":"  "}]}`,
		`{"config":{"genre":"adventure","length":"epic"},"avatars":[{"name":"Mira"}]}`,
		`not json`,
	}
	for _, body := range cases {
		if rec := postStory(t, s, body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestGetStoryNotFound(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stories/nope", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetImageRejectsBadFilenames(t *testing.T) {
	s := testServer(t)
	for _, file := range []string{"..%2Fsecret.webp", "render.png", "a%2Fb.webp"} {
		req := httptest.NewRequest(http.MethodGet, "/api/stories/images/"+file, nil)
		rec := httptest.NewRecorder()
		s.Echo.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			t.Errorf("file %q must not be served", file)
		}
	}
}
