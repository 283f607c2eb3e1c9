package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"fabler/pkg/pipeline"
	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

type storyReq struct {
	Config  schema.StoryConfig `json:"config"`
	Avatars []schema.AvatarRef `json:"avatars"`
}

type storyListEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Chapters    int    `json:"chapters"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// GET /
func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/stories
func (s *Server) handlePostStory(c echo.Context) error {
	var req storyReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if err := req.Config.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Avatars) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one avatar is required")
	}
	for _, a := range req.Avatars {
		if strings.TrimSpace(a.Name) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "every avatar needs a name")
		}
	}

	res, err := s.Pipeline.Generate(c.Request().Context(), &req.Config, req.Avatars)
	if err != nil {
		return storyError(err)
	}

	s.storeStory(res.Story)
	return c.JSON(http.StatusOK, res)
}

// storyError maps pipeline failures onto HTTP statuses without leaking
// raw provider payloads.
func storyError(err error) error {
	var policy *pipeline.ContentPolicyError
	if errors.As(err, &policy) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, policy.Error())
	}
	if pipeline.IsStructural(err) {
		return echo.NewHTTPError(http.StatusBadGateway, "the story came back malformed, try again")
	}
	var provider *pipeline.ProviderError
	if errors.As(err, &provider) {
		return echo.NewHTTPError(http.StatusBadGateway, "generation provider unavailable, try again")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "story generation failed")
}

// GET /api/stories
func (s *Server) handleListStories(c echo.Context) error {
	s.mu.RLock()
	entries := make([]storyListEntry, 0, len(s.Stories))
	for id, story := range s.Stories {
		entries = append(entries, storyListEntry{
			ID:          id,
			Title:       story.Title,
			Description: story.Description,
			Chapters:    len(story.Chapters),
			CoverURL:    story.CoverURL,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return c.JSON(http.StatusOK, entries)
}

// GET /api/stories/:id
func (s *Server) handleGetStory(c echo.Context) error {
	story, ok := s.story(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such story")
	}
	return c.JSON(http.StatusOK, story)
}

// GET /api/stories/images/:file
func (s *Server) handleGetImage(c echo.Context) error {
	file := c.Param("file")
	if file != utils.SanitizeFilename(file) || strings.Contains(file, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "bad filename")
	}
	if !strings.HasSuffix(file, ".webp") {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.File(filepath.Join(s.ImageDir, file))
}
