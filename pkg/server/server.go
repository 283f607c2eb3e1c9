// Package server is the HTTP surface over the story pipeline.
package server

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fabler/pkg/pipeline"
	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

const storiesFile = "Stories.json"

type Server struct {
	Echo     *echo.Echo
	Pipeline *pipeline.Pipeline
	Ctx      context.Context
	ImageDir string

	mu      sync.RWMutex
	Stories map[string]*schema.FinalizedStory
}

func NewServer(ctx context.Context, p *pipeline.Pipeline, imageDir string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:     e,
		Pipeline: p,
		Ctx:      ctx,
		ImageDir: imageDir,
		Stories:  make(map[string]*schema.FinalizedStory),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/stories", s.handlePostStory)            // run the full pipeline -> story + telemetry
	api.GET("/stories", s.handleListStories)           // id -> title index
	api.GET("/stories/:id", s.handleGetStory)          // one finished story
	api.GET("/stories/images/:file", s.handleGetImage) // stored WebP renders
}

// LoadStories restores previously generated stories from disk. Missing
// file is a fresh start, not an error.
func (s *Server) LoadStories() {
	stories, err := utils.Load[map[string]*schema.FinalizedStory](storiesFile)
	if err != nil || stories == nil {
		return
	}
	s.mu.Lock()
	s.Stories = stories
	s.mu.Unlock()
	log.Info("loaded stories", "count", len(stories))
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")

	s.mu.RLock()
	saveErr := utils.Save(storiesFile, s.Stories)
	s.mu.RUnlock()

	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return saveErr
}

func (s *Server) storeStory(story *schema.FinalizedStory) {
	s.mu.Lock()
	s.Stories[story.ID] = story
	s.mu.Unlock()
}

func (s *Server) story(id string) (*schema.FinalizedStory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	story, ok := s.Stories[id]
	return story, ok
}
