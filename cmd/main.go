package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	gommon "github.com/labstack/gommon/log"

	"fabler/pkg/inference"
	"fabler/pkg/pipeline"
	"fabler/pkg/queue"
	"fabler/pkg/queue/sdapi"
	"fabler/pkg/roster"
	"fabler/pkg/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	openAI := inference.NewOpenAICompleter(apiKey, model)
	if apiKey == "" {
		openAI.ChangeBaseURL("http://localhost:1234/v1")
		openAI.SetModel("")
	}
	var completer inference.Completer = openAI

	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gemini, err := inference.NewGeminiCompleter(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatal("gemini init failed", "err", err)
		}
		completer = gemini
	}

	imageDir := filepath.Join("images", "stories")
	var synth queue.Synthesizer
	if sdURL := os.Getenv("SD_API_URL"); sdURL != "" {
		synth = sdapi.New(sdURL, imageDir, "/api/stories/images/")
	} else {
		log.Warn("SD_API_URL unset, stories will be text-only")
	}

	pool := roster.New()
	if path := os.Getenv("ROSTER_FILE"); path != "" {
		pool.LoadFile(path)
	}

	p := pipeline.New(completer, synth, pool)

	srv := server.NewServer(ctx, p, imageDir)
	srv.Echo.Logger.SetLevel(gommon.INFO)
	srv.LoadStories()

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("shutdown", "err", err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "err", err)
	}
	<-finishedShutDown
}
