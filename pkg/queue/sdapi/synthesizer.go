package sdapi

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"fabler/pkg/flight"
	"fabler/pkg/queue"
	"fabler/pkg/retry"
	"fabler/pkg/seed"
	"fabler/pkg/utils"
)

type workItem struct {
	ctx context.Context
	req *queue.Request
}

// Synthesizer renders images through a txt2img endpoint with a rate
// limit, transient-error retry, and render coalescing. Results are
// stored as WebP files; identical renders (same seed and prompts)
// within the cache TTL are served from disk.
type Synthesizer struct {
	client    *Client
	limiter   *rate.Limiter
	policy    retry.Policy
	dir       string
	urlPrefix string

	items *utils.SyncMap[map[string]workItem, string, workItem]
	cache *flight.Cache[string, *queue.Result]
}

// New builds a synthesizer. dir is where WebP files land; urlPrefix is
// prepended to filenames to form the returned image URLs.
func New(baseURL, dir, urlPrefix string) *Synthesizer {
	s := &Synthesizer{
		client:    NewClient(baseURL),
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		policy:    retry.Policy{MaxAttempts: 3, InitialDelay: time.Second, Transient: transientOrNetwork},
		dir:       dir,
		urlPrefix: urlPrefix,
		items:     utils.NewSyncMap[map[string]workItem](),
	}
	s.cache = flight.NewCache(s.render)
	return s
}

func transientOrNetwork(err error) bool {
	return Transient(err) || retry.IsTransient(err)
}

// Generate renders one image, or returns the coalesced/cached result
// for an identical request.
func (s *Synthesizer) Generate(ctx context.Context, req *queue.Request) (*queue.Result, error) {
	key := requestKey(req)
	s.items.Store(key, workItem{ctx: ctx, req: req})
	defer s.items.Delete(key)
	return s.cache.Get(key)
}

// requestKey folds everything that affects pixel output into a stable
// filename-safe key.
func requestKey(req *queue.Request) string {
	content := seed.Derive(fmt.Sprintf("%s|%s|%s|%dx%d|%d", req.Positive, req.Negative, req.Model, req.Width, req.Height, req.Steps))
	return fmt.Sprintf("render-%d-%08x", req.Seed, content)
}

func (s *Synthesizer) render(key string) (*queue.Result, error) {
	item, ok := s.items.Load(key)
	if !ok {
		return nil, fmt.Errorf("no request registered for key %s", key)
	}

	filename := key + ".webp"
	path := filepath.Join(s.dir, utils.SanitizeFilename(filename))
	if data, err := loadWebP(path); err == nil {
		log.Debug("render cache hit", "key", key)
		return &queue.Result{URL: s.urlPrefix + filename, Data: data}, nil
	}

	var png []byte
	err := s.policy.Do(item.ctx, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		var callErr error
		png, callErr = s.client.Txt2Img(ctx, item.req)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	data, err := saveWebP(png, path)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	log.Info("rendered image", "key", key, "seed", item.req.Seed, "bytes", len(data))
	return &queue.Result{URL: s.urlPrefix + filename, Data: data}, nil
}
