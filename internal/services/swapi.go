package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultSWAPIURL = "https://swapi.py4e.com/api"
	defaultWorkers  = 5
)

// SWAPIOptions configures a [SWAPIService].
type SWAPIOptions struct {
	BaseURL   string
	Client    *http.Client
	RateLimit float64 // requests per second, <= 0 disables limiting
	Workers   int
	Logger    *log.Logger
}

// SWAPIService implements [ReferenceClient] for the Star Wars API.
type SWAPIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	workers    int
	logger     *log.Logger

	mu      sync.RWMutex
	records map[string]models.Record
}

// NewSWAPIService creates a client. Missing options fall back to the public API and [http.DefaultClient].
func NewSWAPIService(opts SWAPIOptions) *SWAPIService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultSWAPIURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &SWAPIService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		limiter:    rate.NewLimiter(limit, opts.Workers),
		workers:    opts.Workers,
		logger:     shared.WithLogger(opts.Logger, "service", "swapi"),
		records:    make(map[string]models.Record),
	}
}

// resolve turns a base-relative reference such as "people/1" into an absolute URL.
func (s *SWAPIService) resolve(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		return rawURL
	}
	return s.baseURL + "/" + strings.TrimLeft(rawURL, "/")
}

func (s *SWAPIService) collectionURL(kind models.Kind) (string, error) {
	resource := kind.Resource()
	if resource == "" {
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownKind, kind)
	}
	return s.baseURL + "/" + resource + "/", nil
}

// fetch waits on the shared limiter before every request.
func (s *SWAPIService) fetch(ctx context.Context, rawURL string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	s.logger.Debug("GET", "url", rawURL)
	return getJSON(ctx, s.httpClient, rawURL, result)
}

func (s *SWAPIService) cached(rawURL string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[rawURL]
	return r, ok
}

func (s *SWAPIService) remember(records ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if u := r.URL(); u != "" {
			s.records[u] = r
		}
	}
}

// ListPage fetches page (1-based) of kind's collection.
func (s *SWAPIService) ListPage(ctx context.Context, kind models.Kind, page int) (*models.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", shared.ErrInvalidArgument, page)
	}

	base, err := s.collectionURL(kind)
	if err != nil {
		return nil, err
	}

	var result models.Page
	if err := s.fetch(ctx, fmt.Sprintf("%s?page=%d", base, page), &result); err != nil {
		return nil, err
	}
	s.remember(result.Results...)
	return &result, nil
}

// ListAll follows "next" links from the first page until the last one.
func (s *SWAPIService) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	start, err := s.collectionURL(kind)
	if err != nil {
		return nil, err
	}

	all, err := s.walk(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Plural(), err)
	}
	s.logger.Debug("collection fetched", "kind", kind, "count", len(all))
	return all, nil
}

// walk collects results page by page. A link that was already visited ends the walk.
func (s *SWAPIService) walk(ctx context.Context, next string) ([]models.Record, error) {
	var all []models.Record
	seen := make(map[string]bool)
	for next != "" && !seen[next] {
		seen[next] = true

		var page models.Page
		if err := s.fetch(ctx, next, &page); err != nil {
			return nil, err
		}
		s.remember(page.Results...)
		all = append(all, page.Results...)

		next = ""
		if page.HasNext() {
			next = *page.Next
		}
	}
	return all, nil
}

// Get returns the record at rawURL, from memory when it was fetched before.
func (s *SWAPIService) Get(ctx context.Context, rawURL string) (models.Record, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", shared.ErrInvalidArgument)
	}

	abs := s.resolve(rawURL)
	if r, ok := s.cached(abs); ok {
		return r, nil
	}

	var record models.Record
	if err := s.fetch(ctx, abs, &record); err != nil {
		return nil, err
	}
	if record.URL() == "" {
		record["url"] = abs
	}
	s.remember(record)
	return record, nil
}

// GetByID fetches kind/id.
func (s *SWAPIService) GetByID(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	base, err := s.collectionURL(kind)
	if err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: invalid id %q", shared.ErrInvalidArgument, id)
	}
	return s.Get(ctx, base+id+"/")
}

// ResolveNames fetches every distinct URL with at most s.workers requests in flight.
func (s *SWAPIService) ResolveNames(ctx context.Context, urls []string) (map[string]string, error) {
	names := make(map[string]string, len(urls))

	var pending []string
	queued := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || queued[u] {
			continue
		}
		queued[u] = true
		if r, ok := s.cached(s.resolve(u)); ok {
			names[u] = r.Label()
			continue
		}
		pending = append(pending, u)
	}
	if len(pending) == 0 {
		return names, nil
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	jobs := make(chan string)
	workers := min(s.workers, len(pending))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				record, err := s.Get(ctx, u)

				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("resolve %s: %w", u, err))
				} else {
					names[u] = record.Label()
				}
				mu.Unlock()
			}
		}()
	}

	for _, u := range pending {
		select {
		case jobs <- u:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return names, errors.Join(errs...)
}
