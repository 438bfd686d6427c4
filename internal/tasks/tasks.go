// package tasks implements catalog browsing, enrichment and search over reference data.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/services"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/sahilm/fuzzy"
)

// DefaultPerPage is the number of items on a browse page.
const DefaultPerPage = 10

const maxSuggestions = 5

// CatalogOptions configures a [Catalog]. Images and Artwork are optional.
type CatalogOptions struct {
	Reference services.ReferenceClient
	Images    services.ImageLookup
	Artwork   services.ArtworkLookup
	PerPage   int
	Logger    *log.Logger
}

// Catalog answers browse, detail and search queries.
type Catalog struct {
	ref     services.ReferenceClient
	images  services.ImageLookup
	artwork services.ArtworkLookup
	perPage int
	logger  *log.Logger

	mu          sync.Mutex
	collections map[models.Kind][]models.Record
}

// NewCatalog creates a catalog over opts.Reference.
func NewCatalog(opts CatalogOptions) *Catalog {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Catalog{
		ref:         opts.Reference,
		images:      opts.Images,
		artwork:     opts.Artwork,
		perPage:     opts.PerPage,
		logger:      shared.WithLogger(opts.Logger, "component", "catalog"),
		collections: make(map[models.Kind][]models.Record),
	}
}

// PerPage returns the page size.
func (c *Catalog) PerPage() int {
	return c.perPage
}

// Fact is one labelled attribute of an item.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Relation lists the resolved names of one cross-reference field.
type Relation struct {
	Label string   `json:"label"`
	Names []string `json:"names"`
}

// Item is a record prepared for display. Entity carries the raw record for favoriting;
// enrichment lives only in the other fields.
type Item struct {
	Entity  models.Entity `json:"entity"`
	Facts   []Fact        `json:"facts,omitempty"`
	Related []Relation    `json:"related,omitempty"`
	Image   string        `json:"image,omitempty"`
	Poster  string        `json:"poster,omitempty"`
	Rating  float64       `json:"rating,omitempty"`
}

// Fact returns the value of the fact named label, or "".
func (i Item) Fact(label string) string {
	for _, f := range i.Facts {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}

// Names returns the resolved names of the relation named label.
func (i Item) Names(label string) []string {
	for _, r := range i.Related {
		if r.Label == label {
			return r.Names
		}
	}
	return nil
}

// BrowseOptions selects a page of a collection.
type BrowseOptions struct {
	Page   int    // 1-based; 0 means 1
	Filter string // case-insensitive substring of the label
}

// Page is one browse result.
type Page struct {
	Kind       models.Kind `json:"kind"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Total      int         `json:"total"`
	Filter     string      `json:"filter,omitempty"`
	Items      []Item      `json:"items"`
}

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether a preceding page exists.
func (p *Page) HasPrevious() bool {
	return p.Page > 1
}

// SearchResult holds cross-category matches, or suggestions when nothing matched.
type SearchResult struct {
	Query       string          `json:"query"`
	Matches     []models.Entity `json:"matches"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// Collection returns every record of kind, fetching it once per catalog.
func (c *Catalog) Collection(ctx context.Context, kind models.Kind, progress chan<- ProgressUpdate) ([]models.Record, error) {
	if kind.Resource() == "" {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownKind, kind)
	}

	c.mu.Lock()
	records, ok := c.collections[kind]
	c.mu.Unlock()
	if ok {
		return records, nil
	}

	sendProgress(progress, fetchCollectionUpdate(kind))
	records, err := c.ref.ListAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, fetchedCollectionUpdate(kind, len(records)))

	c.mu.Lock()
	c.collections[kind] = records
	c.mu.Unlock()
	return records, nil
}

// Browse returns one page of kind, filtered and enriched. Only the records on the page are enriched.
func (c *Catalog) Browse(ctx context.Context, kind models.Kind, opts BrowseOptions, progress chan<- ProgressUpdate) (*Page, error) {
	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.Page < 0 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", shared.ErrInvalidArgument, opts.Page)
	}

	records, err := c.Collection(ctx, kind, progress)
	if err != nil {
		return nil, err
	}

	if opts.Filter != "" {
		filtered := make([]models.Record, 0, len(records))
		for _, r := range records {
			if r.Matches(opts.Filter) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	total := len(records)
	totalPages := (total + c.perPage - 1) / c.perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if opts.Page > totalPages {
		return nil, fmt.Errorf("%w: page %d out of range (1-%d)", shared.ErrInvalidArgument, opts.Page, totalPages)
	}

	start := (opts.Page - 1) * c.perPage
	end := min(start+c.perPage, total)

	items := c.enrich(ctx, records[start:end], false, progress)
	return &Page{
		Kind:       kind,
		Page:       opts.Page,
		TotalPages: totalPages,
		Total:      total,
		Filter:     opts.Filter,
		Items:      items,
	}, nil
}

// Detail finds one record of kind by numeric id, URL, or case-insensitive name/title
// and enriches it with every cross-reference.
func (c *Catalog) Detail(ctx context.Context, kind models.Kind, ref string, progress chan<- ProgressUpdate) (*Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: id or name", shared.ErrMissingArgument)
	}

	record, err := c.lookup(ctx, kind, ref, progress)
	if err != nil {
		return nil, err
	}

	items := c.enrich(ctx, []models.Record{record}, true, progress)
	return &items[0], nil
}

func (c *Catalog) lookup(ctx context.Context, kind models.Kind, ref string, progress chan<- ProgressUpdate) (models.Record, error) {
	switch {
	case strings.Contains(ref, "://"):
		return c.ref.Get(ctx, ref)
	case models.IDFromURL(ref) == ref:
		return c.ref.GetByID(ctx, kind, ref)
	}

	records, err := c.Collection(ctx, kind, progress)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if strings.EqualFold(r.Label(), ref) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s named %q", shared.ErrNotFound, kind, ref)
}

// Search matches query against the name or title of every kind. When nothing matches,
// the closest labels are returned as suggestions.
func (c *Catalog) Search(ctx context.Context, query string, progress chan<- ProgressUpdate) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	result := &SearchResult{Query: query, Matches: []models.Entity{}}
	var labels []string
	var errs []error

	for i, kind := range models.Kinds {
		sendProgress(progress, searchUpdate(i+1, len(models.Kinds), kind))

		records, err := c.Collection(ctx, kind, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("search %s: %w", kind.Plural(), err))
			continue
		}
		for _, r := range records {
			labels = append(labels, r.Label())
			if r.Matches(query) {
				result.Matches = append(result.Matches, r.Entity())
			}
		}
	}

	if len(errs) == len(models.Kinds) {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		c.logger.Warn("partial search results", "err", err)
	}

	if len(result.Matches) == 0 {
		result.Suggestions = suggest(query, labels)
	}
	return result, nil
}

// suggest returns the best fuzzy matches, highest score first.
func suggest(query string, labels []string) []string {
	matches := fuzzy.Find(query, labels)

	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		if seen[m.Str] {
			continue
		}
		seen[m.Str] = true
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
