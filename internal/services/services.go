// package services defines the reference data clients used by the catalog
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
)

// ReferenceClient fetches entity records from the reference data API.
type ReferenceClient interface {
	// ListPage fetches one page (1-based) of a collection.
	ListPage(ctx context.Context, kind models.Kind, page int) (*models.Page, error)

	// ListAll fetches every record of a collection, following "next" links.
	ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error)

	// Get fetches a record by absolute or base-relative URL.
	Get(ctx context.Context, rawURL string) (models.Record, error)

	// GetByID fetches a record by kind and numeric id.
	GetByID(ctx context.Context, kind models.Kind, id string) (models.Record, error)

	// ResolveNames maps each cross-reference URL to its record's name or title.
	// URLs that fail are left out of the map and reported in the joined error.
	ResolveNames(ctx context.Context, urls []string) (map[string]string, error)
}

// ImageLookup finds a character image by name.
type ImageLookup interface {
	// ImageFor returns the image URL for name, or "" when there is none.
	ImageFor(ctx context.Context, name string) (string, error)
}

// Artwork is the poster and rating of a film.
type Artwork struct {
	TMDBID    int
	PosterURL string
	Rating    float64
}

// ArtworkLookup finds poster and rating by film title.
type ArtworkLookup interface {
	Artwork(ctx context.Context, title string) (*Artwork, error)
}

// getJSON performs a GET request and decodes a JSON body into result.
func getJSON(ctx context.Context, client *http.Client, rawURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: GET %s: %w", shared.ErrServiceUnavailable, redact(rawURL), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, redact(rawURL))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d from %s", shared.ErrAPIRequest, resp.StatusCode, redact(rawURL))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// redact drops the query string, which may carry an api key.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
