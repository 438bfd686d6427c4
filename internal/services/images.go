package services

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

const defaultImagesURL = "https://akabab.github.io/starwars-api/api/all.json"

type imageEntry struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ImageService implements [ImageLookup] over the akabab character index.
// The index is downloaded once; a failed download is retried on the next lookup.
type ImageService struct {
	indexURL   string
	httpClient *http.Client

	mu    sync.Mutex
	index map[string]string
}

// NewImageService creates an image lookup. Empty arguments use the public index and [http.DefaultClient].
func NewImageService(indexURL string, client *http.Client) *ImageService {
	if indexURL == "" {
		indexURL = defaultImagesURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageService{indexURL: indexURL, httpClient: client}
}

// ImageFor returns the image for name, matched case-insensitively.
func (s *ImageService) ImageFor(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		var entries []imageEntry
		if err := getJSON(ctx, s.httpClient, s.indexURL, &entries); err != nil {
			return "", err
		}

		index := make(map[string]string, len(entries))
		for _, e := range entries {
			if e.Name != "" && e.Image != "" {
				index[strings.ToLower(e.Name)] = e.Image
			}
		}
		s.index = index
	}

	return s.index[strings.ToLower(strings.TrimSpace(name))], nil
}
