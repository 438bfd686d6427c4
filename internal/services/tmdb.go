package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/holocron/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultTMDBURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/w500"
)

// FilmIDs maps SWAPI film titles to TMDB movie ids.
var FilmIDs = map[string]int{
	"A New Hope":              11,
	"The Empire Strikes Back": 1891,
	"Return of the Jedi":      1892,
	"The Phantom Menace":      1893,
	"Attack of the Clones":    1894,
	"Revenge of the Sith":     1895,
	"The Force Awakens":       140607,
}

type tmdbMovie struct {
	ID          int     `json:"id"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// TMDBService implements [ArtworkLookup] against The Movie Database.
type TMDBService struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client

	mu      sync.Mutex
	artwork map[int]*Artwork
}

// NewTMDBService creates a client from cfg.
//
// A read access token takes precedence and is sent as a bearer token; otherwise the api key is added
// to every request. base supplies the underlying transport and timeout and may be nil.
func NewTMDBService(cfg shared.TMDBConfig, base *http.Client) (*TMDBService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: tmdb api_key or read_access_token", shared.ErrMissingCredentials)
	}
	if base == nil {
		base = http.DefaultClient
	}

	s := &TMDBService{
		baseURL:      strings.TrimRight(orDefault(cfg.BaseURL, defaultTMDBURL), "/"),
		imageBaseURL: strings.TrimRight(orDefault(cfg.ImageBaseURL, defaultTMDBImageURL), "/"),
		httpClient:   base,
		artwork:      make(map[int]*Artwork),
	}

	if cfg.ReadAccessToken != "" {
		token := &oauth2.Token{AccessToken: cfg.ReadAccessToken, TokenType: "Bearer"}
		s.httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: oauth2.StaticTokenSource(token), Base: base.Transport},
			Timeout:   base.Timeout,
		}
	} else {
		s.apiKey = cfg.APIKey
	}
	return s, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Artwork returns the poster and rating for a film title listed in [FilmIDs].
func (s *TMDBService) Artwork(ctx context.Context, title string) (*Artwork, error) {
	id, ok := FilmIDs[title]
	if !ok {
		return nil, fmt.Errorf("%w: no TMDB id for %q", shared.ErrNotFound, title)
	}

	s.mu.Lock()
	art, ok := s.artwork[id]
	s.mu.Unlock()
	if ok {
		return art, nil
	}

	endpoint := fmt.Sprintf("%s/movie/%d", s.baseURL, id)
	if s.apiKey != "" {
		endpoint += "?api_key=" + url.QueryEscape(s.apiKey)
	}

	var movie tmdbMovie
	if err := getJSON(ctx, s.httpClient, endpoint, &movie); err != nil {
		return nil, err
	}

	art = &Artwork{TMDBID: id, Rating: movie.VoteAverage}
	if movie.PosterPath != "" {
		art.PosterURL = s.imageBaseURL + movie.PosterPath
	}

	s.mu.Lock()
	s.artwork[id] = art
	s.mu.Unlock()
	return art, nil
}
