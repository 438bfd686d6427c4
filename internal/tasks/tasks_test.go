package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/services"
	"github.com/desertthunder/holocron/internal/shared"
)

const base = "https://swapi.test/api/"

type mockReference struct {
	mu          sync.Mutex
	collections map[models.Kind][]models.Record
	records     map[string]models.Record
	listErr     map[models.Kind]error
	listCalls   map[models.Kind]int
	resolved    [][]string
}

func newMockReference() *mockReference {
	m := &mockReference{
		collections: map[models.Kind][]models.Record{},
		records:     map[string]models.Record{},
		listErr:     map[models.Kind]error{},
		listCalls:   map[models.Kind]int{},
	}

	m.add(models.KindPlanet, models.Record{"name": "Tatooine", "climate": "arid", "population": "200000",
		"residents": []any{base + "people/1/", base + "people/2/"}, "films": []any{base + "films/1/"}, "url": base + "planets/1/"})
	m.add(models.KindPlanet, models.Record{"name": "Alderaan", "population": "2000000000",
		"residents": []any{}, "films": []any{}, "url": base + "planets/2/"})
	m.add(models.KindCharacter, models.Record{"name": "Luke Skywalker", "height": "172", "homeworld": base + "planets/1/",
		"species": []any{}, "films": []any{base + "films/1/"}, "url": base + "people/1/"})
	m.add(models.KindCharacter, models.Record{"name": "C-3PO", "homeworld": base + "planets/1/",
		"species": []any{base + "species/2/"}, "films": []any{base + "films/1/"}, "url": base + "people/2/"})
	m.add(models.KindSpecies, models.Record{"name": "Droid", "designation": "artificial", "homeworld": nil,
		"people": []any{base + "people/2/"}, "films": []any{base + "films/1/"}, "url": base + "species/2/"})
	m.add(models.KindFilm, models.Record{"title": "A New Hope", "episode_id": float64(4), "director": "George Lucas",
		"opening_crawl": "It is a period of civil war.", "characters": []any{base + "people/1/", base + "people/2/"},
		"planets": []any{base + "planets/1/"}, "starships": []any{base + "starships/9/"}, "species": []any{base + "species/2/"},
		"url": base + "films/1/"})
	m.add(models.KindStarship, models.Record{"name": "Death Star", "model": "DS-1 Orbital Battle Station",
		"pilots": []any{}, "films": []any{base + "films/1/"}, "url": base + "starships/9/"})
	return m
}

func (m *mockReference) add(kind models.Kind, r models.Record) {
	m.collections[kind] = append(m.collections[kind], r)
	m.records[r.URL()] = r
}

func (m *mockReference) ListPage(ctx context.Context, kind models.Kind, page int) (*models.Page, error) {
	return nil, shared.ErrNotImplemented
}

func (m *mockReference) ListAll(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls[kind]++
	if err := m.listErr[kind]; err != nil {
		return nil, err
	}
	return m.collections[kind], nil
}

func (m *mockReference) Get(ctx context.Context, rawURL string) (models.Record, error) {
	if r, ok := m.records[rawURL]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, rawURL)
}

func (m *mockReference) GetByID(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	return m.Get(ctx, base+kind.Resource()+"/"+id+"/")
}

func (m *mockReference) ResolveNames(ctx context.Context, urls []string) (map[string]string, error) {
	m.mu.Lock()
	m.resolved = append(m.resolved, urls)
	m.mu.Unlock()

	names := map[string]string{}
	var errs []error
	for _, u := range urls {
		r, err := m.Get(ctx, u)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names[u] = r.Label()
	}
	return names, errors.Join(errs...)
}

type mockImages map[string]string

func (m mockImages) ImageFor(ctx context.Context, name string) (string, error) {
	return m[strings.ToLower(name)], nil
}

type mockArtwork struct{ err error }

func (m mockArtwork) Artwork(ctx context.Context, title string) (*services.Artwork, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &services.Artwork{TMDBID: 11, PosterURL: "https://image.test/" + title + ".jpg", Rating: 8.2}, nil
}

func newTestCatalog(ref services.ReferenceClient, perPage int) *Catalog {
	return NewCatalog(CatalogOptions{
		Reference: ref,
		Images:    mockImages{"luke skywalker": "https://img.test/luke.jpg"},
		Artwork:   mockArtwork{},
		PerPage:   perPage,
		Logger:    shared.NewLogger(io.Discard),
	})
}

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Entity.Label
	}
	return out
}

func TestCatalogCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("Memoized Per Kind", func(t *testing.T) {
		ref := newMockReference()
		cat := newTestCatalog(ref, 0)

		for range 3 {
			if _, err := cat.Collection(ctx, models.KindPlanet, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if ref.listCalls[models.KindPlanet] != 1 {
			t.Errorf("expected one ListAll call, got %d", ref.listCalls[models.KindPlanet])
		}
	})

	t.Run("Errors Are Not Memoized", func(t *testing.T) {
		ref := newMockReference()
		ref.listErr[models.KindPlanet] = shared.ErrServiceUnavailable
		cat := newTestCatalog(ref, 0)

		if _, err := cat.Collection(ctx, models.KindPlanet, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		delete(ref.listErr, models.KindPlanet)
		if _, err := cat.Collection(ctx, models.KindPlanet, nil); err != nil {
			t.Errorf("expected retry to succeed, got %v", err)
		}
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)
		if _, err := cat.Collection(ctx, models.KindUnknown, nil); !errors.Is(err, shared.ErrUnknownKind) {
			t.Errorf("expected ErrUnknownKind, got %v", err)
		}
	})

	t.Run("Sends Progress", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)
		progress := make(chan ProgressUpdate, 10)

		if _, err := cat.Collection(ctx, models.KindFilm, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if len(phases) != 2 || phases[0] != FetchCollection {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})
}

func TestCatalogBrowse(t *testing.T) {
	ctx := context.Background()

	t.Run("Paginates", func(t *testing.T) {
		ref := newMockReference()
		for i := 3; i <= 25; i++ {
			ref.add(models.KindPlanet, models.Record{"name": fmt.Sprintf("Planet %02d", i), "population": "unknown",
				"url": fmt.Sprintf("%splanets/%d/", base, i)})
		}
		cat := newTestCatalog(ref, 0)

		tt := []struct {
			page      int
			wantCount int
			wantFirst string
		}{
			{page: 0, wantCount: 10, wantFirst: "Tatooine"},
			{page: 1, wantCount: 10, wantFirst: "Tatooine"},
			{page: 2, wantCount: 10, wantFirst: "Planet 11"},
			{page: 3, wantCount: 5, wantFirst: "Planet 21"},
		}

		for _, tc := range tt {
			t.Run(fmt.Sprintf("page %d", tc.page), func(t *testing.T) {
				page, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{Page: tc.page}, nil)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(page.Items) != tc.wantCount || page.Items[0].Entity.Label != tc.wantFirst {
					t.Errorf("got %v", labels(page.Items))
				}
				if page.Total != 25 || page.TotalPages != 3 {
					t.Errorf("expected 25 items over 3 pages, got %d over %d", page.Total, page.TotalPages)
				}
			})
		}

		if _, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{Page: 4}, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument past the last page, got %v", err)
		}
		if _, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{Page: -1}, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for a negative page, got %v", err)
		}
	})

	t.Run("Filter", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		page, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{Filter: "TOO"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(labels(page.Items), []string{"Tatooine"}) {
			t.Errorf("unexpected filter result %v", labels(page.Items))
		}

		empty, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{Filter: "hoth"}, nil)
		if err != nil {
			t.Fatalf("empty filter result should not error, got %v", err)
		}
		if empty.Total != 0 || len(empty.Items) != 0 || empty.TotalPages != 1 {
			t.Errorf("unexpected empty page %+v", empty)
		}
	})

	t.Run("Enriches Characters", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		page, err := cat.Browse(ctx, models.KindCharacter, BrowseOptions{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		luke, threepio := page.Items[0], page.Items[1]
		if luke.Fact("Homeworld") != "Tatooine" || luke.Fact("Species") != "Unknown" {
			t.Errorf("unexpected luke facts %+v", luke.Facts)
		}
		if luke.Image != "https://img.test/luke.jpg" {
			t.Errorf("expected luke image, got %q", luke.Image)
		}
		if threepio.Fact("Species") != "Droid" || threepio.Image != "" {
			t.Errorf("unexpected C-3PO item %+v", threepio)
		}
		if luke.Names("Films") != nil {
			t.Error("films should only be resolved on the detail view")
		}
	})

	t.Run("Payload Stays Raw", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		page, err := cat.Browse(ctx, models.KindCharacter, BrowseOptions{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := page.Items[0].Entity.Payload["homeworld"]; got != base+"planets/1/" {
			t.Errorf("payload should keep the raw homeworld url, got %v", got)
		}
	})

	t.Run("Enriches Planets With Residents And Films", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		page, err := cat.Browse(ctx, models.KindPlanet, BrowseOptions{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tatooine := page.Items[0]
		if !reflect.DeepEqual(tatooine.Names("Residents"), []string{"Luke Skywalker", "C-3PO"}) {
			t.Errorf("unexpected residents %v", tatooine.Names("Residents"))
		}
		if !reflect.DeepEqual(tatooine.Names("Films"), []string{"A New Hope"}) {
			t.Errorf("unexpected films %v", tatooine.Names("Films"))
		}
		if tatooine.Fact("Climate") != "arid" {
			t.Errorf("expected climate fact, got %+v", tatooine.Facts)
		}
	})

	t.Run("Enriches Films With Artwork", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		page, err := cat.Browse(ctx, models.KindFilm, BrowseOptions{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		film := page.Items[0]
		if film.Poster != "https://image.test/A New Hope.jpg" || film.Rating != 8.2 {
			t.Errorf("unexpected artwork %q %v", film.Poster, film.Rating)
		}
		if film.Fact("Episode") != "4" || film.Fact("Opening crawl") != "" {
			t.Errorf("unexpected film facts %+v", film.Facts)
		}
	})

	t.Run("Artwork Failure Is Not Fatal", func(t *testing.T) {
		cat := NewCatalog(CatalogOptions{
			Reference: newMockReference(),
			Artwork:   mockArtwork{err: shared.ErrMissingCredentials},
			Logger:    shared.NewLogger(io.Discard),
		})

		page, err := cat.Browse(ctx, models.KindFilm, BrowseOptions{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Items[0].Poster != "" {
			t.Error("expected no poster")
		}
	})

	t.Run("Only Page Items Are Resolved", func(t *testing.T) {
		ref := newMockReference()
		ref.add(models.KindCharacter, models.Record{"name": "Leia Organa", "homeworld": base + "planets/2/", "url": base + "people/5/"})
		cat := newTestCatalog(ref, 2)

		if _, err := cat.Browse(ctx, models.KindCharacter, BrowseOptions{Page: 2}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ref.resolved) != 1 || !reflect.DeepEqual(ref.resolved[0], []string{base + "planets/2/"}) {
			t.Errorf("expected only Leia's homeworld to be resolved, got %v", ref.resolved)
		}
	})
}

func TestCatalogDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("Lookup", func(t *testing.T) {
		tt := []struct {
			name string
			kind models.Kind
			ref  string
			want string
		}{
			{name: "by id", kind: models.KindCharacter, ref: "1", want: "Luke Skywalker"},
			{name: "by name", kind: models.KindCharacter, ref: "c-3po", want: "C-3PO"},
			{name: "by title", kind: models.KindFilm, ref: "a new hope", want: "A New Hope"},
			{name: "by url", kind: models.KindPlanet, ref: base + "planets/2/", want: "Alderaan"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				cat := newTestCatalog(newMockReference(), 0)
				item, err := cat.Detail(ctx, tc.kind, tc.ref, nil)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if item.Entity.Label != tc.want {
					t.Errorf("expected %s, got %s", tc.want, item.Entity.Label)
				}
			})
		}
	})

	t.Run("Film Cross References", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)
		item, err := cat.Detail(ctx, models.KindFilm, "1", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := map[string][]string{
			"Characters": {"Luke Skywalker", "C-3PO"},
			"Planets":    {"Tatooine"},
			"Starships":  {"Death Star"},
			"Species":    {"Droid"},
		}
		for label, names := range want {
			if got := item.Names(label); !reflect.DeepEqual(got, names) {
				t.Errorf("%s: got %v, want %v", label, got, names)
			}
		}
		if item.Fact("Opening crawl") == "" {
			t.Error("detail view should include the opening crawl")
		}
	})

	t.Run("Unresolved References Keep URL", func(t *testing.T) {
		ref := newMockReference()
		ref.add(models.KindStarship, models.Record{"name": "X-wing", "model": "T-65",
			"pilots": []any{base + "people/404/"}, "films": []any{}, "url": base + "starships/12/"})
		cat := newTestCatalog(ref, 0)

		item, err := cat.Detail(ctx, models.KindStarship, "12", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := item.Names("Pilots"); !reflect.DeepEqual(got, []string{base + "people/404/"}) {
			t.Errorf("expected raw url for unresolved pilot, got %v", got)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)
		if _, err := cat.Detail(ctx, models.KindCharacter, "Jar Jar", nil); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := cat.Detail(ctx, models.KindCharacter, " ", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestCatalogSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Cross Category", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		result, err := cat.Search(ctx, "a", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		kinds := map[models.Kind]bool{}
		for _, e := range result.Matches {
			kinds[e.Kind] = true
		}
		for _, k := range []models.Kind{models.KindFilm, models.KindCharacter, models.KindPlanet, models.KindStarship} {
			if !kinds[k] {
				t.Errorf("expected a %s match, got %v", k, result.Matches)
			}
		}
		if result.Suggestions != nil {
			t.Error("suggestions should only be offered when nothing matched")
		}
	})

	t.Run("Suggestions", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)

		result, err := cat.Search(ctx, "lsky", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Matches) != 0 {
			t.Fatalf("expected no substring matches, got %v", result.Matches)
		}
		if len(result.Suggestions) == 0 || result.Suggestions[0] != "Luke Skywalker" {
			t.Errorf("expected Luke Skywalker suggestion, got %v", result.Suggestions)
		}
	})

	t.Run("Partial Failure", func(t *testing.T) {
		ref := newMockReference()
		ref.listErr[models.KindStarship] = shared.ErrServiceUnavailable
		cat := newTestCatalog(ref, 0)

		result, err := cat.Search(ctx, "tatooine", nil)
		if err != nil {
			t.Fatalf("partial failures should not fail the search, got %v", err)
		}
		if len(result.Matches) != 1 {
			t.Errorf("expected one match, got %v", result.Matches)
		}
	})

	t.Run("Total Failure", func(t *testing.T) {
		ref := newMockReference()
		for _, k := range models.Kinds {
			ref.listErr[k] = shared.ErrServiceUnavailable
		}
		cat := newTestCatalog(ref, 0)

		if _, err := cat.Search(ctx, "x", nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Empty Query", func(t *testing.T) {
		cat := newTestCatalog(newMockReference(), 0)
		if _, err := cat.Search(ctx, "  ", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSendProgress(t *testing.T) {
	t.Run("Nil Channel", func(t *testing.T) {
		sendProgress(nil, ProgressUpdate{})
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, ProgressUpdate{Message: "first"})
		sendProgress(ch, ProgressUpdate{Message: "dropped"})
		if got := (<-ch).Message; got != "first" {
			t.Errorf("expected first update, got %s", got)
		}
	})

	t.Run("Phase Names", func(t *testing.T) {
		if FetchCollection.String() != "fetch_collection" || Phase(99).String() != "" {
			t.Error("unexpected phase names")
		}
	})
}
