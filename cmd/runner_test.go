package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/storage"
	"github.com/desertthunder/holocron/internal/tasks"
	tu "github.com/desertthunder/holocron/internal/testing"
)

var (
	luke = models.Entity{
		Identity: "https://swapi.py4e.com/api/people/1/",
		Label:    "Luke Skywalker",
		Kind:     models.KindCharacter,
		Payload:  map[string]any{"height": "172"},
	}
	hope = models.Entity{
		Identity: "https://swapi.py4e.com/api/films/1/",
		Label:    "A New Hope",
		Kind:     models.KindFilm,
	}
)

// fakeCatalog answers every lookup with luke or hope.
type fakeCatalog struct{}

func (fakeCatalog) entity(kind models.Kind, ref string) (models.Entity, error) {
	for _, e := range []models.Entity{luke, hope} {
		if e.Kind != kind {
			continue
		}
		if ref == e.ID() || ref == e.Identity || strings.EqualFold(ref, e.Label) {
			return e, nil
		}
	}
	return models.Entity{}, shared.ErrNotFound
}

func (f fakeCatalog) Browse(ctx context.Context, kind models.Kind, opts tasks.BrowseOptions, progress chan<- tasks.ProgressUpdate) (*tasks.Page, error) {
	if opts.Page > 1 {
		return nil, shared.ErrInvalidArgument
	}
	page := &tasks.Page{Kind: kind, Page: 1, TotalPages: 1}
	for _, e := range []models.Entity{luke, hope} {
		if e.Kind == kind {
			page.Items = append(page.Items, tasks.Item{Entity: e, Facts: []tasks.Fact{{Label: "Height", Value: "172"}}})
			page.Total++
		}
	}
	return page, nil
}

func (f fakeCatalog) Detail(ctx context.Context, kind models.Kind, ref string, progress chan<- tasks.ProgressUpdate) (*tasks.Item, error) {
	e, err := f.entity(kind, ref)
	if err != nil {
		return nil, err
	}
	progress <- tasks.ProgressUpdate{Phase: tasks.ResolveReferences, Message: "resolving"}
	return &tasks.Item{Entity: e, Facts: []tasks.Fact{{Label: "Homeworld", Value: "Tatooine"}}}, nil
}

func (f fakeCatalog) Search(ctx context.Context, query string, progress chan<- tasks.ProgressUpdate) (*tasks.SearchResult, error) {
	result := &tasks.SearchResult{Query: query}
	for _, e := range []models.Entity{luke, hope} {
		if strings.Contains(strings.ToLower(e.Label), strings.ToLower(query)) {
			result.Matches = append(result.Matches, e)
		}
	}
	if len(result.Matches) == 0 {
		result.Suggestions = []string{"Luke Skywalker"}
	}
	return result, nil
}

// offlineCatalog fails every detail lookup as if the reference API were down.
type offlineCatalog struct{ fakeCatalog }

func (offlineCatalog) Detail(ctx context.Context, kind models.Kind, ref string, progress chan<- tasks.ProgressUpdate) (*tasks.Item, error) {
	return nil, shared.ErrServiceUnavailable
}

// newTestRunner returns a runner over fakeCatalog whose slot is the returned FaultySlot.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *tu.FaultySlot) {
	t.Helper()
	output := &bytes.Buffer{}
	slot := tu.NewFaultySlot()
	runner := NewRunner(RunnerOpts{
		Catalog: fakeCatalog{},
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		OpenSlot: func(ctx context.Context, cfg *shared.Config) (storage.Slot, error) {
			return slot, nil
		},
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output, slot
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Catalog:    fakeCatalog{},
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog == nil {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil opener uses storage.Open", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.openSlot == nil {
				t.Error("expected slot opener to be set")
			}
		})
	})

	t.Run("favorites", func(t *testing.T) {
		t.Run("opens once", func(t *testing.T) {
			opened := 0
			runner := NewRunner(RunnerOpts{
				Logger: shared.NewLogger(io.Discard),
				OpenSlot: func(ctx context.Context, cfg *shared.Config) (storage.Slot, error) {
					opened++
					return tu.NewFaultySlot(), nil
				},
			})
			defer runner.Close()

			first, err := runner.favorites(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			second, _ := runner.favorites(context.Background())
			if first != second || opened != 1 {
				t.Errorf("expected a single store, opened %d times", opened)
			}
			if !first.Ready() {
				t.Error("store should be initialized")
			}
		})

		t.Run("open failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: shared.NewLogger(io.Discard),
				OpenSlot: func(ctx context.Context, cfg *shared.Config) (storage.Slot, error) {
					return nil, shared.ErrServiceUnavailable
				},
			})

			if _, err := runner.favorites(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
			if runner.isFavorite(context.Background())("anything") {
				t.Error("isFavorite should be false without storage")
			}
		})

		t.Run("custom key", func(t *testing.T) {
			runner, _, slot := newTestRunner(t)
			runner.config.Storage.Key = "bookmarks"

			store, _ := runner.favorites(context.Background())
			store.Toggle(context.Background(), luke)

			if slot.Value("bookmarks") == "" {
				t.Error("expected favorites under the configured key")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"browse", "show", "search", "favorites", "tui", "serve", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}
