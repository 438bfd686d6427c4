package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/tasks"
	th "github.com/desertthunder/holocron/internal/testing"
)

var favorites = models.Collection{
	{Identity: "https://swapi.py4e.com/api/people/1/", Label: "Luke Skywalker", Kind: models.KindCharacter,
		Payload: map[string]any{"height": "172"}},
	{Identity: "https://swapi.py4e.com/api/films/1/", Label: "A New Hope", Kind: models.KindFilm},
	{Identity: "https://swapi.py4e.com/api/people/4/", Label: "Darth Vader", Kind: models.KindCharacter},
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(favorites)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		decoded, err := models.DecodeCollection(data)
		if err != nil {
			t.Fatalf("export should decode as a favorites slot: %v", err)
		}
		if len(decoded) != 3 || decoded[0].Payload["height"] != "172" {
			t.Errorf("unexpected decoded export %+v", decoded)
		}

		empty, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(empty)) != "[]" {
			t.Errorf("expected [], got %s", empty)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(favorites)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d", len(rows))
		}
		if strings.Join(rows[0], ",") != "Kind,ID,Label,URL" {
			t.Errorf("CSV missing headers, got: %v", rows[0])
		}
		if strings.Join(rows[1], ",") != "character,1,Luke Skywalker,https://swapi.py4e.com/api/people/1/" {
			t.Errorf("unexpected first row %v", rows[1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(favorites)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "# Favorites") || !strings.Contains(output, "**Total**: 3") {
			t.Errorf("markdown missing header, got: %s", output)
		}
		films := strings.Index(output, "## Films")
		characters := strings.Index(output, "## Characters")
		if films < 0 || characters < 0 || films > characters {
			t.Errorf("expected films section before characters, got: %s", output)
		}
		if !strings.Contains(output, "- [Darth Vader](https://swapi.py4e.com/api/people/4/)") {
			t.Errorf("markdown missing link, got: %s", output)
		}
		if strings.Contains(output, "## Planets") {
			t.Error("empty groups should be omitted")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(favorites)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "2. A New Hope (film)") {
			t.Errorf("unexpected text export: %s", data)
		}
	})

	t.Run("ParseFormat", func(t *testing.T) {
		tt := []struct {
			in   string
			want Format
		}{
			{in: "", want: FormatJSON},
			{in: "CSV", want: FormatCSV},
			{in: ".md", want: FormatMarkdown},
			{in: "markdown", want: FormatMarkdown},
			{in: "text", want: FormatText},
		}
		for _, tc := range tt {
			got, err := ParseFormat(tc.in)
			if err != nil || got != tc.want {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
		}
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "faves.csv")

		written, err := WriteExport(favorites, FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, written)
		if !strings.Contains(th.MustReadFile(t, written), "Darth Vader") {
			t.Error("export file missing content")
		}

		if _, err := WriteExport(favorites, FormatCSV, filepath.Join(t.TempDir(), "missing", "x.csv")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestRender(t *testing.T) {
	item := &tasks.Item{
		Entity: favorites[0],
		Facts: []tasks.Fact{
			{Label: "Height", Value: "172"},
			{Label: "Homeworld", Value: "Tatooine"},
		},
		Related: []tasks.Relation{
			{Label: "Films", Names: []string{"A New Hope", "The Empire Strikes Back"}},
			{Label: "Starships", Names: nil},
		},
		Image: "https://img.example/luke.jpg",
	}

	t.Run("RenderItem", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderItem(&buf, item, true); err != nil {
			t.Fatalf("RenderItem failed: %v", err)
		}
		output := buf.String()

		for _, want := range []string{"Luke Skywalker ★", "Homeworld  Tatooine", "Films (2)", "  - The Empire Strikes Back", "Starships (0)\n  none", "Image"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("RenderItem Write Failure", func(t *testing.T) {
		if err := RenderItem(&th.FWriter{}, item, false); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("RenderPage", func(t *testing.T) {
		page := &tasks.Page{Kind: models.KindCharacter, Page: 1, TotalPages: 2, Total: 11, Items: []tasks.Item{*item}}

		var buf bytes.Buffer
		err := RenderPage(&buf, page, func(identity string) bool { return identity == favorites[0].Identity })
		if err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}
		output := buf.String()

		if !strings.HasPrefix(output, "★") || !strings.Contains(output, "Page 1 of 2 (11 characters)") {
			t.Errorf("unexpected page output:\n%s", output)
		}
	})

	t.Run("RenderPage Empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderPage(&buf, &tasks.Page{Kind: models.KindPlanet, Page: 1, TotalPages: 1}, nil); err != nil {
			t.Fatalf("RenderPage failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No planets found.") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}
