// package formatter provides functions to export favorites and render catalog items (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/tasks"
)

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts format names and common file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (json, csv, md, txt)", shared.ErrInvalidFlag, s)
}

// Export renders favorites in format.
func Export(favorites models.Collection, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(favorites)
	case FormatCSV:
		return ExportToCSV(favorites)
	case FormatMarkdown:
		return ExportToMarkdown(favorites)
	case FormatText:
		return ExportToText(favorites)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// ExportToJSON writes the same array shape the favorites slot stores, indented.
func ExportToJSON(favorites models.Collection) ([]byte, error) {
	if favorites == nil {
		favorites = models.Collection{}
	}
	data, err := shared.MarshalJSON(favorites, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorites: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts favorites to CSV format with columns: Kind, ID, Label, URL
func ExportToCSV(favorites models.Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "ID", "Label", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range favorites {
		record := []string{e.Kind.String(), e.ID(), e.Label, e.Identity}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown groups favorites by kind, in browse order, under one heading each.
func ExportToMarkdown(favorites models.Collection) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Favorites\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n", len(favorites)))

	groups := favorites.ByKind()
	kinds := append(slices.Clone(models.Kinds), models.KindUnknown)
	for _, kind := range kinds {
		group := groups[kind]
		if len(group) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", titleCase(kind.Plural())))
		for _, e := range group {
			buf.WriteString(fmt.Sprintf("- [%s](%s)\n", markdownEscape(e.Label), e.Identity))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts favorites to plain text format
func ExportToText(favorites models.Collection) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Favorites: %d\n\n", len(favorites)))
	for i, e := range favorites {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, e.Label, e.Kind))
	}

	return buf.Bytes(), nil
}

// WriteExport writes favorites to path, defaulting to favorites.<format> in the working directory.
func WriteExport(favorites models.Collection, format Format, path string) (string, error) {
	if path == "" {
		path = "favorites." + string(format)
	}

	data, err := Export(favorites, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// RenderItem writes a plain-text detail view of item.
func RenderItem(w io.Writer, item *tasks.Item, favorite bool) error {
	var buf bytes.Buffer

	marker := ""
	if favorite {
		marker = " ★"
	}
	buf.WriteString(fmt.Sprintf("%s%s\n", item.Entity.Label, marker))
	buf.WriteString(fmt.Sprintf("%s · %s\n\n", item.Entity.Kind, item.Entity.Identity))

	width := 0
	for _, f := range item.Facts {
		width = max(width, len(f.Label))
	}
	for _, f := range item.Facts {
		value := strings.Join(strings.Fields(f.Value), " ")
		buf.WriteString(fmt.Sprintf("  %-*s  %s\n", width, f.Label, value))
	}

	if item.Rating > 0 {
		buf.WriteString(fmt.Sprintf("  %-*s  %.1f/10\n", width, "Rating", item.Rating))
	}
	if item.Image != "" {
		buf.WriteString(fmt.Sprintf("  %-*s  %s\n", width, "Image", item.Image))
	}
	if item.Poster != "" {
		buf.WriteString(fmt.Sprintf("  %-*s  %s\n", width, "Poster", item.Poster))
	}

	for _, rel := range item.Related {
		buf.WriteString(fmt.Sprintf("\n%s (%d)\n", rel.Label, len(rel.Names)))
		if len(rel.Names) == 0 {
			buf.WriteString("  none\n")
		}
		for _, name := range rel.Names {
			buf.WriteString(fmt.Sprintf("  - %s\n", name))
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// RenderPage writes one line per item with a favorite marker and a page footer.
func RenderPage(w io.Writer, page *tasks.Page, isFavorite func(identity string) bool) error {
	var buf bytes.Buffer

	if len(page.Items) == 0 {
		buf.WriteString(fmt.Sprintf("No %s found.\n", page.Kind.Plural()))
	}

	for _, item := range page.Items {
		marker := " "
		if isFavorite != nil && isFavorite(item.Entity.Identity) {
			marker = "★"
		}

		var summary []string
		for _, f := range item.Facts {
			if len(summary) == 3 {
				break
			}
			summary = append(summary, fmt.Sprintf("%s: %s", f.Label, f.Value))
		}
		buf.WriteString(fmt.Sprintf("%s %4s  %-28s %s\n", marker, item.Entity.ID(), item.Entity.Label, strings.Join(summary, ", ")))
	}

	buf.WriteString(fmt.Sprintf("\nPage %d of %d (%d %s)\n", page.Page, page.TotalPages, page.Total, page.Kind.Plural()))

	_, err := w.Write(buf.Bytes())
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func markdownEscape(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
