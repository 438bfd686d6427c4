package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/holocron/internal/formatter"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/tasks"
	"github.com/urfave/cli/v3"
)

func parseKindArg(cmd *cli.Command) (models.Kind, error) {
	raw := cmd.StringArg("kind")
	if raw == "" {
		return "", fmt.Errorf("%w: kind (films, characters, planets, species, starships)", shared.ErrMissingArgument)
	}
	return models.ParseKind(raw)
}

// Browse prints one page of a category.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKindArg(cmd)
	if err != nil {
		return err
	}

	opts := tasks.BrowseOptions{Page: int(cmd.Int("page")), Filter: cmd.String("filter")}
	r.logger.Debug("browse", "kind", kind, "page", opts.Page, "filter", opts.Filter)

	progress, wait := r.trackProgress()
	page, err := r.catalog.Browse(ctx, kind, opts, progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}
	return formatter.RenderPage(r.output, page, r.isFavorite(ctx))
}

// Show prints one record with its cross-references resolved.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKindArg(cmd)
	if err != nil {
		return err
	}

	progress, wait := r.trackProgress()
	item, err := r.catalog.Detail(ctx, kind, cmd.StringArg("ref"), progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, true)
	}
	return formatter.RenderItem(r.output, item, r.isFavorite(ctx)(item.Entity.Identity))
}

// Search matches names and titles in every category and suggests close labels when nothing matches.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	progress, wait := r.trackProgress()
	result, err := r.catalog.Search(ctx, query, progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if len(result.Matches) == 0 {
		r.writePlain("No matches for %q\n", query)
		if len(result.Suggestions) > 0 {
			r.writePlain("Did you mean: %s?\n", strings.Join(result.Suggestions, ", "))
		}
		return nil
	}

	isFavorite := r.isFavorite(ctx)
	r.writePlain("%d matches for %q\n\n", len(result.Matches), query)
	for _, e := range result.Matches {
		marker := " "
		if isFavorite(e.Identity) {
			marker = "★"
		}
		r.writePlain("%s %-10s %-28s %s\n", marker, e.Kind, e.Label, e.Identity)
	}
	return nil
}
