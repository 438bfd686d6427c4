package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/holocron/internal/formatter"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints favorites in insertion order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites(ctx)
	if err != nil {
		return err
	}

	items := store.List()
	if raw := cmd.String("kind"); raw != "" {
		kind, err := models.ParseKind(raw)
		if err != nil {
			return err
		}
		items = items.ByKind()[kind]
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	if len(items) == 0 {
		r.writePlain("No favorites yet. Add one with: holocron favorites toggle <kind> <name>\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(items)))
	for i, e := range items {
		r.writePlain("%2d. %-28s %-10s %s\n", i+1, e.Label, e.Kind, e.Identity)
	}
	return nil
}

// FavoritesToggle flips a record's membership.
//
// A ref that matches a stored favorite is removed without a catalog lookup, so favorites can be removed
// while the reference API is unreachable.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKindArg(cmd)
	if err != nil {
		return err
	}
	ref := cmd.StringArg("ref")

	store, err := r.favorites(ctx)
	if err != nil {
		return err
	}

	entity, ok := storedFavorite(store.List(), kind, ref)
	if !ok {
		progress, wait := r.trackProgress()
		item, err := r.catalog.Detail(ctx, kind, ref, progress)
		wait()
		if err != nil {
			return err
		}
		entity = item.Entity
	}

	added, err := store.Toggle(ctx, entity)
	if err != nil {
		return err
	}
	if err := r.takePersistError(); err != nil {
		return err
	}

	if added {
		r.writePlain("★ Added %s to favorites (%d total)\n", entity.Label, store.Len())
	} else {
		r.writePlain("☆ Removed %s from favorites (%d total)\n", entity.Label, store.Len())
	}
	return nil
}

// storedFavorite finds ref among favorites by identity URL, or by id or label within kind.
func storedFavorite(favorites models.Collection, kind models.Kind, ref string) (models.Entity, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Entity{}, false
	}

	for _, e := range favorites {
		if e.Identity == ref {
			return e, true
		}
		if e.Kind == kind && (e.ID() == ref || strings.EqualFold(e.Label, ref)) {
			return e, true
		}
	}
	return models.Entity{}, false
}

// FavoritesClear removes every favorite once confirmed with --yes.
func (r *Runner) FavoritesClear(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites(ctx)
	if err != nil {
		return err
	}

	count := store.Len()
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to remove %d favorites", shared.ErrMissingArgument, count)
	}

	store.Clear(ctx)
	if err := r.takePersistError(); err != nil {
		return err
	}

	r.writePlain("Removed %d favorites\n", count)
	return nil
}

// FavoritesExport writes favorites in the requested format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	store, err := r.favorites(ctx)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(store.List(), format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported favorites", "path", path, "format", format, "count", store.Len())
	r.writePlain("✓ Exported %d favorites to %s\n", store.Len(), path)
	return nil
}
