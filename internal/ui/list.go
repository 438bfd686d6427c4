package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/tasks"
)

var (
	_ list.Item = menuItem{}
	_ list.Item = entityItem{}
	_ list.Item = favoriteItem{}
)

// menuItem is a category, or the favorites page when favorites is set.
type menuItem struct {
	kind      models.Kind
	favorites bool
	count     int
}

func (i menuItem) FilterValue() string { return i.Title() }
func (i menuItem) Title() string {
	if i.favorites {
		return "Favorites"
	}
	return strings.ToUpper(i.kind.Plural()[:1]) + i.kind.Plural()[1:]
}
func (i menuItem) Description() string {
	if i.favorites {
		return fmt.Sprintf("%d saved", i.count)
	}
	return fmt.Sprintf("Browse %s", i.kind.Plural())
}

// entityItem wraps an enriched [tasks.Item] on a browse page.
type entityItem struct {
	item     tasks.Item
	favorite bool
}

func (i entityItem) FilterValue() string { return i.item.Entity.Label }
func (i entityItem) Title() string {
	if i.favorite {
		return "★ " + i.item.Entity.Label
	}
	return i.item.Entity.Label
}
func (i entityItem) Description() string {
	var parts []string
	for _, f := range i.item.Facts {
		if len(parts) == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Label, f.Value))
	}
	return strings.Join(parts, " • ")
}

// favoriteItem wraps a stored [models.Entity].
type favoriteItem struct {
	entity models.Entity
}

func (i favoriteItem) FilterValue() string { return i.entity.Label }
func (i favoriteItem) Title() string       { return i.entity.Label }
func (i favoriteItem) Description() string {
	return fmt.Sprintf("%s • %s", i.entity.Kind, i.entity.Identity)
}

func menuItems(favorites int) []list.Item {
	items := make([]list.Item, 0, len(models.Kinds)+1)
	for _, kind := range models.Kinds {
		items = append(items, menuItem{kind: kind})
	}
	return append(items, menuItem{favorites: true, count: favorites})
}

func entityItems(page *tasks.Page, isFavorite func(string) bool) []list.Item {
	if page == nil {
		return nil
	}
	items := make([]list.Item, len(page.Items))
	for i, it := range page.Items {
		items[i] = entityItem{item: it, favorite: isFavorite(it.Entity.Identity)}
	}
	return items
}

func favoriteItems(c models.Collection) []list.Item {
	items := make([]list.Item, len(c))
	for i, e := range c {
		items[i] = favoriteItem{entity: e}
	}
	return items
}
