package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/holocron/internal/models"
)

// Theme names the colors the TUI is painted with.
type Theme struct {
	Accent  string // titles
	Success string
	Danger  string
	Saber   string // warnings and the favorite star
	Muted   string
	Kinds   map[models.Kind]string
}

var holocronTheme = Theme{
	Accent:  "#4FC3F7",
	Success: "#04B575",
	Danger:  "#E53935",
	Saber:   "#FFE81F",
	Muted:   "#626262",
	Kinds: map[models.Kind]string{
		models.KindFilm:      "#FFE81F",
		models.KindCharacter: "#4FC3F7",
		models.KindPlanet:    "#81C784",
		models.KindSpecies:   "#BA68C8",
		models.KindStarship:  "#FF8A65",
	},
}

var styles = NewPalette(holocronTheme)

// Palette is the stylesheet derived from a [Theme].
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	star  lipgloss.Style
	frame lipgloss.Style
	kinds map[models.Kind]lipgloss.Style
}

func NewPalette(t Theme) *Palette {
	kinds := make(map[models.Kind]lipgloss.Style, len(t.Kinds))
	for kind, fg := range t.Kinds {
		kinds[kind] = NewBold(fg).Padding(0, 1).Reverse(true)
	}

	return &Palette{
		title: NewBold(t.Accent).MarginBottom(1),
		ok:    NewBold(t.Success),
		err:   NewBold(t.Danger),
		warn:  NewStyle(t.Saber),
		help:  NewEm(t.Muted),
		star:  NewBold(t.Saber),
		frame: lipgloss.NewStyle().Padding(1, 2),
		kinds: kinds,
	}
}

// badge renders kind as a colored tag. Unknown kinds are muted.
func (p *Palette) badge(kind models.Kind) string {
	style, ok := p.kinds[kind]
	if !ok {
		style = p.help
	}
	return style.Render(kind.String())
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
