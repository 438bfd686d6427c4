package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/favorites"
	"github.com/desertthunder/holocron/internal/formatter"
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	BrowseView
	DetailView
	FavoritesView
)

// Catalog is the part of [tasks.Catalog] the TUI reads from.
type Catalog interface {
	Browse(ctx context.Context, kind models.Kind, opts tasks.BrowseOptions, progress chan<- tasks.ProgressUpdate) (*tasks.Page, error)
	Detail(ctx context.Context, kind models.Kind, ref string, progress chan<- tasks.ProgressUpdate) (*tasks.Item, error)
}

// FavoritesStore is the part of [favorites.Store] the TUI uses.
type FavoritesStore interface {
	Contains(identity string) bool
	List() models.Collection
	Toggle(ctx context.Context, e models.Entity) (bool, error)
	Clear(ctx context.Context)
	Subscribe(fn favorites.Listener) (unsubscribe func())
}

// Options holds the TUI dependencies. Copy defaults to the system clipboard.
type Options struct {
	Catalog   Catalog
	Favorites FavoritesStore
	Logger    *log.Logger
	Copy      func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	catalog Catalog
	store   FavoritesStore
	logger  *log.Logger
	copy    func(string) error

	width  int
	height int

	menu          list.Model
	browse        list.Model
	favoritesList list.Model
	kind          models.Kind
	page          *tasks.Page
	item          *tasks.Item
	detailFrom    ViewState

	loading      bool
	progress     tasks.ProgressUpdate
	spinner      spinner.Model
	confirmClear bool
	status       string
	err          error

	updates     chan models.Collection
	unsubscribe func()
	closeOnce   sync.Once

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model and subscribes it to the favorites store.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	current := opts.Favorites.List()

	m := &Model{
		ctx:     ctx,
		view:    MenuView,
		catalog: opts.Catalog,
		store:   opts.Favorites,
		logger:  shared.WithLogger(opts.Logger, "component", "tui"),
		copy:    opts.Copy,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		updates: make(chan models.Collection, 1),
		help:    help.New(),
		keys:    newKeyMap(),
	}

	m.menu = newList("Holocron", menuItems(len(current)))
	m.browse = newList("", nil)
	m.favoritesList = newList("Favorites", favoriteItems(current))
	m.unsubscribe = opts.Favorites.Subscribe(m.publish)
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// publish keeps only the newest snapshot in the one-slot channel. It never blocks the store.
func (m *Model) publish(c models.Collection) {
	for {
		select {
		case m.updates <- c:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

// Close unsubscribes from the store.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
	})
}

// Init starts listening for favorites changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForFavorites()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.menu, &m.browse, &m.favoritesList} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case progressMsg:
		m.progress = msg.update
		return m, waitForProgress(msg.ch)

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.page = msg.page
		m.kind = msg.page.Kind
		m.browse.Title = fmt.Sprintf("%s (page %d of %d)", menuItem{kind: m.kind}.Title(), msg.page.Page, msg.page.TotalPages)
		m.browse.SetItems(entityItems(msg.page, m.store.Contains))
		m.browse.ResetSelected()
		m.view = BrowseView
		return m, nil

	case detailLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.item = msg.item
		m.view = DetailView
		return m, nil

	case favoritesChangedMsg:
		m.refreshFavorites(models.Collection(msg))
		return m, m.waitForFavorites()

	case toggledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.added {
			m.status = fmt.Sprintf("Added %s to favorites", msg.entity.Label)
		} else {
			m.status = fmt.Sprintf("Removed %s from favorites", msg.entity.Label)
		}
		return m, nil

	case clearedMsg:
		m.status = "Favorites cleared"
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to copy to clipboard: %w", msg.err)
			return m, nil
		}
		m.status = "Copied " + msg.identity
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) refreshFavorites(c models.Collection) {
	m.favoritesList.SetItems(favoriteItems(c))
	m.menu.SetItem(len(models.Kinds), menuItem{favorites: true, count: len(c)})
	if m.page != nil {
		index := m.browse.Index()
		m.browse.SetItems(entityItems(m.page, c.Contains))
		m.browse.Select(index)
	}
}

func (m *Model) filtering() bool {
	switch m.view {
	case MenuView:
		return m.menu.FilterState() == list.Filtering
	case BrowseView:
		return m.browse.FilterState() == list.Filtering
	case FavoritesView:
		return m.favoritesList.FilterState() == list.Filtering
	}
	return false
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		return m.updateLists(msg)
	}
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}
	m.status = ""

	if m.confirmClear {
		return m.handleConfirmKeys(msg)
	}

	switch m.view {
	case MenuView:
		return m.handleMenuKeys(msg)
	case BrowseView:
		return m.handleBrowseKeys(msg)
	case DetailView:
		return m.handleDetailKeys(msg)
	case FavoritesView:
		return m.handleFavoritesKeys(msg)
	}
	return m, nil
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		selected, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		m.err = nil
		if selected.favorites {
			m.view = FavoritesView
			return m, nil
		}
		return m, m.loadPage(selected.kind, 1)
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = MenuView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.browse.SelectedItem().(entityItem); ok {
			m.detailFrom = BrowseView
			return m, m.loadDetail(m.kind, selected.item.Entity.Identity)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if selected, ok := m.browse.SelectedItem().(entityItem); ok {
			return m, m.toggle(selected.item.Entity)
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		if m.page != nil && m.page.HasNext() {
			return m, m.loadPage(m.kind, m.page.Page+1)
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		if m.page != nil && m.page.HasPrevious() {
			return m, m.loadPage(m.kind, m.page.Page-1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browse, cmd = m.browse.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.item == nil {
		m.view = m.detailFrom
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.detailFrom
		m.err = nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggle(m.item.Entity)
	case key.Matches(msg, m.keys.copy):
		return m, m.copyIdentity(m.item.Entity.Identity)
	}
	return m, nil
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = MenuView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.favoritesList.SelectedItem().(favoriteItem)
		if !ok {
			return m, nil
		}
		if selected.entity.Kind == models.KindUnknown || selected.entity.Kind == "" {
			m.err = fmt.Errorf("%w: cannot open %s", shared.ErrUnknownKind, selected.entity.Identity)
			return m, nil
		}
		m.detailFrom = FavoritesView
		return m, m.loadDetail(selected.entity.Kind, selected.entity.Identity)
	case key.Matches(msg, m.keys.toggle):
		if selected, ok := m.favoritesList.SelectedItem().(favoriteItem); ok {
			return m, m.toggle(selected.entity)
		}
		return m, nil
	case key.Matches(msg, m.keys.copy):
		if selected, ok := m.favoritesList.SelectedItem().(favoriteItem); ok {
			return m, m.copyIdentity(selected.entity.Identity)
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		if len(m.favoritesList.Items()) > 0 {
			m.confirmClear = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favoritesList, cmd = m.favoritesList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirmClear = false
		return m, m.clear()
	case key.Matches(msg, m.keys.no):
		m.confirmClear = false
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menu, cmd = m.menu.Update(msg)
	case BrowseView:
		m.browse, cmd = m.browse.Update(msg)
	case FavoritesView:
		m.favoritesList, cmd = m.favoritesList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadPage(kind models.Kind, page int) tea.Cmd {
	m.loading = true
	m.progress = tasks.ProgressUpdate{Message: fmt.Sprintf("Loading %s...", kind.Plural())}
	progress := make(chan tasks.ProgressUpdate, 16)

	catalog, ctx := m.catalog, m.ctx
	load := func() tea.Msg {
		defer close(progress)
		p, err := catalog.Browse(ctx, kind, tasks.BrowseOptions{Page: page}, progress)
		return pageLoadedMsg{page: p, err: err}
	}
	return tea.Batch(load, waitForProgress(progress), m.spinner.Tick)
}

func (m *Model) loadDetail(kind models.Kind, ref string) tea.Cmd {
	m.loading = true
	m.progress = tasks.ProgressUpdate{Message: "Loading details..."}
	progress := make(chan tasks.ProgressUpdate, 16)

	catalog, ctx := m.catalog, m.ctx
	load := func() tea.Msg {
		defer close(progress)
		item, err := catalog.Detail(ctx, kind, ref, progress)
		return detailLoadedMsg{item: item, err: err}
	}
	return tea.Batch(load, waitForProgress(progress), m.spinner.Tick)
}

func waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{update: update, ch: ch}
	}
}

func (m *Model) waitForFavorites() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return favoritesChangedMsg(<-updates)
	}
}

func (m *Model) toggle(e models.Entity) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		added, err := store.Toggle(ctx, e)
		return toggledMsg{entity: e, added: added, err: err}
	}
}

func (m *Model) clear() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		store.Clear(ctx)
		return clearedMsg{}
	}
}

func (m *Model) copyIdentity(identity string) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		return copiedMsg{identity: identity, err: copyFn(identity)}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case MenuView:
		body = m.renderList(m.menu, m.keys.enter, m.keys.quit)
	case BrowseView:
		body = m.renderList(m.browse, m.keys.enter, m.keys.toggle, m.keys.next, m.keys.prev, m.keys.back, m.keys.quit)
	case DetailView:
		body = m.renderDetail()
	case FavoritesView:
		body = m.renderFavorites()
	}

	return styles.frame.Render(body + m.renderFooter())
}

func (m *Model) renderFooter() string {
	switch {
	case m.loading:
		return fmt.Sprintf("\n\n%s %s", m.spinner.View(), m.progress.Message)
	case m.err != nil:
		return "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		return "\n\n" + styles.ok.Render(m.status)
	}
	return ""
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderDetail() string {
	if m.item == nil {
		return styles.warn.Render("Nothing selected")
	}

	var b strings.Builder
	favorite := m.store.Contains(m.item.Entity.Identity)
	if err := formatter.RenderItem(&b, m.item, false); err != nil {
		return styles.err.Render(err.Error())
	}

	lines := strings.SplitN(b.String(), "\n", 2)
	title := lines[0] + " " + styles.badge(m.item.Entity.Kind)
	if favorite {
		title += " " + styles.star.Render("★")
	}

	rest := ""
	if len(lines) > 1 {
		rest = lines[1]
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.copy, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", styles.title.Render(title), rest, helpView)
}

func (m *Model) renderFavorites() string {
	if m.confirmClear {
		title := styles.warn.Render(fmt.Sprintf("Remove all %d favorites?", len(m.favoritesList.Items())))
		return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	}
	if len(m.favoritesList.Items()) == 0 {
		empty := styles.help.Render("No favorites yet. Press f on any entry to save it.")
		return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render("Favorites"), empty, m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}
	return m.renderList(m.favoritesList, m.keys.enter, m.keys.toggle, m.keys.copy, m.keys.clear, m.keys.back, m.keys.quit)
}
