// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over the catalog and the favorites store:
//  1. [MenuView] : Pick a category or the favorites page
//  2. [BrowseView] : Page through a category, ten entries at a time
//  3. [DetailView] : One record with its cross-references resolved to names
//  4. [FavoritesView] : Bookmarked entities in insertion order, with clear
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Catalog loads run as commands and report progress through a channel, as in the CLI.
//
// The favorites store notifies the model through a one-slot channel that holds only the latest snapshot.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, y, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
