package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	toggle key.Binding
	copy   key.Binding
	clear  key.Binding
	next   key.Binding
	prev   key.Binding
	yes    key.Binding
	no     key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
		next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.copy, k.clear},
		{k.next, k.prev, k.quit},
	}
}
