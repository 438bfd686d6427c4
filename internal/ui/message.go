package ui

import (
	"github.com/desertthunder/holocron/internal/models"
	"github.com/desertthunder/holocron/internal/tasks"
)

// pageLoadedMsg carries the result of a catalog browse.
type pageLoadedMsg struct {
	page *tasks.Page
	err  error
}

// detailLoadedMsg carries the result of a detail lookup.
type detailLoadedMsg struct {
	item *tasks.Item
	err  error
}

// progressMsg forwards one catalog progress event; ch is read again afterwards.
type progressMsg struct {
	update tasks.ProgressUpdate
	ch     <-chan tasks.ProgressUpdate
}

// favoritesChangedMsg is the latest snapshot published by the store.
type favoritesChangedMsg models.Collection

type toggledMsg struct {
	entity models.Entity
	added  bool
	err    error
}

type clearedMsg struct{}

type copiedMsg struct {
	identity string
	err      error
}
