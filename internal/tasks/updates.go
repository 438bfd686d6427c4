package tasks

import (
	"fmt"

	"github.com/desertthunder/holocron/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCollection Phase = iota
	ResolveReferences
	FetchArtwork
	SearchCollections
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case ResolveReferences:
		return "resolve_references"
	case FetchArtwork:
		return "fetch_artwork"
	case SearchCollections:
		return "search_collections"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchCollectionUpdate(kind models.Kind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s...", kind.Plural()),
	}
}

func fetchedCollectionUpdate(kind models.Kind, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d %s", count, kind.Plural()),
		Data:    count,
	}
}

func resolveReferencesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveReferences,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Resolving %d cross-references...", count),
	}
}

func fetchArtworkUpdate(step, total int, label string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtwork,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Artwork: %s", step, total, label),
	}
}

func searchUpdate(step, total int, kind models.Kind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCollections,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching %s...", step, total, kind.Plural()),
	}
}
