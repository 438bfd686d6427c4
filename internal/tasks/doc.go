// Package tasks implements the catalog operations behind every holocron view.
//
// The core abstraction is [Catalog], which combines the reference client with the image and artwork
// lookups: it fetches whole collections (memoized per kind), paginates and filters them, enriches the
// visible records with resolved cross-references, and answers detail and cross-category search queries.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks
