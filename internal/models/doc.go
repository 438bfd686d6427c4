// Package models defines the reference-data entities shared by every holocron view.
//
// The package contains two categories of types:
//
// 1. Reference records: raw SWAPI data as returned by the API
//   - [Record] : a single flat JSON object (a film, character, planet, species or starship)
//   - [Page] : one page of a paginated collection
//
// 2. Favorites: the bookmark data model persisted by the favorites store
//   - [Entity] : identity (canonical URL), display label and opaque payload
//   - [Collection] : ordered list of entities with unique identities
//
// [Kind] classifies both, derived from the SWAPI URL path or, failing that, from the record's distinguishing fields.
package models
