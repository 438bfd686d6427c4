// Package services implements the read-only HTTP clients holocron draws reference data from.
//
// # Reference Data
//
// [SWAPIService] implements [ReferenceClient] against the Star Wars API. Collections are paginated
// and [SWAPIService.ListAll] follows "next" links until the last page. Records are memoized per URL
// for the life of the process, and [SWAPIService.ResolveNames] fans cross-reference lookups out over a
// bounded worker pool that shares one [rate.Limiter].
//
// # Artwork
//
// [ImageService] looks up character images in the akabab index, keyed by lowercase name.
// [TMDBService] resolves film posters and ratings through a fixed title to TMDB id table. It accepts a
// v3 api key (sent as a query parameter) or a v4 read access token, which is attached as a bearer
// token by an [oauth2.Transport].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotFound] : the API returned 404 or the title is not in the lookup table
//   - [shared.ErrAPIRequest] : any other non-2xx response or an undecodable body
//   - [shared.ErrServiceUnavailable] : the request could not be sent
//   - [shared.ErrMissingCredentials] : TMDB used without an api key or token
package services
