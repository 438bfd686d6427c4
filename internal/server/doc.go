// Package server provides the local JSON API over the favorites store.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and dispatches on method per path,
// answering 405 with an Allow header for methods a path does not serve.
//
// # Favorites API
//
// [FavoritesHandler] exposes the same store the CLI and TUI use:
//
//	GET    /favorites                 list, in insertion order
//	POST   /favorites/toggle          toggle the entity in the body
//	GET    /favorites/contains?url=   membership check
//	DELETE /favorites                 clear
//
// Toggle bodies use the stored record shape (url plus name or title, extra fields kept).
// A malformed body is a 400, an entity without a url is a 422.
//
// # Middleware
//
// [RequestID] tags each request with an X-Request-ID (generated when absent) and [Logging] writes one
// structured line per request with that id.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
