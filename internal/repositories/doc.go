// Package repositories implements SQLite persistence for holocron.
//
// Key Implementations:
//   - [SlotRepository] : durable key/value slots holding whole serialized documents
//
// Slots back the favorites store: each key (by default "favorites") holds the JSON array of
// bookmarked entities, replaced in a single transaction on every save.
// The schema comes from the embedded migrations in [shared.RunMigrations].
package repositories
