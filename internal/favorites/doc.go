// Package favorites implements the bookmark store shared by every holocron view.
//
// A [Store] holds an ordered [models.Collection] with unique identities and mirrors it into a
// durable [Storage] slot after every mutation. There is exactly one mutation entry point per
// user action: [Store.Toggle] adds or removes, [Store.Clear] empties.
//
// Each mutation runs to completion (mutate, persist, notify) before the next one starts, so
// subscribers registered with [Store.Subscribe] all see the same post-mutation snapshot
// before the mutating call returns.
//
// Storage failures never reach the caller: a missing or corrupt slot loads as an empty
// collection and a failed write leaves the in-memory collection mutated, logging the error
// and reporting it to [Options.OnPersistError].
package favorites
