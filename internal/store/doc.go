// Package store persists sealed record entries.
//
// Entries are append-only: there is no update or delete. Each entry maps an
// identifier to the fingerprint and ciphertext produced when the record was
// sealed, and entries for one identifier are ordered by insertion so the
// latest seal can be looked up.
//
// Two backends are provided. SQLite is the default and also stores encryption
// keys when key persistence is enabled. Badger is an embedded key-value
// alternative with the same contract.
package store
