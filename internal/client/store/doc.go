// Package store provides the persistent key-value store the identity store
// and the job ledger are built on.
//
// # Overview
//
// Values are opaque byte blobs (JSON in practice) addressed by string keys.
// SQLiteStore keeps them in a single "kv" table of a local SQLite database
// whose schema is managed by embedded goose migrations (see Open and
// RunMigrations).
//
// # Change notification
//
// Every successful Set, SetMany or Delete is published to subscribers of the
// affected keys. Subscriptions are in-process only; readers that must also
// observe other processes sharing the database file combine Subscribe with
// periodic Get calls.
//
// # Errors
//
// Driver errors are wrapped with the failing operation and key, e.g.
// "failed to get kv[@job_finder_users]: ...".
package store
