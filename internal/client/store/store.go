package store

import (
	"context"
)

// Logical keys of the blobs persisted by the identity store and the ledger.
// The literal values match the keys used by earlier clients so that their
// data is picked up unchanged.
const (
	KeySession      = "@job_finder_auth"
	KeyUsers        = "@job_finder_users"
	KeySavedJobs    = "@job_finder_saved_jobs"
	KeyApplications = "@job_finder_applications"
	KeySessionKey   = "@job_finder_session_key"
)

// Change is delivered to subscribers after a key was written or deleted.
// Value is nil for deletions.
type Change struct {
	Key   string
	Value []byte
}

// Store is a durable string-keyed blob store.
//
// Contract:
//   - Get returns (nil, nil) when the key is absent.
//   - Set replaces the whole value of a key; there are no partial updates.
//   - SetMany writes all pairs in one transaction or none of them.
//   - Delete is idempotent.
//   - Subscribe delivers changes for the given keys until cancel is called.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Subscribe(keys ...string) (<-chan Change, func())
}
