// Package store provides the client's durable local cache: a string-keyed
// key-value store scoped to the device profile. The current conversation,
// cached identity, guest question counter, and voice preferences all live
// here under their own keys.
package store

import "context"

// Store is a string-keyed persistent KV store.
//
// Contract:
//   - Get returns (nil, nil) for an absent key.
//   - Set fully overwrites the stored value; values are never patched in
//     place, so an interrupted write can not leave a half-updated structure.
//   - Delete of an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// TxStore is a Store whose mutations can be grouped so that multi-key
// updates (e.g. the logout wipe of identity, conversation and quota) are not
// observable half-applied.
type TxStore interface {
	Store

	// WithTx runs fn against a transactional view of the store and commits
	// on success, rolls back on error.
	WithTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
