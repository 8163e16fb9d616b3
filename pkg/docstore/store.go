// Package docstore provides a generic document store over named
// collections of JSON values. Repositories marshal their record types
// through it; the backend (Postgres, Redis, or in-memory) is selected
// at startup.
package docstore

import (
	"context"
)

// Store is the generic get/put/update/delete/scan capability backing all
// repositories. Keys are unique within a collection.
type Store interface {
	// Get returns the raw document, or apperrors.ErrNotFound.
	Get(ctx context.Context, collection, key string) ([]byte, error)

	// Put stores the document, overwriting any existing value.
	Put(ctx context.Context, collection, key string, value []byte) error

	// Update atomically applies fn to the current document (nil if the key
	// is absent) and stores the result. Implementations guarantee that two
	// concurrent Updates on the same key do not lose either write; the
	// loser re-reads and reapplies fn.
	Update(ctx context.Context, collection, key string, fn UpdateFunc) error

	// Delete removes the document. Deleting an absent key is not an error.
	Delete(ctx context.Context, collection, key string) error

	// Scan calls fn for every document in the collection. Iteration order
	// is unspecified. Returning an error from fn stops the scan.
	Scan(ctx context.Context, collection string, fn ScanFunc) error

	// Close releases backend resources.
	Close() error
}

// UpdateFunc transforms the current document value into the next one.
type UpdateFunc func(current []byte) ([]byte, error)

// ScanFunc receives each document during a Scan.
type ScanFunc func(key string, value []byte) error
