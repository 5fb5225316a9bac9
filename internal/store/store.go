// Package store persists authored chapters. A Fallback store writes to a
// remote table when one is configured and to a local database otherwise, or
// whenever the remote call fails.
package store

import (
	"context"
	"errors"

	"github.com/zenbook-app/zenbook/internal/book"
)

// ErrNotFound is returned when a chapter id does not exist.
var ErrNotFound = errors.New("chapter not found")

// Store is the chapter persistence contract.
type Store interface {
	// List returns all chapters ordered by number.
	List(ctx context.Context) ([]book.Chapter, error)

	// Get returns one chapter or ErrNotFound.
	Get(ctx context.Context, id string) (*book.Chapter, error)

	// Upsert inserts the chapter or replaces the one with the same ID.
	Upsert(ctx context.Context, ch book.Chapter) error

	// Delete removes a chapter. Deleting a missing chapter is not an error.
	Delete(ctx context.Context, id string) error

	// Reorder moves a chapter to a new number.
	Reorder(ctx context.Context, id string, number int) error

	// Backend names the storage backend.
	Backend() string

	// Close releases any resources held by the store.
	Close() error
}
