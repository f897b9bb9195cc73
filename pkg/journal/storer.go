package journal

import (
	"context"
	"time"
)

// Storer persists journal entries.
type Storer interface {
	// Put stores an entry. Entries with an existing ID are ignored.
	Put(ctx context.Context, entry *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Prune deletes entries created before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases any resources.
	Close() error
}
