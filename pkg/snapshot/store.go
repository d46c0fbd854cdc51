package snapshot

import (
	"context"
)

// Store is the interface for snapshot storage backends.
//
// Load returns an empty snapshot (no error) when the backing location does
// not exist yet. A malformed persisted document also yields an empty
// snapshot, with an INVALID_SNAPSHOT error the caller may log; loads are
// never fatal by policy (see LoadOrEmpty).
type Store interface {
	// Save persists the snapshot, replacing any previous one.
	Save(ctx context.Context, s Snapshot) error

	// Load retrieves the last persisted snapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Close releases backend resources.
	Close() error
}

// LoadOrEmpty applies the defensive startup policy: an empty or unreadable
// snapshot produces an empty graph instead of an error. Failures are logged
// through the store's own logger by the respective backend.
func LoadOrEmpty(ctx context.Context, store Store) Snapshot {
	s, err := store.Load(ctx)
	if err != nil {
		return Snapshot{}
	}
	return s
}
