package sessions

import "context"

// Repo defines the persisted session storage. Implementations must make
// Save and Clear all-or-nothing across the token and user entries.
type Repo interface {
	// Load returns the persisted record, or apperrors.ErrNotFound when
	// nothing is stored. Half-written or unparseable storage is
	// ErrCorruptRecord.
	Load(ctx context.Context) (*Record, error)

	// Save replaces both entries
	Save(ctx context.Context, record Record) error

	// Clear removes both entries. Clearing empty storage is not an error.
	Clear(ctx context.Context) error
}
