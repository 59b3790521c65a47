package repository

import (
	"context"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// CustomerCollection is the persistence port for the customer document
// collection. The read side is push-based: Subscribe delivers the full
// current snapshot on every change, the initial load included.
type CustomerCollection interface {
	// Subscribe registers a snapshot listener. The returned channel receives
	// the complete collection state after every write until ctx is done.
	Subscribe(ctx context.Context) (<-chan entity.Snapshot, error)

	// Set writes a document. With merge, named fields are merged into an
	// existing document instead of replacing it (upsert).
	Set(ctx context.Context, id string, fields map[string]any, merge bool) error

	// Update applies a partial field map to an existing document.
	// Returns domain.ErrNotFound when the document does not exist.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the document entirely. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}
