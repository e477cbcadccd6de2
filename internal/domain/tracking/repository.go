package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for tracked-suggestion persistence.
// Update is the whole-record write-back behind caller-initiated patches.
// The valuation sweep never uses it: sweep write-backs go through
// ExpireIfActive and UpdateReturns, which touch only the columns the sweep
// owns, so a caller transition landing mid-sweep survives it.
type Repository interface {
	Create(ctx context.Context, t *TrackedSuggestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*TrackedSuggestion, error)
	List(ctx context.Context) ([]*TrackedSuggestion, error)
	Update(ctx context.Context, t *TrackedSuggestion) error

	// ExpireIfActive marks the record EXPIRED only while its stored status
	// is still ACTIVE. Returns false when another writer got there first.
	ExpireIfActive(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// UpdateReturns writes back the horizon-return snapshots and nothing else.
	UpdateReturns(ctx context.Context, t *TrackedSuggestion) error

	Delete(ctx context.Context, id uuid.UUID) error
}
