package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// JourneyStore persists journey snapshots.
type JourneyStore interface {
	// Save creates or replaces the journey with j.ID.
	Save(ctx context.Context, j *domain.Journey) error

	// Load retrieves a journey by id.
	// Returns domain.ErrJourneyNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Journey, error)

	// Delete removes a journey. Deleting a missing journey is not an error.
	Delete(ctx context.Context, id string) error

	// List returns a summary of every stored journey.
	List(ctx context.Context) ([]domain.Summary, error)
}
