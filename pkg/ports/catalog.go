package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// FunctionCatalog is the read side of the remote configuration service.
type FunctionCatalog interface {
	// ListFunctions returns every function the catalog offers.
	ListFunctions(ctx context.Context) ([]domain.Function, error)

	// ListJourneys returns the journeys the catalog knows, with their active flag.
	ListJourneys(ctx context.Context) ([]domain.Summary, error)
}
