package memory

import (
	"context"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Catalog implements ports.FunctionCatalog from fixed lists.
// It stands in for the remote catalog in tests and offline sessions.
type Catalog struct {
	mu        sync.RWMutex
	functions []domain.Function
	journeys  []domain.Summary
}

// NewCatalog creates a catalog seeded with functions.
func NewCatalog(functions ...domain.Function) *Catalog {
	c := &Catalog{}
	for _, f := range functions {
		c.functions = append(c.functions, f.Clone())
	}
	return c
}

// AddJourney registers a journey summary.
func (c *Catalog) AddJourney(s domain.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.journeys = append(c.journeys, s)
}

// ListFunctions returns copies of the seeded functions, in seed order.
func (c *Catalog) ListFunctions(ctx context.Context) ([]domain.Function, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Function, len(c.functions))
	for i, f := range c.functions {
		out[i] = f.Clone()
	}
	return out, nil
}

// ListJourneys returns the registered summaries.
func (c *Catalog) ListJourneys(ctx context.Context) ([]domain.Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Summary, len(c.journeys))
	copy(out, c.journeys)
	return out, nil
}
