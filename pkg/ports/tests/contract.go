package tests

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// FunctionCatalogContractTest is a reusable test suite that verifies if an adapter
// complies with ports.FunctionCatalog. The catalog must be seeded with exactly
// wantFunctions and wantJourneys, in that order.
func FunctionCatalogContractTest(t *testing.T, catalog ports.FunctionCatalog, wantFunctions []domain.Function, wantJourneys []domain.Summary) {
	t.Helper()
	ctx := context.Background()

	t.Run("ListFunctions", func(t *testing.T) {
		got, err := catalog.ListFunctions(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing functions: %v", err)
		}
		if len(got) != len(wantFunctions) {
			t.Fatalf("expected %d functions, got %d", len(wantFunctions), len(got))
		}
		for i, want := range wantFunctions {
			if got[i].ReferenceID != want.ReferenceID || got[i].Name != want.Name {
				t.Errorf("function %d: expected %s/%s, got %s/%s", i, want.ReferenceID, want.Name, got[i].ReferenceID, got[i].Name)
			}
			if wk, gk := want.InputProperties.Keys(), got[i].InputProperties.Keys(); len(wk) != len(gk) {
				t.Errorf("function %s: expected inputs %v, got %v", want.ReferenceID, wk, gk)
			}
		}
	})

	t.Run("ListJourneys", func(t *testing.T) {
		got, err := catalog.ListJourneys(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing journeys: %v", err)
		}
		if len(got) != len(wantJourneys) {
			t.Fatalf("expected %d journeys, got %d", len(wantJourneys), len(got))
		}
		for i, want := range wantJourneys {
			if got[i].ID != want.ID || got[i].IsActive != want.IsActive {
				t.Errorf("journey %d: expected %s active=%v, got %s active=%v", i, want.ID, want.IsActive, got[i].ID, got[i].IsActive)
			}
		}
	})

	t.Run("Results are copies", func(t *testing.T) {
		first, err := catalog.ListFunctions(ctx)
		if err != nil || len(first) == 0 {
			t.Skip("catalog is empty")
		}
		first[0].Name = "mutated"
		second, err := catalog.ListFunctions(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing functions: %v", err)
		}
		if second[0].Name == "mutated" {
			t.Errorf("ListFunctions must not expose internal state")
		}
	})
}
