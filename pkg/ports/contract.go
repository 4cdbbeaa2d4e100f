package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractJourney returns a journey that touches every collection, for store tests.
func ContractJourney(id string) *domain.Journey {
	x, y := 120.0, 80.0
	expr := "value.trim()"
	return &domain.Journey{
		ID:          id,
		Name:        "Contract " + id,
		Description: "exercises every collection",
		Properties: []domain.Property{
			{ID: "p-age", Key: "age", Type: domain.PropertyNumber, ValidationCondition: "age >= 0"},
			{ID: "p-name", Key: "name", Type: domain.PropertyString},
		},
		Nodes: []domain.Node{
			{ID: "n-ask", Name: "Ask", Type: domain.NodeTypeInput, Properties: []string{"p-age", "p-name"}, X: &x, Y: &y},
			{ID: "n-score", Name: "Score", Type: domain.NodeTypeLoader, Properties: []string{"p-age"}},
			{ID: "n-stop", Name: "Stop", Type: domain.NodeTypeDeadEnd, Properties: []string{"p-name"}},
		},
		Functions: []domain.Function{{
			ReferenceID: "f-score",
			Name:        "score",
			Type:        domain.FunctionAPI,
			Config: domain.FunctionConfig{
				Host:         "https://scoring.internal",
				Path:         "/v1/score",
				Method:       "POST",
				Headers:      []domain.Header{{Key: "X-Age", Type: domain.HeaderProperty, Value: "age"}},
				HeaderParams: domain.NewEntries("trace", "on"),
				TimeoutMs:    5000,
			},
			InputProperties:  domain.NewEntries("name", "STRING", "age", "NUMBER"),
			OutputProperties: domain.NewEntries("score", "NUMBER"),
		}},
		Mappings: []domain.NodeFunctionMapping{{
			ID:         "m-score",
			Name:       "score on load",
			NodeID:     "n-score",
			FunctionID: "f-score",
			Derivation: domain.DerivationUserEdited,
			VariableMappings: []domain.VariableMapping{
				{ID: "input_age", MappingType: domain.MappingInput, Strategy: domain.StrategyDirect, SourceVariableName: "age", SourceVariableType: "NUMBER", TransformationExpression: &expr},
				{ID: "output_score", MappingType: domain.MappingOutput, Strategy: domain.StrategyDirect, SourceVariableName: "score", SourceVariableType: "NUMBER"},
			},
		}},
		Edges: []domain.Edge{
			{ID: "e-1", FromNodeID: "n-ask", ToNodeID: "n-score", ValidationCondition: "age >= 18"},
			{ID: "e-2", FromNodeID: "n-score", ToNodeID: "n-stop"},
		},
		IsActive:  true,
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
	}
}

// RunJourneyStoreContract runs a suite of tests to verify that a JourneyStore
// implementation adheres to the defined interface contract.
func RunJourneyStoreContract(t *testing.T, store JourneyStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		want := ContractJourney(prefix + "-a")
		require.NoError(t, store.Save(ctx, want), "Save should not return error")

		got, err := store.Load(ctx, want.ID)
		require.NoError(t, err, "Load should not return error")

		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.IsActive, got.IsActive)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "CreatedAt %v != %v", want.CreatedAt, got.CreatedAt)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
		assert.Equal(t, want.Properties, got.Properties)
		assert.Equal(t, want.Nodes, got.Nodes)
		assert.Equal(t, want.Edges, got.Edges)
		assert.Equal(t, want.Mappings, got.Mappings)

		require.Len(t, got.Functions, 1)
		fn := got.Functions[0]
		assert.Equal(t, want.Functions[0].Config.Headers, fn.Config.Headers)
		assert.Equal(t, 5000, fn.Config.TimeoutMs)
		assert.Equal(t, []string{"name", "age"}, fn.InputProperties.Keys(), "entry order must survive")
		assert.Equal(t, []string{"score"}, fn.OutputProperties.Keys())
		assert.Equal(t, []string{"trace"}, fn.Config.HeaderParams.Keys())
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		j := ContractJourney(prefix + "-iso")
		require.NoError(t, store.Save(ctx, j))
		j.Name = "mutated after save"
		j.Nodes[0].Name = "mutated"

		got, err := store.Load(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, "Contract "+prefix+"-iso", got.Name)
		assert.Equal(t, "Ask", got.Nodes[0].Name)
		_ = store.Delete(ctx, j.ID)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		j := ContractJourney(prefix + "-over")
		require.NoError(t, store.Save(ctx, j))
		j2 := ContractJourney(j.ID)
		j2.Name = "renamed"
		j2.Edges = j2.Edges[:1]
		require.NoError(t, store.Save(ctx, j2))

		got, err := store.Load(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		assert.Len(t, got.Edges, 1)
		_ = store.Delete(ctx, j.ID)
	})

	t.Run("Save Requires ID", func(t *testing.T) {
		err := store.Save(ctx, ContractJourney(""))
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-del"
		require.NoError(t, store.Save(ctx, ContractJourney(id)))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound, "Load after Delete should return ErrJourneyNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Delete of a missing journey is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := prefix + "-1"
		id2 := prefix + "-2"
		j2 := ContractJourney(id2)
		j2.IsActive = false
		require.NoError(t, store.Save(ctx, ContractJourney(id1)))
		require.NoError(t, store.Save(ctx, j2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		summaries, err := store.List(ctx)
		require.NoError(t, err)

		byID := make(map[string]domain.Summary, len(summaries))
		for _, s := range summaries {
			byID[s.ID] = s
		}
		require.Contains(t, byID, id1)
		require.Contains(t, byID, id2)
		assert.Equal(t, "Contract "+id1, byID[id1].Name)
		assert.True(t, byID[id1].IsActive)
		assert.False(t, byID[id2].IsActive)
	})
}
