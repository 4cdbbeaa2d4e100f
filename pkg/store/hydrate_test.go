package store

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_RepairsAndReports(t *testing.T) {
	src := &domain.Journey{
		ID:   "remote-1",
		Name: "Imported",
		Properties: []domain.Property{
			{ID: "p1", Key: "age", Type: domain.PropertyNumber},
			{ID: "p2", Key: "age", Type: domain.PropertyString},
		},
		Nodes: []domain.Node{
			{ID: "a", Name: "A", Type: domain.NodeTypeInput, Properties: []string{"p1", "p2"}},
			{ID: "b", Name: "B", Type: domain.NodeTypeLoader},
		},
		Functions: []domain.Function{{
			ReferenceID: "F",
			Name:        "f",
			Type:        domain.FunctionAPI,
			Config:      domain.FunctionConfig{Headers: []domain.Header{{Key: "X", Type: domain.HeaderProperty, Value: "age"}}},
		}},
		Mappings: []domain.NodeFunctionMapping{
			{ID: "m1", NodeID: "b", FunctionID: "F"},
			{ID: "m2", NodeID: "b", FunctionID: "F"},
			{ID: "m3", NodeID: "ghost", FunctionID: "F"},
		},
		Edges: []domain.Edge{
			{ID: "e1", FromNodeID: "a", ToNodeID: "b"},
			{ID: "e2", FromNodeID: "a", ToNodeID: "b"},
			{ID: "e3", FromNodeID: "b", ToNodeID: "b"},
			{ID: "e4", FromNodeID: "b", ToNodeID: "ghost"},
			{ID: "", FromNodeID: "b", ToNodeID: "a"},
		},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s, repairs, err := Hydrate(src, WithLogger(logger))
	require.NoError(t, err)

	j := s.Snapshot()
	assert.Empty(t, domain.Check(j))
	assert.Len(t, j.Properties, 1)
	assert.Equal(t, []string{"p1"}, j.Nodes[0].Properties)
	assert.Len(t, j.Mappings, 1)
	assert.Equal(t, domain.DerivationUserEdited, j.Mappings[0].Derivation)
	require.Len(t, j.Edges, 2)
	assert.NotEmpty(t, j.Edges[1].ID, "missing ids are generated")

	fn, _ := j.Function("F")
	v, _ := fn.InputProperties.Get("age")
	assert.Equal(t, "NUMBER", v)

	kinds := map[error]int{}
	for _, r := range repairs {
		for _, sentinel := range []error{domain.ErrDuplicateKey, domain.ErrDanglingReference, domain.ErrDuplicateMapping, domain.ErrDuplicateEdge, domain.ErrSelfLoop} {
			if errors.Is(r, sentinel) {
				kinds[sentinel]++
			}
		}
	}
	assert.Equal(t, 1, kinds[domain.ErrDuplicateKey])
	assert.Equal(t, 1, kinds[domain.ErrDuplicateMapping])
	assert.Equal(t, 1, kinds[domain.ErrDuplicateEdge])
	assert.Equal(t, 1, kinds[domain.ErrSelfLoop])
	// node property p2, mapping m3, edge e4, undeclared header input
	assert.Equal(t, 4, kinds[domain.ErrDanglingReference])
	assert.Contains(t, logs.String(), "Repaired journey on hydrate")

	assert.Len(t, src.Edges, 5, "source journey is not modified")
}

func TestHydrate_KeepsTimestamps(t *testing.T) {
	src := &domain.Journey{ID: "j1"}
	s, repairs, err := Hydrate(src)
	require.NoError(t, err)
	assert.Empty(t, repairs)
	assert.False(t, s.Snapshot().CreatedAt.IsZero())
	assert.Equal(t, s.Snapshot().CreatedAt, s.Snapshot().UpdatedAt)
}

func TestHydrate_Nil(t *testing.T) {
	_, _, err := Hydrate(nil)
	assert.Error(t, err)
}
