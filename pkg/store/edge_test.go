package store

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdges_Scenario(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "A", domain.NodeTypeInput)
	mustNode(t, s, "B", domain.NodeTypeLoader)
	mustNode(t, s, "C", domain.NodeTypeDeadEnd)

	_, err := s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "B"})
	require.NoError(t, err)
	_, err = s.AddEdge(domain.Edge{FromNodeID: "B", ToNodeID: "A"})
	require.NoError(t, err, "reverse direction is a different pair")

	_, err = s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "B"})
	require.ErrorIs(t, err, domain.ErrDuplicateEdge)
	assert.Len(t, s.Snapshot().Edges, 2)

	require.NoError(t, s.DeleteNode("B"))
	assert.Empty(t, s.Snapshot().Edges)
}

func TestAddEdge_SelfLoopAlwaysFails(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "A", domain.NodeTypeInput)

	for _, from := range []string{"A", "ghost"} {
		before := s.Snapshot().Edges
		_, err := s.AddEdge(domain.Edge{FromNodeID: from, ToNodeID: from})
		assert.ErrorIs(t, err, domain.ErrSelfLoop)
		assert.Equal(t, before, s.Snapshot().Edges)
	}
}

func TestAddEdge_Rejections(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "A", domain.NodeTypeInput)

	_, err := s.AddEdge(domain.Edge{FromNodeID: "A"})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrDanglingReference)
}

func TestAddEdge_DropsPlaceholder(t *testing.T) {
	placeholder := &domain.Journey{
		ID:    "j1",
		Nodes: []domain.Node{{ID: "A", Name: "A", Type: domain.NodeTypeInput}, {ID: "B", Name: "B", Type: domain.NodeTypeLoader}},
		Edges: []domain.Edge{{ID: "ph", FromNodeID: domain.StartMarker, ToNodeID: domain.EndMarker}},
	}
	s, repairs, err := Hydrate(placeholder)
	require.NoError(t, err)
	require.Empty(t, repairs, "placeholders survive hydration")
	require.Len(t, s.Snapshot().Edges, 1)

	e, err := s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "B"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Edge{e}, s.Snapshot().Edges)

	// A rejected first edge keeps the placeholder.
	s2, _, _ := Hydrate(placeholder)
	_, err = s2.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "ghost"})
	require.Error(t, err)
	assert.Len(t, s2.Snapshot().Edges, 1)
}

func TestUpdateEdge(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "A", domain.NodeTypeInput)
	mustNode(t, s, "B", domain.NodeTypeLoader)
	mustNode(t, s, "C", domain.NodeTypeLoader)
	ab, _ := s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "B"})
	ac, _ := s.AddEdge(domain.Edge{FromNodeID: "A", ToNodeID: "C"})

	cond := "age > 18"
	require.NoError(t, s.UpdateEdge(ab.ID, EdgePatch{ValidationCondition: &cond}), "editing itself is not a duplicate")

	b := "B"
	assert.ErrorIs(t, s.UpdateEdge(ac.ID, EdgePatch{ToNodeID: &b}), domain.ErrDuplicateEdge)
	a := "A"
	assert.ErrorIs(t, s.UpdateEdge(ac.ID, EdgePatch{ToNodeID: &a}), domain.ErrSelfLoop)
	assert.ErrorIs(t, s.UpdateEdge("ghost", EdgePatch{ToNodeID: &a}), domain.ErrNotFound)

	require.NoError(t, s.DeleteEdge(ab.ID))
	assert.Len(t, s.Snapshot().Edges, 1)
	assert.ErrorIs(t, s.DeleteEdge(ab.ID), domain.ErrNotFound)
}
