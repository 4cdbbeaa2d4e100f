package canvas

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleJourney lays out as A(250,250) B(400,250) C(550,250).
func sampleJourney() *domain.Journey {
	return &domain.Journey{
		ID:   "j1",
		Name: "Onboarding",
		Properties: []domain.Property{
			{ID: "p1", Key: "age", Type: domain.PropertyNumber},
			{ID: "p2", Key: "name", Type: domain.PropertyString},
		},
		Nodes: []domain.Node{
			{ID: "A", Name: "Start form", Type: domain.NodeTypeInput, Properties: []string{"p1", "p2"}},
			{ID: "B", Name: "Load", Type: domain.NodeTypeLoader},
			{ID: "C", Name: "Reject", Type: domain.NodeTypeDeadEnd},
		},
		Functions: []domain.Function{
			{ReferenceID: "F1", Name: "score", Type: domain.FunctionAPI},
		},
		Mappings: []domain.NodeFunctionMapping{
			{ID: "m1", NodeID: "B", FunctionID: "F1"},
			{ID: "m2", NodeID: "B", FunctionID: "missing"},
		},
		Edges: []domain.Edge{
			{ID: "e1", FromNodeID: "A", ToNodeID: "B", ValidationCondition: "age > 18"},
			{ID: "e2", FromNodeID: "B", ToNodeID: "C"},
			{ID: "e3", FromNodeID: "C", ToNodeID: "A"},
			{ID: "e4", FromNodeID: "A", ToNodeID: "ghost"},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func TestColumns(t *testing.T) {
	assert.Equal(t, 3, Columns(0, 3))
	assert.Equal(t, 3, Columns(4, 3))
	assert.Equal(t, 4, Columns(10, 3))
	assert.Equal(t, 5, Columns(15, 3))
}

func TestComputeLayout_Grid(t *testing.T) {
	nodes := []domain.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	l := ComputeLayout(nodes, DefaultLayoutOptions())

	require.Len(t, l.Placements, 4)
	assert.Equal(t, 3, l.Columns)
	assert.Equal(t, Point{X: 250, Y: 250}, l.Placements[0].Position)
	assert.Equal(t, Point{X: 400, Y: 250}, l.Placements[1].Position)
	assert.Equal(t, Point{X: 550, Y: 250}, l.Placements[2].Position)
	assert.Equal(t, Point{X: 250, Y: 400}, l.Placements[3].Position)

	again := ComputeLayout(nodes, DefaultLayoutOptions())
	assert.Equal(t, l.Placements, again.Placements)
}

func TestComputeLayout_OverrideKeepsOtherSlots(t *testing.T) {
	nodes := []domain.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	before := ComputeLayout(nodes, DefaultLayoutOptions())

	nodes[1].X, nodes[1].Y = ptr(12), ptr(34)
	after := ComputeLayout(nodes, DefaultLayoutOptions())

	pos, ok := after.Position("b")
	require.True(t, ok)
	assert.Equal(t, Point{X: 12, Y: 34}, pos)
	assert.True(t, after.Placements[1].Pinned)
	for _, i := range []int{0, 2, 3} {
		assert.Equal(t, before.Placements[i].Position, after.Placements[i].Position)
	}

	// Removing a node reflows grid nodes but not the pinned one.
	shrunk := ComputeLayout([]domain.Node{nodes[1], nodes[3]}, DefaultLayoutOptions())
	pos, _ = shrunk.Position("b")
	assert.Equal(t, Point{X: 12, Y: 34}, pos)
	pos, _ = shrunk.Position("d")
	assert.Equal(t, Point{X: 400, Y: 250}, pos)
}

func TestComputeLayout_SingleAxisOverride(t *testing.T) {
	nodes := []domain.Node{{ID: "a", X: ptr(999)}, {ID: "b", Y: ptr(-20)}}
	l := ComputeLayout(nodes, DefaultLayoutOptions())

	pos, _ := l.Position("a")
	assert.Equal(t, Point{X: 999, Y: 250}, pos)
	pos, _ = l.Position("b")
	assert.Equal(t, Point{X: 400, Y: -20}, pos)
	assert.True(t, l.Placements[0].Pinned)
	assert.True(t, l.Placements[1].Pinned)
}

func TestViewport_ZoomToPointer(t *testing.T) {
	v := Identity()
	anchor := Point{X: 100, Y: 100}
	sceneUnder := v.ToScene(anchor)

	z := v.ZoomAt(anchor, 1.1, DefaultScaleBounds())

	assert.InDelta(t, 1.1, z.Scale, 1e-9)
	assert.InDelta(t, -10, z.TranslateX, 1e-9)
	assert.InDelta(t, -10, z.TranslateY, 1e-9)
	back := z.ToScreen(sceneUnder)
	assert.InDelta(t, 100, back.X, 1e-9)
	assert.InDelta(t, 100, back.Y, 1e-9)
}

func TestViewport_ZoomClamped(t *testing.T) {
	b := DefaultScaleBounds()
	v := Viewport{TranslateX: 5, TranslateY: 7, Scale: 3}

	z := v.ZoomAt(Point{X: 40, Y: 40}, 1.1, b)
	assert.Equal(t, 3.0, z.Scale)
	assert.Equal(t, 5.0, z.TranslateX)
	assert.Equal(t, 7.0, z.TranslateY)

	small := Viewport{Scale: 0.1}.ZoomAt(Point{}, 0.5, b)
	assert.Equal(t, 0.1, small.Scale)
}

func TestViewport_RoundTrip(t *testing.T) {
	v := Viewport{TranslateX: 30, TranslateY: -20, Scale: 2}
	p := Point{X: 17, Y: 42}
	got := v.ToScene(v.ToScreen(p))
	assert.InDelta(t, p.X, got.X, 1e-9)
	assert.InDelta(t, p.Y, got.Y, 1e-9)
}

func TestWheelFactor(t *testing.T) {
	assert.Equal(t, WheelZoomOut, WheelFactor(120))
	assert.Equal(t, WheelZoomIn, WheelFactor(-120))
}

func TestPan(t *testing.T) {
	var p Pan
	v := Viewport{TranslateX: 10, TranslateY: 10, Scale: 2}

	_, moved := p.Move(Point{X: 5, Y: 5}, v)
	assert.False(t, moved)

	p.Begin(Point{X: 100, Y: 100}, v)
	got, moved := p.Move(Point{X: 130, Y: 80}, v)
	require.True(t, moved)
	assert.Equal(t, Viewport{TranslateX: 40, TranslateY: -10, Scale: 2}, got)

	p.End()
	assert.False(t, p.Active())
}

func TestBuildScene_EdgesClippedAndFiltered(t *testing.T) {
	s := BuildScene(sampleJourney(), Identity(), "", DefaultSceneOptions())

	require.Len(t, s.Nodes, 3)
	require.Len(t, s.Edges, 2, "dead_end sources and missing endpoints are skipped")

	e1 := s.Edges[0]
	assert.Equal(t, "e1", e1.EdgeID)
	assert.Equal(t, Point{X: 285, Y: 250}, e1.Start)
	assert.Equal(t, Point{X: 365, Y: 250}, e1.End)
	assert.Equal(t, e1.End, e1.Arrow[0])

	require.NotNil(t, e1.Label)
	assert.Equal(t, "age > 18", e1.Label.Value)
	assert.Equal(t, Point{X: 325, Y: 242}, e1.Label.At)

	assert.Equal(t, "e2", s.Edges[1].EdgeID)
	assert.Nil(t, s.Edges[1].Label)
}

func TestBuildScene_ClipsDiagonalEdgesToTheCircle(t *testing.T) {
	j := &domain.Journey{
		Nodes: []domain.Node{
			{ID: "a", Name: "a", Type: domain.NodeTypeInput, X: ptr(0), Y: ptr(0)},
			{ID: "b", Name: "b", Type: domain.NodeTypeLoader, X: ptr(300), Y: ptr(400)},
		},
		Edges: []domain.Edge{{ID: "e", FromNodeID: "a", ToNodeID: "b"}},
	}
	s := BuildScene(j, Identity(), "", DefaultSceneOptions())

	require.Len(t, s.Edges, 1)
	e := s.Edges[0]
	assert.InDelta(t, 21, e.Start.X, 1e-9)
	assert.InDelta(t, 28, e.Start.Y, 1e-9)
	assert.InDelta(t, 279, e.End.X, 1e-9)
	assert.InDelta(t, 372, e.End.Y, 1e-9)
}

func TestBuildScene_CoincidentNodesHaveNoEdge(t *testing.T) {
	j := &domain.Journey{
		Nodes: []domain.Node{
			{ID: "a", Name: "a", Type: domain.NodeTypeInput, X: ptr(10), Y: ptr(10)},
			{ID: "b", Name: "b", Type: domain.NodeTypeLoader, X: ptr(10), Y: ptr(10)},
		},
		Edges: []domain.Edge{{ID: "e", FromNodeID: "a", ToNodeID: "b"}},
	}
	assert.Empty(t, BuildScene(j, Identity(), "", SceneOptions{}).Edges)
}

func TestBuildScene_NodeAnnotations(t *testing.T) {
	s := BuildScene(sampleJourney(), Identity(), "B", DefaultSceneOptions())
	pal := DefaultPalette()

	a, b, c := s.Nodes[0], s.Nodes[1], s.Nodes[2]

	assert.Equal(t, pal.Input, a.Fill)
	assert.Equal(t, pal.Loader, b.Fill)
	assert.Equal(t, pal.DeadEnd, c.Fill)

	require.NotNil(t, a.PropertyLabel)
	assert.Equal(t, "2 props", a.PropertyLabel.Value)
	assert.Nil(t, a.Badge)
	assert.Nil(t, b.PropertyLabel)
	require.NotNil(t, b.Badge)
	assert.Equal(t, Point{X: 420, Y: 230}, b.Badge.Center)

	assert.True(t, b.Selected)
	assert.Equal(t, pal.SelectedStroke, b.Stroke)
	assert.Equal(t, 3.0, b.StrokeWidth)
	assert.False(t, a.Selected)
	assert.Equal(t, 2.0, a.StrokeWidth)
}

func TestBuildScene_Nil(t *testing.T) {
	s := BuildScene(nil, Viewport{}, "", SceneOptions{})
	assert.Empty(t, s.Nodes)
	assert.Equal(t, 1.0, s.Viewport.Scale)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 12))
	assert.Equal(t, "abcdefghijkl...", Truncate("abcdefghijklmnop", 12))
	assert.Equal(t, "ação", Truncate("ação", 4))
	assert.Equal(t, "anything", Truncate("anything", -1))
}

func TestHitTest(t *testing.T) {
	s := BuildScene(sampleJourney(), Identity(), "", DefaultSceneOptions())

	hit, ok := HitTest(s, Point{X: 250, Y: 250})
	require.True(t, ok)
	assert.Equal(t, Hit{NodeID: "A", Part: HitCircle}, hit)

	hit, ok = HitTest(s, Point{X: 420, Y: 230})
	require.True(t, ok)
	assert.Equal(t, Hit{NodeID: "B", Part: HitBadge}, hit)

	hit, ok = HitTest(s, Point{X: 250, Y: 292})
	require.True(t, ok)
	assert.Equal(t, Hit{NodeID: "A", Part: HitPropertyLabel}, hit)

	_, ok = HitTest(s, Point{X: 10, Y: 10})
	assert.False(t, ok)
}

func TestHitTest_UsesViewport(t *testing.T) {
	v := Viewport{TranslateX: -100, TranslateY: 50, Scale: 2}
	s := BuildScene(sampleJourney(), v, "", DefaultSceneOptions())

	// Scene (250,250) is at screen (400,550).
	hit, ok := HitTest(s, Point{X: 400, Y: 550})
	require.True(t, ok)
	assert.Equal(t, "A", hit.NodeID)

	_, ok = HitTest(s, Point{X: 250, Y: 250})
	assert.False(t, ok)
}

func TestSelection_Toggle(t *testing.T) {
	var s Selection
	assert.Equal(t, "A", s.Toggle("A"))
	assert.Equal(t, "", s.Toggle("A"))
	s.Toggle("A")
	assert.Equal(t, "B", s.Toggle("B"))
	assert.True(t, s.Clear())
	assert.False(t, s.Clear())
}

func TestAnnotate(t *testing.T) {
	notes := Annotate(sampleJourney())
	assert.Equal(t, Annotation{PropertyCount: 2}, notes["A"])
	assert.Equal(t, Annotation{HasMapping: true}, notes["B"])
	assert.Equal(t, Annotation{}, notes["C"])
}

func TestDescribe(t *testing.T) {
	d, ok := Describe(sampleJourney(), "B")
	require.True(t, ok)

	assert.Equal(t, "Load", d.Node.Name)
	assert.Empty(t, d.Properties)
	require.Len(t, d.Functions, 1, "mappings to unknown functions are skipped")
	assert.Equal(t, "score", d.Functions[0].Function.Name)
	require.Len(t, d.Incoming, 1)
	assert.Equal(t, "e1", d.Incoming[0].Edge.ID)
	require.NotNil(t, d.Incoming[0].Peer)
	assert.Equal(t, "A", d.Incoming[0].Peer.ID)
	require.Len(t, d.Outgoing, 1)
	assert.Equal(t, "e2", d.Outgoing[0].Edge.ID)

	a, ok := Describe(sampleJourney(), "A")
	require.True(t, ok)
	assert.Len(t, a.Properties, 2)
	require.Len(t, a.Outgoing, 2)
	assert.Nil(t, a.Outgoing[1].Peer)
	require.Len(t, a.Incoming, 1)
	assert.Equal(t, "e3", a.Incoming[0].Edge.ID)

	_, ok = Describe(sampleJourney(), "nope")
	assert.False(t, ok)
}
