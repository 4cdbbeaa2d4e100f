package canvas

import (
	"math"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Point is a 2D position, in scene or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Layout defaults.
const (
	DefaultSpacing    = 150.0
	DefaultOffset     = 100.0
	DefaultMinColumns = 3
)

// LayoutOptions tunes the grid.
type LayoutOptions struct {
	Spacing    float64 `json:"spacing" yaml:"spacing" toml:"spacing"`
	Offset     float64 `json:"offset" yaml:"offset" toml:"offset"`
	MinColumns int     `json:"min_columns" yaml:"min_columns" toml:"min_columns"`
}

// DefaultLayoutOptions returns spacing 150, offset 100, at least 3 columns.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{Spacing: DefaultSpacing, Offset: DefaultOffset, MinColumns: DefaultMinColumns}
}

// Placement is where one node goes.
type Placement struct {
	NodeID   string `json:"node_id"`
	Position Point  `json:"position"`
	Pinned   bool   `json:"pinned"`
}

// Layout is the result of ComputeLayout, in node order.
type Layout struct {
	Placements []Placement
	Columns    int

	index map[string]int
}

// Position returns the scene position of a node.
func (l Layout) Position(nodeID string) (Point, bool) {
	i, ok := l.index[nodeID]
	if !ok {
		return Point{}, false
	}
	return l.Placements[i].Position, true
}

// Columns returns max(minColumns, ceil(sqrt(n × 1.5))).
func Columns(n, minColumns int) int {
	cols := int(math.Ceil(math.Sqrt(float64(n) * 1.5)))
	if cols < minColumns {
		return minColumns
	}
	return cols
}

// ComputeLayout places node i of the slice at grid cell (i / columns, i % columns),
// i.e. ((col+1)·spacing + offset, (row+1)·spacing + offset). Pinned nodes keep their
// manual position and still occupy their slot, so pinning one node never moves
// another.
func ComputeLayout(nodes []domain.Node, opts LayoutOptions) Layout {
	if opts.Spacing == 0 {
		opts.Spacing = DefaultSpacing
	}
	if opts.MinColumns <= 0 {
		opts.MinColumns = DefaultMinColumns
	}
	cols := Columns(len(nodes), opts.MinColumns)

	l := Layout{
		Placements: make([]Placement, 0, len(nodes)),
		Columns:    cols,
		index:      make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		row, col := i/cols, i%cols
		p := Placement{
			NodeID: n.ID,
			Position: Point{
				X: float64(col+1)*opts.Spacing + opts.Offset,
				Y: float64(row+1)*opts.Spacing + opts.Offset,
			},
			Pinned: n.Pinned(),
		}
		if n.X != nil {
			p.Position.X = *n.X
		}
		if n.Y != nil {
			p.Position.Y = *n.Y
		}
		if _, dup := l.index[n.ID]; !dup {
			l.index[n.ID] = len(l.Placements)
		}
		l.Placements = append(l.Placements, p)
	}
	return l
}
