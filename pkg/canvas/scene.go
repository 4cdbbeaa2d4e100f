package canvas

import (
	"fmt"
	"math"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Scene defaults.
const (
	DefaultRadius       = 35.0
	DefaultLabelOffset  = 8.0
	DefaultMaxNameRunes = 12
	DefaultWidth        = 800
	DefaultHeight       = 600

	badgeDX, badgeDY   = 20.0, -20.0
	badgeRadius        = 8.0
	nameFontSize       = 12.0
	smallFontSize      = 10.0
	edgeFontSize       = 11.0
	propertyLabelDY    = 45.0
	nameBaselineDY     = 5.0
	arrowLength        = 10.0
	arrowHalfWidth     = 3.5
	approxGlyphWidthEm = 0.6
)

// Palette holds the colours a Scene is painted with.
type Palette struct {
	Input          string `json:"input" yaml:"input" toml:"input"`
	Loader         string `json:"loader" yaml:"loader" toml:"loader"`
	DeadEnd        string `json:"dead_end" yaml:"dead_end" toml:"dead_end"`
	Default        string `json:"default" yaml:"default" toml:"default"`
	Stroke         string `json:"stroke" yaml:"stroke" toml:"stroke"`
	SelectedStroke string `json:"selected_stroke" yaml:"selected_stroke" toml:"selected_stroke"`
	Edge           string `json:"edge" yaml:"edge" toml:"edge"`
	EdgeLabel      string `json:"edge_label" yaml:"edge_label" toml:"edge_label"`
	Badge          string `json:"badge" yaml:"badge" toml:"badge"`
	Text           string `json:"text" yaml:"text" toml:"text"`
	MutedText      string `json:"muted_text" yaml:"muted_text" toml:"muted_text"`
	Background     string `json:"background" yaml:"background" toml:"background"`
}

// DefaultPalette returns the stock editor colours.
func DefaultPalette() Palette {
	return Palette{
		Input:          "#3B82F6",
		Loader:         "#F59E0B",
		DeadEnd:        "#EF4444",
		Default:        "#6B7280",
		Stroke:         "#374151",
		SelectedStroke: "#3B82F6",
		Edge:           "#6B7280",
		EdgeLabel:      "#DC2626",
		Badge:          "#8B5CF6",
		Text:           "#FFFFFF",
		MutedText:      "#6B7280",
		Background:     "#F9FAFB",
	}
}

func (p Palette) fill(t domain.NodeType) string {
	switch t {
	case domain.NodeTypeInput:
		return p.Input
	case domain.NodeTypeLoader:
		return p.Loader
	case domain.NodeTypeDeadEnd:
		return p.DeadEnd
	}
	return p.Default
}

// SceneOptions tunes BuildScene.
type SceneOptions struct {
	Layout       LayoutOptions
	Radius       float64
	LabelOffset  float64
	MaxNameRunes int
	Palette      Palette
}

// DefaultSceneOptions returns radius 35, 12-rune names and the default palette.
func DefaultSceneOptions() SceneOptions {
	return SceneOptions{
		Layout:       DefaultLayoutOptions(),
		Radius:       DefaultRadius,
		LabelOffset:  DefaultLabelOffset,
		MaxNameRunes: DefaultMaxNameRunes,
		Palette:      DefaultPalette(),
	}
}

// Text is a label anchored at its centre-baseline.
type Text struct {
	Value string  `json:"value"`
	At    Point   `json:"at"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// Box returns an approximate scene-space bounding box (min, max) of the text.
func (t Text) Box() (Point, Point) {
	w := float64(len([]rune(t.Value))) * t.Size * approxGlyphWidthEm
	return Point{X: t.At.X - w/2, Y: t.At.Y - t.Size}, Point{X: t.At.X + w/2, Y: t.At.Y + t.Size*0.25}
}

// Badge marks a node bound to at least one function.
type Badge struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Fill   string  `json:"fill"`
	Glyph  Text    `json:"glyph"`
}

// NodeShape is one drawn node.
type NodeShape struct {
	NodeID      string          `json:"node_id"`
	Type        domain.NodeType `json:"type"`
	Center      Point           `json:"center"`
	Radius      float64         `json:"radius"`
	Fill        string          `json:"fill"`
	Stroke      string          `json:"stroke"`
	StrokeWidth float64         `json:"stroke_width"`
	Selected    bool            `json:"selected"`
	Pinned      bool            `json:"pinned"`

	Label         Text   `json:"label"`
	PropertyCount int    `json:"property_count"`
	PropertyLabel *Text  `json:"property_label,omitempty"`
	Badge         *Badge `json:"badge,omitempty"`
}

// EdgeShape is one drawn edge, already clipped to the node circles.
type EdgeShape struct {
	EdgeID string   `json:"edge_id"`
	FromID string   `json:"from_id"`
	ToID   string   `json:"to_id"`
	Start  Point    `json:"start"`
	End    Point    `json:"end"`
	Arrow  [3]Point `json:"arrow"`
	Stroke string   `json:"stroke"`
	Label  *Text    `json:"label,omitempty"`
}

// Scene is the backend-neutral description of one frame. Shapes are in scene
// coordinates; Viewport maps them to the screen.
type Scene struct {
	Viewport   Viewport    `json:"viewport"`
	Nodes      []NodeShape `json:"nodes"`
	Edges      []EdgeShape `json:"edges"`
	Background string      `json:"background"`
}

// BuildScene lays out j and describes it under v. selected may be empty.
// Edges whose endpoints are missing, whose source is a dead end, or whose endpoints
// coincide are skipped.
func BuildScene(j *domain.Journey, v Viewport, selected string, opts SceneOptions) Scene {
	opts = withSceneDefaults(opts)
	scene := Scene{
		Viewport:   v.normalized(),
		Nodes:      []NodeShape{},
		Edges:      []EdgeShape{},
		Background: opts.Palette.Background,
	}
	if j == nil {
		return scene
	}

	layout := ComputeLayout(j.Nodes, opts.Layout)
	notes := Annotate(j)
	byID := make(map[string]domain.Node, len(j.Nodes))
	for _, n := range j.Nodes {
		byID[n.ID] = n
	}

	for _, e := range j.Edges {
		from, okFrom := byID[e.FromNodeID]
		_, okTo := byID[e.ToNodeID]
		if !okFrom || !okTo || from.Type == domain.NodeTypeDeadEnd {
			continue
		}
		src, _ := layout.Position(e.FromNodeID)
		dst, _ := layout.Position(e.ToNodeID)
		shape, ok := edgeShape(e, src, dst, opts)
		if !ok {
			continue
		}
		scene.Edges = append(scene.Edges, shape)
	}

	for i, n := range j.Nodes {
		p := layout.Placements[i]
		note := notes[n.ID]
		shape := NodeShape{
			NodeID:        n.ID,
			Type:          n.Type,
			Center:        p.Position,
			Radius:        opts.Radius,
			Fill:          opts.Palette.fill(n.Type),
			Stroke:        opts.Palette.Stroke,
			StrokeWidth:   2,
			Selected:      n.ID == selected && selected != "",
			Pinned:        p.Pinned,
			PropertyCount: note.PropertyCount,
			Label: Text{
				Value: Truncate(n.Name, opts.MaxNameRunes),
				At:    p.Position.Add(Point{Y: nameBaselineDY}),
				Size:  nameFontSize,
				Color: opts.Palette.Text,
			},
		}
		if shape.Selected {
			shape.Stroke = opts.Palette.SelectedStroke
			shape.StrokeWidth = 3
		}
		if note.PropertyCount > 0 {
			shape.PropertyLabel = &Text{
				Value: fmt.Sprintf("%d props", note.PropertyCount),
				At:    p.Position.Add(Point{Y: propertyLabelDY}),
				Size:  smallFontSize,
				Color: opts.Palette.MutedText,
			}
		}
		if note.HasMapping {
			center := p.Position.Add(Point{X: badgeDX, Y: badgeDY})
			shape.Badge = &Badge{
				Center: center,
				Radius: badgeRadius,
				Fill:   opts.Palette.Badge,
				Glyph: Text{
					Value: "f",
					At:    center.Add(Point{Y: nameBaselineDY}),
					Size:  smallFontSize,
					Color: opts.Palette.Text,
				},
			}
		}
		scene.Nodes = append(scene.Nodes, shape)
	}
	return scene
}

// edgeShape clips the centre line to both circles and places the guard label on the
// normal (uy, −ux) through the midpoint.
func edgeShape(e domain.Edge, src, dst Point, opts SceneOptions) (EdgeShape, bool) {
	d := dst.Sub(src)
	dist := d.Len()
	if dist == 0 || math.IsNaN(dist) {
		return EdgeShape{}, false
	}
	u := d.Scale(1 / dist)
	start := src.Add(u.Scale(opts.Radius))
	end := dst.Sub(u.Scale(opts.Radius))

	normal := Point{X: u.Y, Y: -u.X}
	base := end.Sub(u.Scale(arrowLength))
	shape := EdgeShape{
		EdgeID: e.ID,
		FromID: e.FromNodeID,
		ToID:   e.ToNodeID,
		Start:  start,
		End:    end,
		Arrow: [3]Point{
			end,
			base.Add(normal.Scale(arrowHalfWidth)),
			base.Sub(normal.Scale(arrowHalfWidth)),
		},
		Stroke: opts.Palette.Edge,
	}
	if e.ValidationCondition != "" {
		mid := start.Add(end).Scale(0.5)
		shape.Label = &Text{
			Value: e.ValidationCondition,
			At:    mid.Add(normal.Scale(opts.LabelOffset)),
			Size:  edgeFontSize,
			Color: opts.Palette.EdgeLabel,
		}
	}
	return shape, true
}

// Truncate shortens s to max runes followed by "...". max <= 0 disables it.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func withSceneDefaults(opts SceneOptions) SceneOptions {
	def := DefaultSceneOptions()
	if opts.Radius <= 0 {
		opts.Radius = def.Radius
	}
	if opts.LabelOffset == 0 {
		opts.LabelOffset = def.LabelOffset
	}
	if opts.MaxNameRunes == 0 {
		opts.MaxNameRunes = def.MaxNameRunes
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = def.Palette
	}
	if opts.Layout == (LayoutOptions{}) {
		opts.Layout = def.Layout
	}
	return opts
}
