package canvas

import (
	"io"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Renderer turns a Scene into bytes (SVG, PNG, ...).
type Renderer interface {
	Render(w io.Writer, scene Scene) error
}

// SelectionSink is told about every selection change. node is nil when nothing is
// selected.
type SelectionSink interface {
	SelectionChanged(node *domain.Node)
}

// SelectionFunc adapts a function to SelectionSink.
type SelectionFunc func(node *domain.Node)

// SelectionChanged calls f(node).
func (f SelectionFunc) SelectionChanged(node *domain.Node) { f(node) }

// Controller owns the view state of one canvas: the current snapshot, the
// viewport, an in-progress pan and the selection. It never mutates the journey.
type Controller struct {
	snapshot  *domain.Journey
	viewport  Viewport
	pan       Pan
	selection Selection

	bounds        ScaleBounds
	width, height float64
	sceneOpts     SceneOptions
	sink          SelectionSink
	logger        *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSelectionSink registers the host that renders the details panel.
func WithSelectionSink(sink SelectionSink) ControllerOption {
	return func(c *Controller) {
		c.sink = sink
	}
}

// WithScaleBounds overrides the [0.1, 3] zoom range.
func WithScaleBounds(b ScaleBounds) ControllerOption {
	return func(c *Controller) {
		c.bounds = b
	}
}

// WithViewportSize sets the screen size reported by Size.
func WithViewportSize(width, height float64) ControllerOption {
	return func(c *Controller) {
		c.width, c.height = width, height
	}
}

// WithSceneOptions overrides layout and styling.
func WithSceneOptions(opts SceneOptions) ControllerOption {
	return func(c *Controller) {
		c.sceneOpts = opts
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller with an identity viewport and no snapshot.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		viewport:  Identity(),
		bounds:    DefaultScaleBounds(),
		width:     DefaultWidth,
		height:    DefaultHeight,
		sceneOpts: DefaultSceneOptions(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSnapshot replaces the journey being shown. A selected node that no longer
// exists is deselected.
func (c *Controller) SetSnapshot(j *domain.Journey) {
	c.snapshot = j
	id := c.selection.ID()
	if id == "" {
		return
	}
	if j != nil {
		if _, ok := j.Node(id); ok {
			return
		}
	}
	c.selection.Clear()
	c.logger.Debug("Selection dropped", "node_id", id)
	c.emit()
}

// Snapshot returns the journey being shown.
func (c *Controller) Snapshot() *domain.Journey { return c.snapshot }

// Viewport returns the current transform.
func (c *Controller) Viewport() Viewport { return c.viewport }

// SetViewport replaces the transform, clamping its scale.
func (c *Controller) SetViewport(v Viewport) {
	v = v.normalized()
	v.Scale = c.bounds.Clamp(v.Scale)
	c.viewport = v
}

// Wheel zooms about the pointer. deltaY > 0 zooms out.
func (c *Controller) Wheel(screen Point, deltaY float64) Viewport {
	return c.ZoomBy(screen, WheelFactor(deltaY))
}

// ZoomBy zooms by factor about a screen point.
func (c *Controller) ZoomBy(screen Point, factor float64) Viewport {
	c.viewport = c.viewport.ZoomAt(screen, factor, c.bounds)
	return c.viewport
}

// ZoomIn scales by 1.2 and leaves the translation alone, so the scene origin
// stays put.
func (c *Controller) ZoomIn() Viewport {
	return c.ZoomBy(c.origin(), ButtonZoomFactor)
}

// ZoomOut scales by 1/1.2 about the scene origin.
func (c *Controller) ZoomOut() Viewport {
	return c.ZoomBy(c.origin(), 1/ButtonZoomFactor)
}

// ResetView restores the identity transform.
func (c *Controller) ResetView() Viewport {
	c.viewport = Identity()
	c.pan.End()
	return c.viewport
}

// origin is where the scene origin sits on screen.
func (c *Controller) origin() Point {
	return Point{X: c.viewport.TranslateX, Y: c.viewport.TranslateY}
}

// Size returns the screen size renderers should draw at.
func (c *Controller) Size() (width, height float64) {
	return c.width, c.height
}

// PointerDown starts a pan when the pointer is over the background. It reports
// whether a pan started; a press on a node never pans.
func (c *Controller) PointerDown(screen Point) bool {
	if _, hit := HitTest(c.Scene(), screen); hit {
		return false
	}
	c.pan.Begin(screen, c.viewport)
	return true
}

// PointerMove updates an in-progress pan.
func (c *Controller) PointerMove(screen Point) (Viewport, bool) {
	v, ok := c.pan.Move(screen, c.viewport)
	if ok {
		c.viewport = v
	}
	return c.viewport, ok
}

// PointerUp ends a pan, wherever the pointer is.
func (c *Controller) PointerUp() { c.pan.End() }

// PointerLeave ends a pan when the pointer leaves the canvas.
func (c *Controller) PointerLeave() { c.pan.End() }

// Panning reports whether a pan is in progress.
func (c *Controller) Panning() bool { return c.pan.Active() }

// Click toggles the selection of the node under the pointer. Clicks on the
// background leave the selection alone.
func (c *Controller) Click(screen Point) (Hit, bool) {
	hit, ok := HitTest(c.Scene(), screen)
	if !ok {
		return Hit{}, false
	}
	c.selection.Toggle(hit.NodeID)
	c.emit()
	return hit, true
}

// Select selects a node by id. Unknown ids are ignored.
func (c *Controller) Select(nodeID string) bool {
	if c.snapshot == nil {
		return false
	}
	if _, ok := c.snapshot.Node(nodeID); !ok {
		return false
	}
	if c.selection.Set(nodeID) {
		c.emit()
	}
	return true
}

// ClearSelection deselects.
func (c *Controller) ClearSelection() {
	if c.selection.Clear() {
		c.emit()
	}
}

// Selected returns the selected node id, or "".
func (c *Controller) Selected() string { return c.selection.ID() }

// Scene builds the current frame.
func (c *Controller) Scene() Scene {
	return BuildScene(c.snapshot, c.viewport, c.selection.ID(), c.sceneOpts)
}

// Details resolves the selected node.
func (c *Controller) Details() (NodeDetails, bool) {
	id := c.selection.ID()
	if id == "" {
		return NodeDetails{}, false
	}
	return Describe(c.snapshot, id)
}

// Render draws the current frame with r.
func (c *Controller) Render(w io.Writer, r Renderer) error {
	return r.Render(w, c.Scene())
}

func (c *Controller) emit() {
	if c.sink == nil {
		return
	}
	var node *domain.Node
	if id := c.selection.ID(); id != "" && c.snapshot != nil {
		if n, ok := c.snapshot.Node(id); ok {
			node = &n
		}
	}
	c.sink.SelectionChanged(node)
}
