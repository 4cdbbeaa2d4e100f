package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
)

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p pointRequest) point() canvas.Point {
	return canvas.Point{X: p.X, Y: p.Y}
}

type zoomRequest struct {
	Action string `json:"action"`
}

type wheelRequest struct {
	pointRequest
	DeltaY float64 `json:"deltaY"`
}

type pointerRequest struct {
	pointRequest
	Kind string `json:"kind"`
}

type pointerResponse struct {
	Viewport canvas.Viewport `json:"viewport"`
	Panning  bool            `json:"panning"`
}

type selectRequest struct {
	NodeID string `json:"nodeId"`
}

type selectionResponse struct {
	Selected string              `json:"selected"`
	Hit      *canvas.Hit         `json:"hit,omitempty"`
	Details  *canvas.NodeDetails `json:"details,omitempty"`
}

func selection(c *canvas.Controller) selectionResponse {
	out := selectionResponse{Selected: c.Selected()}
	if d, ok := c.Details(); ok {
		out.Details = &d
	}
	return out
}

// withCanvas runs fn on the canvas of the open journey and answers with its result.
func (s *Server) withCanvas(w http.ResponseWriter, r *http.Request, fn func(c *canvas.Controller) (any, error)) {
	var out any
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = fn(sess.Canvas)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetScene handles the GET /journeys/{id}/canvas/scene request.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		s.metrics.ObserveSnapshot(c.Snapshot())
		return c.Scene(), nil
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, sink, contentType string, renderer canvas.Renderer) {
	var buf bytes.Buffer
	start := time.Now()
	if !s.withSession(w, r, func(sess *session.Session) error {
		return sess.Canvas.Render(&buf, renderer)
	}) {
		return
	}
	s.metrics.ObserveRender(sink, time.Since(start))
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

// RenderSVG handles the GET /journeys/{id}/canvas.svg request.
func (s *Server) RenderSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "svg", "image/svg+xml", s.svg)
}

// RenderPNG handles the GET /journeys/{id}/canvas.png request.
func (s *Server) RenderPNG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "png", "image/png", s.raster)
}

// RenderMermaid handles the GET /journeys/{id}/canvas.mmd request.
func (s *Server) RenderMermaid(w http.ResponseWriter, r *http.Request) {
	var out string
	start := time.Now()
	if !s.withSession(w, r, func(sess *session.Session) error {
		out = graph.GenerateMermaid(sess.Canvas.Snapshot(), &graph.GraphOverlay{SelectedNode: sess.Canvas.Selected()})
		return nil
	}) {
		return
	}
	s.metrics.ObserveRender("mermaid", time.Since(start))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out))
}

// GetViewport handles the GET /journeys/{id}/canvas/viewport request.
func (s *Server) GetViewport(w http.ResponseWriter, r *http.Request) {
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		return c.Viewport(), nil
	})
}

// SetViewport handles the PUT /journeys/{id}/canvas/viewport request. The scale is
// clamped to the zoom range.
func (s *Server) SetViewport(w http.ResponseWriter, r *http.Request) {
	var in canvas.Viewport
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		c.SetViewport(in)
		return c.Viewport(), nil
	})
}

// Zoom handles the POST /journeys/{id}/canvas/zoom request.
func (s *Server) Zoom(w http.ResponseWriter, r *http.Request) {
	var in zoomRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		switch in.Action {
		case "in":
			return c.ZoomIn(), nil
		case "out":
			return c.ZoomOut(), nil
		case "reset":
			return c.ResetView(), nil
		}
		return nil, fmt.Errorf("%w: zoom action %q", domain.ErrInvalidValue, in.Action)
	})
}

// Wheel handles the POST /journeys/{id}/canvas/wheel request.
func (s *Server) Wheel(w http.ResponseWriter, r *http.Request) {
	var in wheelRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		return c.Wheel(in.point(), in.DeltaY), nil
	})
}

// Pointer handles the POST /journeys/{id}/canvas/pointer request. A press only starts
// a pan over the background.
func (s *Server) Pointer(w http.ResponseWriter, r *http.Request) {
	var in pointerRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		switch in.Kind {
		case "down":
			c.PointerDown(in.point())
		case "move":
			c.PointerMove(in.point())
		case "up":
			c.PointerUp()
		case "leave":
			c.PointerLeave()
		default:
			return nil, fmt.Errorf("%w: pointer kind %q", domain.ErrInvalidValue, in.Kind)
		}
		return pointerResponse{Viewport: c.Viewport(), Panning: c.Panning()}, nil
	})
}

// Click handles the POST /journeys/{id}/canvas/click request.
func (s *Server) Click(w http.ResponseWriter, r *http.Request) {
	var in pointRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		hit, ok := c.Click(in.point())
		out := selection(c)
		if ok {
			out.Hit = &hit
		}
		return out, nil
	})
}

// GetSelection handles the GET /journeys/{id}/canvas/selection request.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		return selection(c), nil
	})
}

// Select handles the PUT /journeys/{id}/canvas/selection request.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var in selectRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.withCanvas(w, r, func(c *canvas.Controller) (any, error) {
		if !c.Select(in.NodeID) {
			return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, in.NodeID)
		}
		return selection(c), nil
	})
}

// ClearSelection handles the DELETE /journeys/{id}/canvas/selection request.
func (s *Server) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if !s.withSession(w, r, func(sess *session.Session) error {
		sess.Canvas.ClearSelection()
		return nil
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
