// Package raster renders canvas scenes to PNG using gg with the embedded Go Mono font.
package raster

import (
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Renderer paints a Scene into a width×height PNG.
type Renderer struct {
	Width  int
	Height int

	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

// New parses the font and returns a Renderer. Non-positive sizes fall back to 800×600.
func New(width, height int) (*Renderer, error) {
	if width <= 0 {
		width = canvas.DefaultWidth
	}
	if height <= 0 {
		height = canvas.DefaultHeight
	}
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{Width: width, Height: height, font: f, faces: make(map[float64]font.Face)}, nil
}

var _ canvas.Renderer = (*Renderer)(nil)

// Render encodes the scene as PNG into w.
func (r *Renderer) Render(w io.Writer, s canvas.Scene) error {
	dc := gg.NewContext(r.Width, r.Height)
	if s.Background != "" {
		dc.SetHexColor(s.Background)
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.Clear()

	v := s.Viewport
	dc.Push()
	dc.Translate(v.TranslateX, v.TranslateY)
	dc.Scale(v.Scale, v.Scale)

	for _, e := range s.Edges {
		dc.SetHexColor(e.Stroke)
		dc.SetLineWidth(2)
		dc.DrawLine(e.Start.X, e.Start.Y, e.End.X, e.End.Y)
		dc.Stroke()

		dc.MoveTo(e.Arrow[0].X, e.Arrow[0].Y)
		dc.LineTo(e.Arrow[1].X, e.Arrow[1].Y)
		dc.LineTo(e.Arrow[2].X, e.Arrow[2].Y)
		dc.ClosePath()
		dc.Fill()

		if e.Label != nil {
			r.drawText(dc, *e.Label)
		}
	}

	for _, n := range s.Nodes {
		dc.DrawCircle(n.Center.X, n.Center.Y, n.Radius)
		dc.SetHexColor(n.Fill)
		dc.FillPreserve()
		dc.SetHexColor(n.Stroke)
		dc.SetLineWidth(n.StrokeWidth)
		dc.Stroke()

		r.drawText(dc, n.Label)
		if n.PropertyLabel != nil {
			r.drawText(dc, *n.PropertyLabel)
		}
		if b := n.Badge; b != nil {
			dc.DrawCircle(b.Center.X, b.Center.Y, b.Radius)
			dc.SetHexColor(b.Fill)
			dc.Fill()
			r.drawText(dc, b.Glyph)
		}
	}
	dc.Pop()

	return dc.EncodePNG(w)
}

func (r *Renderer) drawText(dc *gg.Context, t canvas.Text) {
	if t.Value == "" {
		return
	}
	dc.SetFontFace(r.face(t.Size))
	dc.SetHexColor(t.Color)
	dc.DrawStringAnchored(t.Value, t.At.X, t.At.Y, 0.5, 0)
}

func (r *Renderer) face(size float64) font.Face {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[size] = f
	return f
}
