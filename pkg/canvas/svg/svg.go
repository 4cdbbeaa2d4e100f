// Package svg renders canvas scenes as standalone SVG documents.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/waypoint/pkg/canvas"
)

// Renderer writes a Scene as SVG. The viewport becomes the transform of the root group.
type Renderer struct {
	Width  int
	Height int
}

// New returns a Renderer for a width×height document. Non-positive sizes fall back to
// 800×600.
func New(width, height int) *Renderer {
	if width <= 0 {
		width = canvas.DefaultWidth
	}
	if height <= 0 {
		height = canvas.DefaultHeight
	}
	return &Renderer{Width: width, Height: height}
}

var _ canvas.Renderer = (*Renderer)(nil)

// Render writes the document to w.
func (r *Renderer) Render(w io.Writer, s canvas.Scene) error {
	var sb strings.Builder
	v := s.Viewport

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		r.Width, r.Height, r.Width, r.Height)
	if s.Background != "" {
		fmt.Fprintf(&sb, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(s.Background))
	}
	fmt.Fprintf(&sb, `  <g transform="translate(%s %s) scale(%s)">`+"\n", num(v.TranslateX), num(v.TranslateY), num(v.Scale))

	// Edges first so nodes cover their ends.
	for _, e := range s.Edges {
		fmt.Fprintf(&sb, `    <g class="edge" data-edge-id="%s">`+"\n", attr(e.EdgeID))
		fmt.Fprintf(&sb, `      <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2"/>`+"\n",
			num(e.Start.X), num(e.Start.Y), num(e.End.X), num(e.End.Y), attr(e.Stroke))
		fmt.Fprintf(&sb, `      <polygon points="%s" fill="%s"/>`+"\n", points(e.Arrow[:]), attr(e.Stroke))
		if e.Label != nil {
			writeText(&sb, "      ", *e.Label, "middle")
		}
		sb.WriteString("    </g>\n")
	}

	for _, n := range s.Nodes {
		class := "node"
		if n.Selected {
			class += " selected"
		}
		fmt.Fprintf(&sb, `    <g class="%s" data-node-id="%s" data-node-type="%s">`+"\n", class, attr(n.NodeID), attr(string(n.Type)))
		fmt.Fprintf(&sb, `      <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(n.Center.X), num(n.Center.Y), num(n.Radius), attr(n.Fill), attr(n.Stroke), num(n.StrokeWidth))
		writeText(&sb, "      ", n.Label, "middle")
		if n.PropertyLabel != nil {
			writeText(&sb, "      ", *n.PropertyLabel, "middle")
		}
		if b := n.Badge; b != nil {
			fmt.Fprintf(&sb, `      <circle class="badge" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
				num(b.Center.X), num(b.Center.Y), num(b.Radius), attr(b.Fill))
			writeText(&sb, "      ", b.Glyph, "middle")
		}
		sb.WriteString("    </g>\n")
	}

	sb.WriteString("  </g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeText(sb *strings.Builder, indent string, t canvas.Text, anchor string) {
	fmt.Fprintf(sb, `%s<text x="%s" y="%s" font-size="%s" fill="%s" text-anchor="%s">%s</text>`+"\n",
		indent, num(t.At.X), num(t.At.Y), num(t.Size), attr(t.Color), anchor, escape(t.Value))
}

func points(ps []canvas.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// num formats with the fewest digits that round-trip, so output is stable.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func attr(s string) string {
	return escape(s)
}
