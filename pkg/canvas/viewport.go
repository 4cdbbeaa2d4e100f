package canvas

// Zoom defaults.
const (
	DefaultMinScale  = 0.1
	DefaultMaxScale  = 3.0
	WheelZoomIn      = 1.1
	WheelZoomOut     = 0.9
	ButtonZoomFactor = 1.2
)

// ScaleBounds clamps the viewport scale.
type ScaleBounds struct {
	Min float64 `json:"min" yaml:"min" toml:"min"`
	Max float64 `json:"max" yaml:"max" toml:"max"`
}

// DefaultScaleBounds is [0.1, 3.0].
func DefaultScaleBounds() ScaleBounds {
	return ScaleBounds{Min: DefaultMinScale, Max: DefaultMaxScale}
}

// Clamp limits s to the bounds.
func (b ScaleBounds) Clamp(s float64) float64 {
	if s < b.Min {
		return b.Min
	}
	if s > b.Max {
		return b.Max
	}
	return s
}

// Viewport is the affine scene→screen transform.
type Viewport struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Identity returns {0, 0, 1}.
func Identity() Viewport {
	return Viewport{Scale: 1}
}

func (v Viewport) normalized() Viewport {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	return v
}

// ToScreen maps a scene point to the screen.
func (v Viewport) ToScreen(p Point) Point {
	v = v.normalized()
	return Point{X: p.X*v.Scale + v.TranslateX, Y: p.Y*v.Scale + v.TranslateY}
}

// ToScene maps a screen point back into the scene.
func (v Viewport) ToScene(p Point) Point {
	v = v.normalized()
	return Point{X: (p.X - v.TranslateX) / v.Scale, Y: (p.Y - v.TranslateY) / v.Scale}
}

// ZoomAt scales by factor, clamped to b, keeping the scene point under screen fixed.
func (v Viewport) ZoomAt(screen Point, factor float64, b ScaleBounds) Viewport {
	v = v.normalized()
	newScale := b.Clamp(v.Scale * factor)
	ratio := newScale / v.Scale
	return Viewport{
		TranslateX: screen.X - (screen.X-v.TranslateX)*ratio,
		TranslateY: screen.Y - (screen.Y-v.TranslateY)*ratio,
		Scale:      newScale,
	}
}

// Translated returns v moved by d screen units.
func (v Viewport) Translated(d Point) Viewport {
	v.TranslateX += d.X
	v.TranslateY += d.Y
	return v
}

// WheelFactor maps a wheel delta to a zoom factor: scrolling down zooms out.
func WheelFactor(deltaY float64) float64 {
	if deltaY > 0 {
		return WheelZoomOut
	}
	return WheelZoomIn
}
