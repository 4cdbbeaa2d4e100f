package canvas

// Pan tracks a drag that moves the viewport. The zero value is idle.
type Pan struct {
	active         bool
	startPointer   Point
	startTranslate Point
}

// Begin records the pointer and the viewport translation at pointer-down.
func (p *Pan) Begin(pointer Point, v Viewport) {
	p.active = true
	p.startPointer = pointer
	p.startTranslate = Point{X: v.TranslateX, Y: v.TranslateY}
}

// Move returns v translated to startTranslate + (pointer − startPointer). The scale
// is taken from v, so zooms that happen mid-drag are kept. It reports false when no
// pan is in progress.
func (p *Pan) Move(pointer Point, v Viewport) (Viewport, bool) {
	if !p.active {
		return v, false
	}
	d := pointer.Sub(p.startPointer)
	v.TranslateX = p.startTranslate.X + d.X
	v.TranslateY = p.startTranslate.Y + d.Y
	return v, true
}

// End stops the pan. Safe to call when idle.
func (p *Pan) End() {
	p.active = false
}

// Active reports whether a pan is in progress.
func (p *Pan) Active() bool {
	return p.active
}
