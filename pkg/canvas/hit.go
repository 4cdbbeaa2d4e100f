package canvas

// HitPart says which part of a node was hit.
type HitPart string

const (
	HitCircle        HitPart = "circle"
	HitLabel         HitPart = "label"
	HitBadge         HitPart = "badge"
	HitPropertyLabel HitPart = "property_label"
)

// Hit is the result of a successful HitTest.
type Hit struct {
	NodeID string  `json:"node_id"`
	Part   HitPart `json:"part"`
}

// HitTest finds the topmost node under a screen point. Nodes are drawn in order, so
// later nodes win.
func HitTest(s Scene, screen Point) (Hit, bool) {
	p := s.Viewport.ToScene(screen)
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		n := s.Nodes[i]
		if n.Badge != nil && p.Sub(n.Badge.Center).Len() <= n.Badge.Radius {
			return Hit{NodeID: n.NodeID, Part: HitBadge}, true
		}
		if p.Sub(n.Center).Len() <= n.Radius {
			return Hit{NodeID: n.NodeID, Part: HitCircle}, true
		}
		if inBox(p, n.Label) {
			return Hit{NodeID: n.NodeID, Part: HitLabel}, true
		}
		if n.PropertyLabel != nil && inBox(p, *n.PropertyLabel) {
			return Hit{NodeID: n.NodeID, Part: HitPropertyLabel}, true
		}
	}
	return Hit{}, false
}

func inBox(p Point, t Text) bool {
	if t.Value == "" {
		return false
	}
	lo, hi := t.Box()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// Selection holds at most one selected node id. The zero value selects nothing.
type Selection struct {
	nodeID string
}

// ID returns the selected node id, or "".
func (s Selection) ID() string { return s.nodeID }

// Toggle selects id, or clears the selection when id is already selected.
// It returns the new selected id.
func (s *Selection) Toggle(id string) string {
	if s.nodeID == id {
		s.nodeID = ""
	} else {
		s.nodeID = id
	}
	return s.nodeID
}

// Set replaces the selection. It reports whether anything changed.
func (s *Selection) Set(id string) bool {
	if s.nodeID == id {
		return false
	}
	s.nodeID = id
	return true
}

// Clear drops the selection. It reports whether anything was selected.
func (s *Selection) Clear() bool {
	return s.Set("")
}
