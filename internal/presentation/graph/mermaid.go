package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// GraphOverlay contains view state to visualize on the graph.
type GraphOverlay struct {
	SelectedNode string
	Highlighted  []string
}

// GenerateMermaid produces a Mermaid flowchart of a journey.
// It applies semantic styling:
// - Input: [/Parallelogram/]
// - Loader: [[Subroutine]]
// - Dead end: {{Hexagon}}
// - start/end placeholders: ((Circle))
// Edges follow the canvas rules: dead-end sources and dangling endpoints are skipped.
func GenerateMermaid(j *domain.Journey, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if j == nil {
		return sb.String()
	}

	mapped := make(map[string]bool, len(j.Mappings))
	for _, m := range j.Mappings {
		mapped[m.NodeID] = true
	}
	types := make(map[string]domain.NodeType, len(j.Nodes))

	for _, node := range j.Nodes {
		types[node.ID] = node.Type
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeInput:
			opener, closer = "[/", "/]"
		case domain.NodeTypeLoader:
			opener, closer = "[[", "]]"
		case domain.NodeTypeDeadEnd:
			opener, closer = "{{", "}}"
		}

		label := escapeLabel(node.Name)
		if mapped[node.ID] {
			label += " ƒ"
		}
		if n := len(node.Properties); n > 0 {
			label = fmt.Sprintf("%s <br/> %d props", label, n)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	placeholders := make(map[string]bool)
	for _, e := range j.Edges {
		fromType, fromOK := types[e.FromNodeID]
		_, toOK := types[e.ToNodeID]
		if e.IsPlaceholder() {
			fromOK, toOK = true, true
			placeholders[e.FromNodeID] = true
			placeholders[e.ToNodeID] = true
		}
		if !fromOK || !toOK || fromType == domain.NodeTypeDeadEnd {
			continue
		}

		arrow := "-->"
		if e.ValidationCondition != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.ValidationCondition))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.FromNodeID), arrow, sanitizeMermaidID(e.ToNodeID)))
	}
	for _, marker := range []string{domain.StartMarker, domain.EndMarker} {
		if placeholders[marker] {
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", sanitizeMermaidID(marker), marker))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds.
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#3B82F6,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlighted {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlighted;\n", safeID))
			}
		}
		if overlay.SelectedNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.SelectedNode)))
		}
	}

	return sb.String()
}

// escapeLabel swaps double quotes for single ones so labels stay quoted.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
