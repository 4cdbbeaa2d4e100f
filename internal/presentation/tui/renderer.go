package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// JourneyMarkdown summarizes a journey for the terminal.
func JourneyMarkdown(j *domain.Journey) string {
	var sb strings.Builder
	name := j.Name
	if name == "" {
		name = "(unnamed journey)"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if j.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", j.Description)
	}
	fmt.Fprintf(&sb, "**Status:** %s · **Updated:** %s\n\n", j.Status(), j.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(j.Properties) > 0 {
		sb.WriteString("## Properties\n\n| Key | Type | Condition |\n|---|---|---|\n")
		for _, p := range j.Properties {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", p.Key, p.Type, cell(p.ValidationCondition))
		}
		sb.WriteString("\n")
	}

	if len(j.Nodes) > 0 {
		notes := canvas.Annotate(j)
		sb.WriteString("## Nodes\n\n| Name | Type | Props | Functions |\n|---|---|---|---|\n")
		for _, n := range j.Nodes {
			fns := "-"
			if d, ok := canvas.Describe(j, n.ID); ok && len(d.Functions) > 0 {
				names := make([]string, len(d.Functions))
				for i, bf := range d.Functions {
					names[i] = bf.Function.Name
				}
				fns = strings.Join(names, ", ")
			}
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", cell(n.Name), n.Type, notes[n.ID].PropertyCount, cell(fns))
		}
		sb.WriteString("\n")
	}

	if len(j.Functions) > 0 {
		sb.WriteString("## Functions\n\n")
		for _, f := range j.Functions {
			fmt.Fprintf(&sb, "- **%s** (%s)", f.Name, f.Type)
			if f.Type == domain.FunctionAPI && f.Config.Method != "" {
				fmt.Fprintf(&sb, " `%s %s%s`", f.Config.Method, f.Config.Host, f.Config.Path)
			}
			if keys := f.InputProperties.Keys(); len(keys) > 0 {
				fmt.Fprintf(&sb, " in: %s", strings.Join(keys, ", "))
			}
			if keys := f.OutputProperties.Keys(); len(keys) > 0 {
				fmt.Fprintf(&sb, " out: %s", strings.Join(keys, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(j.Edges) > 0 {
		sb.WriteString("## Edges\n\n")
		for _, e := range j.Edges {
			fmt.Fprintf(&sb, "- %s → %s", nodeName(j, e.FromNodeID), nodeName(j, e.ToNodeID))
			if e.ValidationCondition != "" {
				fmt.Fprintf(&sb, " when `%s`", e.ValidationCondition)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func nodeName(j *domain.Journey, id string) string {
	if n, ok := j.Node(id); ok {
		return n.Name
	}
	return id
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
