package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Lint rule names.
const (
	RuleNoEntry        = "no-entry"
	RuleUnreachable    = "unreachable"
	RuleDeadEndExit    = "dead-end-exit"
	RuleUnmappedLoader = "unmapped-loader"
	RuleUnknownBinding = "unknown-binding"
)

// Warning is a lint finding. Warnings never block edits.
type Warning struct {
	Rule    string `json:"rule"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Subject == "" {
		return fmt.Sprintf("[%s] %s", w.Rule, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Rule, w.Subject, w.Message)
}

// Report is the outcome of Validate.
type Report struct {
	Violations []domain.Violation `json:"violations"`
	Warnings   []Warning          `json:"warnings"`
}

// Err joins the violations, or returns nil when the journey is consistent.
func (r Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v
	}
	return fmt.Errorf("found %d errors: %w", len(r.Violations), errors.Join(errs...))
}

// Validate runs the integrity check and the lint rules.
func Validate(j *domain.Journey) Report {
	return Report{
		Violations: domain.Check(j),
		Warnings:   Audit(j),
	}
}

// Audit lints a journey.
func Audit(j *domain.Journey) []Warning {
	warnings := []Warning{}
	if j == nil || len(j.Nodes) == 0 {
		return warnings
	}

	byID := make(map[string]domain.Node, len(j.Nodes))
	for _, n := range j.Nodes {
		byID[n.ID] = n
	}
	outgoing := make(map[string][]string)
	for _, e := range j.Edges {
		outgoing[e.FromNodeID] = append(outgoing[e.FromNodeID], e.ToNodeID)
	}

	// Crawl from every input node.
	var queue []string
	for _, n := range j.Nodes {
		if n.Type == domain.NodeTypeInput {
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 {
		warnings = append(warnings, Warning{Rule: RuleNoEntry, Message: "journey has no input node"})
	} else {
		visited := make(map[string]bool)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if visited[current] {
				continue
			}
			visited[current] = true
			if byID[current].Type == domain.NodeTypeDeadEnd {
				continue
			}
			for _, next := range outgoing[current] {
				if _, ok := byID[next]; ok && !visited[next] {
					queue = append(queue, next)
				}
			}
		}
		for _, n := range j.Nodes {
			if !visited[n.ID] {
				warnings = append(warnings, Warning{Rule: RuleUnreachable, Subject: n.Name, Message: "not reachable from any input node"})
			}
		}
	}

	mapped := make(map[string]bool, len(j.Mappings))
	for _, m := range j.Mappings {
		mapped[m.NodeID] = true
	}
	for _, n := range j.Nodes {
		switch n.Type {
		case domain.NodeTypeDeadEnd:
			if k := len(outgoing[n.ID]); k > 0 {
				warnings = append(warnings, Warning{Rule: RuleDeadEndExit, Subject: n.Name, Message: fmt.Sprintf("%d outgoing edge(s) are never followed", k)})
			}
		case domain.NodeTypeLoader:
			if !mapped[n.ID] {
				warnings = append(warnings, Warning{Rule: RuleUnmappedLoader, Subject: n.Name, Message: "loader invokes no function"})
			}
		}
	}

	keys := make(map[string]bool, len(j.Properties))
	for _, p := range j.Properties {
		keys[p.Key] = true
	}
	for _, m := range j.Mappings {
		subject := m.Name
		if subject == "" {
			subject = m.ID
		}
		for _, vm := range m.VariableMappings {
			// INPUT reads a journey property, OUTPUT writes one.
			name := vm.SourceVariableName
			if vm.MappingType == domain.MappingOutput {
				name = vm.TargetParameterName
			}
			if name != "" && !keys[name] {
				warnings = append(warnings, Warning{
					Rule:    RuleUnknownBinding,
					Subject: subject,
					Message: fmt.Sprintf("%s %q names no journey property", strings.ToLower(string(vm.MappingType)), name),
				})
			}
		}
	}
	return warnings
}
