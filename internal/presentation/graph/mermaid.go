package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/heimer/pkg/domain"
)

// Overlay contains editor state to highlight on the graph.
type Overlay struct {
	Selected    domain.NodeID
	HasSelected bool
}

// GenerateMermaid produces a Mermaid flowchart of the mind map.
// Shapes:
// - Root (no incoming edge): ((Circle))
// - Leaf (no outgoing edge): (Rounded)
// - Default: [Rectangle]
// Node fill colors are carried over as styles. Edge texts become arrow labels.
func GenerateMermaid(m domain.MindMap, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	incoming := make(map[domain.NodeID]bool)
	outgoing := make(map[domain.NodeID]bool)
	for _, e := range m.Edges {
		incoming[e.Target] = true
		outgoing[e.Source] = true
	}

	for _, n := range m.Nodes {
		opener, closer := "[", "]"
		switch {
		case !incoming[n.ID]:
			opener, closer = "((", "))"
		case !outgoing[n.ID]:
			opener, closer = "(", ")"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, escapeLabel(n.Text), closer)
	}

	for _, e := range m.Edges {
		arrow := "-->"
		if e.Text != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.Text))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.Source), arrow, mermaidID(e.Target))
	}

	defaultColor := domain.DefaultNodeColor
	for _, n := range m.Nodes {
		if n.Color != defaultColor && n.Color != (domain.Color{}) {
			fmt.Fprintf(&sb, "    style %s fill:%s,color:%s\n", mermaidID(n.ID), rgb(n.Color), rgb(n.TextColor))
		}
	}

	if overlay != nil && overlay.HasSelected {
		if _, ok := m.Node(overlay.Selected); ok {
			sb.WriteString("\n    %% Selection\n")
			sb.WriteString("    classDef selected stroke:#fbc02d,stroke-width:4px;\n")
			fmt.Fprintf(&sb, "    class %s selected;\n", mermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func mermaidID(id domain.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

// escapeLabel keeps labels on one line and free of double quotes.
func escapeLabel(s string) string {
	if strings.TrimSpace(s) == "" {
		return " "
	}
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\r\n", "<br/>")
	return strings.ReplaceAll(s, "\n", "<br/>")
}

// rgb drops the alpha channel, which Mermaid styles do not take.
func rgb(c domain.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
