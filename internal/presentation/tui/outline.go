package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/heimer/pkg/domain"
)

// Outline renders the mind map as a markdown bullet tree.
// Trees start at nodes without incoming edges; nodes only reachable through a
// cycle start their own tree. A node reached twice is listed once more as a reference.
func Outline(m domain.MindMap, title string) string {
	children := make(map[domain.NodeID][]domain.Edge)
	incoming := make(map[domain.NodeID]bool)
	for _, e := range m.Edges {
		children[e.Source] = append(children[e.Source], e)
		incoming[e.Target] = true
	}
	for id := range children {
		sort.Slice(children[id], func(i, j int) bool { return children[id][i].Target < children[id][j].Target })
	}

	nodes := append([]domain.Node(nil), m.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(nodes) == 0 {
		sb.WriteString("_empty mind map_\n")
		return sb.String()
	}

	seen := make(map[domain.NodeID]bool)
	var walk func(id domain.NodeID, depth int, via string)
	walk = func(id domain.NodeID, depth int, via string) {
		n, _ := m.Node(id)
		indent := strings.Repeat("  ", depth)
		label := label(n)
		if via != "" {
			label = fmt.Sprintf("_%s_ → %s", escape(via), label)
		}
		if seen[id] {
			fmt.Fprintf(&sb, "%s- %s ↩\n", indent, label)
			return
		}
		seen[id] = true
		fmt.Fprintf(&sb, "%s- %s\n", indent, label)
		for _, e := range children[id] {
			walk(e.Target, depth+1, e.Text)
		}
	}

	for _, n := range nodes {
		if !incoming[n.ID] {
			walk(n.ID, 0, "")
		}
	}
	for _, n := range nodes {
		if !seen[n.ID] {
			walk(n.ID, 0, "")
		}
	}
	return sb.String()
}

func label(n domain.Node) string {
	text := strings.TrimSpace(n.Text)
	if text == "" {
		text = "_(empty)_"
	} else {
		text = escape(strings.Join(strings.Fields(text), " "))
	}
	return fmt.Sprintf("%s `#%d`", text, n.ID)
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\", "*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[", "]", "\\]", "#", "\\#",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
