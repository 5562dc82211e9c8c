package graph

import (
	"fmt"
	"strings"
)

// Graphviz renders the current generation as a dot digraph: every node once,
// labelled with type, id, shape and trainable flag, plus one edge per child
// link. Parameters and constants are colored for quick orientation.
func (g *Graph) Graphviz() string {
	var sb strings.Builder
	sb.WriteString("digraph ExpressionGraph {\n")
	sb.WriteString("  rankdir=BT\n")

	for _, v := range g.nodes {
		label := fmt.Sprintf("%s%d\\n%s", v.Type(), v.ID(), v.Shape())
		if v.Name() != NameNone {
			label += "\\n" + v.Name()
		}
		if !v.Trainable() {
			label += "\\nfixed"
		}

		attrs := fmt.Sprintf("label=%q", label)
		switch v.Type() {
		case "param":
			attrs += ", style=filled, fillcolor=lightblue"
		case "const":
			attrs += ", style=filled, fillcolor=orange"
		case "input":
			attrs += ", style=filled, fillcolor=palegreen"
		}
		fmt.Fprintf(&sb, "  n%d [%s]\n", v.ID(), attrs)

		for _, child := range v.Children() {
			fmt.Fprintf(&sb, "  n%d -> n%d\n", child.ID(), v.ID())
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
