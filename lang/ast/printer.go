package ast

import (
	"fmt"
	"io"
)

// Print writes an indented textual dump of node to w, one line per node,
// suitable for the CLI's "parse" subcommand and for golden-file tests.
func Print(w io.Writer, node Node) {
	depth := 0
	var visit VisitorFunc
	visit = func(n Node, dir VisitDirection) Visitor {
		if dir == VisitExit {
			depth--
			return nil
		}
		fmt.Fprintf(w, "%*s%v\n", depth*2, "", n)
		depth++
		return visit
	}
	Walk(visit, node)
}
