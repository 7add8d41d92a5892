// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the compiler. Every node carries a span for diagnostics.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aalyth/chalcedony/lang/token"
)

// Node is implemented by every AST node.
type Node interface {
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk visits the node's direct children with v.
	Walk(v Visitor)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement must be the last one in its
	// block (return, break, continue, throw).
	BlockEnding() bool
}

// Type describes a static type annotation as written in source: a bare
// name ("Int", "Str", a class name, ...) or a "List" wrapping an Elem.
type Type struct {
	Name  string // "Int", "Uint", "Float", "Str", "Bool", "Void", "Any", "List", or a class name
	Elem  *Type  // non-nil only when Name == "List"
	Start token.Pos
}

func (t *Type) String() string {
	if t == nil {
		return "Any"
	}
	if t.Name == "List" {
		return "List<" + t.Elem.String() + ">"
	}
	return t.Name
}

// Param is a single (name, type) function argument declaration.
type Param struct {
	Name  string
	Type  *Type
	Start token.Pos
}

// Chunk is the root node of a parsed file: an ordered sequence of top-level
// declarations (functions, classes, global variable definitions).
type Chunk struct {
	Name  string // source filename
	Decls []Stmt
	EOF   token.Pos
}

func (n *Chunk) Format(f fmt.State, verb rune) { format(f, verb, n, "chunk", map[string]int{"decls": len(n.Decls)}) }
func (n *Chunk) Span() (start, end token.Pos) {
	if len(n.Decls) == 0 {
		return n.EOF, n.EOF
	}
	start, _ = n.Decls[0].Span()
	return start, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Block is a sequence of statements delimited by indentation in the source.
type Block struct {
	Start token.Pos
	End   token.Pos
	Stmts []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) { format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)}) }
func (n *Block) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}
	label = strings.ReplaceAll(label, "\n", "⏎")
	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
