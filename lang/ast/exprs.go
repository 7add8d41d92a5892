package ast

import (
	"fmt"

	"github.com/aalyth/chalcedony/lang/token"
)

type (
	// IntLit is a signed integer literal, e.g. 42.
	IntLit struct {
		Start token.Pos
		Raw   string
		Value int64
	}

	// UintLit is an unsigned integer literal, e.g. 42u.
	UintLit struct {
		Start token.Pos
		Raw   string
		Value uint64
	}

	// FloatLit is a floating point literal, e.g. 4.2.
	FloatLit struct {
		Start token.Pos
		Raw   string
		Value float64
	}

	// StrLit is a string literal.
	StrLit struct {
		Start token.Pos
		Raw   string
		Value string
	}

	// BoolLit is a true/false literal.
	BoolLit struct {
		Start token.Pos
		Value bool
	}

	// VarCall references a variable by name (local, argument or global).
	VarCall struct {
		Start token.Pos
		Name  string
	}

	// FuncCall is a function or method invocation.
	FuncCall struct {
		Start  token.Pos
		Name   string
		Args   []Expr
		Rparen token.Pos
	}

	// BinOpr is a binary operator expression.
	BinOpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// UnaryOpr is a unary operator expression (- or !).
	UnaryOpr struct {
		Op      token.Token
		OpPos   token.Pos
		Operand Expr
	}

	// ListLit is a list literal, e.g. [1, 2, 3].
	ListLit struct {
		Lbrack   token.Pos
		Elements []Expr
		Rbrack   token.Pos
	}

	// AttrElem is one link in an AttrRes chain: either a VarCall or a
	// FuncCall, resolved against the previous element's type.
	AttrElem interface {
		Expr
		attrElem()
	}

	// AttrRes is a dotted attribute/method resolution chain, e.g. a.b.c().
	AttrRes struct {
		Chain []AttrElem
	}

	// BadExpr is a placeholder for an expression that failed to parse.
	BadExpr struct {
		Start, End token.Pos
	}
)

func (n *IntLit) Format(f fmt.State, verb rune)  { format(f, verb, n, "int "+n.Raw, nil) }
func (n *IntLit) Span() (token.Pos, token.Pos)   { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *IntLit) Walk(Visitor)                   {}
func (n *IntLit) expr()                          {}

func (n *UintLit) Format(f fmt.State, verb rune) { format(f, verb, n, "uint "+n.Raw, nil) }
func (n *UintLit) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *UintLit) Walk(Visitor)                  {}
func (n *UintLit) expr()                         {}

func (n *FloatLit) Format(f fmt.State, verb rune) { format(f, verb, n, "float "+n.Raw, nil) }
func (n *FloatLit) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *FloatLit) Walk(Visitor)                  {}
func (n *FloatLit) expr()                         {}

func (n *StrLit) Format(f fmt.State, verb rune) { format(f, verb, n, "str "+n.Raw, nil) }
func (n *StrLit) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Raw)) }
func (n *StrLit) Walk(Visitor)                  {}
func (n *StrLit) expr()                         {}

func (n *BoolLit) Format(f fmt.State, verb rune) {
	lbl := "false"
	if n.Value {
		lbl = "true"
	}
	format(f, verb, n, lbl, nil)
}
func (n *BoolLit) Span() (token.Pos, token.Pos) { return n.Start, n.Start + 4 }
func (n *BoolLit) Walk(Visitor)                 {}
func (n *BoolLit) expr()                        {}

func (n *VarCall) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *VarCall) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + token.Pos(len(n.Name)) }
func (n *VarCall) Walk(Visitor)                  {}
func (n *VarCall) expr()                         {}
func (n *VarCall) attrElem()                     {}

func (n *FuncCall) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Name+"(...)", map[string]int{"args": len(n.Args)})
}
func (n *FuncCall) Span() (token.Pos, token.Pos) {
	if n.Rparen.IsValid() {
		return n.Start, n.Rparen + 1
	}
	return n.Start, n.Start + token.Pos(len(n.Name))
}
func (n *FuncCall) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *FuncCall) expr()     {}
func (n *FuncCall) attrElem() {}

func (n *BinOpr) Format(f fmt.State, verb rune) { format(f, verb, n, "binary "+n.Op.GoString(), nil) }
func (n *BinOpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinOpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinOpr) expr() {}

func (n *UnaryOpr) Format(f fmt.State, verb rune) { format(f, verb, n, "unary "+n.Op.GoString(), nil) }
func (n *UnaryOpr) Span() (start, end token.Pos) {
	_, end = n.Operand.Span()
	return n.OpPos, end
}
func (n *UnaryOpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (n *UnaryOpr) expr()          {}

func (n *ListLit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "list", map[string]int{"elements": len(n.Elements)})
}
func (n *ListLit) Span() (token.Pos, token.Pos) { return n.Lbrack, n.Rbrack + 1 }
func (n *ListLit) Walk(v Visitor) {
	for _, e := range n.Elements {
		Walk(v, e)
	}
}
func (n *ListLit) expr() {}

func (n *AttrRes) Format(f fmt.State, verb rune) {
	format(f, verb, n, "attr-res", map[string]int{"links": len(n.Chain)})
}
func (n *AttrRes) Span() (start, end token.Pos) {
	start, _ = n.Chain[0].Span()
	_, end = n.Chain[len(n.Chain)-1].Span()
	return start, end
}
func (n *AttrRes) Walk(v Visitor) {
	for _, e := range n.Chain {
		Walk(v, e)
	}
}
func (n *AttrRes) expr() {}

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() (token.Pos, token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(Visitor)                  {}
func (n *BadExpr) expr()                         {}
