package ast

import (
	"fmt"

	"github.com/aalyth/chalcedony/lang/token"
)

type (
	// VarDef declares a variable (global if at chunk scope, local inside a
	// function body): let/const name [: Type] = value.
	VarDef struct {
		Start   token.Pos
		Name    string
		Type    *Type // nil means inferred/Any
		IsConst bool
		Value   Expr
	}

	// FuncDef declares a function or a method (when Namespace != "").
	FuncDef struct {
		Start     token.Pos
		Name      string
		IsUnsafe  bool // trailing '!' in the name
		Namespace string
		Args      []Param
		RetType   *Type
		Body      *Block
		End       token.Pos
	}

	// ClassDef declares a class: its members and methods.
	ClassDef struct {
		Start   token.Pos
		Name    string
		Members []Param
		Methods []*FuncDef
		End     token.Pos
	}

	// ExprStmt is an expression used as a statement; only a FuncCall or an
	// AttrRes ending in a FuncCall is valid here.
	ExprStmt struct {
		X Expr
	}

	// Assign is an assignment statement: lhs op rhs, where op is one of
	// =, +=, -=, *=, /=, %=.
	Assign struct {
		Lhs Expr // *VarCall or *AttrRes
		Op  token.Token
		Pos token.Pos
		Rhs Expr
	}

	// IfStmt is an if/elif/else chain.
	IfStmt struct {
		Start    token.Pos
		Cond     Expr
		Body     *Block
		Elifs    []*ElifBranch
		Else     *Block // nil if no else
		EndStart token.Pos
	}

	// ElifBranch is one elif arm of an IfStmt.
	ElifBranch struct {
		Start token.Pos
		Cond  Expr
		Body  *Block
	}

	// WhileLoop is a while loop.
	WhileLoop struct {
		Start token.Pos
		Cond  Expr
		Body  *Block
		End   token.Pos
	}

	// ForLoop is a for-in loop, desugared by the compiler into index-based
	// iteration over a List.
	ForLoop struct {
		Start    token.Pos
		IterName string
		Iterable Expr
		Body     *Block
		End      token.Pos
	}

	// RetStmt is a return statement, possibly with no value (Void functions).
	RetStmt struct {
		Start token.Pos
		Value Expr // nil for a bare `return`
	}

	// BreakStmt exits the innermost loop.
	BreakStmt struct {
		Start token.Pos
	}

	// ContStmt continues the innermost loop.
	ContStmt struct {
		Start token.Pos
	}

	// TryCatch is a try/catch block.
	TryCatch struct {
		Start        token.Pos
		TryBody      *Block
		ExceptionVar string
		CatchBody    *Block
		End          token.Pos
	}

	// Throw raises a string expression as an exception.
	Throw struct {
		Start token.Pos
		Value Expr
	}

	// BadStmt is a placeholder for a statement that failed to parse.
	BadStmt struct {
		Start, End token.Pos
	}
)

func (n *VarDef) Format(f fmt.State, verb rune) {
	lbl := "let " + n.Name
	if n.IsConst {
		lbl = "const " + n.Name
	}
	format(f, verb, n, lbl, nil)
}
func (n *VarDef) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.Start, end
}
func (n *VarDef) Walk(v Visitor)  { Walk(v, n.Value) }
func (n *VarDef) BlockEnding() bool { return false }

func (n *FuncDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn "+n.Name, map[string]int{"args": len(n.Args)})
}
func (n *FuncDef) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *FuncDef) Walk(v Visitor)               { Walk(v, n.Body) }
func (n *FuncDef) BlockEnding() bool             { return false }

func (n *ClassDef) Format(f fmt.State, verb rune) {
	format(f, verb, n, "class "+n.Name, map[string]int{"members": len(n.Members), "methods": len(n.Methods)})
}
func (n *ClassDef) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *ClassDef) Walk(v Visitor) {
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *ClassDef) BlockEnding() bool { return false }

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (token.Pos, token.Pos)  { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ExprStmt) BlockEnding() bool             { return false }

func (n *Assign) Format(f fmt.State, verb rune) { format(f, verb, n, "assign "+n.Op.GoString(), nil) }
func (n *Assign) Span() (start, end token.Pos) {
	start, _ = n.Lhs.Span()
	_, end = n.Rhs.Span()
	return start, end
}
func (n *Assign) Walk(v Visitor) {
	Walk(v, n.Lhs)
	Walk(v, n.Rhs)
}
func (n *Assign) BlockEnding() bool { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "if", map[string]int{"elifs": len(n.Elifs)})
}
func (n *IfStmt) Span() (token.Pos, token.Pos) { return n.Start, n.EndStart }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
	for _, e := range n.Elifs {
		Walk(v, e.Cond)
		Walk(v, e.Body)
	}
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

func (n *WhileLoop) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileLoop) Span() (token.Pos, token.Pos)  { return n.Start, n.End }
func (n *WhileLoop) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileLoop) BlockEnding() bool { return false }

func (n *ForLoop) Format(f fmt.State, verb rune) { format(f, verb, n, "for "+n.IterName, nil) }
func (n *ForLoop) Span() (token.Pos, token.Pos)  { return n.Start, n.End }
func (n *ForLoop) Walk(v Visitor) {
	Walk(v, n.Iterable)
	Walk(v, n.Body)
}
func (n *ForLoop) BlockEnding() bool { return false }

func (n *RetStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *RetStmt) Span() (start, end token.Pos) {
	end = n.Start + 6
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return n.Start, end
}
func (n *RetStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *RetStmt) BlockEnding() bool { return true }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + 5 }
func (n *BreakStmt) Walk(Visitor)                  {}
func (n *BreakStmt) BlockEnding() bool             { return true }

func (n *ContStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContStmt) Span() (token.Pos, token.Pos)  { return n.Start, n.Start + 8 }
func (n *ContStmt) Walk(Visitor)                  {}
func (n *ContStmt) BlockEnding() bool             { return true }

func (n *TryCatch) Format(f fmt.State, verb rune) { format(f, verb, n, "try/catch", nil) }
func (n *TryCatch) Span() (token.Pos, token.Pos)  { return n.Start, n.End }
func (n *TryCatch) Walk(v Visitor) {
	Walk(v, n.TryBody)
	Walk(v, n.CatchBody)
}
func (n *TryCatch) BlockEnding() bool { return false }

func (n *Throw) Format(f fmt.State, verb rune) { format(f, verb, n, "throw", nil) }
func (n *Throw) Span() (start, end token.Pos) {
	_, end = n.Value.Span()
	return n.Start, end
}
func (n *Throw) Walk(v Visitor)  { Walk(v, n.Value) }
func (n *Throw) BlockEnding() bool { return true }

func (n *BadStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad stmt!", nil) }
func (n *BadStmt) Span() (token.Pos, token.Pos)  { return n.Start, n.End }
func (n *BadStmt) Walk(Visitor)                  {}
func (n *BadStmt) BlockEnding() bool             { return false }
