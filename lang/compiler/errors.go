package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aalyth/chalcedony/lang/token"
)

// ErrorKind classifies a compile-time error, following the taxonomy in the
// language design (unknown name, redefinition, bad operator use, arity,
// control-flow misuse, and so on).
type ErrorKind uint8

//nolint:revive
const (
	UnknownName ErrorKind = iota
	Redefinition
	MutateConst
	MutateGlobalFromFunc
	InvalidOperator
	WrongArity
	ArgTypeMismatch
	VoidInExpr
	NonVoidAsStmt
	MissingReturn
	BreakOutsideLoop
	ContinueOutsideLoop
	NestedTry
	ThrowInSafeContext
	ReturnOutsideFunc
	IncoherentList
	UnknownFunc
	AmbiguousOverload
	ClassRedefinition
	VoidMember
	DuplicateMember
	UnknownNamespace
	UnknownMember
)

var kindNames = [...]string{
	UnknownName:          "unknown name",
	Redefinition:         "redefinition",
	MutateConst:          "assignment to constant",
	MutateGlobalFromFunc: "assignment to global from inside a function",
	InvalidOperator:      "invalid operator for operand types",
	WrongArity:           "wrong number of arguments",
	ArgTypeMismatch:      "argument type mismatch",
	VoidInExpr:           "void function used inside an expression",
	NonVoidAsStmt:        "non-void function result discarded",
	MissingReturn:        "missing return on some path",
	BreakOutsideLoop:     "break outside a loop",
	ContinueOutsideLoop:  "continue outside a loop",
	NestedTry:            "nested try",
	ThrowInSafeContext:   "throw outside an unsafe function or try block",
	ReturnOutsideFunc:    "return outside a function",
	IncoherentList:       "incoherent list element types",
	UnknownFunc:          "unknown function",
	AmbiguousOverload:    "ambiguous overload",
	ClassRedefinition:    "class already exists",
	VoidMember:           "void class member",
	DuplicateMember:      "duplicate class member",
	UnknownNamespace:     "unknown namespace",
	UnknownMember:        "unknown member",
}

func (k ErrorKind) String() string { return kindNames[k] }

// Error is one structured compile-time diagnostic.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  token.Pos
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s: %s", line, col, e.Kind, e.Msg)
}

// ErrorList accumulates compile errors instead of failing on the first one,
// mirroring the reference scanner/parser's reuse of go/scanner.ErrorList for
// the same reason: a single invocation should surface every independent
// problem it can find.
type ErrorList []*Error

// Add records a new compile error.
func (el *ErrorList) Add(kind ErrorKind, pos token.Pos, format string, args ...any) {
	*el = append(*el, &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Sort orders the list by position, for stable diagnostic output.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool { return el[i].Pos < el[j].Pos })
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (and %d more errors)", el[0], len(el)-1)
		return sb.String()
	}
}

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}
