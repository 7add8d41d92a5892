// Package types implements Chalcedony's static type system: the type
// lattice, implicit widenings and the binary/unary operator result tables.
// This is distinct from the runtime value variants in package machine.
package types

import "fmt"

// Kind enumerates the static type kinds.
type Kind uint8

const (
	Int Kind = iota
	Uint
	Float
	Str
	Bool
	Void
	Exception
	Any
	List
	Custom
)

// Type is a static type: a Kind, plus an Elem for List and a Name for
// Custom (class) types.
type Type struct {
	Kind Kind
	Elem *Type  // non-nil iff Kind == List
	Name string // non-empty iff Kind == Custom
}

var (
	TInt       = &Type{Kind: Int}
	TUint      = &Type{Kind: Uint}
	TFloat     = &Type{Kind: Float}
	TStr       = &Type{Kind: Str}
	TBool      = &Type{Kind: Bool}
	TVoid      = &Type{Kind: Void}
	TException = &Type{Kind: Exception}
	TAny       = &Type{Kind: Any}
)

// ListOf returns the static type "List<elem>".
func ListOf(elem *Type) *Type { return &Type{Kind: List, Elem: elem} }

// CustomNamed returns the static type for a class named name.
func CustomNamed(name string) *Type { return &Type{Kind: Custom, Name: name} }

func (t *Type) String() string {
	if t == nil {
		return "Any"
	}
	switch t.Kind {
	case Int:
		return "Int"
	case Uint:
		return "Uint"
	case Float:
		return "Float"
	case Str:
		return "Str"
	case Bool:
		return "Bool"
	case Void:
		return "Void"
	case Exception:
		return "Exception"
	case Any:
		return "Any"
	case List:
		return fmt.Sprintf("List<%s>", t.Elem)
	case Custom:
		return t.Name
	default:
		return "?"
	}
}

// Equal reports whether t and u are the exact same type (Any is not treated
// as a wildcard here; see ImplicitlyEq for that).
func Equal(t, u *Type) bool {
	if t == nil || u == nil {
		return t == u
	}
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case List:
		return Equal(t.Elem, u.Elem)
	case Custom:
		return t.Name == u.Name
	default:
		return true
	}
}

// ImplicitlyEq reports whether a value of type u may stand in for the
// declared type t without an explicit cast instruction: either they are the
// same type, t is Any, or one of the numeric widenings below applies.
func ImplicitlyEq(t, u *Type) bool {
	if Equal(t, u) {
		return true
	}
	if t != nil && t.Kind == Any {
		return true
	}
	return WideningCost(t, u) >= 0
}

// WideningCost returns the cost of widening a value of type from to the
// declared type to, following the fixed cost vector from the language
// design notes (Uint->Int = 1, Int->Float = 2, Uint->Float = 3), or -1 if
// no implicit widening exists between the two types.
func WideningCost(to, from *Type) int {
	if to == nil || from == nil {
		return -1
	}
	if to.Kind == Any {
		return 0
	}
	switch {
	case to.Kind == Int && from.Kind == Uint:
		return 1
	case to.Kind == Float && from.Kind == Int:
		return 2
	case to.Kind == Float && from.Kind == Uint:
		return 3
	default:
		return -1
	}
}

// Cast is the coercion instruction (by name, matching the compiler's
// opcodes) that must be emitted to widen a value of type from to type to.
// It returns "" if to == from (no cast needed) and ok == false if no
// implicit widening applies.
func Cast(to, from *Type) (op string, ok bool) {
	if Equal(to, from) || (to != nil && to.Kind == Any) {
		return "", true
	}
	switch {
	case to.Kind == Int && from.Kind == Uint:
		return "CastI", true
	case to.Kind == Float && (from.Kind == Int || from.Kind == Uint):
		return "CastF", true
	default:
		return "", false
	}
}

// IsNumeric reports whether t is one of Int, Uint or Float.
func IsNumeric(t *Type) bool {
	return t != nil && (t.Kind == Int || t.Kind == Uint || t.Kind == Float)
}
