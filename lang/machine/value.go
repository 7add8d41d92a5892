// Package machine implements the stack-based virtual machine that executes
// a compiled Chalcedony Program, plus the runtime representation of the
// language's values.
package machine

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is implemented by every runtime value the machine's operand stack,
// locals, arguments and globals can hold. Unlike a dynamically-typed
// language's value representation, Chalcedony's values never need dynamic
// dispatch for operators: the compiler has already resolved every
// operation's operand kinds, so the machine decides behavior with a type
// switch rather than an interface method.
type Value interface {
	fmt.Stringer
	valueType() string
}

// Int is a signed 64-bit integer value.
type Int int64

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Int) valueType() string { return "Int" }

// Uint is an unsigned 64-bit integer value.
type Uint uint64

func (v Uint) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v Uint) valueType() string { return "Uint" }

// Float is a 64-bit floating point value.
type Float float64

func (v Float) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Float) valueType() string { return "Float" }

// Str is a string value.
type Str string

func (v Str) String() string   { return string(v) }
func (v Str) valueType() string { return "Str" }

// Bool is a boolean value.
type Bool bool

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}
func (v Bool) valueType() string { return "Bool" }

// List is an ordered, homogeneous sequence of values.
type List struct {
	Elems []Value
}

func (v *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range v.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
func (v *List) valueType() string { return "List" }

// Object is an instance of a user-defined class: a dense slice of member
// values addressed by the index the compiler assigned each member.
type Object struct {
	Class   string
	Members []Value
}

func (v *Object) String() string { return fmt.Sprintf("%s{...}", v.Class) }
func (v *Object) valueType() string { return v.Class }

// Exception is a thrown value: Chalcedony only allows throwing (and
// catching) Str messages.
type Exception struct {
	Message string
}

func (e *Exception) Error() string  { return e.Message }
func (e *Exception) String() string { return e.Message }
func (e *Exception) valueType() string { return "Exception" }

// Void is the sole value of the Void type, pushed by nothing and read by
// nothing — it exists only so internal bookkeeping has a Value to use where
// "no meaningful value" needs a placeholder.
type Void struct{}

func (Void) String() string   { return "void" }
func (Void) valueType() string { return "Void" }
