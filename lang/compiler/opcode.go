// Package compiler lowers a type-checked AST (package ast, consulting
// package symbols and package types) into a linear Chalcedony bytecode
// program, and defines the bytecode instruction set itself.
package compiler

import "fmt"

// Op is a Chalcedony bytecode instruction tag. The instruction set is
// closed: every operand's type and position is fixed by the tag, and the
// machine decodes nothing beyond reading the tag and its declared operands.
type Op uint8

//nolint:revive
const (
	Nop Op = iota

	// constants
	ConstI // i64
	ConstU // u64
	ConstF // f64
	ConstS // string
	ConstB // bool

	// casts (operate on the top of the operand stack in place)
	CastI
	CastF
	CastU

	// arithmetic: pop 2, push 1
	Add
	Sub
	Mul
	Div
	Mod

	// logical/relational: pop 2, push Bool
	And
	Or
	Lt
	Gt
	Eq
	LtEq
	GtEq

	// unary: pop 1, push 1
	Neg
	Not

	// variable access (operand: slot index)
	SetGlobal
	GetGlobal
	SetLocal
	GetLocal
	GetArg
	SetAttr
	GetAttr

	// functions
	CreateFunc // operand: instructions to skip (the body's length), so that
	// straight-line execution falls through a function's definition
	// instead of running it; the entry point is the instruction
	// right after this one
	CallFunc // operand: entry offset

	// returns
	Return
	ReturnVoid

	// control flow
	If  // operand: forward skip distance
	Jmp // operand: signed instruction-relative distance

	// exceptions
	TryScope      // operand: guarded-region length
	CatchJmp      // operand: catch-body length
	ThrowException

	// built-ins
	Print
	Assert

	// MakeList pops N values off the operand stack (N given by the operand,
	// in push order) and pushes a single List value built from them.
	MakeList

	// ListLen pops a List, pushes its length as an Int.
	ListLen
	// ListIndex pops an index (Int) then a List, pushes the element at
	// that index.
	ListIndex

	// Dup duplicates the top of the operand stack, needed to read-then-write
	// a class member in a single compound assignment without recomputing the
	// receiver expression twice.
	Dup

	// Pop discards the top of the operand stack. No compiler path emits it:
	// a non-Void call used as a statement is a compile error instead.
	Pop

	// MakeObject pops N values (N = Int operand, in member-declaration order)
	// and pushes a new instance of the class named by the Str operand.
	MakeObject

	maxOp
)

func (op Op) String() string { return opNames[op] }

var opNames = [...]string{
	Nop: "Nop",

	ConstI: "ConstI", ConstU: "ConstU", ConstF: "ConstF", ConstS: "ConstS", ConstB: "ConstB",

	CastI: "CastI", CastF: "CastF", CastU: "CastU",

	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Mod: "Mod",

	And: "And", Or: "Or", Lt: "Lt", Gt: "Gt", Eq: "Eq", LtEq: "LtEq", GtEq: "GtEq",

	Neg: "Neg", Not: "Not",

	SetGlobal: "SetGlobal", GetGlobal: "GetGlobal",
	SetLocal: "SetLocal", GetLocal: "GetLocal", GetArg: "GetArg",
	SetAttr: "SetAttr", GetAttr: "GetAttr",

	CreateFunc: "CreateFunc", CallFunc: "CallFunc",

	Return: "Return", ReturnVoid: "ReturnVoid",

	If: "If", Jmp: "Jmp",

	TryScope: "TryScope", CatchJmp: "CatchJmp", ThrowException: "ThrowException",

	Print: "Print", Assert: "Assert",

	MakeList: "MakeList",
	ListLen:  "ListLen", ListIndex: "ListIndex",
	Dup: "Dup", Pop: "Pop",
	MakeObject: "MakeObject",
}

// Instr is a single bytecode instruction: a tag plus whichever inline
// operand(s) that tag uses. Which of Int/Float/Str/Bool are meaningful is
// determined entirely by Op (see the field comments on Op's constants);
// most ops use at most one, MakeObject uses both Str and Int.
type Instr struct {
	Op    Op
	Int   int64  // ConstI, slot indices, CreateFunc/CallFunc operands, If/Jmp/TryScope/CatchJmp distances
	Uint  uint64 // ConstU
	Float float64
	Str   string
	Bool  bool
}

func (in Instr) String() string {
	switch in.Op {
	case ConstI:
		return fmt.Sprintf("ConstI %d", in.Int)
	case ConstU:
		return fmt.Sprintf("ConstU %d", in.Uint)
	case ConstF:
		return fmt.Sprintf("ConstF %g", in.Float)
	case ConstS:
		return fmt.Sprintf("ConstS %q", in.Str)
	case ConstB:
		return fmt.Sprintf("ConstB %t", in.Bool)
	case MakeObject:
		return fmt.Sprintf("MakeObject %s %d", in.Str, in.Int)
	case SetGlobal, GetGlobal, SetLocal, GetLocal, GetArg, SetAttr, GetAttr,
		CreateFunc, CallFunc, If, Jmp, TryScope, CatchJmp, MakeList:
		return fmt.Sprintf("%s %d", in.Op, in.Int)
	default:
		return in.Op.String()
	}
}

// Const helpers construct a single instruction carrying the named operand,
// used throughout the compiler and in tests for readable literal bytecode.
func I(op Op) Instr                  { return Instr{Op: op} }
func IInt(op Op, v int64) Instr      { return Instr{Op: op, Int: v} }
func IUint(v uint64) Instr           { return Instr{Op: ConstU, Uint: v} }
func IFloat(v float64) Instr         { return Instr{Op: ConstF, Float: v} }
func IStr(op Op, v string) Instr     { return Instr{Op: op, Str: v} }
func IBool(v bool) Instr             { return Instr{Op: ConstB, Bool: v} }
func IStrInt(op Op, s string, v int64) Instr { return Instr{Op: op, Str: s, Int: v} }
