package machine

import (
	"strings"

	"github.com/aalyth/chalcedony/lang/compiler"
)

// castToInt implements CastI: the top-of-stack numeric value truncates (or,
// for Uint, reinterprets) to a signed Int.
func castToInt(v Value) Value {
	switch n := v.(type) {
	case Int:
		return n
	case Uint:
		return Int(n)
	case Float:
		return Int(n)
	default:
		violatef("CastI on non-numeric value %s", v.valueType())
		return nil
	}
}

// castToFloat implements CastF.
func castToFloat(v Value) Value {
	switch n := v.(type) {
	case Int:
		return Float(n)
	case Uint:
		return Float(n)
	case Float:
		return n
	default:
		violatef("CastF on non-numeric value %s", v.valueType())
		return nil
	}
}

// castToUint implements CastU.
func castToUint(v Value) Value {
	switch n := v.(type) {
	case Int:
		return Uint(n)
	case Uint:
		return n
	case Float:
		return Uint(n)
	default:
		violatef("CastU on non-numeric value %s", v.valueType())
		return nil
	}
}

func toFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Uint:
		return float64(n), true
	case Float:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy evaluates the operand of And/Or/the implicit boolean context those
// operators accept: any nonzero number, or the Bool itself.
func truthy(v Value) bool {
	switch n := v.(type) {
	case Bool:
		return bool(n)
	case Int:
		return n != 0
	case Uint:
		return n != 0
	case Float:
		return n != 0
	default:
		violatef("non-boolean, non-numeric operand %s in logical expression", v.valueType())
		return false
	}
}

// arith implements Add/Sub/Mul/Div/Mod. The compiler has already cast both
// operands to a common numeric type whenever the result type is numeric, so
// same-type numeric pairs are the common case; the Str cases (Str+anything,
// Str*Uint) are the one place the compiler leaves operand types mismatched
// on purpose, since concatenation/repetition aren't type-preserving casts.
func arith(op compiler.Op, l, r Value) (Value, error) {
	if ls, ok := l.(Str); ok {
		switch op {
		case compiler.Add:
			return ls + Str(r.String()), nil
		case compiler.Mul:
			ru, ok := r.(Uint)
			if !ok {
				violatef("string repetition requires a Uint count, got %s", r.valueType())
			}
			return Str(strings.Repeat(string(ls), int(ru))), nil
		default:
			violatef("operator %s not supported on Str", op)
		}
	}

	switch l := l.(type) {
	case Int:
		ri, ok := r.(Int)
		if !ok {
			violatef("arithmetic operand type mismatch: Int vs %s", r.valueType())
		}
		return intArith(op, int64(l), int64(ri))
	case Uint:
		ru, ok := r.(Uint)
		if !ok {
			violatef("arithmetic operand type mismatch: Uint vs %s", r.valueType())
		}
		return uintArith(op, uint64(l), uint64(ru))
	case Float:
		rf, ok := r.(Float)
		if !ok {
			violatef("arithmetic operand type mismatch: Float vs %s", r.valueType())
		}
		return floatArith(op, float64(l), float64(rf))
	default:
		violatef("arithmetic on non-numeric, non-Str value %s", l.valueType())
		return nil, nil
	}
}

func intArith(op compiler.Op, l, r int64) (Value, error) {
	switch op {
	case compiler.Add:
		return Int(l + r), nil
	case compiler.Sub:
		return Int(l - r), nil
	case compiler.Mul:
		return Int(l * r), nil
	case compiler.Div:
		if r == 0 {
			return nil, &Exception{Message: "division by zero"}
		}
		return Int(l / r), nil
	case compiler.Mod:
		if r == 0 {
			return nil, &Exception{Message: "modulo by zero"}
		}
		return Int(l % r), nil
	default:
		violatef("unsupported Int arithmetic opcode %s", op)
		return nil, nil
	}
}

func uintArith(op compiler.Op, l, r uint64) (Value, error) {
	switch op {
	case compiler.Add:
		return Uint(l + r), nil
	case compiler.Sub:
		return Uint(l - r), nil
	case compiler.Mul:
		return Uint(l * r), nil
	case compiler.Div:
		if r == 0 {
			return nil, &Exception{Message: "division by zero"}
		}
		return Uint(l / r), nil
	case compiler.Mod:
		if r == 0 {
			return nil, &Exception{Message: "modulo by zero"}
		}
		return Uint(l % r), nil
	default:
		violatef("unsupported Uint arithmetic opcode %s", op)
		return nil, nil
	}
}

func floatArith(op compiler.Op, l, r float64) (Value, error) {
	switch op {
	case compiler.Add:
		return Float(l + r), nil
	case compiler.Sub:
		return Float(l - r), nil
	case compiler.Mul:
		return Float(l * r), nil
	case compiler.Div:
		if r == 0 {
			return nil, &Exception{Message: "division by zero"}
		}
		return Float(l / r), nil
	case compiler.Mod:
		if r == 0 {
			return nil, &Exception{Message: "modulo by zero"}
		}
		return Float(mathMod(l, r)), nil
	default:
		violatef("unsupported Float arithmetic opcode %s", op)
		return nil, nil
	}
}

func mathMod(l, r float64) float64 {
	for l >= r {
		l -= r
	}
	return l
}

// negate implements Neg. The compiler inserts a CastI ahead of Neg whenever
// the operand is Uint, so only Int and Float ever reach here.
func negate(v Value) Value {
	switch n := v.(type) {
	case Int:
		return -n
	case Float:
		return -n
	default:
		violatef("Neg on non-numeric value %s", v.valueType())
		return nil
	}
}

// compareOrdered implements Lt/Gt/LtEq/GtEq. The compiler does not cast
// operands ahead of a comparison (its result type, Bool, is never numeric),
// so both Str/Str and mismatched-numeric-type pairs reach here directly.
func compareOrdered(op compiler.Op, l, r Value) bool {
	if ls, ok := l.(Str); ok {
		rs, ok := r.(Str)
		if !ok {
			violatef("comparison operand type mismatch: Str vs %s", r.valueType())
		}
		switch op {
		case compiler.Lt:
			return ls < rs
		case compiler.Gt:
			return ls > rs
		case compiler.LtEq:
			return ls <= rs
		case compiler.GtEq:
			return ls >= rs
		}
	}

	lf, ok := toFloat64(l)
	if !ok {
		violatef("comparison on non-numeric, non-Str value %s", l.valueType())
	}
	rf, ok := toFloat64(r)
	if !ok {
		violatef("comparison on non-numeric, non-Str value %s", r.valueType())
	}
	switch op {
	case compiler.Lt:
		return lf < rf
	case compiler.Gt:
		return lf > rf
	case compiler.LtEq:
		return lf <= rf
	case compiler.GtEq:
		return lf >= rf
	default:
		violatef("unsupported comparison opcode %s", op)
		return false
	}
}

// valuesEqual implements Eq (and, via Eq+Not, NotEq).
func valuesEqual(l, r Value) bool {
	switch lv := l.(type) {
	case Str:
		rv, ok := r.(Str)
		return ok && lv == rv
	case Bool:
		rv, ok := r.(Bool)
		return ok && lv == rv
	default:
		lf, lok := toFloat64(l)
		rf, rok := toFloat64(r)
		return lok && rok && lf == rf
	}
}
