package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/aalyth/chalcedony/lang/compiler"
)

// InvariantViolation reports that the machine reached a state the compiler
// should have made impossible (a stack underflow, a jump to a nonexistent
// instruction, an operand of the wrong runtime kind). It always indicates a
// bug in the compiler or the machine, never a mistake in the source program.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Msg }

func violatef(format string, args ...any) {
	panic(&InvariantViolation{Msg: fmt.Sprintf(format, args...)})
}

// Machine runs one compiled Program. Its globals persist across calls to
// Run, so a Machine is reusable to execute the same program's toplevel more
// than once (e.g. once per REPL line compiled against the same Program).
type Machine struct {
	Stdout io.Writer

	prog    *compiler.Program
	globals []Value
}

// New creates a Machine ready to run prog.
func New(prog *compiler.Program) *Machine {
	return &Machine{
		Stdout:  os.Stdout,
		prog:    prog,
		globals: make([]Value, prog.NumGlobals),
	}
}

// Run executes prog's toplevel from the first instruction. Any uncaught
// exception is returned as *Exception; any internal consistency failure is
// returned as *InvariantViolation (recovered from a panic at this boundary,
// so that callers never observe a live panic from a valid Program).
func (m *Machine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(*InvariantViolation); ok {
				err = iv
				return
			}
			panic(r)
		}
	}()
	_, err = m.exec(0, nil)
	return err
}

// Run is the package-level entry point used by the CLI driver: it compiles
// down to a single Machine, directs its Print output at stdout, and runs the
// program's toplevel once.
func Run(prog *compiler.Program, stdout io.Writer) error {
	m := New(prog)
	m.Stdout = stdout
	return m.Run()
}

type handler struct {
	catchIP    int
	stackDepth int
}

// exec runs the program starting at ip with the given argument values,
// until a Return/ReturnVoid instruction (for a function body) or the end of
// the instruction stream (for the toplevel) is reached.
func (m *Machine) exec(start int, args []Value) (Value, error) {
	code := m.prog.Code
	ip := start
	stack := make([]Value, 0, 16)
	var locals []Value
	var handlers []handler

	push := func(v Value) { stack = append(stack, v) }
	pop := func() Value {
		if len(stack) == 0 {
			violatef("operand stack underflow at ip=%d", ip)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	ensureLocal := func(slot int) {
		for len(locals) <= slot {
			locals = append(locals, nil)
		}
	}
	// raise delivers exc to the nearest enclosing handler in this call frame
	// (unwinding the operand stack to the point TryScope recorded, then
	// jumping to the catch body with the message on top of the stack), or
	// reports that no handler exists so the caller can return exc as an
	// ordinary error. It is shared by every source of a catchable runtime
	// exception: ThrowException, division/modulo by zero, and out-of-range
	// list indexing.
	raise := func(exc *Exception) bool {
		if len(handlers) == 0 {
			return false
		}
		h := handlers[len(handlers)-1]
		handlers = handlers[:len(handlers)-1]
		stack = stack[:h.stackDepth]
		push(Str(exc.Message))
		ip = h.catchIP
		return true
	}

	for {
		if ip >= len(code) {
			return Void{}, nil
		}
		instr := code[ip]
		pc := ip
		ip = pc + 1

		switch instr.Op {
		case compiler.Nop:

		case compiler.ConstI:
			push(Int(instr.Int))
		case compiler.ConstU:
			push(Uint(instr.Uint))
		case compiler.ConstF:
			push(Float(instr.Float))
		case compiler.ConstS:
			push(Str(instr.Str))
		case compiler.ConstB:
			push(Bool(instr.Bool))

		case compiler.CastI:
			push(castToInt(pop()))
		case compiler.CastF:
			push(castToFloat(pop()))
		case compiler.CastU:
			push(castToUint(pop()))

		case compiler.Add, compiler.Sub, compiler.Mul, compiler.Div, compiler.Mod:
			r := pop()
			l := pop()
			v, err := arith(instr.Op, l, r)
			if err != nil {
				exc := err.(*Exception)
				if raise(exc) {
					continue
				}
				return nil, exc
			}
			push(v)

		case compiler.And:
			r := pop()
			l := pop()
			push(Bool(truthy(l) && truthy(r)))
		case compiler.Or:
			r := pop()
			l := pop()
			push(Bool(truthy(l) || truthy(r)))

		case compiler.Lt, compiler.Gt, compiler.LtEq, compiler.GtEq:
			r := pop()
			l := pop()
			push(Bool(compareOrdered(instr.Op, l, r)))
		case compiler.Eq:
			r := pop()
			l := pop()
			push(Bool(valuesEqual(l, r)))

		case compiler.Neg:
			push(negate(pop()))
		case compiler.Not:
			push(Bool(!truthy(pop())))

		case compiler.SetGlobal:
			m.globals[instr.Int] = pop()
		case compiler.GetGlobal:
			push(m.globals[instr.Int])
		case compiler.SetLocal:
			ensureLocal(int(instr.Int))
			locals[instr.Int] = pop()
		case compiler.GetLocal:
			if int(instr.Int) >= len(locals) {
				violatef("read of uninitialized local %d", instr.Int)
			}
			push(locals[instr.Int])
		case compiler.GetArg:
			if int(instr.Int) >= len(args) {
				violatef("read of out-of-range argument %d", instr.Int)
			}
			push(args[instr.Int])

		case compiler.SetAttr:
			val := pop()
			recv := pop()
			obj, ok := recv.(*Object)
			if !ok {
				violatef("SetAttr on non-object %T", recv)
			}
			if int(instr.Int) >= len(obj.Members) {
				violatef("SetAttr member index %d out of range for %s", instr.Int, obj.Class)
			}
			obj.Members[instr.Int] = val
		case compiler.GetAttr:
			recv := pop()
			obj, ok := recv.(*Object)
			if !ok {
				violatef("GetAttr on non-object %T", recv)
			}
			if int(instr.Int) >= len(obj.Members) {
				violatef("GetAttr member index %d out of range for %s", instr.Int, obj.Class)
			}
			push(obj.Members[instr.Int])

		case compiler.CreateFunc:
			ip = pc + 1 + int(instr.Int)

		case compiler.CallFunc:
			info := m.prog.FuncEntries[int(instr.Int)]
			if info == nil {
				violatef("call to unregistered entry %d", instr.Int)
			}
			callArgs := make([]Value, info.NumArgs)
			for i := info.NumArgs - 1; i >= 0; i-- {
				callArgs[i] = pop()
			}
			ret, err := m.exec(int(instr.Int), callArgs)
			if err != nil {
				exc, ok := err.(*Exception)
				if !ok {
					return nil, err
				}
				if raise(exc) {
					continue
				}
				return nil, exc
			}
			if _, isVoid := ret.(Void); !isVoid {
				push(ret)
			}

		case compiler.Return:
			return pop(), nil
		case compiler.ReturnVoid:
			return Void{}, nil

		case compiler.If:
			if !truthy(pop()) {
				ip = pc + 1 + int(instr.Int)
			}
		case compiler.Jmp:
			ip = pc + 1 + int(instr.Int)

		case compiler.TryScope:
			catchJmpIP := pc + 1 + int(instr.Int)
			handlers = append(handlers, handler{catchIP: catchJmpIP + 1, stackDepth: len(stack)})
		case compiler.CatchJmp:
			if len(handlers) > 0 {
				handlers = handlers[:len(handlers)-1]
			}
			ip = pc + 1 + int(instr.Int)
		case compiler.ThrowException:
			msg, ok := pop().(Str)
			if !ok {
				violatef("throw of non-Str value")
			}
			exc := &Exception{Message: string(msg)}
			if raise(exc) {
				continue
			}
			return nil, exc

		case compiler.Print:
			fmt.Fprintln(m.Stdout, pop().String())
		case compiler.Assert:
			rhs := pop()
			lhs := pop()
			// Assert terminates the program outright on a mismatch: it
			// returns directly instead of going through raise, so no
			// enclosing try/catch can intercept it.
			if !valuesEqual(lhs, rhs) {
				return nil, &Exception{Message: fmt.Sprintf("assertion failed: %s != %s", lhs.String(), rhs.String())}
			}

		case compiler.MakeList:
			n := int(instr.Int)
			elems := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = pop()
			}
			push(&List{Elems: elems})
		case compiler.ListLen:
			l, ok := pop().(*List)
			if !ok {
				violatef("ListLen on non-List value")
			}
			push(Int(len(l.Elems)))
		case compiler.ListIndex:
			idx, ok := pop().(Int)
			if !ok {
				violatef("ListIndex with non-Int index")
			}
			l, ok := pop().(*List)
			if !ok {
				violatef("ListIndex on non-List value")
			}
			if idx < 0 || int(idx) >= len(l.Elems) {
				exc := &Exception{Message: "list index out of range"}
				if raise(exc) {
					continue
				}
				return nil, exc
			}
			push(l.Elems[idx])

		case compiler.Dup:
			if len(stack) == 0 {
				violatef("Dup on empty stack")
			}
			push(stack[len(stack)-1])
		case compiler.Pop:
			pop()

		case compiler.MakeObject:
			n := int(instr.Int)
			members := make([]Value, n)
			for i := n - 1; i >= 0; i-- {
				members[i] = pop()
			}
			push(&Object{Class: instr.Str, Members: members})

		default:
			violatef("unknown opcode %s", instr.Op)
		}
	}
}
