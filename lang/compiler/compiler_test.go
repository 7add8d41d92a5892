package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aalyth/chalcedony/lang/parser"
)

func compile(t *testing.T, src string) (*Program, error) {
	t.Helper()
	chunk, err := parser.ParseChunk(nil, "test.chal", []byte(src))
	require.NoError(t, err)
	return Compile(chunk)
}

func TestCompileSimpleArithmetic(t *testing.T) {
	prog, err := compile(t, "let x = 1 + 2\n")
	require.NoError(t, err)
	require.NotEmpty(t, prog.Code)

	var ops []Op
	for _, in := range prog.Code {
		ops = append(ops, in.Op)
	}
	require.Contains(t, ops, ConstI)
	require.Contains(t, ops, Add)
	require.Contains(t, ops, SetGlobal)
}

func TestCompileIfEmitsIfWithCorrectSkip(t *testing.T) {
	// spec.md's own example: for `if n > 2: <body>`, the If operand equals
	// len(body) + 1, clearing the chain without touching neighboring code.
	prog, err := compile(t, "let n = 3\nif n > 2:\n    let y = 1\n")
	require.NoError(t, err)

	var ifInstr *Instr
	var bodyLen int
	found := false
	for i := range prog.Code {
		if prog.Code[i].Op == If {
			ifInstr = &prog.Code[i]
			found = true
			bodyLen = len(prog.Code) - i - 3 // minus the If, the arm's Jmp and the trailing Nop
			break
		}
	}
	require.True(t, found, "expected an If instruction")
	require.EqualValues(t, bodyLen+1, ifInstr.Int)
}

func TestCompilePrintEmitsPrintOpcode(t *testing.T) {
	prog, err := compile(t, "print('hello')\n")
	require.NoError(t, err)

	var ops []Op
	for _, in := range prog.Code {
		ops = append(ops, in.Op)
	}
	require.Contains(t, ops, ConstS)
	require.Contains(t, ops, Print)
}

func TestCompileAssertEmitsAssertOpcode(t *testing.T) {
	prog, err := compile(t, "assert(1, 1)\n")
	require.NoError(t, err)

	var ops []Op
	for _, in := range prog.Code {
		ops = append(ops, in.Op)
	}
	require.Contains(t, ops, ConstI)
	require.Contains(t, ops, Assert)
}

func TestCompileUnknownNameReportsError(t *testing.T) {
	_, err := compile(t, "print(missing)\n")
	require.Error(t, err)

	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.NotEmpty(t, el)
	require.Equal(t, UnknownName, el[0].Kind)
}

func TestCompileMutateConstReportsError(t *testing.T) {
	_, err := compile(t, "const x = 1\nx = 2\n")
	require.Error(t, err)

	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.Equal(t, MutateConst, el[0].Kind)
}

func TestCompileBreakOutsideLoopReportsError(t *testing.T) {
	_, err := compile(t, "break\n")
	require.Error(t, err)

	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.Equal(t, BreakOutsideLoop, el[0].Kind)
}

func TestCompileThrowOutsideUnsafeReportsError(t *testing.T) {
	_, err := compile(t, "fn safe():\n    throw 'bad'\n")
	require.Error(t, err)

	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.Equal(t, ThrowInSafeContext, el[0].Kind)
}

func TestCompileUnknownFunctionReportsError(t *testing.T) {
	_, err := compile(t, "missingFunc(1, 2)\n")
	require.Error(t, err)

	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.Equal(t, UnknownFunc, el[0].Kind)
}

func TestCompileFibonacciHasNoErrors(t *testing.T) {
	src := `fn fib(n: Int) -> Int:
    if n < 2:
        return n
    return fib(n - 1) + fib(n - 2)

print(fib(10))
`
	prog, err := compile(t, src)
	require.NoError(t, err)
	require.NotEmpty(t, prog.FuncEntries)
}
