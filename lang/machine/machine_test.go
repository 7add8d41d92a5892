package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aalyth/chalcedony/lang/compiler"
	"github.com/aalyth/chalcedony/lang/parser"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	chunk, err := parser.ParseChunk(nil, "test.chal", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.Compile(chunk)
	require.NoError(t, err)

	var out bytes.Buffer
	err = Run(prog, &out)
	return out.String(), err
}

func TestRunFibonacci(t *testing.T) {
	out, err := run(t, `fn fib(n: Int) -> Int:
    if n < 2:
        return n
    return fib(n - 1) + fib(n - 2)

print(fib(10))
`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestRunAssignmentWidensIntToFloat(t *testing.T) {
	out, err := run(t, `let x: Float = 3
print(x)
`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestRunWhileLoopBreak(t *testing.T) {
	out, err := run(t, `let i = 0
while true:
    if i == 3:
        break
    print(i)
    i = i + 1
`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestRunWhileLoopContinueSkipsEvens(t *testing.T) {
	out, err := run(t, `let sum = 0
let i = 0
while i < 5:
    i = i + 1
    if i % 2 == 0:
        continue
    print(i)
`)
	require.NoError(t, err)
	require.Equal(t, "1\n3\n5\n", out)
}

func TestRunTryCatchHandlesThrow(t *testing.T) {
	out, err := run(t, `try:
    throw 'bad'
catch(e: Exception):
    print('got: ' + e)
`)
	require.NoError(t, err)
	require.Equal(t, "got: bad\n", out)
}

func TestRunUnhandledThrowReturnsException(t *testing.T) {
	out, err := run(t, `fn boom!():
    throw 'bad'

boom()
`)
	require.Error(t, err)
	exc, ok := err.(*Exception)
	require.True(t, ok)
	require.Equal(t, "bad", exc.Message)
	require.Empty(t, out)
}

func TestRunAssertPassesOnEqualValues(t *testing.T) {
	out, err := run(t, `assert(1, 1)
print('ok')
`)
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)
}

func TestRunAssertMismatchTerminatesWithDiagnostic(t *testing.T) {
	_, err := run(t, `assert(1, 2)
`)
	require.Error(t, err)
	exc, ok := err.(*Exception)
	require.True(t, ok)
	require.Contains(t, exc.Message, "1")
	require.Contains(t, exc.Message, "2")
}

func TestRunAssertMismatchIsUncatchable(t *testing.T) {
	_, err := run(t, `try:
    assert(1, 2)
catch(e: Exception):
    print('caught')
`)
	require.Error(t, err)
	_, ok := err.(*Exception)
	require.True(t, ok)
}

func TestRunDivisionByZeroRaisesException(t *testing.T) {
	_, err := run(t, `let x = 1
let y = 0
print(x / y)
`)
	require.Error(t, err)
	exc, ok := err.(*Exception)
	require.True(t, ok)
	require.Equal(t, "division by zero", exc.Message)
}

func TestRunOverloadDispatchPicksNarrowestWidening(t *testing.T) {
	out, err := run(t, `fn show(x: Int):
    print('int')

fn show(x: Float):
    print('float')

show(1)
show(1.5)
`)
	require.NoError(t, err)
	require.Equal(t, "int\nfloat\n", out)
}
