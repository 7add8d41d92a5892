package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func writeChal(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.chal")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func newStdio() (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{Stdin: os.Stdin, Stdout: &out, Stderr: &errOut}, &out, &errOut
}

func TestTokenizeFilesPrintsTokens(t *testing.T) {
	path := writeChal(t, "let x = 1\n")
	stdio, out, errOut := newStdio()

	err := TokenizeFiles(nil, stdio, path)
	require.NoError(t, err)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "let")
	require.Contains(t, out.String(), "identifier x")
}

func TestTokenizeFilesReportsScanErrors(t *testing.T) {
	path := writeChal(t, "let x = 1 & 2\n")
	stdio, _, errOut := newStdio()

	err := TokenizeFiles(nil, stdio, path)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "not a valid operator")
}

func TestParseFilesPrintsASTDump(t *testing.T) {
	path := writeChal(t, "let x = 1 + 2\n")
	stdio, out, errOut := newStdio()

	err := ParseFiles(nil, stdio, path)
	require.NoError(t, err)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "let x")
}

func TestParseFilesReportsSyntaxErrors(t *testing.T) {
	path := writeChal(t, "let = 1\n")
	stdio, _, errOut := newStdio()

	err := ParseFiles(nil, stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

func TestCompileFilesSucceedsOnValidProgram(t *testing.T) {
	path := writeChal(t, "fn add(a: Int, b: Int) -> Int:\n    return a + b\n\nprint(add(1, 2))\n")
	stdio, out, errOut := newStdio()

	err := CompileFiles(nil, stdio, path)
	require.NoError(t, err)
	require.Empty(t, out.String())
	require.Empty(t, errOut.String())
}

func TestCompileFilesReportsTypeErrors(t *testing.T) {
	path := writeChal(t, "let x: Int = 'not an int'\n")
	stdio, _, errOut := newStdio()

	err := CompileFiles(nil, stdio, path)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "cannot assign")
}

func TestRunFileExecutesProgram(t *testing.T) {
	path := writeChal(t, "print('hello')\n")
	stdio, out, errOut := newStdio()

	err := RunFile(nil, stdio, path)
	require.NoError(t, err)
	require.Empty(t, errOut.String())
	require.Equal(t, "hello\n", out.String())
}

func TestRunFileExitsOneOnCompileError(t *testing.T) {
	path := writeChal(t, "let = 1\n")
	stdio, _, _ := newStdio()

	err := RunFile(nil, stdio, path)
	require.Error(t, err)
	ec, ok := err.(interface{ ExitCode() mainer.ExitCode })
	require.True(t, ok)
	require.Equal(t, exitCompileError, ec.ExitCode())
}

func TestRunFileExitsTwoOnUnhandledThrow(t *testing.T) {
	path := writeChal(t, "fn boom!():\n    throw 'bad'\n\nboom()\n")
	stdio, _, errOut := newStdio()

	err := RunFile(nil, stdio, path)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "bad")
	ec, ok := err.(interface{ ExitCode() mainer.ExitCode })
	require.True(t, ok)
	require.Equal(t, exitUnhandledThrow, ec.ExitCode())
}
