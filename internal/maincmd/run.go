package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/aalyth/chalcedony/lang/compiler"
	"github.com/aalyth/chalcedony/lang/machine"
	"github.com/aalyth/chalcedony/lang/parser"
	"github.com/aalyth/chalcedony/lang/scanner"
)

// exitError pairs an error with the exact process exit code it should
// produce, letting a subcommand distinguish a compile failure from an
// unhandled exception from an internal invariant violation, which otherwise
// all look alike through the plain `error` return every command shares.
type exitError struct {
	code mainer.ExitCode
	err  error
}

func (e *exitError) Error() string             { return e.err.Error() }
func (e *exitError) Unwrap() error             { return e.err }
func (e *exitError) ExitCode() mainer.ExitCode { return e.code }

const (
	exitCompileError    mainer.ExitCode = 1
	exitUnhandledThrow  mainer.ExitCode = 2
	exitInvariantBroken mainer.ExitCode = 3
)

// Run is the "run" subcommand: it tokenizes, parses, compiles and executes a
// single file, directing the program's Print output at stdout.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, fmt.Errorf("run: expected exactly one file, got %d", len(args)))
	}
	return RunFile(ctx, stdio, args[0])
}

// RunFile parses, compiles and executes file. The returned error, when
// non-nil, satisfies `interface{ ExitCode() mainer.ExitCode }` so the CLI
// driver can propagate the exact exit code the failure calls for.
func RunFile(ctx context.Context, stdio mainer.Stdio, file string) error {
	chunks, perr := parser.ParseFiles(ctx, file)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return &exitError{code: exitCompileError, err: perr}
	}

	prog, cerr := compiler.Compile(chunks[0])
	if cerr != nil {
		if el, ok := cerr.(compiler.ErrorList); ok {
			for _, e := range el {
				fmt.Fprintln(stdio.Stderr, e.Error())
			}
		} else {
			fmt.Fprintln(stdio.Stderr, cerr)
		}
		return &exitError{code: exitCompileError, err: cerr}
	}

	if err := machine.Run(prog, stdio.Stdout); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		if _, ok := err.(*machine.InvariantViolation); ok {
			return &exitError{code: exitInvariantBroken, err: err}
		}
		return &exitError{code: exitUnhandledThrow, err: err}
	}
	return nil
}
