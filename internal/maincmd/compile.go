package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/aalyth/chalcedony/lang/compiler"
	"github.com/aalyth/chalcedony/lang/parser"
	"github.com/aalyth/chalcedony/lang/scanner"
)

// Compile is the "compile" subcommand: it parses and type-checks every named
// file, reporting any scanner, parse or compile error. It does not execute
// the program; that is the "run" subcommand's job.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(ctx, stdio, args...)
}

// CompileFiles parses all of files and then compiles each of them, reporting
// any diagnostics to stdio.Stderr; a scan or parse error in any file is
// reported and nothing is compiled. The returned error is non-nil if any
// file failed to scan, parse, or compile.
func CompileFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	chunks, perr := parser.ParseFiles(ctx, files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	var failed bool
	for i, ch := range chunks {
		if ch == nil {
			continue
		}
		if _, err := compiler.Compile(ch); err != nil {
			failed = true
			name := ch.Name
			if name == "" && i < len(files) {
				name = files[i]
			}
			fmt.Fprintf(stdio.Stderr, "%s:\n", name)
			if el, ok := err.(compiler.ErrorList); ok {
				for _, e := range el {
					fmt.Fprintln(stdio.Stderr, e.Error())
				}
			} else {
				fmt.Fprintln(stdio.Stderr, err)
			}
		}
	}
	if failed {
		return fmt.Errorf("compilation failed")
	}
	return nil
}
