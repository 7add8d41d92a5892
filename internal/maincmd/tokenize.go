package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/aalyth/chalcedony/lang/scanner"
	"github.com/aalyth/chalcedony/lang/token"
)

// Tokenize is the "tokenize" subcommand: it scans every named file and
// prints one line per token to stdout, in the form "file:line:col: kind
// [literal]".
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles scans files and writes their tokens to stdio.Stdout. The
// returned error, if non-nil, is a scanner.ErrorList.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	toksByFile, err := scanner.ScanFiles(ctx, files...)
	for i, toks := range toksByFile {
		if i >= len(files) {
			continue
		}
		file := token.NewFile(files[i])
		for _, tv := range toks {
			pos := file.Position(tv.Value.Pos)
			fmt.Fprintf(stdio.Stdout, "%s: %s", pos, tv.Token)
			if lit := tv.Token.Literal(); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			} else if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tv.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
