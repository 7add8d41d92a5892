package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/parser"
	"github.com/aalyth/chalcedony/lang/scanner"
)

// Parse is the "parse" subcommand: it parses every named file and prints an
// indented textual dump of each resulting AST to stdout.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

// ParseFiles parses files and writes a textual AST dump of each chunk to
// stdio.Stdout. The returned error, if non-nil, is a scanner.ErrorList.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	chunks, err := parser.ParseFiles(ctx, files...)
	for _, ch := range chunks {
		if ch == nil {
			continue
		}
		ast.Print(stdio.Stdout, ch)
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
