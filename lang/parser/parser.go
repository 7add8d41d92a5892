// Package parser implements the parser that transforms source code into an
// abstract syntax tree (AST).
package parser

import (
	"context"
	"os"
	"strings"

	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/scanner"
	"github.com/aalyth/chalcedony/lang/token"
)

// ParseFiles parses every named file, returning one *ast.Chunk per file in
// the same order. Errors from every file are merged into a single
// scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) ([]*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var el scanner.ErrorList
	res := make([]*ast.Chunk, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, "%s", err)
			continue
		}

		ch, err := ParseChunk(ctx, file, b)
		res[i] = ch
		if list, ok := err.(scanner.ErrorList); ok {
			el = append(el, list...)
		} else if err != nil {
			el.Add(token.Position{Filename: file}, "%s", err)
		}
	}
	el.Sort()
	return res, el.Err()
}

// ParseChunk parses a single chunk from a slice of bytes and returns the AST
// and any error encountered. The error, if non-nil, is guaranteed to be a
// scanner.ErrorList.
func ParseChunk(ctx context.Context, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	p.errors.Sort()
	return ch, p.errors.Err()
}

// parser parses source files and generates an AST.
type parser struct {
	// immutable after p.init
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	// current token
	tok token.Token
	val token.Value
}

func (p *parser) init(filename string, src []byte) {
	p.file = token.NewFile(filename)
	p.scanner.Init(p.file, src, func(pos token.Position, msg string) {
		p.errors.Add(pos, "%s", msg)
	})

	// advance to first token
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = panicSentinel{}

// panicSentinel is the value recovered by parseStmt to resynchronize after a
// syntax error, producing a BadStmt for the skipped interval rather than
// aborting the whole parse.
type panicSentinel struct{}

// expect returns the position of the current token and consumes it if it is
// one of the expected tokens, otherwise it reports an error and panics with
// errPanicMode, which gets recovered at the statement level, resulting in a
// BadStmt.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}

	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}
	lbl := buf.String()
	if len(toks) > 1 {
		lbl = "one of " + lbl
	}
	p.errorExpected(pos, lbl)
	panic(errPanicMode)
}

// at reports whether the current token is one of toks, without consuming it.
func (p *parser) at(toks ...token.Token) bool {
	for _, tok := range toks {
		if p.tok == tok {
			return true
		}
	}
	return false
}

func (p *parser) error(pos token.Pos, msg string) {
	lpos := p.file.Position(pos)
	p.errors.Add(lpos, "%s", msg)
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.val.Pos {
		// the error happened at the current position; make the error message
		// more specific.
		if lit := p.tok.Literal(); lit != "" {
			msg += ", found " + lit
		} else if p.val.Raw != "" {
			// print the scanned text rather than e.g. 'identifier'
			msg += ", found " + p.val.Raw
		} else {
			msg += ", found " + p.tok.GoString()
		}
	}
	p.error(pos, msg)
}
