package parser

import (
	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/token"
)

// parseChunk parses a whole file: a flat sequence of top-level declarations
// (no indentation at this level).
func (p *parser) parseChunk() *ast.Chunk {
	var chunk ast.Chunk
	var decls []ast.Stmt

	for p.tok != token.EOF {
		if p.tok == token.NEWLINE {
			// a blank line at top level
			p.advance()
			continue
		}
		if stmt := p.parseStmt(); stmt != nil {
			decls = append(decls, stmt)
		}
	}

	chunk.Decls = decls
	chunk.EOF = p.val.Pos
	return &chunk
}

// parseBlock parses an indented block: NEWLINE INDENT stmt* DEDENT. The
// opening ':' is consumed by the caller before parseBlock is invoked.
func (p *parser) parseBlock() *ast.Block {
	var block ast.Block
	var list []ast.Stmt

	p.expect(token.NEWLINE)
	block.Start = p.expect(token.INDENT)

	var ending ast.Stmt
	var endingReported bool
	for p.tok != token.DEDENT && p.tok != token.EOF {
		if stmt := p.parseStmt(); stmt != nil {
			if ending != nil {
				if !endingReported {
					pos, _ := stmt.Span()
					p.errorExpected(pos, "end of block")
					endingReported = true
				}
			} else if stmt.BlockEnding() {
				ending = stmt
			}
			list = append(list, stmt)
		}
	}

	block.Stmts = list
	block.End = p.val.Pos
	p.expect(token.DEDENT)
	return &block
}

// parseStmt parses a single statement, returning nil for a statement to
// ignore (there currently are none, but this mirrors the block-loop shape
// used elsewhere so a future no-op statement slots in cleanly).
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.val.Pos

	defer func() {
		if err := recover(); err != nil {
			if _, ok := err.(panicSentinel); ok {
				stmt = &ast.BadStmt{
					Start: start,
					End:   p.syncAfterError(),
				}
				return
			}
			panic(err)
		}
	}()

	switch p.tok {
	case token.LET, token.CONST:
		return p.parseVarDef()
	case token.FN:
		return p.parseFuncDef("")
	case token.CLASS:
		return p.parseClassDef()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileLoop()
	case token.FOR:
		return p.parseForLoop()
	case token.TRY:
		return p.parseTryCatch()
	case token.THROW:
		return p.parseThrow()
	case token.RETURN:
		return p.parseRetStmt()
	case token.BREAK:
		pos := p.expect(token.BREAK)
		p.expectStmtEnd()
		return &ast.BreakStmt{Start: pos}
	case token.CONTINUE:
		pos := p.expect(token.CONTINUE)
		p.expectStmtEnd()
		return &ast.ContStmt{Start: pos}
	default:
		return p.parseSimpleStmt()
	}
}

// expectStmtEnd consumes the statement terminator: a NEWLINE, or nothing at
// EOF/DEDENT (the last line of a file or block need not end in a newline).
func (p *parser) expectStmtEnd() {
	if p.tok == token.NEWLINE {
		p.advance()
		return
	}
	if p.tok == token.EOF || p.tok == token.DEDENT {
		return
	}
	p.errorExpected(p.val.Pos, "newline")
	panic(errPanicMode)
}

type syncMode int

const (
	syncAfter syncMode = iota
	syncAt
)

// syncToks maps tokens that make safe resynchronization points for
// panic-mode error recovery to whether the sync position is right after
// that token is consumed, or right at it (without consuming).
var syncToks = map[token.Token]syncMode{
	token.NEWLINE:  syncAfter,
	token.DEDENT:   syncAfter,
	token.LET:      syncAt,
	token.CONST:    syncAt,
	token.FN:       syncAt,
	token.CLASS:    syncAt,
	token.IF:       syncAt,
	token.WHILE:    syncAt,
	token.FOR:      syncAt,
	token.TRY:      syncAt,
	token.THROW:    syncAt,
	token.RETURN:   syncAt,
	token.BREAK:    syncAt,
	token.CONTINUE: syncAt,
}

// syncAfterError skips tokens until a safe resynchronization point, for the
// BadStmt produced when a statement fails to parse.
func (p *parser) syncAfterError() token.Pos {
	for p.tok != token.EOF {
		if mode, ok := syncToks[p.tok]; ok {
			if mode == syncAfter {
				p.advance()
			}
			return p.val.Pos
		}
		p.advance()
	}
	return p.val.Pos
}
