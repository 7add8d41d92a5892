package parser

import (
	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/token"
)

// atStmtEnd reports whether the current token can terminate a statement
// without an explicit value following it.
func (p *parser) atStmtEnd() bool {
	return p.tok == token.NEWLINE || p.tok == token.EOF || p.tok == token.DEDENT
}

// parseType parses a type annotation: a bare name, or `List<Elem>`.
func (p *parser) parseType() *ast.Type {
	pos := p.val.Pos
	name := p.val.Raw
	p.expect(token.IDENT)

	t := &ast.Type{Name: name, Start: pos}
	if name == "List" && p.tok == token.LT {
		p.advance()
		t.Elem = p.parseType()
		p.expect(token.GT)
	}
	return t
}

// parseParam parses a single `name [: Type]` parameter or member
// declaration.
func (p *parser) parseParam() ast.Param {
	pos := p.val.Pos
	name := p.val.Raw
	p.expect(token.IDENT)

	var typ *ast.Type
	if p.tok == token.COLON {
		p.advance()
		typ = p.parseType()
	}
	return ast.Param{Name: name, Type: typ, Start: pos}
}

// parseVarDef parses `let`/`const name [: Type] = value`.
func (p *parser) parseVarDef() *ast.VarDef {
	var v ast.VarDef
	v.IsConst = p.tok == token.CONST
	v.Start = p.expect(token.LET, token.CONST)

	v.Name = p.val.Raw
	p.expect(token.IDENT)

	if p.tok == token.COLON {
		p.advance()
		v.Type = p.parseType()
	}

	p.expect(token.EQ)
	v.Value = p.parseExpr()
	p.expectStmtEnd()
	return &v
}

// parseFuncDef parses `fn name[!](args) [-> RetType]:` followed by an
// indented body. namespace is the enclosing class name for methods, or ""
// for a top-level function.
func (p *parser) parseFuncDef(namespace string) *ast.FuncDef {
	var fn ast.FuncDef
	fn.Namespace = namespace
	fn.Start = p.expect(token.FN)

	fn.Name = p.val.Raw
	p.expect(token.IDENT)
	if p.tok == token.BANG {
		fn.IsUnsafe = true
		p.advance()
	}

	p.expect(token.LPAREN)
	for p.tok != token.RPAREN && p.tok != token.EOF {
		fn.Args = append(fn.Args, p.parseParam())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	if p.tok == token.ARROW {
		p.advance()
		fn.RetType = p.parseType()
	}

	p.expect(token.COLON)
	fn.Body = p.parseBlock()
	fn.End = fn.Body.End
	return &fn
}

// parseClassDef parses `class Name:` followed by an indented body of member
// declarations and method definitions. Classes do not inherit.
func (p *parser) parseClassDef() *ast.ClassDef {
	var c ast.ClassDef
	c.Start = p.expect(token.CLASS)

	c.Name = p.val.Raw
	p.expect(token.IDENT)
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)

	for p.tok != token.DEDENT && p.tok != token.EOF {
		if p.tok == token.FN {
			c.Methods = append(c.Methods, p.parseFuncDef(c.Name))
			continue
		}
		c.Members = append(c.Members, p.parseParam())
		p.expectStmtEnd()
	}

	c.End = p.val.Pos
	p.expect(token.DEDENT)
	return &c
}

// parseIfStmt parses an if/elif/else chain.
func (p *parser) parseIfStmt() *ast.IfStmt {
	var s ast.IfStmt
	s.Start = p.expect(token.IF)
	s.Cond = p.parseExpr()
	p.expect(token.COLON)
	s.Body = p.parseBlock()

	for p.tok == token.ELIF {
		var e ast.ElifBranch
		e.Start = p.expect(token.ELIF)
		e.Cond = p.parseExpr()
		p.expect(token.COLON)
		e.Body = p.parseBlock()
		s.Elifs = append(s.Elifs, &e)
	}

	if p.tok == token.ELSE {
		p.advance()
		p.expect(token.COLON)
		s.Else = p.parseBlock()
	}

	s.EndStart = p.val.Pos
	return &s
}

// parseWhileLoop parses a while loop.
func (p *parser) parseWhileLoop() *ast.WhileLoop {
	var w ast.WhileLoop
	w.Start = p.expect(token.WHILE)
	w.Cond = p.parseExpr()
	p.expect(token.COLON)
	w.Body = p.parseBlock()
	w.End = w.Body.End
	return &w
}

// parseForLoop parses `for name in iterable:`.
func (p *parser) parseForLoop() *ast.ForLoop {
	var f ast.ForLoop
	f.Start = p.expect(token.FOR)

	f.IterName = p.val.Raw
	p.expect(token.IDENT)
	p.expect(token.IN)
	f.Iterable = p.parseExpr()

	p.expect(token.COLON)
	f.Body = p.parseBlock()
	f.End = f.Body.End
	return &f
}

// parseTryCatch parses `try:` body `catch(name[: Type]):` body.
func (p *parser) parseTryCatch() *ast.TryCatch {
	var t ast.TryCatch
	t.Start = p.expect(token.TRY)
	p.expect(token.COLON)
	t.TryBody = p.parseBlock()

	p.expect(token.CATCH)
	p.expect(token.LPAREN)
	t.ExceptionVar = p.val.Raw
	p.expect(token.IDENT)
	if p.tok == token.COLON {
		p.advance()
		p.parseType() // exception type: parsed and discarded, the AST does not record it
	}
	p.expect(token.RPAREN)

	p.expect(token.COLON)
	t.CatchBody = p.parseBlock()
	t.End = t.CatchBody.End
	return &t
}

// parseThrow parses `throw expr`.
func (p *parser) parseThrow() *ast.Throw {
	var t ast.Throw
	t.Start = p.expect(token.THROW)
	t.Value = p.parseExpr()
	p.expectStmtEnd()
	return &t
}

// parseRetStmt parses `return [expr]`.
func (p *parser) parseRetStmt() *ast.RetStmt {
	var r ast.RetStmt
	r.Start = p.expect(token.RETURN)
	if !p.atStmtEnd() {
		r.Value = p.parseExpr()
	}
	p.expectStmtEnd()
	return &r
}

// parseSimpleStmt parses an assignment or a bare expression statement.
func (p *parser) parseSimpleStmt() ast.Stmt {
	e := p.parseExpr()

	if p.tok == token.EQ || p.tok.IsAugBinop() {
		op, pos := p.tok, p.val.Pos
		p.advance()
		rhs := p.parseExpr()
		p.expectStmtEnd()
		return &ast.Assign{Lhs: e, Op: op, Pos: pos, Rhs: rhs}
	}

	p.expectStmtEnd()
	return &ast.ExprStmt{X: e}
}
