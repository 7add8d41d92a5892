package parser

import (
	"github.com/aalyth/chalcedony/lang/ast"
	"github.com/aalyth/chalcedony/lang/token"
)

// binopPriority gives the left/right binding power of every binary operator;
// all of Chalcedony's operators are left-associative, so left == right for
// every entry.
var binopPriority = map[token.Token]struct{ left, right int }{
	token.OROR:   {1, 1},
	token.ANDAND: {2, 2},
	token.LT:     {3, 3}, token.LE: {3, 3}, token.GT: {3, 3}, token.GE: {3, 3},
	token.EQEQ: {3, 3}, token.NEQ: {3, 3},
	token.PLUS: {4, 4}, token.MINUS: {4, 4},
	token.STAR: {5, 5}, token.SLASH: {5, 5}, token.PERCENT: {5, 5},
}

const unaryPriority = 6

// parseExpr parses a full expression.
func (p *parser) parseExpr() ast.Expr {
	return p.parseSubExpr(0)
}

// parseSubExpr implements precedence climbing over binopPriority.
func (p *parser) parseSubExpr(limit int) ast.Expr {
	var left ast.Expr
	if p.tok == token.MINUS || p.tok == token.BANG {
		op, pos := p.tok, p.val.Pos
		p.advance()
		operand := p.parseSubExpr(unaryPriority)
		left = &ast.UnaryOpr{Op: op, OpPos: pos, Operand: operand}
	} else {
		left = p.parseSimpleExpr()
	}

	for {
		pr, ok := binopPriority[p.tok]
		if !ok || pr.left <= limit {
			break
		}
		op, pos := p.tok, p.val.Pos
		p.advance()
		right := p.parseSubExpr(pr.right)
		left = &ast.BinOpr{Left: left, Op: op, OpPos: pos, Right: right}
	}
	return left
}

// parseSimpleExpr parses a single operand: a literal, a parenthesized
// expression, a list literal, or an identifier chain (variable, call, or
// attribute resolution).
func (p *parser) parseSimpleExpr() ast.Expr {
	pos := p.val.Pos
	switch p.tok {
	case token.INT:
		lit, val := p.val.Raw, p.val.Int
		p.advance()
		return &ast.IntLit{Start: pos, Raw: lit, Value: val}

	case token.UINT:
		lit, val := p.val.Raw, p.val.Uint
		p.advance()
		return &ast.UintLit{Start: pos, Raw: lit, Value: val}

	case token.FLOAT:
		lit, val := p.val.Raw, p.val.Float
		p.advance()
		return &ast.FloatLit{Start: pos, Raw: lit, Value: val}

	case token.STRING:
		lit, val := p.val.Raw, p.val.String
		p.advance()
		return &ast.StrLit{Start: pos, Raw: lit, Value: val}

	case token.TRUE, token.FALSE:
		val := p.tok == token.TRUE
		p.advance()
		return &ast.BoolLit{Start: pos, Value: val}

	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e

	case token.LBRACK:
		return p.parseListLit()

	case token.IDENT:
		return p.parseIdentChain()

	default:
		p.errorExpected(pos, "expression")
		end := pos
		if p.tok != token.EOF {
			p.advance()
		}
		return &ast.BadExpr{Start: pos, End: end}
	}
}

func (p *parser) parseListLit() *ast.ListLit {
	lbrack := p.expect(token.LBRACK)
	var elements []ast.Expr
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elements = append(elements, p.parseExpr())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.ListLit{Lbrack: lbrack, Elements: elements, Rbrack: rbrack}
}

// parseIdentChain parses a possibly-dotted chain of variable references and
// calls, e.g. `x`, `f(1, 2)`, or `a.b.c(1)`.
func (p *parser) parseIdentChain() ast.Expr {
	first := p.parseAttrElem()
	if p.tok != token.DOT {
		return first.(ast.Expr)
	}

	chain := []ast.AttrElem{first}
	for p.tok == token.DOT {
		p.advance()
		chain = append(chain, p.parseAttrElem())
	}
	return &ast.AttrRes{Chain: chain}
}

// parseAttrElem parses a single link of an identifier chain: a bare name
// (VarCall) or a call (FuncCall).
func (p *parser) parseAttrElem() ast.AttrElem {
	pos := p.val.Pos
	name := p.val.Raw
	p.expect(token.IDENT)

	if p.tok != token.LPAREN {
		return &ast.VarCall{Start: pos, Name: name}
	}

	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args = append(args, p.parseExpr())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	rparen := p.expect(token.RPAREN)
	return &ast.FuncCall{Start: pos, Name: name, Args: args, Rparen: rparen}
}
