package parser

import (
	"github.com/xplshn/rcc/pkg/ast"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/token"
)

// Statement and Declaration Parsing

// parseBaseType reads `int` or `char` followed by any number of `*`.
func (p *Parser) parseBaseType() *ast.Type {
	var ty *ast.Type
	switch {
	case p.match(token.Int):
		ty = ast.NewType(ast.TYPE_INT)
	case p.match(token.Char):
		ty = ast.NewType(ast.TYPE_CHAR)
	default:
		p.fail(ErrTypename, "typename")
	}
	for p.match(token.Star) {
		ty = ast.PtrTo(ty)
	}
	return ty
}

// parseArrayDims reads `[N]...` suffixes. The first dimension is the
// outermost, so int a[2][3] is an array of 2 arrays of 3 ints. This is C
// order and the reverse of the original rcc, which nested left to right.
func (p *Parser) parseArrayDims(ty *ast.Type) *ast.Type {
	var dims []int
	for p.match(token.LBracket) {
		if !p.check(token.Number) {
			p.fail(ErrArrayLen, "number")
		}
		length := p.parsePrimaryExpr().Data.(ast.NumNode).Value
		dims = append(dims, int(length))
		p.expect(token.RBracket)
	}
	for i := len(dims) - 1; i >= 0; i-- {
		ty = ast.AryOf(ty, dims[i])
	}
	return ty
}

func (p *Parser) expectIdent(what string) token.Token {
	tok := p.current
	if !p.match(token.Ident) {
		p.fail(ErrIdent, what)
	}
	return tok
}

func (p *Parser) parseDecl() *ast.Node {
	ty := p.parseBaseType()
	nameTok := p.expectIdent("variable name")
	ty = p.parseArrayDims(ty)

	var init *ast.Node
	if p.match(token.Eq) {
		init = p.parseAssignExpr()
	}
	p.expect(token.Semi)
	return ast.NewVardef(nameTok, nameTok.Value, init, ast.Unresolved{}, ty)
}

func (p *Parser) parseParam() *ast.Node {
	ty := p.parseBaseType()
	nameTok := p.expectIdent("parameter name")
	return ast.NewVardef(nameTok, nameTok.Value, nil, ast.Unresolved{}, ty)
}

func (p *Parser) parseExprStmt() *ast.Node {
	tok := p.current
	node := ast.NewExprStmt(tok, p.parseAssignExpr())
	p.expect(token.Semi)
	return node
}

func (p *Parser) parseStmt() *ast.Node {
	tok := p.current
	switch {
	case tok.Type.IsTypeKeyword():
		return p.parseDecl()

	case p.match(token.If):
		p.expect(token.LParen)
		cond := p.parseAssignExpr()
		p.expect(token.RParen)
		then := p.parseStmt()
		var els *ast.Node
		if p.match(token.Else) {
			els = p.parseStmt()
		}
		return ast.NewIf(tok, cond, then, els)

	case p.match(token.For):
		p.expect(token.LParen)
		var init *ast.Node
		if p.current.Type.IsTypeKeyword() {
			init = p.parseDecl()
		} else {
			init = p.parseExprStmt()
		}
		cond := p.parseAssignExpr()
		p.expect(token.Semi)
		incTok := p.current
		inc := ast.NewExprStmt(incTok, p.parseAssignExpr())
		p.expect(token.RParen)
		body := p.parseStmt()
		return ast.NewFor(tok, init, cond, inc, body)

	case p.match(token.While):
		p.expect(token.LParen)
		cond := p.parseAssignExpr()
		p.expect(token.RParen)
		body := p.parseStmt()
		return ast.NewFor(tok, ast.NewNull(tok), cond, ast.NewNull(tok), body)

	case p.match(token.Do):
		body := p.parseStmt()
		p.expect(token.While)
		p.expect(token.LParen)
		cond := p.parseAssignExpr()
		p.expect(token.RParen)
		p.expect(token.Semi)
		return ast.NewDoWhile(tok, body, cond)

	case p.match(token.Return):
		expr := p.parseAssignExpr()
		p.expect(token.Semi)
		return ast.NewReturn(tok, expr)

	case p.match(token.LBrace):
		return p.parseCompoundStmt(tok)

	case p.match(token.Semi):
		return ast.NewNull(tok)
	}
	return p.parseExprStmt()
}

// parseCompoundStmt reads statements up to the closing brace; the opening
// brace has already been consumed.
func (p *Parser) parseCompoundStmt(lbrace token.Token) *ast.Node {
	var stmts []*ast.Node
	for !p.match(token.RBrace) {
		if p.check(token.EOF) {
			p.fail(ErrSyntax, token.RBrace.String())
		}
		stmts = append(stmts, p.parseStmt())
	}
	return ast.NewCompStmt(lbrace, stmts)
}

func (p *Parser) parseToplevel() *ast.Node {
	isExtern := false
	if p.check(token.Extern) {
		p.requireFeature(config.FeatExtern)
		p.advance()
		isExtern = true
	}
	ty := p.parseBaseType()
	nameTok := p.expectIdent("function or variable name")

	// Function
	if p.match(token.LParen) {
		var params []*ast.Node
		if !p.match(token.RParen) {
			params = append(params, p.parseParam())
			for p.match(token.Colon) {
				params = append(params, p.parseParam())
			}
			p.expect(token.RParen)
		}
		p.expect(token.LBrace)
		body := p.parseCompoundStmt(p.previous)
		return ast.NewFunc(nameTok, nameTok.Value, params, body, ty)
	}

	// Global variable
	ty = p.parseArrayDims(ty)
	scope := ast.Global{Size: ast.SizeOf(ty)}
	if isExtern {
		scope = ast.Global{IsExtern: true}
	}
	p.expect(token.Semi)
	return ast.NewVardef(nameTok, nameTok.Value, nil, scope, ty)
}
