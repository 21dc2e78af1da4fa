package parser

import (
	"github.com/xplshn/rcc/pkg/ast"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/token"
)

// Expression Parsing
//
// Each layer hands its operands to the next tighter one:
// assign > logor > logand > equality > rel > add > mul > unary > postfix > primary

func (p *Parser) parsePrimaryExpr() *ast.Node {
	tok := p.current
	switch {
	case p.match(token.Number):
		return ast.NewNum(tok, tok.Num)
	case p.match(token.String):
		return ast.NewStr(tok, tok.Str)
	case p.match(token.Ident):
		if !p.match(token.LParen) {
			return ast.NewIdent(tok, tok.Value)
		}
		var args []*ast.Node
		if p.match(token.RParen) {
			return ast.NewCall(tok, tok.Value, args)
		}
		args = append(args, p.parseAssignExpr())
		for p.match(token.Colon) {
			args = append(args, p.parseAssignExpr())
		}
		p.expect(token.RParen)
		return ast.NewCall(tok, tok.Value, args)
	case p.match(token.LParen):
		if p.check(token.LBrace) {
			p.requireFeature(config.FeatStmtExpr)
			p.warn(config.WarnPedantic, p.current, "ISO C forbids braced-groups within expressions")
			p.advance()
			body := p.parseCompoundStmt(p.previous)
			p.expect(token.RParen)
			return ast.NewStmtExpr(tok, body)
		}
		expr := p.parseAssignExpr()
		p.expect(token.RParen)
		return expr
	}
	p.fail(ErrSyntax, "expression")
	return nil
}

// a[i] is *(a + i)
func (p *Parser) parsePostfixExpr() *ast.Node {
	lhs := p.parsePrimaryExpr()
	for p.match(token.LBracket) {
		tok := p.previous
		index := p.parseAssignExpr()
		lhs = ast.NewDeref(tok, ast.NewBinOp(tok, token.Plus, lhs, index))
		p.expect(token.RBracket)
	}
	return lhs
}

// `*` and `&` take a multiplicative operand, sizeof and _Alignof a unary one.
func (p *Parser) parseUnaryExpr() *ast.Node {
	tok := p.current
	switch {
	case p.match(token.Star):
		return ast.NewDeref(tok, p.parseMulExpr())
	case p.match(token.And):
		return ast.NewAddr(tok, p.parseMulExpr())
	case p.match(token.Sizeof):
		return ast.NewSizeof(tok, p.parseUnaryExpr())
	case p.check(token.Alignof):
		p.requireFeature(config.FeatAlignof)
		p.advance()
		return ast.NewAlignof(tok, p.parseUnaryExpr())
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parseMulExpr() *ast.Node {
	lhs := p.parseUnaryExpr()
	for p.check(token.Star) || p.check(token.Slash) {
		tok := p.current
		p.advance()
		lhs = ast.NewBinOp(tok, tok.Type, lhs, p.parseUnaryExpr())
	}
	return lhs
}

func (p *Parser) parseAddExpr() *ast.Node {
	lhs := p.parseMulExpr()
	for p.check(token.Plus) || p.check(token.Minus) {
		tok := p.current
		p.advance()
		lhs = ast.NewBinOp(tok, tok.Type, lhs, p.parseMulExpr())
	}
	return lhs
}

// a > b is rewritten to b < a so only Lt reaches later passes.
func (p *Parser) parseRelExpr() *ast.Node {
	lhs := p.parseAddExpr()
	for {
		tok := p.current
		switch {
		case p.match(token.Lt):
			lhs = ast.NewBinOp(tok, token.Lt, lhs, p.parseAddExpr())
		case p.match(token.Gt):
			lhs = ast.NewBinOp(tok, token.Lt, p.parseAddExpr(), lhs)
		default:
			return lhs
		}
	}
}

// At most one == or != per expression; a==b==c leaves the second == unconsumed.
func (p *Parser) parseEqualityExpr() *ast.Node {
	lhs := p.parseRelExpr()
	tok := p.current
	if p.match(token.EqEq) || p.match(token.Neq) {
		return ast.NewBinOp(tok, tok.Type, lhs, p.parseRelExpr())
	}
	return lhs
}

func (p *Parser) parseLogandExpr() *ast.Node {
	lhs := p.parseEqualityExpr()
	for p.check(token.AndAnd) {
		tok := p.current
		p.advance()
		lhs = ast.NewLogand(tok, lhs, p.parseEqualityExpr())
	}
	return lhs
}

func (p *Parser) parseLogorExpr() *ast.Node {
	lhs := p.parseLogandExpr()
	for p.check(token.OrOr) {
		tok := p.current
		p.advance()
		lhs = ast.NewLogor(tok, lhs, p.parseLogandExpr())
	}
	return lhs
}

func (p *Parser) parseAssignExpr() *ast.Node {
	lhs := p.parseLogorExpr()
	tok := p.current
	if p.match(token.Eq) {
		return ast.NewBinOp(tok, token.Eq, lhs, p.parseAssignExpr())
	}
	return lhs
}
