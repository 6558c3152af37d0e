package parser

import (
	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/token"
)

// parseCompound parses "{ stmt* }".
func (p *Parser) parseCompound() (ast.NodeID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoNodeID, false
	}
	block := p.tree.New(ast.KindCompound, open.Span)
	for !p.atOr(token.RBrace, token.EOF) {
		before := p.peek().Span
		stmt, ok := p.parseStatement()
		if !ok {
			p.resyncStatement()
			if p.peek().Span == before && !p.atOr(token.RBrace, token.EOF) {
				p.advance()
			}
			continue
		}
		p.add(block, stmt)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the block"); !ok {
		return p.cover(block, open.Span), false
	}
	return p.cover(block, open.Span), true
}

// resyncStatement skips to just past the next ';' or to a closing '}'.
func (p *Parser) resyncStatement() {
	p.resyncUntil(token.Semicolon)
	if p.at(token.Semicolon) {
		p.advance()
	}
}

func (p *Parser) parseStatement() (ast.NodeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseCompound()
	case token.Semicolon:
		p.advance()
		return p.tree.New(ast.KindExprStmt, tok.Span), true
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDo()
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		p.advance()
		ret := p.tree.New(ast.KindReturn, tok.Span)
		if !p.at(token.Semicolon) {
			value, ok := p.parseExpr()
			if !ok {
				return ast.NoNodeID, false
			}
			p.add(ret, value)
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return"); !ok {
			return ast.NoNodeID, false
		}
		return p.cover(ret, tok.Span), true
	case token.KwBreak, token.KwContinue:
		p.advance()
		jump := p.tree.New(ast.KindJump, tok.Span)
		p.tree.SetOp(jump, tok.Text)
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+tok.Text); !ok {
			return ast.NoNodeID, false
		}
		return p.cover(jump, tok.Span), true
	case token.KwAtomic:
		p.advance()
		body, ok := p.parseCompound()
		if !ok {
			return ast.NoNodeID, false
		}
		return p.cover(p.node(ast.KindAtomic, tok.Span, body), tok.Span), true
	}
	if p.isDeclStart() {
		return p.parseDeclaration()
	}
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	stmt := p.node(ast.KindExprStmt, tok.Span, expr)
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression"); !ok {
		return ast.NoNodeID, false
	}
	return p.cover(stmt, tok.Span), true
}

func (p *Parser) parseCondition(what string) (ast.NodeID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after "+what); !ok {
		return ast.NoNodeID, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after "+what+" condition"); !ok {
		return ast.NoNodeID, false
	}
	return cond, true
}

func (p *Parser) parseIf() (ast.NodeID, bool) {
	kw := p.advance()
	cond, ok := p.parseCondition("if")
	if !ok {
		return ast.NoNodeID, false
	}
	then, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	id := p.node(ast.KindIf, kw.Span, cond, then)
	if p.at(token.KwElse) {
		p.advance()
		els, ok := p.parseStatement()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(id, els)
	}
	return p.cover(id, kw.Span), true
}

func (p *Parser) parseWhile() (ast.NodeID, bool) {
	kw := p.advance()
	cond, ok := p.parseCondition("while")
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	loop := p.node(ast.KindLoop, kw.Span, cond, body)
	p.tree.SetOp(loop, "while")
	return p.cover(loop, kw.Span), true
}

func (p *Parser) parseDo() (ast.NodeID, bool) {
	kw := p.advance()
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
		return ast.NoNodeID, false
	}
	cond, ok := p.parseCondition("while")
	if !ok {
		return ast.NoNodeID, false
	}
	p.want(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after do-while")
	loop := p.node(ast.KindLoop, kw.Span, body, cond)
	p.tree.SetOp(loop, "do")
	return p.cover(loop, kw.Span), true
}

// parseFor keeps the clauses that are present followed by the body.
func (p *Parser) parseFor() (ast.NodeID, bool) {
	kw := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after for"); !ok {
		return ast.NoNodeID, false
	}
	loop := p.tree.New(ast.KindLoop, kw.Span)
	p.tree.SetOp(loop, "for")
	if p.at(token.Semicolon) {
		p.advance()
	} else if p.isDeclStart() {
		init, ok := p.parseDeclaration()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(loop, init)
	} else {
		init, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(loop, init)
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for clause"); !ok {
			return ast.NoNodeID, false
		}
	}
	if !p.at(token.Semicolon) {
		cond, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(loop, cond)
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for clause"); !ok {
		return ast.NoNodeID, false
	}
	if !p.at(token.RParen) {
		step, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(loop, step)
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after for clauses"); !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseStatement()
	if !ok {
		return ast.NoNodeID, false
	}
	p.add(loop, body)
	return p.cover(loop, kw.Span), true
}
