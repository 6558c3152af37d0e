package parser

import (
	"strconv"
	"strings"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/token"
)

// parseExpr parses a comma expression; the comma operator is kept as a
// Binary with Op ",".
func (p *Parser) parseExpr() (ast.NodeID, bool) {
	left, ok := p.parseAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	for p.at(token.Comma) {
		p.advance()
		right, ok := p.parseAssign()
		if !ok {
			return ast.NoNodeID, false
		}
		left = p.binary(",", left, right)
	}
	return left, true
}

// parseAssign parses right-associative assignment.
func (p *Parser) parseAssign() (ast.NodeID, bool) {
	left, ok := p.parseConditional()
	if !ok {
		return ast.NoNodeID, false
	}
	if !isAssignOp(p.peek().Kind) {
		return left, true
	}
	op := p.advance()
	right, ok := p.parseInitializerOrAssign()
	if !ok {
		return ast.NoNodeID, false
	}
	id := p.node(ast.KindAssign, p.tree.Span(left).Cover(p.tree.Span(right)), left, right)
	p.tree.SetOp(id, op.Text)
	return id, true
}

// parseInitializerOrAssign accepts "{...}" on the right of "=" for
// compound-literal style assignments.
func (p *Parser) parseInitializerOrAssign() (ast.NodeID, bool) {
	if p.at(token.LBrace) {
		return p.parseInitializerList()
	}
	return p.parseAssign()
}

func (p *Parser) parseConditional() (ast.NodeID, bool) {
	cond, ok := p.parseBinary(0)
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.at(token.Question) {
		return cond, true
	}
	p.advance()
	then, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"); !ok {
		return ast.NoNodeID, false
	}
	els, ok := p.parseConditional()
	if !ok {
		return ast.NoNodeID, false
	}
	return p.node(ast.KindConditional, p.tree.Span(cond).Cover(p.tree.Span(els)), cond, then, els), true
}

// parseBinary is a Pratt loop over the left-associative operators.
func (p *Parser) parseBinary(minPrec int) (ast.NodeID, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return ast.NoNodeID, false
	}
	for {
		tok := p.peek()
		prec := binaryPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		p.advance()
		right, ok := p.parseBinary(prec + 1)
		if !ok {
			p.err(diag.SynExpectExpression, "expected expression after '"+tok.Text+"'")
			return ast.NoNodeID, false
		}
		left = p.binary(tok.Text, left, right)
	}
	return left, true
}

func (p *Parser) binary(op string, left, right ast.NodeID) ast.NodeID {
	id := p.node(ast.KindBinary, p.tree.Span(left).Cover(p.tree.Span(right)), left, right)
	p.tree.SetOp(id, op)
	return id
}

func (p *Parser) parseUnary() (ast.NodeID, bool) {
	tok := p.peek()
	switch {
	case isPrefixOp(tok.Kind):
		p.advance()
		operand, ok := p.parseUnary()
		if !ok {
			return ast.NoNodeID, false
		}
		id := p.node(ast.KindUnary, tok.Span, operand)
		p.tree.SetOp(id, tok.Text)
		return p.cover(id, tok.Span), true
	case tok.Kind == token.KwSizeof:
		return p.parseSizeof()
	case tok.Kind == token.LParen && p.isTypeStartAt(1):
		return p.parseCast()
	case tok.Kind == token.KwCall, tok.Kind == token.KwSignal, tok.Kind == token.KwPost:
		return p.parseInvoke()
	}
	return p.parsePostfix()
}

// parseInvoke parses "call I.cmd(...)", "signal I.ev(...)" and "post t()".
func (p *Parser) parseInvoke() (ast.NodeID, bool) {
	kw := p.advance()
	target, ok := p.parsePostfix()
	if !ok {
		return ast.NoNodeID, false
	}
	if p.tree.Kind(target) != ast.KindCall {
		p.report(diag.SynExpectExpression, diag.SevError, p.tree.Span(target), "expected a call after '"+kw.Text+"'")
		return ast.NoNodeID, false
	}
	id := p.node(ast.KindInvoke, kw.Span, target)
	p.tree.SetOp(id, kw.Text)
	return p.cover(id, kw.Span), true
}

// parseTypeName parses "(specs [*...])" up to and including ')', used by
// casts and sizeof; it returns the specs and the pointer depth.
func (p *Parser) parseTypeName() (ast.NodeID, int64, bool) {
	p.advance()
	specs, ok := p.parseDeclSpecs()
	if !ok {
		return ast.NoNodeID, 0, false
	}
	depth := int64(0)
	for p.at(token.Star) {
		p.advance()
		depth++
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after type name"); !ok {
		return ast.NoNodeID, 0, false
	}
	return specs.id, depth, true
}

func (p *Parser) parseCast() (ast.NodeID, bool) {
	start := p.peek().Span
	specs, depth, ok := p.parseTypeName()
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.LBrace) {
		p.err(diag.SynExpectExpression, "compound literals are not supported")
		return ast.NoNodeID, false
	}
	operand, ok := p.parseUnary()
	if !ok {
		return ast.NoNodeID, false
	}
	id := p.node(ast.KindCast, start, specs, operand)
	p.tree.SetValue(id, depth)
	return p.cover(id, start), true
}

func (p *Parser) parseSizeof() (ast.NodeID, bool) {
	kw := p.advance()
	var operand ast.NodeID
	if p.at(token.LParen) && p.isTypeStartAt(1) {
		specs, _, ok := p.parseTypeName()
		if !ok {
			return ast.NoNodeID, false
		}
		operand = specs
	} else {
		var ok bool
		if operand, ok = p.parseUnary(); !ok {
			return ast.NoNodeID, false
		}
	}
	return p.cover(p.node(ast.KindSizeof, kw.Span, operand), kw.Span), true
}

func (p *Parser) parsePostfix() (ast.NodeID, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return ast.NoNodeID, false
	}
	start := p.tree.Span(expr)
	for {
		switch tok := p.peek(); tok.Kind {
		case token.LParen:
			args, ok := p.parseArgs(false)
			if !ok {
				return ast.NoNodeID, false
			}
			expr = p.cover(p.node(ast.KindCall, start, expr, args), start)
		case token.LBracket:
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoNodeID, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' after index"); !ok {
				return ast.NoNodeID, false
			}
			expr = p.cover(p.node(ast.KindIndex, start, expr, index), start)
		case token.Dot, token.Arrow:
			p.advance()
			field, ok := p.parseIdent("member name")
			if !ok {
				return ast.NoNodeID, false
			}
			expr = p.cover(p.node(ast.KindMember, start, expr, field), start)
			p.tree.SetOp(expr, tok.Text)
		case token.PlusPlus, token.MinusMinus:
			p.advance()
			expr = p.cover(p.node(ast.KindUnary, start, expr), start)
			p.tree.SetOp(expr, "post"+tok.Text)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.NodeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.tree.NewIdent(tok.Text, tok.Span), true
	case token.IntLit:
		p.advance()
		id := p.tree.NewLeaf(ast.KindIntLit, tok.Text, tok.Span)
		p.tree.SetValue(id, intValue(tok.Text))
		return id, true
	case token.CharLit:
		p.advance()
		id := p.tree.NewLeaf(ast.KindIntLit, tok.Text, tok.Span)
		p.tree.SetValue(id, charValue(tok.Text))
		return id, true
	case token.StringLit:
		p.advance()
		var sb strings.Builder
		sb.WriteString(tok.Text)
		span := tok.Span
		for p.at(token.StringLit) {
			next := p.advance()
			sb.WriteByte(' ')
			sb.WriteString(next.Text)
			span = span.Cover(next.Span)
		}
		return p.tree.NewLeaf(ast.KindStringLit, sb.String(), span), true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return ast.NoNodeID, false
		}
		return inner, true
	}
	p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
	return ast.NoNodeID, false
}

// parseArgs parses "(a, b, ...)". With allowTypes, type arguments of a
// generic component instantiation become TypeName leaves.
func (p *Parser) parseArgs(allowTypes bool) (ast.NodeID, bool) {
	open := p.advance()
	list := p.tree.New(ast.KindArgList, open.Span)
	for !p.atOr(token.RParen, token.EOF) {
		var arg ast.NodeID
		if allowTypes && p.isTypeStartAt(0) {
			arg = p.parseTypeArg()
		} else {
			var ok bool
			if arg, ok = p.parseAssign(); !ok {
				p.resyncUntil(token.RParen)
				break
			}
		}
		p.add(list, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the argument list"); !ok {
		return ast.NoNodeID, false
	}
	return p.cover(list, open.Span), true
}

// intValue parses a C integer literal; floats and overflow yield 0.
func intValue(text string) int64 {
	trimmed := strings.TrimRight(text, "uUlL")
	v, err := strconv.ParseInt(trimmed, 0, 64)
	if err != nil {
		if u, uerr := strconv.ParseUint(trimmed, 0, 64); uerr == nil {
			return int64(u)
		}
		return 0
	}
	return v
}

// charValue returns the code of a character literal such as 'a' or '\n'.
func charValue(text string) int64 {
	if len(text) < 3 {
		return 0
	}
	body := text[1 : len(text)-1]
	v, _, _, err := strconv.UnquoteChar(body, '\'')
	if err != nil {
		return 0
	}
	return int64(v)
}
