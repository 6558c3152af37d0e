package parser

import (
	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/token"
)

// parseInterfaceDef parses "interface Name [<typedef t, ...>] { decls }".
func (p *Parser) parseInterfaceDef(generic bool) (ast.NodeID, bool) {
	start := p.advance().Span
	nameID, ok := p.parseIdent("interface name")
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.Lt) {
		p.parseTypeParams(token.Lt, token.Gt)
		generic = true
	}
	body := p.tree.New(ast.KindInterfaceBody, p.peek().Span)
	bodyStart, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open the interface body")
	if !ok {
		return ast.NoNodeID, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		decl, ok := p.parseDeclaration()
		if !ok {
			p.resyncMember()
			continue
		}
		p.add(body, decl)
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the interface body")
	p.cover(body, bodyStart.Span)
	if p.at(token.Semicolon) {
		p.advance()
	}
	id := p.node(ast.KindInterfaceDef, start, nameID, body)
	if generic {
		p.tree.SetOp(id, "generic")
	}
	return p.cover(id, start), true
}

// parseTypeParams consumes "<typedef t, ...>" or "(typedef t, uint8_t n)"
// and registers every typedef'd name as a type.
func (p *Parser) parseTypeParams(open, close token.Kind) {
	p.advance()
	depth := 1
	for depth > 0 && !p.at(token.EOF) {
		switch p.peek().Kind {
		case open:
			depth++
		case close:
			depth--
		case token.KwTypedef:
			if next := p.peekN(1); next.Kind == token.Ident {
				p.typedefs[next.Text] = true
			}
		}
		p.advance()
	}
}

// parseComponent parses a module or configuration.
func (p *Parser) parseComponent(kind ast.Kind, generic bool) (ast.NodeID, bool) {
	start := p.advance().Span
	nameID, ok := p.parseIdent("component name")
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.LParen) {
		p.parseTypeParams(token.LParen, token.RParen)
	}
	for p.at(token.At) {
		p.parseAttribute()
	}
	spec, ok := p.parseSpecification()
	if !ok {
		return ast.NoNodeID, false
	}
	id := p.node(kind, start, nameID, spec)
	if generic {
		p.tree.SetOp(id, "generic")
	}
	if p.at(token.KwImplementation) {
		var body ast.NodeID
		if kind == ast.KindConfiguration {
			body = p.parseWiring()
		} else {
			body = p.parseImplementation()
		}
		p.add(id, body)
	} else {
		p.err(diag.SynUnexpectedToken, "expected 'implementation'")
	}
	return p.cover(id, start), true
}

// parseSpecification parses "{ uses ...; provides ...; }". The node is
// always created so units without a body still have one.
func (p *Parser) parseSpecification() (ast.NodeID, bool) {
	spec := p.tree.New(ast.KindSpecification, p.peek().Span)
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open the specification")
	if !ok {
		return spec, true
	}
	for !p.atOr(token.RBrace, token.EOF) {
		if !p.atOr(token.KwUses, token.KwProvides) {
			p.err(diag.SynUnexpectedToken, "expected 'uses' or 'provides'")
			p.resyncMember()
			continue
		}
		p.add(spec, p.parseUsesProvides())
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the specification")
	return p.cover(spec, open.Span), true
}

func (p *Parser) parseUsesProvides() ast.NodeID {
	dir := p.advance()
	id := p.tree.New(ast.KindUsesProvides, dir.Span)
	p.tree.SetOp(id, dir.Text)
	if p.at(token.LBrace) {
		p.advance()
		for !p.atOr(token.RBrace, token.EOF) {
			if item, ok := p.parseSpecItem(); ok {
				p.add(id, item)
				continue
			}
			p.resyncMember()
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the "+dir.Text+" block")
		return p.cover(id, dir.Span)
	}
	if item, ok := p.parseSpecItem(); ok {
		p.add(id, item)
	} else {
		p.resyncMember()
	}
	return p.cover(id, dir.Span)
}

// parseSpecItem parses "interface X[<args>] [as Y] [[params]];" or a
// bare command/event declaration.
func (p *Parser) parseSpecItem() (ast.NodeID, bool) {
	if !p.at(token.KwInterface) {
		return p.parseDeclaration()
	}
	start := p.advance().Span
	ifaceID, ok := p.parseIdent("interface name")
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.Lt) {
		p.skipBalanced(token.Lt, token.Gt)
	}
	ref := p.node(ast.KindInterfaceRef, start, ifaceID)
	if p.at(token.KwAs) {
		p.advance()
		aliasID, ok := p.parseIdent("interface alias")
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(ref, aliasID)
	}
	if p.at(token.LBracket) {
		p.skipBalanced(token.LBracket, token.RBracket)
	}
	for p.at(token.At) {
		p.parseAttribute()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after interface reference")
	return p.cover(ref, start), true
}

// parseImplementation parses a module body.
func (p *Parser) parseImplementation() ast.NodeID {
	start := p.advance().Span
	impl := p.tree.New(ast.KindImplementation, start)
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after implementation"); !ok {
		return impl
	}
	for !p.atOr(token.RBrace, token.EOF) {
		if !p.isDeclStart() {
			p.err(diag.SynUnexpectedToken, "expected declaration or function definition")
			p.resyncMember()
			continue
		}
		item, ok := p.parseExternalDecl()
		if !ok {
			p.resyncMember()
			continue
		}
		p.add(impl, item)
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the implementation")
	return p.cover(impl, start)
}

// parseWiring parses a configuration body.
func (p *Parser) parseWiring() ast.NodeID {
	start := p.advance().Span
	wiring := p.tree.New(ast.KindWiring, start)
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after implementation"); !ok {
		return wiring
	}
	for !p.atOr(token.RBrace, token.EOF) {
		var (
			item ast.NodeID
			ok   bool
		)
		switch {
		case p.at(token.KwComponents):
			item, ok = p.parseComponentList()
		case p.at(token.Ident) && !p.isDeclStart():
			item, ok = p.parseConnection()
		case p.isDeclStart():
			item, ok = p.parseDeclaration()
		default:
			p.err(diag.SynUnexpectedToken, "expected 'components' or a connection")
		}
		if !ok {
			p.resyncMember()
			continue
		}
		p.add(wiring, item)
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the implementation")
	return p.cover(wiring, start)
}

// parseComponentList parses "components A, new B(args) as C;".
func (p *Parser) parseComponentList() (ast.NodeID, bool) {
	start := p.advance().Span
	list := p.tree.New(ast.KindComponentList, start)
	for {
		ref, ok := p.parseComponentRef()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(list, ref)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after components")
	return p.cover(list, start), true
}

func (p *Parser) parseComponentRef() (ast.NodeID, bool) {
	start := p.peek().Span
	isNew := false
	if p.at(token.KwNew) {
		p.advance()
		isNew = true
	}
	nameID, ok := p.parseIdent("component name")
	if !ok {
		return ast.NoNodeID, false
	}
	ref := p.node(ast.KindComponentRef, start, nameID)
	if isNew {
		p.tree.SetOp(ref, "new")
	}
	if p.at(token.LParen) {
		args, ok := p.parseArgs(true)
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(ref, args)
	}
	if p.at(token.KwAs) {
		p.advance()
		aliasID, ok := p.parseIdent("component alias")
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(ref, aliasID)
	}
	return p.cover(ref, start), true
}

// parseConnection parses "A.X -> B.Y;", "A.X <- B.Y;" or "X = B.Y;".
func (p *Parser) parseConnection() (ast.NodeID, bool) {
	start := p.peek().Span
	left, ok := p.parseEndpoint()
	if !ok {
		return ast.NoNodeID, false
	}
	op := p.peek()
	if !p.atOr(token.Arrow, token.LeftArrow, token.Assign) {
		p.err(diag.SynUnexpectedToken, "expected '->', '<-' or '=' in wiring")
		return ast.NoNodeID, false
	}
	p.advance()
	right, ok := p.parseEndpoint()
	if !ok {
		return ast.NoNodeID, false
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after connection")
	conn := p.node(ast.KindConnection, start, left, right)
	p.tree.SetOp(conn, op.Text)
	return p.cover(conn, start), true
}

func (p *Parser) parseEndpoint() (ast.NodeID, bool) {
	start := p.peek().Span
	first, ok := p.parseIdent("component or interface name")
	if !ok {
		return ast.NoNodeID, false
	}
	ep := p.node(ast.KindEndpoint, start, first)
	if p.at(token.Dot) {
		p.advance()
		second, ok := p.parseIdent("interface name")
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(ep, second)
	}
	if p.at(token.LBracket) {
		p.skipBalanced(token.LBracket, token.RBracket)
	}
	return p.cover(ep, start), true
}

// resyncMember skips one broken member of a braced body.
func (p *Parser) resyncMember() {
	p.resyncUntil(token.Semicolon, token.RBrace)
	if p.at(token.Semicolon) {
		p.advance()
	}
}
