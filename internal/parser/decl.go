package parser

import (
	"strings"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/source"
	"nesc/internal/token"
)

func isModifierKind(k token.Kind) bool {
	switch k {
	case token.KwTypedef, token.KwStatic, token.KwExtern, token.KwConst, token.KwVolatile,
		token.KwInline, token.KwCommand, token.KwEvent, token.KwTask, token.KwAsync,
		token.KwNorace, token.KwDefault:
		return true
	}
	return false
}

func isAggregateKind(k token.Kind) bool {
	switch k {
	case token.KwStruct, token.KwUnion, token.KwNxStruct, token.KwNxUnion:
		return true
	}
	return false
}

// isDeclStart reports whether the current token begins a declaration.
func (p *Parser) isDeclStart() bool {
	tok := p.peek()
	switch {
	case isModifierKind(tok.Kind), tok.IsTypeKeyword(), isAggregateKind(tok.Kind),
		tok.Kind == token.KwEnum, tok.Kind == token.At:
		return true
	case tok.Kind == token.Ident:
		return p.isTypeNameAt(0)
	}
	return false
}

// isTypeNameAt reports whether the identifier n tokens ahead names a type:
// a known typedef, or an unknown name directly followed by a declarator.
func (p *Parser) isTypeNameAt(n int) bool {
	tok := p.peekN(n)
	if tok.Kind != token.Ident {
		return false
	}
	if p.typedefs[tok.Text] {
		return true
	}
	switch p.peekN(n + 1).Kind {
	case token.Ident:
		return true
	case token.Star:
		after := p.peekN(n + 2)
		if after.Kind == token.Star {
			return true
		}
		if after.Kind == token.Ident {
			switch p.peekN(n + 3).Kind {
			case token.Semicolon, token.Assign, token.Comma, token.LBracket, token.LParen:
				return true
			}
		}
	}
	return false
}

// isTypeStartAt reports whether the token n ahead starts a type name, as
// needed to tell a cast from a parenthesised expression.
func (p *Parser) isTypeStartAt(n int) bool {
	tok := p.peekN(n)
	switch {
	case tok.IsTypeKeyword(), isAggregateKind(tok.Kind), tok.Kind == token.KwEnum,
		tok.Kind == token.KwConst, tok.Kind == token.KwVolatile:
		return true
	case tok.Kind == token.Ident:
		return p.typedefs[tok.Text]
	}
	return false
}

// declSpecs is what the parser needs to remember about a specifier list.
type declSpecs struct {
	id      ast.NodeID
	typedef bool
}

// parseDeclSpecs parses modifiers, type words, struct/union/enum
// specifiers and attributes.
func (p *Parser) parseDeclSpecs() (declSpecs, bool) {
	start := p.peek().Span
	specs := declSpecs{id: p.tree.New(ast.KindDeclSpecs, start)}
	hasType := false
	for {
		tok := p.peek()
		switch {
		case isModifierKind(tok.Kind):
			p.advance()
			if tok.Kind == token.KwTypedef {
				specs.typedef = true
			}
			p.add(specs.id, p.tree.NewLeaf(ast.KindModifier, tok.Text, tok.Span))
			continue
		case tok.IsTypeKeyword():
			p.advance()
			hasType = true
			p.add(specs.id, p.tree.NewLeaf(ast.KindTypeName, tok.Text, tok.Span))
			continue
		case isAggregateKind(tok.Kind):
			s, ok := p.parseStructSpec()
			if !ok {
				return specs, false
			}
			hasType = true
			p.add(specs.id, s)
			continue
		case tok.Kind == token.KwEnum:
			e, ok := p.parseEnumSpec()
			if !ok {
				return specs, false
			}
			hasType = true
			p.add(specs.id, e)
			continue
		case tok.Kind == token.At:
			p.add(specs.id, p.parseAttribute())
			continue
		case tok.Kind == token.Ident && tok.Text == "__attribute__":
			p.advance()
			if p.at(token.LParen) {
				p.skipBalanced(token.LParen, token.RParen)
			}
			continue
		case tok.Kind == token.Ident && !hasType:
			next := p.peekN(1).Kind
			if p.typedefs[tok.Text] || next == token.Ident || next == token.Star {
				p.advance()
				hasType = true
				p.add(specs.id, p.tree.NewLeaf(ast.KindTypeName, tok.Text, tok.Span))
				continue
			}
		}
		break
	}
	if p.tree.NumChildren(specs.id) == 0 {
		p.err(diag.SynExpectType, "expected type or declaration specifier, got \""+p.peek().Text+"\"")
		return specs, false
	}
	p.cover(specs.id, start)
	return specs, true
}

// parseStructSpec parses "struct|union [tag] [{ fields }]"; nx_ variants
// share the node with Op "struct" or "union".
func (p *Parser) parseStructSpec() (ast.NodeID, bool) {
	kw := p.advance()
	op := "struct"
	if kw.Kind == token.KwUnion || kw.Kind == token.KwNxUnion {
		op = "union"
	}
	id := p.tree.New(ast.KindStructSpec, kw.Span)
	p.tree.SetOp(id, op)
	hasTag := false
	if p.at(token.Ident) {
		tok := p.advance()
		p.add(id, p.tree.NewIdent(tok.Text, tok.Span))
		hasTag = true
	}
	if p.at(token.LBrace) {
		open := p.advance()
		fields := p.tree.New(ast.KindFieldList, open.Span)
		for !p.atOr(token.RBrace, token.EOF) {
			decl, ok := p.parseDeclaration()
			if !ok {
				p.resyncMember()
				continue
			}
			p.add(fields, decl)
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the "+op+" body")
		p.add(id, p.cover(fields, open.Span))
	} else if !hasTag {
		p.err(diag.SynExpectIdentifier, "expected "+op+" tag or body")
		return ast.NoNodeID, false
	}
	return p.cover(id, kw.Span), true
}

// parseEnumSpec parses "enum [tag] [{ A, B = 2, }]".
func (p *Parser) parseEnumSpec() (ast.NodeID, bool) {
	kw := p.advance()
	id := p.tree.New(ast.KindEnumSpec, kw.Span)
	hasTag := false
	if p.at(token.Ident) {
		tok := p.advance()
		p.add(id, p.tree.NewIdent(tok.Text, tok.Span))
		hasTag = true
	}
	if p.at(token.LBrace) {
		open := p.advance()
		list := p.tree.New(ast.KindEnumeratorList, open.Span)
		for !p.atOr(token.RBrace, token.EOF) {
			nameID, ok := p.parseIdent("enumerator name")
			if !ok {
				p.resyncUntil(token.Comma, token.RBrace)
				if p.at(token.Comma) {
					p.advance()
				}
				continue
			}
			e := p.node(ast.KindEnumerator, p.tree.Span(nameID), nameID)
			if p.at(token.Assign) {
				p.advance()
				if v, ok := p.parseConditional(); ok {
					p.add(e, v)
				}
			}
			p.add(list, p.cover(e, p.tree.Span(nameID)))
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the enum body")
		p.add(id, p.cover(list, open.Span))
	} else if !hasTag {
		p.err(diag.SynExpectIdentifier, "expected enum tag or body")
		return ast.NoNodeID, false
	}
	return p.cover(id, kw.Span), true
}

// parseAttribute parses "@name[(args)]".
func (p *Parser) parseAttribute() ast.NodeID {
	at := p.advance()
	id := p.tree.New(ast.KindAttribute, at.Span)
	nameID, ok := p.parseIdent("attribute name")
	if !ok {
		return id
	}
	p.add(id, nameID)
	if p.at(token.LParen) {
		if args, ok := p.parseArgs(false); ok {
			p.add(id, args)
		}
	}
	return p.cover(id, at.Span)
}

// parseDeclarator parses "*... name [suffixes]". name may be qualified
// ("Timer.fired") for commands and events of a used interface. With
// abstract set a missing name yields NoNodeID and no error.
func (p *Parser) parseDeclarator(abstract bool) (ast.NodeID, bool) {
	start := p.peek().Span
	depth := int64(0)
	for p.at(token.Star) {
		p.advance()
		depth++
		for p.atOr(token.KwConst, token.KwVolatile) {
			p.advance()
		}
	}
	if !p.at(token.Ident) {
		if abstract {
			return ast.NoNodeID, true
		}
		p.err(diag.SynExpectIdentifier, "expected declarator name, got \""+p.peek().Text+"\"")
		return ast.NoNodeID, false
	}
	tok := p.advance()
	name := p.tree.NewIdent(tok.Text, tok.Span)
	qualified := false
	if p.at(token.Dot) && p.peekN(1).Kind == token.Ident {
		p.advance()
		member := p.advance()
		name = p.node(ast.KindQualifiedName, tok.Span.Cover(member.Span), name, p.tree.NewIdent(member.Text, member.Span))
		qualified = true
	}
	decl := p.node(ast.KindDeclarator, start, name)
	p.tree.SetValue(decl, depth)
	if qualified && p.at(token.LBracket) {
		// parameterised interface: Send.send[uint8_t id](...)
		p.skipBalanced(token.LBracket, token.RBracket)
	}
	for {
		switch {
		case p.at(token.LBracket):
			open := p.advance()
			suffix := p.tree.New(ast.KindArraySuffix, open.Span)
			if !p.at(token.RBracket) {
				size, ok := p.parseConditional()
				if !ok {
					return ast.NoNodeID, false
				}
				p.add(suffix, size)
			}
			p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'")
			p.add(decl, p.cover(suffix, open.Span))
			continue
		case p.at(token.LParen):
			params, ok := p.parseParamList()
			if !ok {
				return ast.NoNodeID, false
			}
			p.add(decl, params)
			continue
		}
		break
	}
	return p.cover(decl, start), true
}

func (p *Parser) parseParamList() (ast.NodeID, bool) {
	open := p.advance()
	list := p.tree.New(ast.KindParamList, open.Span)
	for !p.atOr(token.RParen, token.EOF) {
		if p.at(token.Ellipsis) {
			p.advance()
			break
		}
		start := p.peek().Span
		specs, ok := p.parseDeclSpecs()
		if !ok {
			p.resyncUntil(token.RParen)
			break
		}
		d, ok := p.parseDeclarator(true)
		if !ok {
			p.resyncUntil(token.RParen)
			break
		}
		p.add(list, p.cover(p.node(ast.KindParamDecl, start, specs.id, d), start))
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the parameter list"); !ok {
		return ast.NoNodeID, false
	}
	return p.cover(list, open.Span), true
}

// hasParams reports whether the declarator's first suffix is a parameter
// list, i.e. it declares a function.
func (p *Parser) hasParams(decl ast.NodeID) bool {
	suffix := p.tree.Child(decl, 1)
	return p.tree.Kind(suffix) == ast.KindParamList
}

// parseExternalDecl parses a declaration or a function definition.
func (p *Parser) parseExternalDecl() (ast.NodeID, bool) {
	start := p.peek().Span
	specs, ok := p.parseDeclSpecs()
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.Semicolon) {
		p.advance()
		return p.cover(p.node(ast.KindDeclaration, start, specs.id), start), true
	}
	first, ok := p.parseDeclarator(false)
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.LBrace) && p.hasParams(first) {
		body, ok := p.parseCompound()
		if !ok {
			return ast.NoNodeID, false
		}
		return p.cover(p.node(ast.KindFunctionDef, start, specs.id, first, body), start), true
	}
	return p.finishDeclaration(start, specs, first)
}

// parseDeclaration parses a declaration without function bodies.
func (p *Parser) parseDeclaration() (ast.NodeID, bool) {
	start := p.peek().Span
	specs, ok := p.parseDeclSpecs()
	if !ok {
		return ast.NoNodeID, false
	}
	if p.at(token.Semicolon) {
		p.advance()
		return p.cover(p.node(ast.KindDeclaration, start, specs.id), start), true
	}
	first, ok := p.parseDeclarator(false)
	if !ok {
		return ast.NoNodeID, false
	}
	return p.finishDeclaration(start, specs, first)
}

func (p *Parser) finishDeclaration(start source.Span, specs declSpecs, first ast.NodeID) (ast.NodeID, bool) {
	inits := p.tree.New(ast.KindInitDeclaratorList, p.tree.Span(first))
	d := first
	for {
		p.add(inits, p.parseInitDeclarator(d))
		if specs.typedef {
			p.declareTypedef(d)
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		var ok bool
		if d, ok = p.parseDeclarator(false); !ok {
			return ast.NoNodeID, false
		}
	}
	p.cover(inits, p.tree.Span(first))
	// a missing ';' is reported but the declaration is kept
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration")
	return p.cover(p.node(ast.KindDeclaration, start, specs.id, inits), start), true
}

// parseInitDeclarator completes "declarator [: width] [@attr] [= init]".
func (p *Parser) parseInitDeclarator(d ast.NodeID) ast.NodeID {
	start := p.tree.Span(d)
	id := p.node(ast.KindInitDeclarator, start, d)
	if p.at(token.Colon) {
		// bit-field width
		p.advance()
		p.parseConditional()
	}
	if p.at(token.At) {
		p.add(id, p.parseAttribute())
	}
	if p.at(token.Assign) {
		p.advance()
		if init, ok := p.parseInitializer(); ok {
			p.add(id, init)
		}
	}
	return p.cover(id, start)
}

func (p *Parser) declareTypedef(d ast.NodeID) {
	if name := p.tree.Child(d, 0); p.tree.Kind(name) == ast.KindIdent {
		p.typedefs[p.tree.Name(name)] = true
	}
}

func (p *Parser) parseInitializer() (ast.NodeID, bool) {
	if p.at(token.LBrace) {
		return p.parseInitializerList()
	}
	return p.parseAssign()
}

// parseInitializerList parses "{ [designators =] value, ... }".
func (p *Parser) parseInitializerList() (ast.NodeID, bool) {
	open := p.advance()
	list := p.tree.New(ast.KindInitializerList, open.Span)
	for !p.atOr(token.RBrace, token.EOF) {
		start := p.peek().Span
		var designators ast.NodeID
		switch {
		case p.atOr(token.Dot, token.LBracket):
			dl, ok := p.parseDesignatorList()
			if !ok {
				return ast.NoNodeID, false
			}
			designators = dl
			p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after designator")
		case p.at(token.Ident) && p.peekN(1).Kind == token.Colon:
			// old GNU form "field: value"
			name := p.advance()
			p.advance()
			d := p.node(ast.KindDesignator, name.Span, p.tree.NewIdent(name.Text, name.Span))
			p.tree.SetOp(d, ".")
			designators = p.node(ast.KindDesignatorList, name.Span, d)
		}
		value, ok := p.parseInitializer()
		if !ok {
			return ast.NoNodeID, false
		}
		p.add(list, p.cover(p.node(ast.KindInitEntry, start, designators, value), start))
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the initializer"); !ok {
		return ast.NoNodeID, false
	}
	return p.cover(list, open.Span), true
}

func (p *Parser) parseDesignatorList() (ast.NodeID, bool) {
	start := p.peek().Span
	list := p.tree.New(ast.KindDesignatorList, start)
	for p.atOr(token.Dot, token.LBracket) {
		tok := p.advance()
		d := p.tree.New(ast.KindDesignator, tok.Span)
		if tok.Kind == token.Dot {
			p.tree.SetOp(d, ".")
			field, ok := p.parseIdent("field name")
			if !ok {
				return ast.NoNodeID, false
			}
			p.add(d, field)
		} else {
			p.tree.SetOp(d, "[")
			index, ok := p.parseConditional()
			if !ok {
				return ast.NoNodeID, false
			}
			p.add(d, index)
			p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' after array designator")
		}
		p.add(list, p.cover(d, tok.Span))
	}
	return p.cover(list, start), true
}

// parseTypeArg parses a type used as a generic component argument into
// one TypeName leaf: "uint8_t", "unsigned int", "message_t*".
func (p *Parser) parseTypeArg() ast.NodeID {
	start := p.peek().Span
	var words []string
	for p.isTypeStartAt(0) || (len(words) > 0 && p.peek().IsTypeKeyword()) {
		tok := p.advance()
		if isAggregateKind(tok.Kind) || tok.Kind == token.KwEnum {
			words = append(words, tok.Text)
			if p.at(token.Ident) {
				words = append(words, p.advance().Text)
			}
			continue
		}
		words = append(words, tok.Text)
	}
	text := strings.Join(words, " ")
	for p.at(token.Star) {
		p.advance()
		text += "*"
	}
	return p.tree.NewLeaf(ast.KindTypeName, text, start.Cover(p.lastSpan))
}
