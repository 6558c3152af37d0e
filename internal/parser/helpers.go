package parser

import (
	"slices"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/source"
	"nesc/internal/token"
)

// peek returns the current token.
func (p *Parser) peek() token.Token {
	if len(p.look) > 0 {
		return p.look[0]
	}
	return p.lx.Peek()
}

// peekN looks n tokens past the current one; peekN(0) == peek().
func (p *Parser) peekN(n int) token.Token {
	if n == 0 {
		return p.peek()
	}
	if len(p.look) == 0 {
		p.look = append(p.look, p.lx.Next())
	}
	for len(p.look) <= n {
		last := p.look[len(p.look)-1]
		if last.Kind == token.EOF {
			return last
		}
		p.look = append(p.look, p.lx.Next())
	}
	return p.look[n]
}

// advance consumes the current token and updates lastSpan.
func (p *Parser) advance() token.Token {
	var tok token.Token
	if len(p.look) > 0 {
		tok = p.look[0]
		p.look = p.look[1:]
	} else {
		tok = p.lx.Next()
	}
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan points just past the last token when the current one
// is EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect consumes k or reports code and returns (invalid, false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// want consumes k or warns.
func (p *Parser) want(k token.Kind, code diag.Code, msg string) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	p.report(code, diag.SevWarning, p.getDiagnosticSpan(), msg)
	return false
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
	return true
}

// resyncUntil skips tokens until one of stops (or EOF) at bracket depth 0.
func (p *Parser) resyncUntil(stops ...token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if depth == 0 && slices.Contains(stops, k) {
			return
		}
		switch k {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.RParen, token.RBracket:
			// a stray closer at depth 0 is skipped
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// skipBalanced consumes a bracketed group starting at open, e.g. the
// type arguments of "interface Timer<TMilli>".
func (p *Parser) skipBalanced(open, close token.Kind) source.Span {
	start := p.advance().Span
	depth := 1
	for depth > 0 && !p.at(token.EOF) {
		switch p.peek().Kind {
		case open:
			depth++
		case close:
			depth--
		}
		p.advance()
	}
	if depth > 0 {
		p.err(diag.SynUnexpectedToken, "unbalanced '"+open.String()+"'")
	}
	return start.Cover(p.lastSpan)
}

// add attaches child; a contract violation is a parser bug surfaced as
// a diagnostic.
func (p *Parser) add(parent, child ast.NodeID) {
	if !child.IsValid() {
		return
	}
	if err := p.tree.Add(parent, child); err != nil {
		p.report(diag.SynInvalidChild, diag.SevError, p.tree.Span(child), err.Error())
	}
}

// node allocates kind over span and attaches the valid children.
func (p *Parser) node(kind ast.Kind, span source.Span, children ...ast.NodeID) ast.NodeID {
	id := p.tree.New(kind, span)
	for _, c := range children {
		p.add(id, c)
	}
	return id
}

// cover sets id's span from start to the last consumed token.
func (p *Parser) cover(id ast.NodeID, start source.Span) ast.NodeID {
	p.tree.SetSpan(id, start.Cover(p.lastSpan))
	return id
}

// parseIdent expects an identifier and returns it as an Ident leaf.
func (p *Parser) parseIdent(what string) (ast.NodeID, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.tree.NewIdent(tok.Text, tok.Span), true
	}
	p.err(diag.SynExpectIdentifier, "expected "+what+", got \""+p.peek().Text+"\"")
	return ast.NoNodeID, false
}
