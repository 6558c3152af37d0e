// Package parser builds an ast.Tree for a nesC subset: interface,
// module and configuration definitions plus the C declarations,
// statements and expressions that appear inside them.
package parser

import (
	"slices"

	"nesc/internal/ast"
	"nesc/internal/diag"
	"nesc/internal/lexer"
	"nesc/internal/source"
	"nesc/internal/token"
	"nesc/internal/types"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget is used up.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree *ast.Tree
	Root ast.NodeID
	Bag  *diag.Bag
}

// Parser is the per-file parsing state.
type Parser struct {
	lx       *lexer.Lexer
	tree     *ast.Tree
	fs       *source.FileSet
	opts     Options
	look     []token.Token // lookahead past lx.Peek
	lastSpan source.Span   // span of the last consumed token
	typedefs map[string]bool
}

// ParseFile parses one file into tree and sets its root. tree must be
// empty; its File field should match the lexer's file.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, tree *ast.Tree, opts Options) Result {
	p := Parser{
		lx:       lx,
		tree:     tree,
		fs:       fs,
		opts:     opts,
		typedefs: make(map[string]bool, len(types.IntTypedefs)+2),
	}
	for _, name := range types.IntTypedefs {
		p.typedefs[name] = true
	}
	p.typedefs["bool"] = true
	p.typedefs["message_t"] = true

	root := p.parseItems()
	tree.SetRoot(root)
	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{Tree: tree, Root: root, Bag: bag}
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseItems is the top-level loop: items until EOF.
func (p *Parser) parseItems() ast.NodeID {
	startSpan := p.peek().Span
	file := p.tree.New(ast.KindFile, startSpan)
	for !p.at(token.EOF) {
		if p.at(token.KwIncludes) {
			p.skipIncludes()
			continue
		}
		before := p.peek().Span
		id, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			if p.peek().Span == before && !p.at(token.EOF) {
				p.advance()
			}
			continue
		}
		p.add(file, id)
	}
	p.tree.SetSpan(file, startSpan.Cover(p.peek().Span))
	return file
}

// parseItem picks the top-level construct by its first tokens.
func (p *Parser) parseItem() (ast.NodeID, bool) {
	generic := false
	if p.at(token.KwGeneric) {
		p.advance()
		generic = true
	}
	switch p.peek().Kind {
	case token.KwInterface:
		return p.parseInterfaceDef(generic)
	case token.KwModule:
		return p.parseComponent(ast.KindModule, generic)
	case token.KwConfiguration:
		return p.parseComponent(ast.KindConfiguration, generic)
	}
	if generic {
		p.err(diag.SynUnexpectedToken, "expected 'module', 'configuration' or 'interface' after 'generic'")
		return ast.NoNodeID, false
	}
	if p.isDeclStart() {
		return p.parseExternalDecl()
	}
	p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.peek().Span, "unexpected top-level construct")
	return ast.NoNodeID, false
}

// skipIncludes consumes "includes A, B;".
func (p *Parser) skipIncludes() {
	p.advance()
	for p.at(token.Ident) || p.at(token.Comma) {
		p.advance()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after includes")
}

// resyncTop skips to ';' or the start of the next top-level item.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.Semicolon, token.RBrace, token.KwInterface, token.KwModule,
		token.KwConfiguration, token.KwGeneric, token.KwTypedef)
	if p.atOr(token.Semicolon, token.RBrace) {
		p.advance()
	}
}
