// Package parser implements the CHTL Parser (spec.md §4.E): a recursive
// descent parser that turns one CHTL-type fragment's token stream into
// the ast.Node tree, registering every [Template]/[Custom]/[Namespace]
// declaration into a symbols.Manager as it goes.
//
// Grounded on the overall shape of a position-tracking parser that stops
// and recovers rather than panicking, feeding a Handler as it goes —
// internal/transform/transform.go's walk-and-mutate style is the closest
// surviving artifact for that idiom — and on the grammar implied by
// original_source/include's template/custom/namespace headers for
// declaration shapes.
package parser

import (
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/lexer"
	"github.com/chtl-lang/chtl/internal/loc"
	"github.com/chtl-lang/chtl/internal/symbols"
	"github.com/chtl-lang/chtl/internal/token"
)

// Mode selects strict-halt-on-first-error behavior versus best-effort
// recovery, mirroring spec.md §7's two compile modes. Strict stops at the
// next top-level statement boundary once any error has been reported.
type Mode int

const (
	Recovering Mode = iota
	Strict
)

type Parser struct {
	src      string
	filename string
	handler  *diag.Handler
	symtab   *symbols.Manager
	mode     Mode

	toks []token.Token
	pos  int

	ns *symbols.Namespace // current namespace scope for symbol registration
}

func New(src, filename string, h *diag.Handler, symtab *symbols.Manager, mode Mode) *Parser {
	l := lexer.New(src, filename, h)
	return &Parser{
		src:      src,
		filename: filename,
		handler:  h,
		symtab:   symtab,
		mode:     mode,
		toks:     l.Tokenize(),
		ns:       symtab.Global,
	}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	t := p.cur()
	p.handler.Errorf(loc.PhaseParsing, t.Range(), loc.ERROR_EXPECTED_TOKEN,
		"expected %s, found %s %q", k, t.Kind, t.Text)
	return t, false
}

// skipToSyncPoint discards tokens until a brace boundary or EOF, used in
// Recovering mode after a malformed statement (spec.md §7 "error
// recovery resumes at the next `;` or balanced `}`").
func (p *Parser) skipToSyncPoint() {
	depth := 0
	for {
		t := p.cur()
		switch t.Kind {
		case token.EOF:
			return
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// Parse runs the parser to completion, returning the Program root.
func (p *Parser) Parse() *ast.Node {
	prog := ast.NewNode(ast.KindProgram, loc.Loc{File: p.filename, Line: 1, Column: 1})
	for !p.at(token.EOF) {
		if p.mode == Strict && p.handler.HasErrors() {
			break
		}
		n := p.parseStatement()
		if n != nil {
			prog.AppendChild(n)
		}
	}
	return prog
}

func (p *Parser) parseStatement() *ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.MarkerTemplate:
		return p.parseTemplateOrCustomDecl(false)
	case token.MarkerCustom:
		return p.parseTemplateOrCustomDecl(true)
	case token.MarkerOrigin:
		return p.parseOrigin()
	case token.MarkerImport:
		return p.parseImport()
	case token.MarkerNamespace:
		return p.parseNamespace()
	case token.MarkerConfiguration:
		return p.parseConfiguration()
	case token.LineComment, token.BlockComment, token.DashComment, token.GeneratorComment:
		return p.parseComment()
	case token.TypeTag:
		return p.parseTemplateUse()
	case token.Identifier, token.HTMLTagIdentifier:
		return p.parseElement()
	case token.EOF:
		return nil
	default:
		p.handler.Errorf(loc.PhaseParsing, t.Range(), loc.ERROR_UNEXPECTED_TOKEN,
			"unexpected token %s %q at top level", t.Kind, t.Text)
		p.advance()
		if p.mode == Recovering {
			p.skipToSyncPoint()
		}
		return nil
	}
}

func (p *Parser) parseComment() *ast.Node {
	t := p.advance()
	n := ast.NewNode(ast.KindComment, t.Pos)
	n.Text = t.Text
	switch t.Kind {
	case token.LineComment:
		n.CommentKind = ast.CommentSingleLine
	case token.BlockComment:
		n.CommentKind = ast.CommentMultiLine
	case token.GeneratorComment:
		n.CommentKind = ast.CommentGenerator
	default:
		n.CommentKind = ast.CommentDash
	}
	return n
}

// parseElement parses `Tag { ... }` (spec.md §3 "Element").
func (p *Parser) parseElement() *ast.Node {
	tagTok := p.advance()
	n := ast.NewNode(ast.KindElement, tagTok.Pos)
	n.Tag = tagTok.Text

	if !p.at(token.LBrace) {
		// A bare reference with no body, e.g. `div;` inside an Except list,
		// is handled by the caller; at statement position this is an error.
		p.handler.Errorf(loc.PhaseParsing, p.cur().Range(), loc.ERROR_EXPECTED_TOKEN,
			"expected '{' after element tag %q", n.Tag)
		return n
	}
	p.advance() // {
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		child := p.parseElementMember()
		if child != nil {
			if child.Kind == ast.KindAttribute {
				// Also record it on the element itself, where selector
				// automation, reference resolution and the emitter look.
				n.Attrs = append(n.Attrs, child.Attrs...)
			}
			n.AppendChild(child)
		}
	}
	p.expect(token.RBrace)
	return n
}

func (p *Parser) parseElementMember() *ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.KwText:
		return p.parseTextBlock()
	case token.KwStyle:
		return p.parseStyleBlock(true)
	case token.KwScript:
		return p.parseScriptBlock()
	case token.KwInherit:
		return p.parseInherit()
	case token.KwDelete:
		return p.parseDelete()
	case token.KwInsert:
		return p.parseInsert()
	case token.KwExcept:
		return p.parseExcept()
	case token.MarkerOrigin:
		return p.parseOrigin()
	case token.TypeTag:
		return p.parseTemplateUse()
	case token.LineComment, token.BlockComment, token.DashComment, token.GeneratorComment:
		return p.parseComment()
	case token.Identifier, token.HTMLTagIdentifier:
		if p.peekAt(1).Kind == token.Colon || p.peekAt(1).Kind == token.Equals {
			return p.parseAttribute()
		}
		return p.parseElement()
	default:
		p.handler.Errorf(loc.PhaseParsing, t.Range(), loc.ERROR_UNEXPECTED_TOKEN,
			"unexpected token %s %q inside element body", t.Kind, t.Text)
		p.advance()
		if p.mode == Recovering {
			p.skipToSyncPoint()
		}
		return nil
	}
}

// parseAttribute parses `name: value;` or `name = value;` (spec.md §3 —
// `=` is CE (Chtl-Equivalence) equality sugar for `:`).
func (p *Parser) parseAttribute() *ast.Node {
	nameTok := p.advance()
	opTok := p.advance()
	n := ast.NewNode(ast.KindAttribute, nameTok.Pos)
	n.Name = nameTok.Text
	n.Attrs = []ast.Attribute{{
		Name:           nameTok.Text,
		UsesCEEquality: opTok.Kind == token.Equals,
		NameLoc:        nameTok.Pos,
	}}
	value := p.parseRawValue()
	n.Value = value
	n.Attrs[0].Value = value
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseRawValue consumes tokens up to (not including) the next ';', '}',
// or ',' and returns the exact source slice they span, preserving
// original spacing in values like `1px solid red` (spec.md §3 "unquoted
// literal").
func (p *Parser) parseRawValue() string {
	if p.at(token.StringLiteral) {
		t := p.advance()
		return t.Text
	}
	start := p.pos
	for !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.Comma) && !p.at(token.EOF) {
		p.advance()
	}
	if p.pos == start {
		return ""
	}
	first := p.toks[start]
	last := p.toks[p.pos-1]
	return p.src[first.Pos.Start : last.Pos.Start+last.Len]
}

func (p *Parser) parseTextBlock() *ast.Node {
	kw := p.advance() // text
	n := ast.NewNode(ast.KindTextBlock, kw.Pos)
	if p.at(token.Colon) {
		p.advance()
		n.Text = p.parseRawValue()
		if p.at(token.Semicolon) {
			p.advance()
		}
		return n
	}
	if _, ok := p.expect(token.LBrace); ok {
		var parts []string
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if p.at(token.StringLiteral) {
				parts = append(parts, p.advance().Text)
			} else {
				parts = append(parts, p.parseRawValue())
			}
			if p.at(token.Semicolon) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
		n.Text = strings.Join(parts, "")
	}
	return n
}

// parseStyleBlock parses `style { ... }`, recursively handling nested
// rules (selector blocks) and properties (spec.md §3 "StyleBlock").
func (p *Parser) parseStyleBlock(isLocal bool) *ast.Node {
	kw := p.advance() // style
	n := ast.NewNode(ast.KindStyleBlock, kw.Pos)
	n.IsLocal = isLocal
	if _, ok := p.expect(token.LBrace); !ok {
		return n
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		child := p.parseStyleMember()
		if child != nil {
			n.AppendChild(child)
		}
	}
	p.expect(token.RBrace)
	return n
}

func (p *Parser) parseStyleMember() *ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.LineComment, token.BlockComment, token.DashComment, token.GeneratorComment:
		return p.parseComment()
	case token.TypeTag:
		return p.parseTemplateUse()
	case token.KwInherit:
		return p.parseInherit()
	case token.KwDelete:
		return p.parseDelete()
	case token.MarkerOrigin:
		return p.parseOrigin()
	case token.Amp, token.Dot, token.Hash, token.Star:
		if p.looksLikeSelectorBlock() {
			return p.parseStyleRule()
		}
	case token.Identifier:
		if p.peekAt(1).Kind == token.Colon && p.looksLikeProperty() {
			return p.parseStyleProperty()
		}
		if p.looksLikeSelectorBlock() {
			return p.parseStyleRule()
		}
	}
	p.handler.Errorf(loc.PhaseParsing, t.Range(), loc.ERROR_UNEXPECTED_TOKEN,
		"unexpected token %s %q inside style block", t.Kind, t.Text)
	p.advance()
	if p.mode == Recovering {
		p.skipToSyncPoint()
	}
	return nil
}

// looksLikeSelectorBlock scans ahead (without consuming) for a '{' that
// opens a nested rule, stopping early at ';' or a closing '}' — a
// selector and a property never share a leading token, so this
// resolves the grammar ambiguity without backtracking state.
func (p *Parser) looksLikeSelectorBlock() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LBrace:
			if depth == 0 {
				return true
			}
			depth++
		case token.RBrace:
			if depth == 0 {
				return false
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				return false
			}
		case token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) looksLikeProperty() bool {
	return !p.looksLikeSelectorBlock()
}

func (p *Parser) parseStyleRule() *ast.Node {
	sel := p.parseStyleSelector()
	rule := ast.NewNode(ast.KindStyleRule, sel.Loc)
	rule.AppendChild(sel)
	if _, ok := p.expect(token.LBrace); !ok {
		return rule
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		child := p.parseStyleMember()
		if child != nil {
			rule.AppendChild(child)
		}
	}
	p.expect(token.RBrace)
	return rule
}

// parseStyleSelector parses one compound selector (class/id/tag/universal/
// ampersand, optionally with pseudo-class/element suffixes and
// descendant/child combinators) up to the opening '{'.
func (p *Parser) parseStyleSelector() *ast.Node {
	start := p.cur()
	sel := ast.NewNode(ast.KindStyleSelector, start.Pos)
	var raw strings.Builder
	var hasAmp, hasClass, hasID, hasPseudoElement, hasPseudoClass, hasUniversal bool
	for !p.at(token.LBrace) && !p.at(token.EOF) {
		t := p.advance()
		raw.WriteString(t.Text)
		switch t.Kind {
		case token.Dot:
			hasClass = true
		case token.Hash:
			hasID = true
		case token.Amp:
			hasAmp = true
		case token.Star:
			hasUniversal = true
		case token.DblColon:
			hasPseudoElement = true
		case token.Colon:
			hasPseudoClass = true
		}
		if t.Kind == token.Identifier && sel.Value == "" {
			sel.Value = t.Text
		}
	}
	sel.Combinator = raw.String()
	// Priority mirrors how the selector is actually resolved (spec.md
	// §4.H): an ampersand anchors the whole compound selector to the
	// enclosing element regardless of any pseudo-class suffix, so it
	// always wins; otherwise the explicit class/id marker determines the
	// kind, falling back to a bare element or universal selector.
	switch {
	case hasAmp:
		sel.SelectorKind = ast.SelAmpersand
	case hasClass:
		sel.SelectorKind = ast.SelClass
	case hasID:
		sel.SelectorKind = ast.SelID
	case hasPseudoElement:
		sel.SelectorKind = ast.SelPseudoElement
	case hasPseudoClass:
		sel.SelectorKind = ast.SelPseudoClass
	case hasUniversal:
		sel.SelectorKind = ast.SelUniversal
	default:
		sel.SelectorKind = ast.SelElement
	}
	return sel
}

func (p *Parser) parseStyleProperty() *ast.Node {
	nameTok := p.advance()
	n := ast.NewNode(ast.KindStyleProperty, nameTok.Pos)
	n.PropertyName = nameTok.Text
	p.expect(token.Colon)
	for {
		v := p.parseStyleValue()
		if v != nil {
			n.Values = append(n.Values, v)
		}
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseStyleValue parses one value token/function/variable-reference up
// to the next ',' ';' or '}'.
func (p *Parser) parseStyleValue() *ast.Node {
	t := p.cur()
	if t.Kind == token.EOF {
		return nil
	}
	if t.Kind == token.Identifier && p.peekAt(1).Kind == token.LParen {
		groupTok := p.advance()
		p.advance() // (
		var key string
		if p.at(token.Identifier) {
			key = p.advance().Text
		}
		p.expect(token.RParen)
		n := ast.NewNode(ast.KindStyleValue, groupTok.Pos)
		n.ValueKind = ast.ValVariable
		n.Group = groupTok.Text
		n.Value = key
		return n
	}
	start := p.pos
	for !p.at(token.Comma) && !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
		p.advance()
	}
	if p.pos == start {
		return nil
	}
	first := p.toks[start]
	last := p.toks[p.pos-1]
	n := ast.NewNode(ast.KindStyleValue, first.Pos)
	n.ValueKind = ast.ValLiteral
	n.Value = p.src[first.Pos.Start : last.Pos.Start+last.Len]
	return n
}

// parseScriptBlock captures the raw source of `script { ... }` by
// balancing braces directly over the source buffer: script bodies are
// CHTL_JS/JS text the scanner has already classified as opaque (spec.md
// §1), so the CHTL parser never tokenizes them with its own lexer.
func (p *Parser) parseScriptBlock() *ast.Node {
	kw := p.advance() // script
	n := ast.NewNode(ast.KindScriptBlock, kw.Pos)
	n.IsLocal = true
	open, ok := p.expect(token.LBrace)
	if !ok {
		return n
	}
	depth := 1
	bodyStart := open.Pos.Start + open.Len
	i := bodyStart
	for i < len(p.src) && depth > 0 {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				n.Raw = p.src[bodyStart:i]
			}
		}
		i++
	}
	// Resynchronize the token cursor past the script body: skip tokens
	// whose start offset falls before i.
	for p.pos < len(p.toks) && p.toks[p.pos].Pos.Start < i {
		p.pos++
	}
	return n
}

// parseTemplateUse parses `@Style Name;` / `@Element Name { ... }` /
// `@Var Name(key);` (spec.md §3 "TemplateUse").
func (p *Parser) parseTemplateUse() *ast.Node {
	tag := p.advance() // @Style/@Element/@Var/@Name
	n := ast.NewNode(ast.KindTemplateUse, tag.Pos)
	n.TemplateKind = templateKindFromTag(tag.Text)

	if p.at(token.Identifier) {
		n.Name = p.advance().Text
	}

	if p.at(token.LParen) {
		p.advance()
		if p.at(token.Identifier) {
			key := p.advance().Text
			n.Group = n.Name
			n.Name = key
		}
		p.expect(token.RParen)
	}

	if p.at(token.LBrace) {
		p.advance()
		n.Specializations = make(map[string]*ast.Node)
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			child := p.parseSpecializationMember(n)
			if child != nil {
				n.AppendChild(child)
			}
		}
		p.expect(token.RBrace)
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

func templateKindFromTag(tag string) ast.TemplateKind {
	switch tag {
	case "@Style":
		return ast.TplStyle
	case "@Element":
		return ast.TplElement
	case "@Var":
		return ast.TplVar
	default:
		return ast.TplElement
	}
}

// parseSpecializationMember parses one override/delete/insert statement
// inside a TemplateUse's `{ ... }` block (spec.md §4.H "Specialization").
func (p *Parser) parseSpecializationMember(use *ast.Node) *ast.Node {
	t := p.cur()
	switch t.Kind {
	case token.KwDelete:
		return p.parseDelete()
	case token.KwInsert:
		return p.parseInsert()
	case token.KwInherit:
		return p.parseInherit()
	case token.Identifier:
		if p.peekAt(1).Kind == token.Colon || p.peekAt(1).Kind == token.Equals {
			prop := p.parseStylePropertyOrAttribute()
			if prop.Kind == ast.KindStyleProperty {
				use.Specializations[prop.PropertyName] = prop
				use.SpecOrder = append(use.SpecOrder, prop.PropertyName)
			} else {
				use.Specializations[prop.Name] = prop
				use.SpecOrder = append(use.SpecOrder, prop.Name)
			}
			return prop
		}
		return p.parseElement()
	case token.TypeTag:
		return p.parseTemplateUse()
	case token.LineComment, token.BlockComment, token.DashComment, token.GeneratorComment:
		return p.parseComment()
	default:
		p.handler.Errorf(loc.PhaseParsing, t.Range(), loc.ERROR_UNEXPECTED_TOKEN,
			"unexpected token %s %q inside specialization block", t.Kind, t.Text)
		p.advance()
		return nil
	}
}

// parseStylePropertyOrAttribute disambiguates a specialization-block
// member that could be either a style property override or an element
// attribute override, which share identical `name: value;` shape.
func (p *Parser) parseStylePropertyOrAttribute() *ast.Node {
	nameTok := p.advance()
	opTok := p.advance()
	value := p.parseRawValue()
	if p.at(token.Semicolon) {
		p.advance()
	}
	n := ast.NewNode(ast.KindStyleProperty, nameTok.Pos)
	n.PropertyName = nameTok.Text
	n.Name = nameTok.Text
	n.Attrs = []ast.Attribute{{Name: nameTok.Text, Value: value, UsesCEEquality: opTok.Kind == token.Equals}}
	n.Values = []*ast.Node{{Kind: ast.KindStyleValue, ValueKind: ast.ValLiteral, Value: value}}
	return n
}

// parseInherit parses `inherit @Element Base;` / `inherit Base;` (spec.md
// §3 "Inherit").
func (p *Parser) parseInherit() *ast.Node {
	kw := p.advance() // inherit
	n := ast.NewNode(ast.KindInherit, kw.Pos)
	if p.at(token.TypeTag) {
		p.advance()
	}
	if p.at(token.Identifier) {
		n.Target = p.advance().Text
		for p.at(token.DblColon) {
			p.advance()
			n.Namespace = n.Target
			if p.at(token.Identifier) {
				n.Target = p.advance().Text
			}
		}
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseDelete parses `delete color;` / `delete .box;` / `delete
// inherit;` (spec.md §3 "Delete").
func (p *Parser) parseDelete() *ast.Node {
	kw := p.advance() // delete
	n := ast.NewNode(ast.KindDelete, kw.Pos)
	n.DeleteKind = ast.DelProperty
	if p.at(token.KwInherit) {
		p.advance()
		n.DeleteKind = ast.DelInheritance
	} else {
		for !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			t := p.advance()
			n.Targets = append(n.Targets, t.Text)
			if t.Kind == token.Dot || t.Kind == token.Hash {
				n.DeleteKind = ast.DelElement
			}
		}
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseInsert parses `insert after selector { ... }` and the at
// top/bottom/before/replace variants (spec.md §3 "Insert").
func (p *Parser) parseInsert() *ast.Node {
	kw := p.advance() // insert
	n := ast.NewNode(ast.KindInsert, kw.Pos)
	switch p.cur().Kind {
	case token.KwAfter:
		p.advance()
		n.InsertPosition = ast.InsAfter
	case token.KwBefore:
		p.advance()
		n.InsertPosition = ast.InsBefore
	case token.KwReplace:
		p.advance()
		n.InsertPosition = ast.InsReplace
	case token.KwAt:
		p.advance()
		if p.at(token.KwTop) {
			p.advance()
			n.InsertPosition = ast.InsAtTop
		} else if p.at(token.KwBottom) {
			p.advance()
			n.InsertPosition = ast.InsAtBottom
		}
	}
	var target strings.Builder
	for !p.at(token.LBrace) && !p.at(token.Semicolon) && !p.at(token.EOF) {
		target.WriteString(p.advance().Text)
	}
	n.InsertTarget = target.String()
	if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			child := p.parseElementMember()
			if child != nil {
				n.AppendChild(child)
			}
		}
		p.expect(token.RBrace)
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseExcept parses `except div, .box;` / `except @Element Box;`
// (spec.md §3 "Except").
func (p *Parser) parseExcept() *ast.Node {
	kw := p.advance() // except
	n := ast.NewNode(ast.KindExcept, kw.Pos)
	n.ExceptMode = ExceptModeFor(p.cur())
	for !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		n.Targets = append(n.Targets, p.advance().Text)
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

func ExceptModeFor(t token.Token) ast.ExceptMode {
	switch t.Kind {
	case token.TypeTag:
		return ast.ExceptType
	case token.Star:
		return ast.ExceptGlobal
	default:
		return ast.ExceptPrecise
	}
}

// parseTemplateOrCustomDecl parses `[Template] @Style Name { ... }` and
// `[Custom] @Element Name { ... }` (spec.md §3 "TemplateDecl"/"CustomDecl").
func (p *Parser) parseTemplateOrCustomDecl(isCustom bool) *ast.Node {
	marker := p.advance() // [Template] / [Custom]
	kind := ast.KindTemplateDecl
	if isCustom {
		kind = ast.KindCustomDecl
	}
	n := ast.NewNode(kind, marker.Pos)
	n.IsCustom = isCustom

	var tagTok token.Token
	if p.at(token.TypeTag) {
		tagTok = p.advance()
		n.TemplateKind = templateKindFromTag(tagTok.Text)
	}
	if p.at(token.Identifier) {
		n.Name = p.advance().Text
	}

	switch {
	case p.at(token.LBrace):
		p.advance()
		if n.TemplateKind == ast.TplVar {
			n.EntryValues = make(map[string]string)
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				if p.at(token.Identifier) && (p.peekAt(1).Kind == token.Colon || p.peekAt(1).Kind == token.Equals) {
					key := p.advance().Text
					p.advance() // : or =
					val := p.parseRawValue()
					n.EntryValues[key] = val
					if p.at(token.Semicolon) {
						p.advance()
					}
				} else {
					p.advance()
				}
			}
		} else {
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				var child *ast.Node
				if n.TemplateKind == ast.TplStyle {
					child = p.parseStyleMember()
				} else {
					child = p.parseElementMember()
				}
				if child != nil {
					n.AppendChild(child)
				}
			}
		}
		p.expect(token.RBrace)
	case p.at(token.Colon):
		// `[Template] @Var Name: key value, key2 value2;`
		p.advance()
		n.EntryValues = make(map[string]string)
		for !p.at(token.Semicolon) && !p.at(token.EOF) {
			if p.at(token.Identifier) {
				key := p.advance().Text
				val := p.parseRawValue()
				n.EntryValues[key] = val
			}
			if p.at(token.Comma) {
				p.advance()
			}
		}
		if p.at(token.Semicolon) {
			p.advance()
		}
	}

	kindMap := map[bool]map[ast.TemplateKind]symbols.Kind{
		false: {ast.TplStyle: symbols.KindTemplateStyle, ast.TplElement: symbols.KindTemplateElement, ast.TplVar: symbols.KindTemplateVar},
		true:  {ast.TplStyle: symbols.KindCustomStyle, ast.TplElement: symbols.KindCustomElement, ast.TplVar: symbols.KindCustomVar},
	}
	symKind := kindMap[isCustom][n.TemplateKind]
	if n.Name != "" {
		if conflict, has := p.ns.AddItem(symbols.Entry{Name: n.Name, Kind: symKind, File: p.filename, Decl: n}); has {
			p.handler.Warnf(loc.PhaseParsing, loc.Range{Loc: n.Loc}, loc.ERROR_DUPLICATE_SYMBOL,
				"%s %q already declared (first declaration in %s)", symKind, conflict.Existing.Name, conflict.Existing.File)
		}
	}
	return n
}

// parseOrigin parses `[Origin] @Html { ... }` / `[Origin] @Html name;`
// (spec.md §3 "Origin"). Callable from the top level, from inside an
// element body, and from inside a style block, so an [Origin] block is
// never rejected purely because of where it sits (original_source's
// EnhancedOriginManager::canUseOriginAnywhere always returns true); the
// transform stage separately flags suspicious-but-legal placements with a
// warning rather than the parser refusing them.
func (p *Parser) parseOrigin() *ast.Node {
	marker := p.advance() // [Origin]
	n := ast.NewNode(ast.KindOrigin, marker.Pos)
	if p.at(token.TypeTag) {
		tag := p.advance()
		switch tag.Text {
		case "@Html":
			n.OriginKind = ast.OriginHTML
		case "@Style":
			n.OriginKind = ast.OriginStyle
		case "@JavaScript":
			n.OriginKind = ast.OriginJavaScript
		default:
			n.OriginKind = ast.OriginCustom
			n.OriginName = tag.Text
		}
	}
	if p.at(token.Identifier) {
		n.Name = p.advance().Text
	}
	if p.at(token.Semicolon) {
		p.advance()
		return n
	}
	open, ok := p.expect(token.LBrace)
	if !ok {
		return n
	}
	depth := 1
	bodyStart := open.Pos.Start + open.Len
	i := bodyStart
	for i < len(p.src) && depth > 0 {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				n.Raw = p.src[bodyStart:i]
			}
		}
		i++
	}
	for p.pos < len(p.toks) && p.toks[p.pos].Pos.Start < i {
		p.pos++
	}
	return n
}

// parseImport parses `[Import] @Chtl from "path" as Name;` and its
// @Html/@Style/@JavaScript/@CJmod variants plus the `*` and `{ a, b }`
// import lists (spec.md §4.G "Import System"). An `except` clause is not
// parsed.
func (p *Parser) parseImport() *ast.Node {
	marker := p.advance() // [Import]
	n := ast.NewNode(ast.KindImport, marker.Pos)
	if p.at(token.TypeTag) {
		tag := p.advance()
		switch tag.Text {
		case "@Html":
			n.ImportKind = ast.ImportHTML
		case "@Style":
			n.ImportKind = ast.ImportStyle
		case "@JavaScript":
			n.ImportKind = ast.ImportJavaScript
		case "@CJmod":
			n.ImportKind = ast.ImportCJmod
		default:
			n.ImportKind = ast.ImportChtl
		}
	}
	if p.at(token.Star) {
		p.advance()
		n.ImportList = []string{"*"}
	} else if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if p.at(token.Identifier) {
				n.ImportList = append(n.ImportList, p.advance().Text)
			}
			if p.at(token.Comma) {
				p.advance()
			}
		}
		p.expect(token.RBrace)
	} else if p.at(token.Identifier) {
		n.ImportList = []string{p.advance().Text}
	}
	if p.at(token.KwFrom) {
		p.advance()
		n.FromPath = p.parseRawValue()
	}
	if p.at(token.KwAs) {
		p.advance()
		if p.at(token.Identifier) {
			n.AsName = p.advance().Text
		}
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
	return n
}

// parseNamespace parses `[Namespace] ui { ... }` (spec.md §3 "Namespace").
func (p *Parser) parseNamespace() *ast.Node {
	marker := p.advance() // [Namespace]
	n := ast.NewNode(ast.KindNamespace, marker.Pos)
	if p.at(token.Identifier) {
		n.Name = p.advance().Text
	}
	prevNS := p.ns
	p.ns = p.symtab.Register([]string{n.Name})
	if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			stmt := p.parseStatement()
			if stmt != nil {
				n.AppendChild(stmt)
			}
		}
		p.expect(token.RBrace)
	} else if p.at(token.Semicolon) {
		p.advance()
	}
	p.ns = prevNS
	return n
}

// parseConfiguration parses `[Configuration] { key: value; ... }`
// (spec.md §3 "Configuration", §6).
func (p *Parser) parseConfiguration() *ast.Node {
	marker := p.advance() // [Configuration]
	n := ast.NewNode(ast.KindConfiguration, marker.Pos)
	n.Entries = make(map[string]string)
	if p.at(token.TypeTag) {
		p.advance()
	}
	if p.at(token.Identifier) {
		n.Name = p.advance().Text
	}
	if _, ok := p.expect(token.LBrace); !ok {
		return n
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Identifier) && (p.peekAt(1).Kind == token.Colon || p.peekAt(1).Kind == token.Equals) {
			key := p.advance().Text
			p.advance()
			val := p.parseRawValue()
			n.Entries[key] = val
			n.EntryOrder = append(n.EntryOrder, key)
			if p.at(token.Semicolon) {
				p.advance()
			}
			continue
		}
		p.advance()
	}
	p.expect(token.RBrace)
	return n
}
