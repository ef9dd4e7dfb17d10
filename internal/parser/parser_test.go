package parser

import (
	"testing"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/symbols"
)

func parse(t *testing.T, src string) (*ast.Node, *diag.Handler) {
	t.Helper()
	h := diag.NewHandler()
	p := New(src, "test.chtl", h, symbols.NewManager(), Recovering)
	return p.Parse(), h
}

func TestParseElementWithAttributesAndText(t *testing.T) {
	prog, h := parse(t, `div { id: "main"; text { "hello" } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	if prog.FirstChild == nil || prog.FirstChild.Kind != ast.KindElement {
		t.Fatalf("expected an Element child, got %+v", prog.FirstChild)
	}
	el := prog.FirstChild
	if el.Tag != "div" {
		t.Fatalf("got tag %q, want div", el.Tag)
	}
	var sawAttr, sawText bool
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Kind {
		case ast.KindAttribute:
			sawAttr = true
			if c.Name != "id" || c.Value != "main" {
				t.Fatalf("unexpected attribute: %+v", c)
			}
		case ast.KindTextBlock:
			sawText = true
		}
	}
	if !sawAttr || !sawText {
		t.Fatalf("expected both an attribute and a text block, got children of %+v", el)
	}
}

func TestParseTemplateDeclRegistersSymbol(t *testing.T) {
	symtab := symbols.NewManager()
	h := diag.NewHandler()
	p := New(`[Template] @Style Base { color: red; }`, "test.chtl", h, symtab, Recovering)
	prog := p.Parse()
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	if prog.FirstChild == nil || prog.FirstChild.Kind != ast.KindTemplateDecl {
		t.Fatalf("expected a TemplateDecl, got %+v", prog.FirstChild)
	}
	if _, ok := symtab.Global.GetItem("Base", symbols.KindTemplateStyle); !ok {
		t.Fatalf("expected Base to be registered as a TemplateStyle symbol")
	}
}

func TestParseNestedStyleRuleAndProperty(t *testing.T) {
	prog, h := parse(t, `div { style { color: red; &:hover { color: blue; } } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	el := prog.FirstChild
	var styleBlock *ast.Node
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindStyleBlock {
			styleBlock = c
		}
	}
	if styleBlock == nil {
		t.Fatalf("expected a style block")
	}
	var sawProp, sawRule bool
	for c := styleBlock.FirstChild; c != nil; c = c.NextSibling {
		switch c.Kind {
		case ast.KindStyleProperty:
			sawProp = true
		case ast.KindStyleRule:
			sawRule = true
		}
	}
	if !sawProp || !sawRule {
		t.Fatalf("expected both a property and a nested rule in the style block")
	}
}

func TestParseScriptBlockCapturesRawBody(t *testing.T) {
	prog, h := parse(t, `div { script { const x = { a: 1 }; } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	el := prog.FirstChild
	var script *ast.Node
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindScriptBlock {
			script = c
		}
	}
	if script == nil {
		t.Fatalf("expected a script block")
	}
	want := " const x = { a: 1 }; "
	if script.Raw != want {
		t.Fatalf("got raw %q, want %q", script.Raw, want)
	}
}
