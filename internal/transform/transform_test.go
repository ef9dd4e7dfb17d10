package transform

import (
	"strings"
	"testing"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/loc"
	"github.com/chtl-lang/chtl/internal/parser"
	"github.com/chtl-lang/chtl/internal/symbols"
)

func parseAndTransform(t *testing.T, src string) (*ast.Node, *diag.Handler) {
	t.Helper()
	symtab := symbols.NewManager()
	h := diag.NewHandler()
	p := parser.New(src, "test.chtl", h, symtab, parser.Recovering)
	root := p.Parse()
	Transform(root, symtab, Options{Filename: "test.chtl", Config: config.Default()}, h)
	return root, h
}

func TestExpandTemplateUseSplicesDeclaredProperties(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Template] @Style Base { color: red; }
		div { style { @Style Base; } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var div *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			div = c
		}
	}
	if div == nil {
		t.Fatalf("expected a div element")
	}
	var style *ast.Node
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindStyleBlock {
			style = c
		}
	}
	if style == nil || style.FirstChild == nil {
		t.Fatalf("expected the style block to have the expanded property, got %+v", style)
	}
	if style.FirstChild.Kind != ast.KindStyleProperty || style.FirstChild.PropertyName != "color" {
		t.Fatalf("expected an expanded color property, got %+v", style.FirstChild)
	}
}

func TestApplyInheritanceLastWriteWins(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Template] @Style Base { color: red; }
		[Custom] @Style Derived { inherit @Style Base; color: blue; }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var derived *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindCustomDecl {
			derived = c
		}
	}
	if derived == nil {
		t.Fatalf("expected a CustomDecl")
	}
	var colors []string
	for c := derived.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindStyleProperty && c.PropertyName == "color" {
			if len(c.Values) > 0 {
				colors = append(colors, c.Values[0].Value)
			}
		}
	}
	if len(colors) == 0 {
		t.Fatalf("expected at least one color property after inheritance, got %+v", derived)
	}
	if last := colors[len(colors)-1]; last != "blue" {
		t.Fatalf("expected the declaration's own color to win, got %q (all: %v)", last, colors)
	}
}

func TestResolveReferencesRewritesAmpersandToClass(t *testing.T) {
	root, h := parseAndTransform(t, `div { class: "box"; style { &:hover { color: red; } } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var amp *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindStyleSelector && n.SelectorKind == ast.SelAmpersand {
			amp = n
		}
	})
	if amp == nil {
		t.Fatalf("expected an ampersand selector")
	}
	if amp.Value != ".box" {
		t.Fatalf("got resolved selector %q, want .box", amp.Value)
	}
}

func TestAutoAddSelectorsUsesFirstClassAndIdSelectorNames(t *testing.T) {
	root, h := parseAndTransform(t, `section { style { .card { padding: 20px; } #main { color: blue; } } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var el *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			el = c
		}
	}
	if el == nil {
		t.Fatalf("expected a section element")
	}
	if !el.AutoAddedClass || GetQuotedAttr(el, "class") != "card" {
		t.Fatalf("expected class=card, got %+v", el.Attrs)
	}
	if !el.AutoAddedID || GetQuotedAttr(el, "id") != "main" {
		t.Fatalf("expected id=main, got %+v", el.Attrs)
	}
}

func TestAutoAddSelectorsDoesNotFireOnBareAmpersand(t *testing.T) {
	root, h := parseAndTransform(t, `div { style { & { color: red; } } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var el *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			el = c
		}
	}
	if el == nil || el.AutoAddedClass || el.AutoAddedID {
		t.Fatalf("a bare `&` selector is not a class/id selector and must not trigger auto-add, got %+v", el)
	}
}

func TestAutoAddSelectorsDoesNotAddForScriptByDefault(t *testing.T) {
	root, h := parseAndTransform(t, `div { script { const el = {{#main}}; } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var el *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			el = c
		}
	}
	if el == nil {
		t.Fatalf("expected a div element")
	}
	if el.AutoAddedClass || el.AutoAddedID {
		t.Fatalf("script-side automation is disabled by default, got %+v", el)
	}
}

func TestCheckOriginPlacementWarnsOnJavaScriptOriginInsideStyleBlock(t *testing.T) {
	root, h := parseAndTransform(t, `
		div { style { color: red; [Origin] @JavaScript { alert(1); } } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.WARNING_ORIGIN_PLACEMENT {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a WARNING_ORIGIN_PLACEMENT diagnostic, got %v", h.All())
	}
	var origin *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindOrigin {
			origin = n
		}
	})
	if origin == nil {
		t.Fatalf("expected the [Origin] block to survive as a node, not be rejected")
	}
}

func TestCheckOriginPlacementAllowsHtmlOriginInsideElement(t *testing.T) {
	root, h := parseAndTransform(t, `
		div { [Origin] @Html { <span>raw</span> } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	for _, d := range h.All() {
		if d.Code == loc.WARNING_ORIGIN_PLACEMENT {
			t.Fatalf("did not expect a placement warning for an @Html origin directly inside an element, got %v", d)
		}
	}
	_ = root
}

func TestLowerCommentsWarnsOnCssLookingDashCommentAtGlobalScope(t *testing.T) {
	root, h := parseAndTransform(t, `
		-- color: red;
		div { text { "hi" } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var comment *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindComment {
			comment = n
		}
	})
	if comment == nil {
		t.Fatalf("expected a comment node")
	}
	if !strings.HasPrefix(comment.Text, "<!--") {
		t.Fatalf("expected the comment to still lower as HTML despite the mismatch warning, got %q", comment.Text)
	}
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.WARNING_COMMENT_CONTEXT {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a WARNING_COMMENT_CONTEXT diagnostic, got %v", h.All())
	}
}

func TestApplySpecializationDeletesProperty(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Custom] @Style Base { color: red; padding: 10px; }
		div { style { @Style Base { delete color; } } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var style *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindStyleBlock && n.IsLocal {
			style = n
		}
	})
	if style == nil {
		t.Fatalf("expected a local style block")
	}
	var names []string
	for c := style.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindStyleProperty {
			names = append(names, c.PropertyName)
		}
	}
	if len(names) != 1 || names[0] != "padding" {
		t.Fatalf("expected only padding to survive the delete, got %v", names)
	}
}

func TestApplySpecializationDeletesElementByTagName(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Custom] @Element Box {
			div { text { "a" } }
			span { text { "b" } }
		}
		div { @Element Box { delete div; } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var outer *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			outer = c
		}
	}
	if outer == nil {
		t.Fatalf("expected the outer div")
	}
	var tags []string
	for c := outer.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			tags = append(tags, c.Tag)
		}
	}
	if len(tags) != 1 || tags[0] != "span" {
		t.Fatalf("expected only the span child to survive the delete, got %v", tags)
	}
}

func TestApplySpecializationInsertsAfterElement(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Custom] @Element Box {
			div { text { "a" } }
			span { text { "b" } }
		}
		div { @Element Box { insert after span { p { text { "c" } } } } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var outer *ast.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			outer = c
		}
	}
	if outer == nil {
		t.Fatalf("expected the outer div")
	}
	var tags []string
	for c := outer.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement {
			tags = append(tags, c.Tag)
		}
	}
	if len(tags) != 3 || tags[0] != "div" || tags[1] != "span" || tags[2] != "p" {
		t.Fatalf("expected div, span, p in that order, got %v", tags)
	}
}

func TestApplySpecializationExpandsNestedTemplateUse(t *testing.T) {
	root, h := parseAndTransform(t, `
		[Template] @Style Accent { color: orange; }
		[Custom] @Style Base {
			padding: 10px;
		}
		div { style { @Style Base { @Style Accent; } } }
	`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var style *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindStyleBlock && n.IsLocal {
			style = n
		}
	})
	if style == nil {
		t.Fatalf("expected a local style block")
	}
	var colorFound bool
	for c := style.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindStyleProperty && c.PropertyName == "color" && len(c.Values) > 0 && c.Values[0].Value == "orange" {
			colorFound = true
		}
	}
	if !colorFound {
		t.Fatalf("expected the nested @Style Accent use to splice in color: orange, got %+v", style)
	}
}

func TestResolveReferencesRewritesScriptSelfReferenceSkippingStrings(t *testing.T) {
	root, h := parseAndTransform(t, `div { id: "panel"; script { const el = {{&}}; const s = "not {{&}} here"; } }`)
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.All())
	}
	var script *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindScriptBlock {
			script = n
		}
	})
	if script == nil {
		t.Fatalf("expected a script block")
	}
	if !strings.Contains(script.Raw, "const el = #panel;") {
		t.Fatalf("expected the bare self-reference to be rewritten, got %q", script.Raw)
	}
	if !strings.Contains(script.Raw, `"not {{&}} here"`) {
		t.Fatalf("expected the string-literal occurrence to survive untouched, got %q", script.Raw)
	}
}
