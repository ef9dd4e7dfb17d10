package transform

import (
	"testing"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/loc"
)

func newClassSelectorStyleBlock(names ...string) *ast.Node {
	style := ast.NewNode(ast.KindStyleBlock, loc.Loc{})
	for _, name := range names {
		rule := ast.NewNode(ast.KindStyleRule, loc.Loc{})
		sel := ast.NewNode(ast.KindStyleSelector, loc.Loc{})
		sel.SelectorKind = ast.SelClass
		sel.Value = name
		rule.AppendChild(sel)
		style.AppendChild(rule)
	}
	return style
}

func TestAutoAddForStyleSkipsElementsWithExistingClassOrId(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "div"
	div.SetAttr("class", "already-there")
	autoAddForStyle(div, newClassSelectorStyleBlock("card"), config.Default())
	if div.AutoAddedClass {
		t.Fatalf("should not auto-add a class when one is already present")
	}
}

func TestAutoAddForStyleUsesLiteralSelectorNames(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "section"
	style := ast.NewNode(ast.KindStyleBlock, loc.Loc{})

	cardRule := ast.NewNode(ast.KindStyleRule, loc.Loc{})
	cardSel := ast.NewNode(ast.KindStyleSelector, loc.Loc{})
	cardSel.SelectorKind = ast.SelClass
	cardSel.Value = "card"
	cardRule.AppendChild(cardSel)
	style.AppendChild(cardRule)

	mainRule := ast.NewNode(ast.KindStyleRule, loc.Loc{})
	mainSel := ast.NewNode(ast.KindStyleSelector, loc.Loc{})
	mainSel.SelectorKind = ast.SelID
	mainSel.Value = "main"
	mainRule.AppendChild(mainSel)
	style.AppendChild(mainRule)

	autoAddForStyle(div, style, config.Default())
	if !div.AutoAddedClass || !HasClassAttr(div) || ClassList(div)[0] != "card" {
		t.Fatalf("expected class=card, got %+v", div.Attrs)
	}
	if !div.AutoAddedID || GetQuotedAttr(div, "id") != "main" {
		t.Fatalf("expected id=main, got %+v", div.Attrs)
	}
}

func TestAutoAddForScriptRespectsDisabledDefaults(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "div"
	script := ast.NewNode(ast.KindScriptBlock, loc.Loc{})
	script.Raw = "{{#main}}.hide();"
	autoAddForScript(div, script, config.Default())
	if div.AutoAddedClass || div.AutoAddedID {
		t.Fatalf("script automation is disabled by default, got %+v", div)
	}
}

func TestAutoAddForScriptHonorsEnabledId(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "div"
	script := ast.NewNode(ast.KindScriptBlock, loc.Loc{})
	script.Raw = "{{#main}}.hide();"
	cfg := config.Default()
	cfg.DisableScriptAutoAddId = false
	autoAddForScript(div, script, cfg)
	if !div.AutoAddedID || GetQuotedAttr(div, "id") != "main" {
		t.Fatalf("expected an auto-added id=main once DisableScriptAutoAddId is false, got %+v", div)
	}
}

func TestResolveStyleReferencePrefersClassOverId(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "div"
	div.SetAttr("id", "main")
	div.SetAttr("class", "box")
	sel := ast.NewNode(ast.KindStyleSelector, loc.Loc{})
	div.AppendChild(sel)
	if got := ResolveStyleReference(sel); got != ".box" {
		t.Fatalf("got %q, want .box", got)
	}
}

func TestResolveScriptReferencePrefersIdOverClass(t *testing.T) {
	div := ast.NewNode(ast.KindElement, loc.Loc{})
	div.Tag = "div"
	div.SetAttr("id", "main")
	div.SetAttr("class", "box")
	if got := ResolveScriptReference(div); got != "#main" {
		t.Fatalf("got %q, want #main", got)
	}
}
