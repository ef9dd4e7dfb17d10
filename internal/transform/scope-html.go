package transform

import (
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
)

// RefContext tells a style-block reference from a script-block reference,
// grounded on original_source/include/CHTL/Generator/SelectorAutomation.h's
// SelectorType enum.
type RefContext int

const (
	RefInStyle RefContext = iota
	RefInScript
)

// AutoAddSelectors walks the element tree and, for every Element that
// carries a local StyleBlock and/or ScriptBlock, adds the class/id
// attribute implied by the first class/id selector actually used inside
// that block (spec.md §4.H "Selector automation"). The added value is
// always the literal selector name — `.card { ... }` adds `class="card"`,
// never a synthesized placeholder.
//
// The defaults differ between the two contexts, per
// original_source/include/CHTL/Generator/SelectorAutomation.h's
// AutomationConfig: style-side automation defaults to enabled (authors
// usually want `.card`/`#main` in a local style block to imply the
// attribute), script-side automation defaults to disabled — an explicit
// class/id (or one the style block already added) is normally required
// before a script block's `{{.name}}`/`{{#name}}` may resolve; the
// `DISABLE_SCRIPT_AUTO_ADD_*` flags gate that rescue path per the usual
// disable-when-true meaning.
func AutoAddSelectors(root *ast.Node, cfg config.Config) {
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindElement {
			return
		}
		if IsNeverScopedElement(n.Tag) {
			return
		}
		var styleBlock, scriptBlock *ast.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Kind == ast.KindStyleBlock && c.IsLocal:
				styleBlock = c
			case c.Kind == ast.KindScriptBlock && c.IsLocal:
				scriptBlock = c
			}
		}
		if styleBlock != nil {
			autoAddForStyle(n, styleBlock, cfg)
		}
		if scriptBlock != nil {
			autoAddForScript(n, scriptBlock, cfg)
		}
	})
}

func autoAddForStyle(n, styleBlock *ast.Node, cfg config.Config) {
	if !cfg.DisableStyleAutoAddClass && !HasClassAttr(n) {
		if name, ok := firstSelectorName(styleBlock, ast.SelClass); ok {
			AppendClass(n, name)
			n.AutoAddedClass = true
		}
	}
	if !cfg.DisableStyleAutoAddId && !HasIdAttr(n) {
		if name, ok := firstSelectorName(styleBlock, ast.SelID); ok {
			n.SetAttr("id", name)
			n.AutoAddedID = true
		}
	}
}

// autoAddForScript only fires the rescue path: if the element was given
// a class or id already (by autoAddForStyle above, or by the source
// itself), the script block is never consulted.
func autoAddForScript(n, scriptBlock *ast.Node, cfg config.Config) {
	if HasClassAttr(n) || HasIdAttr(n) {
		return
	}
	name, kind, ok := firstEnhancedSelector(scriptBlock.Raw)
	if !ok {
		return
	}
	switch kind {
	case ast.SelClass:
		if !cfg.DisableScriptAutoAddClass {
			AppendClass(n, name)
			n.AutoAddedClass = true
		}
	case ast.SelID:
		if !cfg.DisableScriptAutoAddId {
			n.SetAttr("id", name)
			n.AutoAddedID = true
		}
	}
}

// firstSelectorName returns the name of the lexically first StyleSelector
// of the given kind anywhere inside styleBlock (including nested rules),
// matching C₁/I₁ in spec.md §4.H step 5.
func firstSelectorName(styleBlock *ast.Node, kind ast.SelectorKind) (string, bool) {
	var name string
	found := false
	ast.Walk(styleBlock, func(n *ast.Node) {
		if found || n.Kind != ast.KindStyleSelector || n.SelectorKind != kind || n.Value == "" {
			return
		}
		name, found = n.Value, true
	})
	return name, found
}

// firstEnhancedSelector scans raw script text for the lexically first
// `{{.name}}` or `{{#name}}` enhanced selector, whichever starts earlier.
func firstEnhancedSelector(raw string) (name string, kind ast.SelectorKind, ok bool) {
	classIdx := strings.Index(raw, "{{.")
	idIdx := strings.Index(raw, "{{#")
	switch {
	case classIdx == -1 && idIdx == -1:
		return "", 0, false
	case idIdx == -1 || (classIdx != -1 && classIdx < idIdx):
		return enhancedSelectorName(raw, classIdx+3), ast.SelClass, true
	default:
		return enhancedSelectorName(raw, idIdx+3), ast.SelID, true
	}
}

func enhancedSelectorName(raw string, nameStart int) string {
	end := strings.Index(raw[nameStart:], "}}")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(raw[nameStart : nameStart+end])
}

// ResolveStyleReference resolves a bare `&` selector inside a local style
// block to its enclosing Element, preferring class over id over tag name
// when multiple identifiers exist (spec.md §4.H "reference resolution" —
// style context prefers class > id > tag).
func ResolveStyleReference(selector *ast.Node) string {
	el := selector.Closest(func(n *ast.Node) bool { return n.Kind == ast.KindElement })
	if el == nil {
		return ""
	}
	if classes := ClassList(el); len(classes) > 0 {
		return "." + classes[0]
	}
	if id := GetQuotedAttr(el, "id"); id != "" {
		return "#" + id
	}
	return el.Tag
}

// ResolveScriptReference is ResolveStyleReference's script-context
// counterpart: id is preferred over class over tag (spec.md §4.H
// "script context prefers id > class > tag").
func ResolveScriptReference(el *ast.Node) string {
	if id := GetQuotedAttr(el, "id"); id != "" {
		return "#" + id
	}
	if classes := ClassList(el); len(classes) > 0 {
		return "." + classes[0]
	}
	return el.Tag
}

// ReplaceSelfReferenceInScript rewrites every occurrence of the `{{&}}`
// enhanced self-selector in a script block's raw body with replacement,
// skipping occurrences inside string or comment lexemes.
//
// spec.md §9's design note on "Textual replacement of &" calls this out as
// an explicit open question and recommends "a conservative textual pass
// that skips string and comment lexemes" over a full JS parse, since
// script bodies are otherwise treated as opaque text (spec.md §1). This is
// that conservative pass.
func ReplaceSelfReferenceInScript(raw, replacement string) string {
	const marker = "{{&}}"
	var out strings.Builder
	i := 0
	for i < len(raw) {
		switch {
		case raw[i] == '"' || raw[i] == '\'' || raw[i] == '`':
			quote := raw[i]
			start := i
			i++
			for i < len(raw) && raw[i] != quote {
				if raw[i] == '\\' && i+1 < len(raw) {
					i++
				}
				i++
			}
			if i < len(raw) {
				i++
			}
			out.WriteString(raw[start:i])
		case i+1 < len(raw) && raw[i] == '/' && raw[i+1] == '/':
			start := i
			for i < len(raw) && raw[i] != '\n' {
				i++
			}
			out.WriteString(raw[start:i])
		case i+1 < len(raw) && raw[i] == '/' && raw[i+1] == '*':
			start := i
			i += 2
			for i+1 < len(raw) && !(raw[i] == '*' && raw[i+1] == '/') {
				i++
			}
			i = min(i+2, len(raw))
			out.WriteString(raw[start:i])
		case strings.HasPrefix(raw[i:], marker):
			out.WriteString(replacement)
			i += len(marker)
		default:
			out.WriteByte(raw[i])
			i++
		}
	}
	return out.String()
}
