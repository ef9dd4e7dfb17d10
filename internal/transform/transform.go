// Package transform implements the Semantic Transforms stage (spec.md
// §4.H): template/custom expansion and specialization, inheritance,
// selector automation, reference resolution, and contextual comment
// lowering. It runs after parsing and import resolution have produced a
// complete AST with every symbol registered, and before the Emit
// boundary.
//
// Grounded on internal/transform/transform.go: the walk()-then-mutate
// orchestration shape is kept (Transform() makes one or more passes over
// the tree invoking small single-purpose mutators), generalized from
// Astro's scoped-CSS/client-directive concerns to CHTL's
// template/inheritance/selector-automation concerns.
package transform

import (
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/loc"
	"github.com/chtl-lang/chtl/internal/symbols"
)

// Options bundles the per-run knobs the transform passes consult,
// mirroring the TransformOptions struct in internal/transform/transform.go.
type Options struct {
	Filename string
	Config   config.Config
}

// Transform runs every semantic pass over root in dependency order:
// except-constraint checking first (against the tree exactly as written,
// before any expansion can inject forbidden content), then
// variable-template expansion (so later passes never see a bare
// VariableReference), then template/custom use expansion with
// specialization, then inheritance, then selector automation, then
// reference resolution, then comment lowering last (so lowering sees the
// final tree shape, matching Origin-placement advisory checks that need
// to know a comment's final context). The entries of the file's own
// [Configuration] blocks are laid over opts.Config, in document order,
// before any pass runs.
func Transform(root *ast.Node, symtab *symbols.Manager, opts Options, h *diag.Handler) *ast.Node {
	cfg := opts.Config
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindConfiguration {
			cfg = config.ApplyBlock(cfg, n.Entries)
		}
	})
	CheckExceptConstraints(root, h)
	ExpandVariableReferences(root, symtab, h)
	ExpandTemplateAndCustomUse(root, symtab, h)
	ApplyInheritance(root, symtab, h)
	AutoAddSelectors(root, cfg)
	ResolveReferences(root)
	CheckOriginPlacement(root, h)
	LowerComments(root, h)
	return root
}

// walk visits every node in pre-order. n's FirstChild is read after n is
// visited, so children a mutator gives n are walked; each child's
// NextSibling is saved before that child is walked, so a child that
// removes or replaces itself (template expansion, inheritance) does not
// end the walk. Nodes a mutator inserts in front of the saved sibling are
// not visited by the same pass.
func walk(n *ast.Node, visit func(*ast.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, visit)
		c = next
	}
}

// ExpandVariableReferences replaces every VariableReference/TemplateUse
// of @Var kind with the literal value its group declares for the
// requested key (spec.md §4.H step 1 "variable-template expansion").
func ExpandVariableReferences(root *ast.Node, symtab *symbols.Manager, h *diag.Handler) {
	walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindTemplateUse || n.TemplateKind != ast.TplVar {
			return
		}
		group := n.Group
		if group == "" {
			group = n.Name
		}
		entries, ok := resolveVarGroup(symtab, group)
		if !ok {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
				"unknown variable group %q", group)
			return
		}
		key := n.Name
		if n.Group == "" {
			// `ThemeColor;` with no key: nothing to substitute, the use
			// site wants the whole group inlined elsewhere (e.g. as a
			// TemplateUse @Var with specialization overriding entries).
			for k, v := range entries {
				if n.EntryValues == nil {
					n.EntryValues = make(map[string]string)
				}
				n.EntryValues[k] = v
			}
			return
		}
		if val, ok := entries[key]; ok {
			n.Value = val
		} else {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
				"variable group %q has no entry %q", group, key)
		}
	})

	// StyleValues of ValVariable kind reference a group(key) pair too; they
	// sit in a StyleProperty's Values, not among its children.
	walk(root, func(prop *ast.Node) {
		if prop.Kind != ast.KindStyleProperty {
			return
		}
		for _, n := range prop.Values {
			if n.ValueKind != ast.ValVariable {
				continue
			}
			entries, ok := resolveVarGroup(symtab, n.Group)
			if !ok {
				h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
					"unknown variable group %q", n.Group)
				continue
			}
			if val, ok := entries[n.Value]; ok {
				n.Value = val
				n.ValueKind = ast.ValLiteral
			} else {
				h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
					"variable group %q has no entry %q", n.Group, n.Value)
			}
		}
	})
}

func resolveVarGroup(symtab *symbols.Manager, name string) (map[string]string, bool) {
	items := symtab.Global.GetItemsByName(name)
	for _, e := range items {
		if e.Kind != symbols.KindTemplateVar && e.Kind != symbols.KindCustomVar {
			continue
		}
		decl, ok := e.Decl.(*ast.Node)
		if !ok {
			continue
		}
		return decl.EntryValues, true
	}
	return nil, false
}

// ExpandTemplateAndCustomUse clones the referenced @Style/@Element
// declaration body under each use site, applying the use's
// specialization overrides/deletions/insertions (spec.md §4.H step 2).
func ExpandTemplateAndCustomUse(root *ast.Node, symtab *symbols.Manager, h *diag.Handler) {
	walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindTemplateUse || n.TemplateKind == ast.TplVar {
			return
		}
		decl := lookupTemplateDecl(symtab, n)
		if decl == nil {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
				"unknown %s template %q", n.TemplateKind, n.Name)
			return
		}
		if decl.Kind == ast.KindTemplateDecl && n.Specializations != nil {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_SPECIALIZATION_ON_TMPL,
				"%s %q is a [Template]; only [Custom] uses take a specialization block", n.TemplateKind, n.Name)
			return
		}
		body := ast.Clone(decl)
		applySpecialization(body, n, symtab, h)
		spliceInPlaceOfUse(n, body)
	})
}

func lookupTemplateDecl(symtab *symbols.Manager, use *ast.Node) *ast.Node {
	var kinds []symbols.Kind
	switch use.TemplateKind {
	case ast.TplStyle:
		kinds = []symbols.Kind{symbols.KindCustomStyle, symbols.KindTemplateStyle}
	case ast.TplElement:
		kinds = []symbols.Kind{symbols.KindCustomElement, symbols.KindTemplateElement}
	}
	for _, k := range kinds {
		if e, ok := symtab.Global.GetItem(use.Name, k); ok {
			if decl, ok := e.Decl.(*ast.Node); ok {
				return decl
			}
		}
	}
	return nil
}

// applySpecialization rewrites a cloned declaration body in place
// according to the use site's overrides/deletions/insertions (spec.md
// §4.H "Specialization" — only [Custom] declarations may be specialized;
// a top-level use of a [Template] with a `{}` block is reported by
// ExpandTemplateAndCustomUse and left in place, while a use nested inside
// a specialization block is not checked). use's own children carry every specialization
// member parseSpecializationMember collected: PropertyOverride entries
// are additionally indexed in use.Specializations/SpecOrder and are
// applied from there; Delete/Insert/nested-TemplateUse children are
// walked here and applied against body directly, since use itself is
// discarded once spliceInPlaceOfUse runs and any edits left sitting on
// its children would never reach the real tree.
func applySpecialization(body *ast.Node, use *ast.Node, symtab *symbols.Manager, h *diag.Handler) {
	for key, override := range use.Specializations {
		replacePropertyOrAttr(body, key, override)
	}
	for c := use.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Kind == ast.KindDelete:
			applyDelete(body, c, h)
		case c.Kind == ast.KindInsert:
			applyInsert(body, c, h)
		case c.Kind == ast.KindTemplateUse && c.TemplateKind != ast.TplVar:
			expandNestedSpecializationUse(body, c, symtab, h)
		case c.Kind == ast.KindStyleProperty || c.Kind == ast.KindAttribute:
			// Already applied above via use.Specializations.
		default:
			// A bare Element/Inherit/comment member: new content the
			// specialization adds to body, in listed order. An Inherit
			// added here is picked up by ApplyInheritance's own
			// full-tree pass once body is spliced into the real tree.
			detach(c)
			body.AppendChild(c)
		}
		c = next
	}
}

// expandNestedSpecializationUse resolves a TemplateUse nested directly
// inside another use's specialization block (e.g. `@Style Base { @Style
// Accent; color: red; }`), recursing through the same clone-then-
// specialize step before splicing the result into body (spec.md §4.H
// step 3: nested TemplateUse inside a specialization is expanded by
// recursing from step 2).
func expandNestedSpecializationUse(body, nested *ast.Node, symtab *symbols.Manager, h *diag.Handler) {
	decl := lookupTemplateDecl(symtab, nested)
	if decl == nil {
		h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: nested.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
			"unknown %s template %q", nested.TemplateKind, nested.Name)
		return
	}
	nestedBody := ast.Clone(decl)
	applySpecialization(nestedBody, nested, symtab, h)
	for c := nestedBody.FirstChild; c != nil; {
		next := c.NextSibling
		detach(c)
		body.AppendChild(c)
		c = next
	}
}

func replacePropertyOrAttr(body *ast.Node, name string, override *ast.Node) {
	ast.Walk(body, func(n *ast.Node) {
		if n.Kind == ast.KindStyleProperty && n.PropertyName == name {
			n.Values = override.Values
		}
		if n.Kind == ast.KindAttribute && n.Name == name {
			n.Value = override.Value
		}
	})
}

// spliceInPlaceOfUse replaces a TemplateUse node with its expanded body's
// children, so the use site disappears and its containing StyleBlock or
// Element sees the expanded properties/children directly.
func spliceInPlaceOfUse(use *ast.Node, body *ast.Node) {
	parent := use.Parent
	if parent == nil {
		return
	}
	anchor := use
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		detach(c)
		parent.InsertBefore(c, anchor)
		c = next
	}
	parent.RemoveChild(use)
}

func detach(n *ast.Node) {
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// ApplyInheritance folds an Inherit node's target declaration's members
// into the containing declaration, with the inheriting declaration's own
// members taking precedence on conflict (spec.md §4.H step 3
// "inheritance — last write wins").
func ApplyInheritance(root *ast.Node, symtab *symbols.Manager, h *diag.Handler) {
	walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindInherit {
			return
		}
		parent := n.Parent
		if parent == nil {
			return
		}
		base := lookupInheritTarget(symtab, n)
		if base == nil {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.ERROR_UNKNOWN_SYMBOL,
				"unknown inheritance target %q", n.Target)
			return
		}
		cloned := ast.Clone(base)
		// Insert the base's members right after the Inherit statement;
		// members the inheriting declaration redeclares later in
		// document order naturally override them (last write wins).
		anchor := n.NextSibling
		for c := cloned.FirstChild; c != nil; {
			next := c.NextSibling
			detach(c)
			if anchor != nil {
				parent.InsertBefore(c, anchor)
			} else {
				parent.AppendChild(c)
			}
			c = next
		}
		parent.RemoveChild(n)
	})
}

func lookupInheritTarget(symtab *symbols.Manager, inherit *ast.Node) *ast.Node {
	ns := symtab.Global
	if inherit.Namespace != "" {
		if child, ok := ns.Child(inherit.Namespace); ok {
			ns = child
		}
	}
	for _, k := range []symbols.Kind{
		symbols.KindCustomElement, symbols.KindTemplateElement,
		symbols.KindCustomStyle, symbols.KindTemplateStyle,
	} {
		if e, ok := ns.GetItem(inherit.Target, k); ok {
			if decl, ok := e.Decl.(*ast.Node); ok {
				return decl
			}
		}
	}
	return nil
}

// ResolveReferences rewrites every bare `&` StyleSelector to the
// concrete class/id/tag selector text of its enclosing element (spec.md
// §4.H step 4 "reference resolution").
func ResolveReferences(root *ast.Node) {
	ast.Walk(root, func(n *ast.Node) {
		switch n.Kind {
		case ast.KindStyleSelector:
			if n.SelectorKind == ast.SelAmpersand {
				n.Value = ResolveStyleReference(n)
			}
		case ast.KindScriptBlock:
			if !strings.Contains(n.Raw, "{{&}}") {
				return
			}
			el := n.Closest(func(c *ast.Node) bool { return c.Kind == ast.KindElement })
			if el == nil {
				return
			}
			n.Raw = ReplaceSelfReferenceInScript(n.Raw, ResolveScriptReference(el))
		}
	})
}

// LowerComments rewrites every DashComment node's text into the comment
// syntax appropriate for its surrounding context (spec.md §4.H step 7
// "contextual comment lowering" — HTML/CHTL-root uses `<!-- -->`, CSS
// uses `/* */`, JS uses `//`). The tree-walk context in contextOf is
// authoritative and always wins; detectContextMismatch only adds a
// warning, grounded on original_source's ContextualCommentSystem.h
// DetectContext — a defensive double-check, never a silent override.
func LowerComments(root *ast.Node, h *diag.Handler) {
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindComment || n.CommentKind != ast.CommentDash {
			return
		}
		ctx := contextOf(n)
		if ctx == contextHTML {
			if sniffed, ok := detectContextMismatch(n); ok {
				h.Warnf(loc.PhaseTransformCommentLower, loc.Range{Loc: n.Loc}, loc.WARNING_COMMENT_CONTEXT,
					"a `--` comment at global scope reads like %s, but no enclosing style/script block was found; lowering it as an HTML comment", sniffed)
			}
		}
		body := trimDashPrefix(n.Text)
		switch ctx {
		case contextCSS:
			n.Text = "/* " + body + " */"
		case contextJS:
			n.Text = "// " + body
		default:
			n.Text = "<!-- " + body + " -->"
		}
	})
}

// detectContextMismatch heuristically sniffs whether a dash comment's own
// text reads like a CSS declaration or a JS statement, for a comment the
// tree-walk already placed in the default (HTML/global) bucket. It never
// changes the lowering decision — only whether a warning is raised.
func detectContextMismatch(n *ast.Node) (string, bool) {
	body := trimDashPrefix(n.Text)
	trimmed := strings.TrimSpace(body)
	switch {
	case strings.HasSuffix(trimmed, ";") && strings.Contains(trimmed, ":") && !strings.Contains(trimmed, "<"):
		return "a CSS declaration", true
	case strings.Contains(trimmed, "function ") || strings.Contains(trimmed, "=>") ||
		strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "let ") || strings.HasPrefix(trimmed, "var "):
		return "a JavaScript statement", true
	default:
		return "", false
	}
}

type lowerContext int

const (
	contextHTML lowerContext = iota
	contextCSS
	contextJS
)

func contextOf(n *ast.Node) lowerContext {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case ast.KindStyleBlock, ast.KindStyleRule, ast.KindStyleProperty:
			return contextCSS
		case ast.KindScriptBlock:
			return contextJS
		}
	}
	return contextHTML
}

func trimDashPrefix(s string) string {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}
