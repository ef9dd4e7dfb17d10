package transform

import (
	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/loc"
)

// CheckExceptConstraints walks every Except node in root and rejects any
// sibling content in its enclosing scope that the constraint forbids
// (spec.md §7 "except-constraint violation"). Grounded on
// original_source/src/CHTL/Parser/CHTLParser.cpp's ParseConstraintDeclaration,
// which pushes each target onto a context-wide constraint stack that
// CheckConstraints (a stub always returning true) never actually
// consults; this pass is the first to enforce the constraint, and does
// so scoped to the Except node's immediate container — its enclosing
// Element/CustomDecl/TemplateDecl/Namespace body — rather than the
// original's unscoped, never-popped stack.
//
// Runs before any expansion pass so a constraint sees exactly what the
// author wrote in that scope, not content injected by a later
// template/custom splice.
func CheckExceptConstraints(root *ast.Node, h *diag.Handler) {
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindExcept {
			return
		}
		scope := n.Parent
		if scope == nil {
			return
		}
		switch n.ExceptMode {
		case ast.ExceptGlobal:
			if v := findFirstViolation(scope, n, func(c *ast.Node) bool { return c.Kind == ast.KindElement }); v != nil {
				h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: v.Loc}, loc.ERROR_EXCEPT_VIOLATION,
					"element %q is forbidden here by `except *`", v.Tag)
			}
		case ast.ExceptType:
			for _, target := range n.Targets {
				checkExceptTypeTarget(scope, n, target, h)
			}
		default:
			for _, target := range n.Targets {
				checkExceptPreciseTarget(scope, n, target, h)
			}
		}
	})
}

func checkExceptTypeTarget(scope, except *ast.Node, target string, h *diag.Handler) {
	pred := exceptTypePredicate(target)
	if pred == nil {
		return
	}
	if v := findFirstViolation(scope, except, pred); v != nil {
		h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: v.Loc}, loc.ERROR_EXCEPT_VIOLATION,
			"%s is forbidden here by `except %s`", v.Kind, target)
	}
}

func checkExceptPreciseTarget(scope, except *ast.Node, target string, h *diag.Handler) {
	v := findFirstViolation(scope, except, func(n *ast.Node) bool {
		return (n.Kind == ast.KindElement && n.Tag == target) ||
			(n.Kind == ast.KindTemplateUse && n.Name == target)
	})
	if v == nil {
		return
	}
	name := v.Tag
	if v.Kind == ast.KindTemplateUse {
		name = v.Name
	}
	h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: v.Loc}, loc.ERROR_EXCEPT_VIOLATION,
		"%q is forbidden here by `except %s`", name, target)
}

// exceptTypePredicate maps an except type-tag target (e.g. "@Html") to a
// predicate matching the AST nodes that tag denotes.
func exceptTypePredicate(target string) func(*ast.Node) bool {
	switch target {
	case "@Html":
		return func(n *ast.Node) bool { return n.Kind == ast.KindOrigin && n.OriginKind == ast.OriginHTML }
	case "@Style":
		return func(n *ast.Node) bool {
			if n.Kind == ast.KindOrigin {
				return n.OriginKind == ast.OriginStyle
			}
			return isTemplateKindNode(n, ast.TplStyle)
		}
	case "@JavaScript":
		return func(n *ast.Node) bool { return n.Kind == ast.KindOrigin && n.OriginKind == ast.OriginJavaScript }
	case "@Element":
		return func(n *ast.Node) bool { return isTemplateKindNode(n, ast.TplElement) }
	case "@Var":
		return func(n *ast.Node) bool { return isTemplateKindNode(n, ast.TplVar) }
	default:
		return nil
	}
}

func isTemplateKindNode(n *ast.Node, kind ast.TemplateKind) bool {
	switch n.Kind {
	case ast.KindTemplateUse, ast.KindTemplateDecl, ast.KindCustomDecl:
		return n.TemplateKind == kind
	default:
		return false
	}
}

// findFirstViolation returns the first descendant (pre-order) of scope's
// children other than except itself that satisfies pred.
func findFirstViolation(scope, except *ast.Node, pred func(*ast.Node) bool) *ast.Node {
	var found *ast.Node
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		if c == except || found != nil {
			continue
		}
		ast.Walk(c, func(n *ast.Node) {
			if found == nil && pred(n) {
				found = n
			}
		})
	}
	return found
}
