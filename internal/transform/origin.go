package transform

import (
	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/loc"
)

// CheckOriginPlacement reports an advisory WARNING for an [Origin] block
// whose kind looks out of place in its surrounding context, never an
// ERROR (spec.md's Open Questions settle that [Origin] accepts any
// @Identifier unconditionally; nothing here blocks compilation).
//
// Grounded on original_source/include/CHTL/Enhanced/OriginAnywhereSystem.h's
// EnhancedOriginManager: canUseOriginAnywhere always returns true, while
// validateOriginSemantics separately flags placements that are unlikely to
// be intentional (an @Html origin nested inside a style block, a
// @JavaScript origin nested inside a style block, a @Style origin nested
// inside a script block) and returns a suggestion string rather than
// failing.
func CheckOriginPlacement(root *ast.Node, h *diag.Handler) {
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindOrigin {
			return
		}
		if msg, suspicious := suspiciousOriginPlacement(n); suspicious {
			h.Warnf(loc.PhaseTransformExpansion, loc.Range{Loc: n.Loc}, loc.WARNING_ORIGIN_PLACEMENT, "%s", msg)
		}
	})
}

// suspiciousOriginPlacement mirrors isSemanticallySensible: only the kinds
// with an unambiguous home context (HTML, JavaScript, and the built-in
// Style kind) are checked; an OriginCustom (@Name) type has no declared
// home context and is never flagged.
func suspiciousOriginPlacement(n *ast.Node) (string, bool) {
	ctx := contextOf(n)
	switch n.OriginKind {
	case ast.OriginStyle:
		if ctx == contextJS {
			return "an [Origin] @Style block is embedded inside a script block; it will emit as CSS text, not executable script", true
		}
	case ast.OriginJavaScript:
		if ctx == contextCSS {
			return "an [Origin] @JavaScript block is embedded inside a style block; it will emit as script text, not CSS", true
		}
	case ast.OriginHTML:
		if ctx == contextCSS || ctx == contextJS {
			return "an [Origin] @Html block is embedded inside a style or script block, where raw markup cannot be rendered", true
		}
	}
	return "", false
}
