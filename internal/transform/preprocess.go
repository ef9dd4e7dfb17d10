//go:build js && wasm

package transform

import (
	"syscall/js"

	"github.com/chtl-lang/chtl/internal/ast"
)

// PreprocessOriginStyle lets a wasm host (spec.md §6's CJMOD/wasm bridge)
// hook into raw [Origin] @Style text before it reaches the emitter — a
// browser-hosted playground, say, wiring in a Sass/Less preprocessor the
// core compiler has no opinion about.
//
// Grounded on internal/transform/preprocess.go, which hooks
// `__astro_stylePreprocess` the same way; adapted to check
// for absence of the global rather than assume a JS host is always
// present, since this build tag only applies to the wasm target.
func PreprocessOriginStyle(n *ast.Node) {
	if n.Kind != ast.KindOrigin || n.OriginKind != ast.OriginStyle {
		return
	}
	hook := js.Global().Get("__chtl_stylePreprocess")
	if hook.IsUndefined() {
		return
	}
	result := hook.Invoke(n.Raw, n.OriginName)
	n.Raw = result.String()
}
