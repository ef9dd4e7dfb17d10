//go:build js && wasm

package cjmod

import (
	"syscall/js"

	"github.com/norunners/vert"
)

// HostRegistration is the JS-side shape a wasm host passes across the
// bridge: a keyword plus the handler function to invoke when the scanner's
// front pointer matches it. Grounded on the wasm-bridge idiom in
// internal/handler.JSError, which also round-trips a small struct
// through vert.ValueOf rather than hand-building a js.Value.
type HostRegistration struct {
	Keyword                string `js:"keyword"`
	NeedsBacktrack         bool   `js:"needsBacktrack"`
	BacktrackDistance      int    `js:"backtrackDistance"`
	NeedsForwardCollect    bool   `js:"needsForwardCollect"`
	ForwardCollectDistance int    `js:"forwardCollectDistance"`
}

// RegisterFromJS exposes KeywordRegistry.Register to a wasm host: the host
// supplies a HostRegistration plus a JS callback, and every scanner match
// calls back into JS to obtain the replacement text.
func (r *KeywordRegistry) RegisterFromJS(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return false
	}
	var reg HostRegistration
	if err := vert.ValueOf(args[0]).AssignTo(&reg); err != nil {
		return false
	}
	callback := args[1]

	r.Register(Registration{
		Keyword:                reg.Keyword,
		NeedsBacktrack:         reg.NeedsBacktrack,
		BacktrackDistance:      reg.BacktrackDistance,
		NeedsForwardCollect:    reg.NeedsForwardCollect,
		ForwardCollectDistance: reg.ForwardCollectDistance,
		Handler: func(buffer string, keywordOffset int) string {
			result := callback.Invoke(buffer, keywordOffset)
			if result.IsUndefined() || result.IsNull() {
				return ""
			}
			return result.String()
		},
	})
	return true
}

// Bind installs this registry's JS-facing methods on the given global
// object name, mirroring how cmd/astro-wasm installs __astro_transform.
func (r *KeywordRegistry) Bind(globalName string) {
	obj := js.ValueOf(map[string]interface{}{})
	obj.Set("register", js.FuncOf(r.RegisterFromJS))
	obj.Set("isRegistered", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return false
		}
		return r.IsRegistered(args[0].String())
	}))
	js.Global().Set(globalName, obj)
}
