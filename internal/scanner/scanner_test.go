package scanner

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/chtl-lang/chtl/internal/cjmod"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/fragment"
	"github.com/chtl-lang/chtl/internal/loc"
)

func scan(t *testing.T, src string) *fragment.Index {
	t.Helper()
	h := diag.NewHandler()
	s := New([]byte(src), "test.chtl", SlidingWindow, h, cjmod.NewKeywordRegistry())
	return s.Scan()
}

func scanWithRegistry(t *testing.T, src string, registry *cjmod.KeywordRegistry) *diag.Handler {
	t.Helper()
	h := diag.NewHandler()
	s := New([]byte(src), "test.chtl", SlidingWindow, h, registry)
	s.Scan()
	return h
}

func TestScanSplitsLocalStyleIntoItsOwnFragment(t *testing.T) {
	idx := scan(t, `div { style { color: red; } }`)
	styleFragments := idx.ByType(fragment.CSS)
	assert.Assert(t, len(styleFragments) >= 1, "expected at least one CSS fragment, got %d", len(styleFragments))
}

func TestScanSplitsScriptIntoItsOwnFragment(t *testing.T) {
	idx := scan(t, `div { script { const x = 1; } }`)
	jsFragments := idx.ByType(fragment.JS)
	assert.Assert(t, len(jsFragments) >= 1, "expected at least one JS fragment, got %d", len(jsFragments))
}

func TestTopologicalOrderCoversEveryFragment(t *testing.T) {
	idx := scan(t, `div { style { color: red; } script { const x = 1; } }`)
	order := idx.TopologicalOrder()
	assert.Equal(t, len(order), len(idx.Fragments))
}

func TestScanRejectsUnregisteredVirtualObjectKey(t *testing.T) {
	registry := cjmod.NewKeywordRegistry()
	registry.RegisterVirtualObjectKeys("listen", "click", "hover")
	h := scanWithRegistry(t, `div { script { vir handlers = listen({ click: onClick, drag: onDrag }); } }`, registry)
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.ERROR_UNREGISTERED_VIRTUAL_KEY {
			found = true
		}
	}
	assert.Assert(t, found, "expected an ERROR_UNREGISTERED_VIRTUAL_KEY diagnostic for the unregistered `drag` key, got %v", h.All())
}

func TestScanAllowsRegisteredVirtualObjectKeys(t *testing.T) {
	registry := cjmod.NewKeywordRegistry()
	registry.RegisterVirtualObjectKeys("listen", "click", "hover")
	h := scanWithRegistry(t, `div { script { vir handlers = listen({ click: onClick, hover: onHover }); } }`, registry)
	for _, d := range h.All() {
		if d.Code == loc.ERROR_UNREGISTERED_VIRTUAL_KEY {
			t.Fatalf("did not expect a violation when every key is registered, got %v", d)
		}
	}
}
