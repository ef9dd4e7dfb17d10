package symbols

import "testing"

func TestSameNameDifferentKindCoexist(t *testing.T) {
	ns := NewNamespace("", nil)
	if _, conflict := ns.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle}); conflict {
		t.Fatalf("unexpected conflict on first insert")
	}
	if _, conflict := ns.AddItem(Entry{Name: "Box", Kind: KindTemplateElement}); conflict {
		t.Fatalf("same name, different kind should coexist")
	}
	items := ns.GetItemsByName("Box")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestSameNameSameKindConflicts(t *testing.T) {
	ns := NewNamespace("", nil)
	ns.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle, File: "a.chtl"})
	_, conflict := ns.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle, File: "b.chtl"})
	if !conflict {
		t.Fatalf("expected a conflict for duplicate name+kind")
	}
}

func TestMergeKeepsExistingByDefault(t *testing.T) {
	dst := NewNamespace("", nil)
	dst.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle, File: "dst.chtl"})

	src := NewNamespace("", nil)
	src.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle, File: "src.chtl"})

	conflicts := dst.MergeWith(src, KeepExisting)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	e, ok := dst.GetItem("Box", KindTemplateStyle)
	if !ok || e.File != "dst.chtl" {
		t.Fatalf("KeepExisting should preserve dst's entry, got %+v", e)
	}
}

func TestResolveWithFallbackWalksAncestors(t *testing.T) {
	m := NewManager()
	m.Global.AddItem(Entry{Name: "Box", Kind: KindTemplateStyle, File: "global.chtl"})
	ui := m.Register([]string{"ui"})

	items, scope, ok := ui.ResolveWithFallback([]string{"Box"})
	if !ok || len(items) != 1 || scope != m.Global {
		t.Fatalf("expected fallback resolution to find Box in the global scope, got items=%v scope=%v ok=%v", items, scope, ok)
	}
}

func TestRegisterCreatesNestedNamespaces(t *testing.T) {
	m := NewManager()
	ns := m.Register([]string{"ui", "forms"})
	if ns.Name != "forms" || ns.Parent.Name != "ui" {
		t.Fatalf("unexpected namespace tree: %+v", ns)
	}
}
