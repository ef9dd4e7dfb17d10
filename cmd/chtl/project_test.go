package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestCompileProjectMergesImportedTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "base.chtl", `[Template] @Style Base { color: red; }`)
	entry := writeTempFile(t, dir, "main.chtl", `
		[Import] @Chtl from "base"
		div { style { @Style Base; } }
	`)

	root, h, err := compileProject(entry, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", h.All())
	}

	var style *ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == ast.KindStyleBlock {
			style = n
		}
	})
	if style == nil || style.FirstChild == nil {
		t.Fatalf("expected the imported template to expand into a property, got %+v", style)
	}
	if style.FirstChild.Kind != ast.KindStyleProperty || style.FirstChild.PropertyName != "color" {
		t.Fatalf("expected an expanded color property, got %+v", style.FirstChild)
	}
}

func TestCompileProjectReportsUnresolvedImport(t *testing.T) {
	dir := t.TempDir()
	entry := writeTempFile(t, dir, "main.chtl", `
		[Import] @Chtl from "missing"
		div { text { "hi" } }
	`)

	_, h, err := compileProject(entry, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.HasErrors() {
		t.Fatalf("expected an unresolved-import error, got %v", h.All())
	}
}
