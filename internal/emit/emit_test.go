package emit

import (
	"strings"
	"testing"

	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/parser"
	"github.com/chtl-lang/chtl/internal/symbols"
	"github.com/chtl-lang/chtl/internal/test_utils"
	"github.com/chtl-lang/chtl/internal/transform"
)

func compileForEmit(t *testing.T, src string) *Output {
	t.Helper()
	symtab := symbols.NewManager()
	h := diag.NewHandler()
	p := parser.New(src, "test.chtl", h, symtab, parser.Recovering)
	root := p.Parse()
	transform.Transform(root, symtab, transform.Options{Filename: "test.chtl", Config: config.Default()}, h)
	if h.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", h.All())
	}
	out, err := NewReferenceEmitter().Emit(root)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	return &out
}

func TestReferenceEmitterProducesNestedHTML(t *testing.T) {
	src := test_utils.Dedent(`
		div {
			class: "card";
			text { "hello" }
		}
	`)
	out := compileForEmit(t, src)
	if !strings.Contains(out.HTML, "<div") || !strings.Contains(out.HTML, "hello") {
		t.Fatalf("expected div and text in output, got %q", out.HTML)
	}
}

func TestReferenceEmitterEmitsStyleProperties(t *testing.T) {
	src := `div { style { color: red; } }`
	out := compileForEmit(t, src)
	if !strings.Contains(out.CSS, "color: red;") {
		t.Fatalf("expected color property in css, got %q", out.CSS)
	}
}
