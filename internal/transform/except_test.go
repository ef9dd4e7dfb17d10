package transform

import (
	"testing"

	"github.com/chtl-lang/chtl/internal/loc"
)

func TestCheckExceptConstraintsRejectsPreciseTarget(t *testing.T) {
	_, h := parseAndTransform(t, `
		div { except span; span { text { "x" } } }
	`)
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.ERROR_EXCEPT_VIOLATION {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an ERROR_EXCEPT_VIOLATION diagnostic, got %v", h.All())
	}
}

func TestCheckExceptConstraintsAllowsUnlistedTags(t *testing.T) {
	_, h := parseAndTransform(t, `
		div { except span; p { text { "x" } } }
	`)
	for _, d := range h.All() {
		if d.Code == loc.ERROR_EXCEPT_VIOLATION {
			t.Fatalf("did not expect a violation for an unconstrained tag, got %v", d)
		}
	}
}

func TestCheckExceptConstraintsRejectsGlobalWildcard(t *testing.T) {
	_, h := parseAndTransform(t, `
		div { except *; span { text { "x" } } }
	`)
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.ERROR_EXCEPT_VIOLATION {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected `except *` to reject any nested element, got %v", h.All())
	}
}

func TestCheckExceptConstraintsRejectsTypeTarget(t *testing.T) {
	_, h := parseAndTransform(t, `
		div { except @Html; [Origin] @Html { <p>hi</p> } }
	`)
	var found bool
	for _, d := range h.All() {
		if d.Code == loc.ERROR_EXCEPT_VIOLATION {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected `except @Html` to reject an @Html origin block, got %v", h.All())
	}
}
