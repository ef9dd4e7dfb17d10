package transform

import (
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/chtl-lang/chtl/internal/ast"
)

// HasAttr reports whether n (an Element) declares an attribute named
// key, grounded on the HasAttr helper in internal/transform/utils.go
// over a different node shape.
func HasAttr(n *ast.Node, key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// GetAttr returns the raw attribute value, or "" if absent.
func GetAttr(n *ast.Node, key string) string {
	a, ok := n.Attr(key)
	if !ok {
		return ""
	}
	return a.Value
}

// GetQuotedAttr returns the attribute value with surrounding quotes
// stripped, matching how the lexer hands string-literal values to the
// parser.
func GetQuotedAttr(n *ast.Node, key string) string {
	v := GetAttr(n, key)
	return strings.Trim(v, `"'`)
}

// HasClassAttr / HasIdAttr report whether n already carries a class or id
// attribute, consulted by selector automation before auto-adding one
// (spec.md §4.H "Selector automation").
func HasClassAttr(n *ast.Node) bool { return HasAttr(n, "class") }
func HasIdAttr(n *ast.Node) bool    { return HasAttr(n, "id") }

// ClassList splits a class attribute's value on whitespace.
func ClassList(n *ast.Node) []string {
	v := GetQuotedAttr(n, "class")
	if v == "" {
		return nil
	}
	return strings.Fields(v)
}

// AppendClass adds cls to n's class attribute if not already present.
func AppendClass(n *ast.Node, cls string) {
	existing := ClassList(n)
	for _, c := range existing {
		if c == cls {
			return
		}
	}
	existing = append(existing, cls)
	n.SetAttr("class", strings.Join(existing, " "))
}

// IsElement / IsStyleBlock / IsScriptBlock are small readability
// wrappers over ast.Node.Kind, mirroring the predicate-style helpers
// (HasSetDirective, HasInlineDirective) rather than inline Kind
// comparisons scattered through the transform passes.
func IsElement(n *ast.Node) bool     { return n.Kind == ast.KindElement }
func IsStyleBlock(n *ast.Node) bool  { return n.Kind == ast.KindStyleBlock }
func IsScriptBlock(n *ast.Node) bool { return n.Kind == ast.KindScriptBlock }

// neverScopedAtoms lists the tags selector automation never touches,
// recognized via golang.org/x/net/html/atom rather than a bespoke string
// set; the tag is lower-cased first, so a differently-cased tag name still
// matches (a misspelled one does not).
var neverScopedAtoms = map[atom.Atom]bool{
	atom.Html: true, atom.Head: true, atom.Meta: true, atom.Title: true, atom.Base: true,
}

// IsNeverScopedElement reports whether tag is one selector automation
// always skips (spec.md §4.H).
func IsNeverScopedElement(tag string) bool {
	return neverScopedAtoms[atom.Lookup([]byte(strings.ToLower(tag)))]
}
