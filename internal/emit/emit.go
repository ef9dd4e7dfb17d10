// Package emit defines the Emit boundary (spec.md §4.K): the interface
// between this compiler's semantically-transformed AST and whatever
// external renderer turns it into HTML/CSS/JS text. The full HTML/CSS/JS
// code generator is explicitly out of scope for this module (spec.md
// Non-goals) — this package is the contract a downstream renderer
// implements, plus a minimal reference implementation useful for tests
// and the CLI's `build` and `explain` commands.
//
// Grounded on the shape of internal/printer (one Printer per output
// kind: print-to-source, print-to-css, print-to-js), without adopting
// its implementation — that package prints a whole JSX component; this
// package only prints enough HTML/CSS/JS to make the reference emitter
// useful as a smoke test, and documents the seam a real emitter plugs
// into.
package emit

import (
	"fmt"
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
)

// Emitter turns a fully-transformed Program node into output text. A
// production renderer (outside this module's scope) implements this by
// walking the tree and producing properly-escaped, formatted HTML with
// associated CSS/JS assets; ReferenceEmitter below is a minimal
// stand-in used by tests.
type Emitter interface {
	Emit(root *ast.Node) (Output, error)
}

// Output is the emitter's result: the three independent text streams a
// CHTL compilation unit produces (spec.md §1 overview).
type Output struct {
	HTML string
	CSS  string
	JS   string
}

// ReferenceEmitter is a direct, unoptimized tree-to-text walk: no
// minification, no CSS scoping beyond what the transform stage already
// resolved, no source maps. It exists so internal tests and the CLI's
// `build` and `explain` commands have output to produce without
// depending on an external renderer.
type ReferenceEmitter struct {
	Indent string
}

func NewReferenceEmitter() *ReferenceEmitter {
	return &ReferenceEmitter{Indent: "  "}
}

func (e *ReferenceEmitter) Emit(root *ast.Node) (Output, error) {
	var html, css, js strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		e.emitNode(c, 0, &html, &css, &js)
	}
	return Output{HTML: html.String(), CSS: css.String(), JS: js.String()}, nil
}

func (e *ReferenceEmitter) emitNode(n *ast.Node, depth int, html, css, js *strings.Builder) {
	indent := strings.Repeat(e.Indent, depth)
	switch n.Kind {
	case ast.KindElement:
		html.WriteString(indent + "<" + n.Tag)
		for _, a := range n.Attrs {
			fmt.Fprintf(html, ` %s="%s"`, a.Name, strings.Trim(a.Value, `"'`))
		}
		html.WriteString(">\n")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			e.emitNode(c, depth+1, html, css, js)
		}
		html.WriteString(indent + "</" + n.Tag + ">\n")
	case ast.KindTextBlock:
		html.WriteString(indent + strings.Trim(n.Text, `"'`) + "\n")
	case ast.KindStyleBlock:
		e.emitStyle(n, css)
	case ast.KindScriptBlock:
		js.WriteString(n.Raw)
		js.WriteString("\n")
	case ast.KindOrigin:
		switch n.OriginKind {
		case ast.OriginHTML:
			html.WriteString(n.Raw)
		case ast.OriginStyle:
			css.WriteString(n.Raw)
		case ast.OriginJavaScript:
			js.WriteString(n.Raw)
		}
	case ast.KindComment:
		if n.CommentKind != ast.CommentGenerator {
			return
		}
		html.WriteString(indent + n.Text + "\n")
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			e.emitNode(c, depth, html, css, js)
		}
	}
}

func (e *ReferenceEmitter) emitStyle(block *ast.Node, css *strings.Builder) {
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		switch c.Kind {
		case ast.KindStyleProperty:
			var vals []string
			for _, v := range c.Values {
				vals = append(vals, v.Value)
			}
			fmt.Fprintf(css, "%s: %s;\n", c.PropertyName, strings.Join(vals, " "))
		case ast.KindStyleRule:
			sel := c.FirstChild
			selText := ""
			if sel != nil {
				selText = sel.Value
				if selText == "" {
					selText = sel.Combinator
				}
			}
			fmt.Fprintf(css, "%s {\n", selText)
			e.emitStyle(c, css)
			css.WriteString("}\n")
		}
	}
}
