package main

import (
	"github.com/go-json-experiment/json"

	"github.com/chtl-lang/chtl/internal/ast"
)

// debugNode mirrors printer.ASTNode (internal/printer/print-to-json.go)
// but is emitted with the project's JSON codec rather than hand-built
// string concatenation, since `ast-json` is a debugging aid, not the
// documented emit boundary.
type debugNode struct {
	Kind     string      `json:"kind"`
	Tag      string      `json:"tag,omitempty"`
	Text     string      `json:"text,omitempty"`
	Attrs    []attrDump  `json:"attrs,omitempty"`
	Children []debugNode `json:"children,omitempty"`
}

type attrDump struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

func toDebugNode(n *ast.Node) debugNode {
	d := debugNode{Kind: n.Kind.String(), Tag: n.Tag, Text: n.Text}
	for _, a := range n.Attrs {
		d.Attrs = append(d.Attrs, attrDump{Name: a.Name, Value: a.Value})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.Children = append(d.Children, toDebugNode(c))
	}
	return d
}

func dumpNodeJSON(root *ast.Node) ([]byte, error) {
	return json.Marshal(toDebugNode(root))
}
