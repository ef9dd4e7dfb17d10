package transform

import (
	"strconv"
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/loc"
)

// deleteTarget is one resolved entry out of a Delete node's flat Targets
// token list: an optional leading selector marker (`.`/`#`), the bare
// name, and an optional bracketed index.
type deleteTarget struct {
	selector string
	name     string
	index    int
	hasIndex bool
}

// parseDeleteTargets walks parseDelete's flat token-text list (e.g.
// `["div", "[", "0", "]"]` for `div[0]`, or `[".", "box"]` for `.box`)
// back into individual targets.
func parseDeleteTargets(tokens []string) []deleteTarget {
	var out []deleteTarget
	i := 0
	for i < len(tokens) {
		sel := ""
		if tokens[i] == "." || tokens[i] == "#" {
			sel = tokens[i]
			i++
			if i >= len(tokens) {
				break
			}
		}
		dt := deleteTarget{selector: sel, name: tokens[i]}
		i++
		if i+2 < len(tokens) && tokens[i] == "[" && tokens[i+2] == "]" {
			if idx, err := strconv.Atoi(tokens[i+1]); err == nil {
				dt.hasIndex, dt.index = true, idx
			}
			i += 3
		}
		out = append(out, dt)
	}
	return out
}

// applyDelete mutates body in place for a Delete specialization member
// (spec.md §4.H step 3: "Delete(property)/Delete(element, honoring
// IndexAccess)/Delete(inheritance)").
func applyDelete(body, del *ast.Node, h *diag.Handler) {
	if del.DeleteKind == ast.DelInheritance {
		removeAllMatching(body, func(n *ast.Node) bool { return n.Kind == ast.KindInherit })
		return
	}
	for _, target := range parseDeleteTargets(del.Targets) {
		var removed bool
		switch target.selector {
		case ".":
			removed = removeFirstMatching(body, func(n *ast.Node) bool {
				return n.Kind == ast.KindElement && hasClassName(n, target.name)
			})
		case "#":
			removed = removeFirstMatching(body, func(n *ast.Node) bool {
				return n.Kind == ast.KindElement && GetQuotedAttr(n, "id") == target.name
			})
		default:
			// A bare identifier is ambiguous between a property delete
			// and a tag-name element delete; try the property first
			// since that's by far the more common specialization edit.
			removed = removeFirstMatching(body, func(n *ast.Node) bool {
				return (n.Kind == ast.KindStyleProperty && n.PropertyName == target.name) ||
					(n.Kind == ast.KindAttribute && n.Name == target.name)
			})
			if !removed {
				removed = removeNthElementChild(body, target.name, target.index, target.hasIndex)
			}
		}
		if !removed {
			h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: del.Loc}, loc.ERROR_DELETE_TARGET_NOT_FOUND,
				"delete target %q not found in specialized body", target.name)
		}
	}
}

func hasClassName(n *ast.Node, name string) bool {
	for _, c := range ClassList(n) {
		if c == name {
			return true
		}
	}
	return false
}

// removeFirstMatching detaches the first descendant of body (pre-order)
// satisfying pred, returning whether anything was removed.
func removeFirstMatching(body *ast.Node, pred func(*ast.Node) bool) bool {
	var found *ast.Node
	ast.Walk(body, func(n *ast.Node) {
		if found != nil || n == body || !pred(n) {
			return
		}
		found = n
	})
	if found == nil {
		return false
	}
	found.Parent.RemoveChild(found)
	return true
}

func removeAllMatching(body *ast.Node, pred func(*ast.Node) bool) {
	var matches []*ast.Node
	ast.Walk(body, func(n *ast.Node) {
		if n != body && pred(n) {
			matches = append(matches, n)
		}
	})
	for _, m := range matches {
		if m.Parent != nil {
			m.Parent.RemoveChild(m)
		}
	}
}

// removeNthElementChild removes the index-th (0-based, defaulting to 0
// when hasIndex is false) direct child Element of body with the given
// tag name, in document order.
func removeNthElementChild(body *ast.Node, tag string, index int, hasIndex bool) bool {
	if !hasIndex {
		index = 0
	}
	count := 0
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement && c.Tag == tag {
			if count == index {
				body.RemoveChild(c)
				return true
			}
			count++
		}
	}
	return false
}

// parseInsertTarget splits parseInsert's concatenated InsertTarget text
// (e.g. "div" or "div[0]") into a tag name and optional index.
func parseInsertTarget(raw string) (tag string, index int, hasIndex bool) {
	i := strings.IndexByte(raw, '[')
	if i == -1 {
		return raw, 0, false
	}
	j := strings.IndexByte(raw[i:], ']')
	if j == -1 {
		return raw[:i], 0, false
	}
	if idx, err := strconv.Atoi(raw[i+1 : i+j]); err == nil {
		return raw[:i], idx, true
	}
	return raw[:i], 0, false
}

// applyInsert splices an Insert node's Element children into body at the
// position its InsertPosition/InsertTarget names (spec.md §4.H step 3
// "Insert(after/before/replace/at-top/at-bottom)").
func applyInsert(body, ins *ast.Node, h *diag.Handler) {
	switch ins.InsertPosition {
	case ast.InsAtTop:
		prependChildren(body, ins)
		return
	case ast.InsAtBottom:
		appendChildren(body, ins)
		return
	}

	tag, index, hasIndex := parseInsertTarget(ins.InsertTarget)
	target := findNthElementChild(body, tag, index, hasIndex)
	if target == nil {
		h.Errorf(loc.PhaseTransformExpansion, loc.Range{Loc: ins.Loc}, loc.ERROR_INSERT_TARGET_NOT_FOUND,
			"insert target %q not found in specialized body", ins.InsertTarget)
		return
	}
	switch ins.InsertPosition {
	case ast.InsAfter:
		anchor := target.NextSibling
		for c := ins.FirstChild; c != nil; {
			next := c.NextSibling
			detach(c)
			if anchor != nil {
				body.InsertBefore(c, anchor)
			} else {
				body.AppendChild(c)
			}
			c = next
		}
	case ast.InsBefore:
		for c := ins.FirstChild; c != nil; {
			next := c.NextSibling
			detach(c)
			body.InsertBefore(c, target)
			c = next
		}
	case ast.InsReplace:
		for c := ins.FirstChild; c != nil; {
			next := c.NextSibling
			detach(c)
			body.InsertBefore(c, target)
			c = next
		}
		body.RemoveChild(target)
	}
}

func findNthElementChild(body *ast.Node, tag string, index int, hasIndex bool) *ast.Node {
	if !hasIndex {
		index = 0
	}
	count := 0
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindElement && c.Tag == tag {
			if count == index {
				return c
			}
			count++
		}
	}
	return nil
}

func prependChildren(body, ins *ast.Node) {
	anchor := body.FirstChild
	for c := ins.FirstChild; c != nil; {
		next := c.NextSibling
		detach(c)
		if anchor != nil {
			body.InsertBefore(c, anchor)
		} else {
			body.AppendChild(c)
		}
		c = next
	}
}

func appendChildren(body, ins *ast.Node) {
	for c := ins.FirstChild; c != nil; {
		next := c.NextSibling
		detach(c)
		body.AppendChild(c)
		c = next
	}
}
