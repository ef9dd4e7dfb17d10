// Package ast defines the CHTL abstract syntax tree (spec.md §3 "AST"): a
// closed set of node kinds modeled, per spec.md §9 "Polymorphic nodes", as
// one tagged struct with a Kind discriminant rather than a deep
// inheritance hierarchy — exhaustive switches over Kind replace virtual
// dispatch.
//
// The tree shape itself (Parent/FirstChild/LastChild/PrevSibling/NextSibling,
// a non-owning Parent back-reference, AppendChild/InsertBefore/RemoveChild)
// is carried over from internal/token.go's Node type, which solves the
// same "arena of nodes with a parent weak-reference" problem.
package ast

import "github.com/chtl-lang/chtl/internal/loc"

type Kind int

const (
	KindProgram Kind = iota
	KindElement
	KindAttribute
	KindTextBlock
	KindStyleBlock
	KindStyleRule
	KindStyleSelector
	KindStyleProperty
	KindStyleValue
	KindScriptBlock
	KindTemplateDecl
	KindCustomDecl
	KindTemplateUse
	KindInherit
	KindSpecialization
	KindDelete
	KindInsert
	KindExcept
	KindOrigin
	KindImport
	KindNamespace
	KindConfiguration
	KindIdentifier
	KindStringLiteral
	KindVariableGroup
	KindTemplateReference
	KindCustomReference
	KindVariableReference
	KindIndexAccess
	KindFromStatement
	KindComment
)

func (k Kind) String() string {
	names := [...]string{
		"Program", "Element", "Attribute", "TextBlock", "StyleBlock", "StyleRule",
		"StyleSelector", "StyleProperty", "StyleValue", "ScriptBlock", "TemplateDecl",
		"CustomDecl", "TemplateUse", "Inherit", "Specialization", "Delete", "Insert",
		"Except", "Origin", "Import", "Namespace", "Configuration", "Identifier",
		"StringLiteral", "VariableGroup", "TemplateReference", "CustomReference",
		"VariableReference", "IndexAccess", "FromStatement", "Comment",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// TemplateKind distinguishes @Style / @Element / @Var template and custom
// declarations/uses (spec.md §3).
type TemplateKind int

const (
	TplStyle TemplateKind = iota
	TplElement
	TplVar
)

func (k TemplateKind) String() string {
	switch k {
	case TplStyle:
		return "Style"
	case TplElement:
		return "Element"
	case TplVar:
		return "Var"
	default:
		return "Unknown"
	}
}

type SelectorKind int

const (
	SelClass SelectorKind = iota
	SelID
	SelElement
	SelUniversal
	SelAttribute
	SelPseudoClass
	SelPseudoElement
	SelCombinator
	SelAmpersand
)

type StyleValueKind int

const (
	ValLiteral StyleValueKind = iota
	ValFunction
	ValVariable
	ValCalc
)

type DeleteKind int

const (
	DelProperty DeleteKind = iota
	DelElement
	DelInheritance
)

type InsertPosition int

const (
	InsAfter InsertPosition = iota
	InsBefore
	InsReplace
	InsAtTop
	InsAtBottom
)

type ExceptMode int

const (
	ExceptPrecise ExceptMode = iota
	ExceptType
	ExceptGlobal
)

type OriginKind int

const (
	OriginHTML OriginKind = iota
	OriginStyle
	OriginJavaScript
	OriginCustom // arbitrary @Name
)

type CommentKind int

const (
	CommentSingleLine CommentKind = iota
	CommentMultiLine
	CommentGenerator
	CommentDash
)

// ImportKind mirrors the classification in spec.md §4.G.
type ImportKind int

const (
	ImportHTML ImportKind = iota
	ImportStyle
	ImportJavaScript
	ImportChtl
	ImportCJmod
)

func (k ImportKind) String() string {
	switch k {
	case ImportHTML:
		return "Html"
	case ImportStyle:
		return "Style"
	case ImportJavaScript:
		return "JavaScript"
	case ImportChtl:
		return "Chtl"
	case ImportCJmod:
		return "CJmod"
	default:
		return "Unknown"
	}
}

// Attribute is a single element attribute (spec.md §3).
type Attribute struct {
	Name        string
	Value       string
	UsesCEEquality bool // true if declared with "=" rather than ":"
	NameLoc     loc.Loc
	ValueLoc    loc.Loc
}

// Node is the single tagged-union AST node type. Fields not relevant to a
// node's Kind are left zero-valued; see the Kind-specific accessor
// comments below for which fields apply to which Kind.
type Node struct {
	Kind Kind
	Loc  loc.Loc

	Parent                   *Node // non-owning
	FirstChild, LastChild    *Node
	PrevSibling, NextSibling *Node

	// Element
	Tag   string
	Attrs []Attribute

	// TextBlock / StringLiteral / Identifier / UnquotedLiteral content
	Text string

	// StyleBlock / ScriptBlock
	IsLocal bool
	Raw     string // ScriptBlock's verbatim content

	// StyleSelector
	SelectorKind SelectorKind
	Combinator   string
	Left, Right  *Node // combinator operands

	// StyleProperty
	PropertyName string
	Values       []*Node // StyleValue children
	Important    bool

	// StyleValue
	ValueKind StyleValueKind
	Value     string
	Args      []*Node

	// TemplateDecl / CustomDecl / TemplateUse / TemplateReference / CustomReference / VariableReference
	TemplateKind    TemplateKind
	Name            string
	IsCustom        bool
	Specializations map[string]*Node // key -> StyleValue override, for TemplateUse
	SpecOrder       []string
	Group           string // VariableReference's group name
	Spec            *Node  // override value for a valueless variable reference

	// Inherit
	Target    string
	Namespace string

	// Specialization
	PropertyOverrides map[string]*Node
	Deletions         []*Node

	// Delete
	DeleteKind DeleteKind
	Targets    []string

	// Insert
	InsertPosition InsertPosition
	InsertTarget   string

	// Except
	ExceptMode ExceptMode

	// Origin
	OriginKind OriginKind
	OriginName string // custom @Name, or the `as` alias for lowered imports

	// Import
	ImportKind      ImportKind
	FromPath        string
	AsName          string
	ImportList      []string
	OfficialPrefix  bool

	// Namespace
	Constraints []*Node

	// Configuration
	Entries map[string]string
	EntryOrder []string

	// VariableGroup
	EntryValues map[string]string
	IsValueless bool

	// IndexAccess
	ElementName string
	Index       int

	// FromStatement
	Symbol string

	// Comment
	CommentKind CommentKind

	// Selector automation / reference resolution bookkeeping (transform.go)
	AutoAddedClass bool
	AutoAddedID    bool
}

// NewNode allocates a node of the given kind at the given position.
func NewNode(kind Kind, l loc.Loc) *Node {
	return &Node{Kind: kind, Loc: l}
}

// AppendChild adds n as the new last child of parent.
func (parent *Node) AppendChild(n *Node) {
	if n.Parent != nil || n.PrevSibling != nil || n.NextSibling != nil {
		panic("ast: AppendChild called on attached node")
	}
	last := parent.LastChild
	if last != nil {
		last.NextSibling = n
	} else {
		parent.FirstChild = n
	}
	parent.LastChild = n
	n.Parent = parent
	n.PrevSibling = last
}

// InsertBefore inserts newChild as a new child of parent, immediately
// before oldChild in parent's children. If oldChild is nil, newChild is
// appended.
func (parent *Node) InsertBefore(newChild, oldChild *Node) {
	if oldChild == nil {
		parent.AppendChild(newChild)
		return
	}
	if oldChild.Parent != parent {
		panic("ast: InsertBefore called for a non-child oldChild")
	}
	prev := oldChild.PrevSibling
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		parent.FirstChild = newChild
	}
	newChild.PrevSibling = prev
	newChild.NextSibling = oldChild
	oldChild.PrevSibling = newChild
	newChild.Parent = parent
}

// RemoveChild detaches n, which must be a child of parent.
func (parent *Node) RemoveChild(n *Node) {
	if n.Parent != parent {
		panic("ast: RemoveChild called for a non-child Node")
	}
	if parent.FirstChild == n {
		parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	}
	if parent.LastChild == n {
		parent.LastChild = n.PrevSibling
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	}
	n.Parent = nil
	n.PrevSibling = nil
	n.NextSibling = nil
}

// Children returns n's direct children as a slice, for callers that prefer
// indexed access (e.g. Delete(element) with an IndexAccess).
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Closest walks up from n (inclusive) looking for the nearest ancestor
// matching pred, mirroring Node.Closest — used to resolve an ampersand
// StyleSelector to its containing Element.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for c := n; c != nil; c = c.Parent {
		if pred(c) {
			return c
		}
	}
	return nil
}

// Attr returns the named attribute, if present.
func (n *Node) Attr(name string) (Attribute, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// SetAttr sets (overwriting if present) an attribute on an Element node.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Name: name, Value: value})
}

// Walk visits n and every descendant in pre-order, left to right (spec.md
// §5 "Ordering guarantees").
func Walk(n *Node, visit func(*Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// Clone deep-copies a subtree rooted at n, detached from any parent. Used
// by template/custom expansion (spec.md §4.H step 2: "the referenced
// declaration body is cloned under the use-site").
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Parent = nil
	clone.PrevSibling = nil
	clone.NextSibling = nil
	clone.FirstChild = nil
	clone.LastChild = nil
	clone.Attrs = append([]Attribute(nil), n.Attrs...)
	clone.Targets = append([]string(nil), n.Targets...)
	clone.ImportList = append([]string(nil), n.ImportList...)
	if n.Specializations != nil {
		clone.Specializations = make(map[string]*Node, len(n.Specializations))
		for k, v := range n.Specializations {
			clone.Specializations[k] = Clone(v)
		}
	}
	if n.PropertyOverrides != nil {
		clone.PropertyOverrides = make(map[string]*Node, len(n.PropertyOverrides))
		for k, v := range n.PropertyOverrides {
			clone.PropertyOverrides[k] = Clone(v)
		}
	}
	if n.Entries != nil {
		clone.Entries = make(map[string]string, len(n.Entries))
		for k, v := range n.Entries {
			clone.Entries[k] = v
		}
	}
	if n.EntryValues != nil {
		clone.EntryValues = make(map[string]string, len(n.EntryValues))
		for k, v := range n.EntryValues {
			clone.EntryValues[k] = v
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(Clone(c))
	}
	return &clone
}
