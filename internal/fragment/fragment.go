// Package fragment defines the unit the Unified Scanner slices source text
// into (spec.md §3 "Fragment", §4.B) and the dependency index built over a
// scan's output, grounded on original_source/include/Scanner/CHTLUnifiedScanner.h
// (CodeFragment / FragmentIndexManager).
package fragment

import "github.com/chtl-lang/chtl/internal/loc"

type Type int

const (
	CHTL Type = iota
	CHTLJS
	CSS
	JS
)

func (t Type) String() string {
	switch t {
	case CHTL:
		return "CHTL"
	case CHTLJS:
		return "CHTL_JS"
	case CSS:
		return "CSS"
	case JS:
		return "JS"
	default:
		return "Unknown"
	}
}

type Context int

const (
	GlobalScope Context = iota
	HTMLElement
	StyleBlock
	ScriptBlock
	FunctionBody
	TemplateBlock
	CustomBlock
)

func (c Context) String() string {
	switch c {
	case GlobalScope:
		return "global"
	case HTMLElement:
		return "html-element"
	case StyleBlock:
		return "style-block"
	case ScriptBlock:
		return "script-block"
	case FunctionBody:
		return "function-body"
	case TemplateBlock:
		return "template-block"
	case CustomBlock:
		return "custom-block"
	default:
		return "unknown"
	}
}

type Integrity int

const (
	Complete Integrity = iota
	Partial
	Incomplete
	Merged
)

// Fragment is one contiguous, typed slice of source (spec.md §3).
type Fragment struct {
	ID      int
	Type    Type
	Content string
	Span    loc.Span

	StartLine, StartColumn int
	EndLine, EndColumn     int

	Context     Context
	Integrity   Integrity
	Sequence    int // position in scan order

	Dependencies []int
	Dependents   []int
	ParentID     int // 0 = none
	Children     []int

	MergeOrder int // lower = earlier

	TriggerKeyword    string
	ContainedKeywords map[string]bool
	IsMinimalUnit     bool
}

func (f *Fragment) AddContainedKeyword(kw string) {
	if f.ContainedKeywords == nil {
		f.ContainedKeywords = make(map[string]bool)
	}
	f.ContainedKeywords[kw] = true
}

// Index is the fragment dependency graph built after a full scan: a
// second pass over the emitted fragment slice (spec.md §4.B "Dependency
// index").
type Index struct {
	Fragments []*Fragment
	byID      map[int]*Fragment
}

func NewIndex(fragments []*Fragment) *Index {
	idx := &Index{Fragments: fragments, byID: make(map[int]*Fragment, len(fragments))}
	for _, f := range fragments {
		idx.byID[f.ID] = f
	}
	return idx
}

func (idx *Index) Get(id int) (*Fragment, bool) {
	f, ok := idx.byID[id]
	return f, ok
}

func (idx *Index) ByType(t Type) []*Fragment {
	var out []*Fragment
	for _, f := range idx.Fragments {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

func (idx *Index) ByContext(c Context) []*Fragment {
	var out []*Fragment
	for _, f := range idx.Fragments {
		if f.Context == c {
			out = append(out, f)
		}
	}
	return out
}

func (idx *Index) ByKeyword(kw string) []*Fragment {
	var out []*Fragment
	for _, f := range idx.Fragments {
		if f.ContainedKeywords[kw] || f.TriggerKeyword == kw {
			out = append(out, f)
		}
	}
	return out
}

func (idx *Index) Incomplete() []*Fragment {
	var out []*Fragment
	for _, f := range idx.Fragments {
		if f.Integrity == Incomplete || f.Integrity == Partial {
			out = append(out, f)
		}
	}
	return out
}

func (idx *Index) Dependencies(id int) []int {
	if f, ok := idx.byID[id]; ok {
		return f.Dependencies
	}
	return nil
}

// AddDependency records that `from` depends on `on`, updating both the
// forward and reverse adjacency lists.
func (idx *Index) AddDependency(from, on int) {
	ff, ok1 := idx.byID[from]
	of, ok2 := idx.byID[on]
	if !ok1 || !ok2 || from == on {
		return
	}
	for _, d := range ff.Dependencies {
		if d == on {
			return
		}
	}
	ff.Dependencies = append(ff.Dependencies, on)
	of.Dependents = append(of.Dependents, from)
}

// TopologicalOrder returns fragment IDs ordered so that every fragment
// appears after its dependencies, ties broken by lexical (Sequence)
// position (spec.md §3 invariant: "merge-order respects topological
// order").
func (idx *Index) TopologicalOrder() []int {
	visited := make(map[int]bool, len(idx.Fragments))
	var order []int
	var visit func(id int)
	visit = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		f, ok := idx.byID[id]
		if !ok {
			return
		}
		deps := append([]int(nil), f.Dependencies...)
		sortBySequence(deps, idx.byID)
		for _, d := range deps {
			visit(d)
		}
		order = append(order, id)
	}

	ids := make([]int, len(idx.Fragments))
	for i, f := range idx.Fragments {
		ids[i] = f.ID
	}
	sortBySequence(ids, idx.byID)
	for _, id := range ids {
		visit(id)
	}
	for i, id := range order {
		if f, ok := idx.byID[id]; ok {
			f.MergeOrder = i
		}
	}
	return order
}

func sortBySequence(ids []int, byID map[int]*Fragment) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0; j-- {
			a, b := byID[ids[j-1]], byID[ids[j]]
			if a == nil || b == nil || a.Sequence <= b.Sequence {
				break
			}
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
