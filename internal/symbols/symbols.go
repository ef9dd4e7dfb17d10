// Package symbols implements the Symbol & Namespace Map (spec.md §4.F): a
// multi-scope trie of declared names with merge semantics for imported
// and nested namespaces.
//
// Grounded on original_source/include/NamespaceManager.h (Namespace,
// NamespaceManager, NamespaceConflict, NamespaceResolutionResult) — the
// coexistence rule ("same name + same kind is a conflict, same name +
// different kind may coexist") and the KEEP_EXISTING default conflict
// policy are both taken directly from that header's mergeWith/resolve
// logic.
package symbols

import "sort"

// Kind classifies a declared symbol (spec.md §4.F).
type Kind int

const (
	KindTemplateStyle Kind = iota
	KindTemplateElement
	KindTemplateVar
	KindCustomStyle
	KindCustomElement
	KindCustomVar
	KindNamespace
	KindOrigin
)

func (k Kind) String() string {
	names := [...]string{
		"TemplateStyle", "TemplateElement", "TemplateVar",
		"CustomStyle", "CustomElement", "CustomVar", "Namespace", "Origin",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Entry is one declared symbol, tagged with the file it came from (for
// diagnostics); its namespace is the Namespace that holds it.
type Entry struct {
	Name string
	Kind Kind
	File string
	Decl interface{} // *ast.Node, kept as interface{} to avoid an import cycle
}

// ConflictPolicy controls what happens when a merge finds two entries with
// the same name AND kind (spec.md §4.F).
type ConflictPolicy int

const (
	KeepExisting ConflictPolicy = iota // default: first declaration wins
	KeepIncoming
	Reject
)

// Conflict records a same-name-same-kind collision found during a merge.
type Conflict struct {
	Name     string
	Kind     Kind
	Existing Entry
	Incoming Entry
}

// Namespace is one scope in the trie: its own entries plus named child
// namespaces, mirroring original_source's Namespace class.
type Namespace struct {
	Name     string
	Parent   *Namespace
	items    map[string][]Entry // name -> entries, since same name + different kind coexist
	children map[string]*Namespace
}

func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		Name:     name,
		Parent:   parent,
		items:    make(map[string][]Entry),
		children: make(map[string]*Namespace),
	}
}

// AddItem inserts e, reporting a Conflict if an entry with the same name
// and kind already exists in this scope (not ancestors).
func (ns *Namespace) AddItem(e Entry) (Conflict, bool) {
	for _, existing := range ns.items[e.Name] {
		if existing.Kind == e.Kind {
			return Conflict{Name: e.Name, Kind: e.Kind, Existing: existing, Incoming: e}, true
		}
	}
	ns.items[e.Name] = append(ns.items[e.Name], e)
	return Conflict{}, false
}

// HasItem reports whether any entry named `name` exists in this scope.
func (ns *Namespace) HasItem(name string) bool {
	return len(ns.items[name]) > 0
}

// GetItem returns the first entry with the given name and kind, if any.
func (ns *Namespace) GetItem(name string, kind Kind) (Entry, bool) {
	for _, e := range ns.items[name] {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entry{}, false
}

// GetItemsByName returns every entry named `name`, regardless of kind —
// the coexistence case (spec.md §4.F: "a @Style template named Box and a
// @Element template named Box may both exist").
func (ns *Namespace) GetItemsByName(name string) []Entry {
	return append([]Entry(nil), ns.items[name]...)
}

func (ns *Namespace) AddNestedNamespace(name string) *Namespace {
	if child, ok := ns.children[name]; ok {
		return child
	}
	child := NewNamespace(name, ns)
	ns.children[name] = child
	return child
}

func (ns *Namespace) Child(name string) (*Namespace, bool) {
	c, ok := ns.children[name]
	return c, ok
}

// MergeWith folds other's entries and child namespaces into ns, applying
// policy to same-name-same-kind collisions and returning every Conflict
// found so the caller can report them as warnings (spec.md §4.F: imported
// namespaces merge with KEEP_EXISTING by default, never a hard error).
func (ns *Namespace) MergeWith(other *Namespace, policy ConflictPolicy) []Conflict {
	var conflicts []Conflict
	names := make([]string, 0, len(other.items))
	for name := range other.items {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, incoming := range other.items[name] {
			conflict, has := ns.AddItem(incoming)
			if !has {
				continue
			}
			conflicts = append(conflicts, conflict)
			switch policy {
			case KeepIncoming:
				ns.replaceItem(incoming)
			case Reject:
				// the incoming entry is not added (as with KeepExisting);
				// the caller decides whether a Reject-policy conflict
				// should become a hard error (spec.md §4.F Open Question).
			default: // KeepExisting
			}
		}
	}
	childNames := make([]string, 0, len(other.children))
	for name := range other.children {
		childNames = append(childNames, name)
	}
	sort.Strings(childNames)
	for _, name := range childNames {
		dst := ns.AddNestedNamespace(name)
		conflicts = append(conflicts, dst.MergeWith(other.children[name], policy)...)
	}
	return conflicts
}

func (ns *Namespace) replaceItem(e Entry) {
	items := ns.items[e.Name]
	for i, existing := range items {
		if existing.Kind == e.Kind {
			items[i] = e
			return
		}
	}
}

// Resolve looks up a dotted path (e.g. "ui.Box") starting from ns,
// descending through child namespaces for every path segment but the
// last, which is looked up as an item name (spec.md §4.F).
func (ns *Namespace) Resolve(path []string) ([]Entry, bool) {
	cur := ns
	for i, seg := range path {
		if i == len(path)-1 {
			items := cur.GetItemsByName(seg)
			return items, len(items) > 0
		}
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// ResolveWithFallback tries path against ns, then against ns's ancestors
// in turn, matching original_source's NamespaceManager::resolveWithFallback
// (an unqualified reference resolves outward through enclosing scopes).
func (ns *Namespace) ResolveWithFallback(path []string) ([]Entry, *Namespace, bool) {
	for scope := ns; scope != nil; scope = scope.Parent {
		if items, ok := scope.Resolve(path); ok {
			return items, scope, true
		}
	}
	return nil, nil, false
}

// Manager owns the root (global) namespace and every named top-level
// namespace declared via [Namespace] (spec.md §4.F).
type Manager struct {
	Global *Namespace
}

func NewManager() *Manager {
	return &Manager{Global: NewNamespace("", nil)}
}

// Register declares or returns the namespace at the given dotted path,
// creating intermediate scopes as needed.
func (m *Manager) Register(path []string) *Namespace {
	cur := m.Global
	for _, seg := range path {
		cur = cur.AddNestedNamespace(seg)
	}
	return cur
}

// DetectAllConflicts walks the whole tree and reports every
// same-name-same-kind collision currently recorded — used as a final
// consistency pass after all imports have merged (spec.md §4.F).
func (m *Manager) DetectAllConflicts() []Conflict {
	var out []Conflict
	var walk func(ns *Namespace)
	walk = func(ns *Namespace) {
		names := make([]string, 0, len(ns.items))
		for name := range ns.items {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			byKind := make(map[Kind][]Entry)
			for _, e := range ns.items[name] {
				byKind[e.Kind] = append(byKind[e.Kind], e)
			}
			for kind, entries := range byKind {
				if len(entries) > 1 {
					for i := 1; i < len(entries); i++ {
						out = append(out, Conflict{Name: name, Kind: kind, Existing: entries[0], Incoming: entries[i]})
					}
				}
			}
		}
		childNames := make([]string, 0, len(ns.children))
		for name := range ns.children {
			childNames = append(childNames, name)
		}
		sort.Strings(childNames)
		for _, name := range childNames {
			walk(ns.children[name])
		}
	}
	walk(m.Global)
	return out
}
