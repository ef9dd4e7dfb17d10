// Package imports implements the Import System (spec.md §4.G):
// path-type classification, search order by import kind, cycle
// detection, duplicate-import detection, and the resolved-path cache.
//
// Grounded on original_source/include/ImportManager.h (PathResolver,
// CircularDependencyDetector, DuplicateImportManager, ImportManager) and
// original_source/include/CHTL/Import/EnhancedImportSystem.h for the
// wildcard/submodule extensions; original_source/include/ModuleManager.h
// for the official-module search root.
package imports

import (
	"path/filepath"
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/symbols"
)

// PathType classifies an [Import]'s `from` clause (spec.md §4.G).
type PathType int

const (
	FilenameOnly PathType = iota
	FilenameWithExt
	DirectoryPath
	FullFilePath
	WildcardAll
	WildcardCmod
	WildcardChtl
)

// DetectPathType classifies path without touching the filesystem, per
// the suffix/wildcard rules in original_source's PathResolver::detectPathType.
func DetectPathType(path string) PathType {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(path, "/*.cmod") || strings.HasSuffix(path, ".*.cmod"):
		return WildcardCmod
	case strings.HasSuffix(path, "/*.chtl") || strings.HasSuffix(path, ".*.chtl"):
		return WildcardChtl
	case strings.HasSuffix(path, "/*") || strings.HasSuffix(path, ".*"):
		return WildcardAll
	case strings.HasSuffix(path, "/"):
		return DirectoryPath
	case strings.Contains(path, "/"):
		return FullFilePath
	case strings.Contains(base, "."):
		return FilenameWithExt
	default:
		return FilenameOnly
	}
}

// searchExtensions lists, in search order, the file extensions tried for
// each import kind (spec.md §4.G "search order by kind").
var searchExtensions = map[ast.ImportKind][]string{
	ast.ImportHTML:       {".html", ".htm"},
	ast.ImportStyle:      {".css"},
	ast.ImportJavaScript: {".js"},
	ast.ImportChtl:       {".chtl"},
	ast.ImportCJmod:      {".cjmod", ".cmod"},
}

// Resolver resolves [Import] `from` paths to filesystem locations,
// tracking the official-module search root and the project's current
// directory (spec.md §4.G).
type Resolver struct {
	CurrentDirectory string
	OfficialModulePath string

	stat func(string) (isDir bool, exists bool)
}

// NewResolver builds a Resolver. statFn is injected so the resolver can
// be unit tested without touching the real filesystem; a nil statFn
// falls back to a resolver that reports every candidate as non-existent
// (used only in tests exercising pure path-classification logic).
func NewResolver(currentDirectory, officialModulePath string, statFn func(string) (bool, bool)) *Resolver {
	if statFn == nil {
		statFn = func(string) (bool, bool) { return false, false }
	}
	return &Resolver{CurrentDirectory: currentDirectory, OfficialModulePath: officialModulePath, stat: statFn}
}

// IsOfficialModulePath reports whether path begins with the recognized
// official-module prefix, e.g. `chtl::` (spec.md §4.G).
func (r *Resolver) IsOfficialModulePath(path string) bool {
	return strings.HasPrefix(path, "chtl::")
}

func (r *Resolver) ResolveOfficialModulePath(path string) string {
	rest := strings.TrimPrefix(path, "chtl::")
	return filepath.Join(r.OfficialModulePath, filepath.FromSlash(rest))
}

// Resolve finds the concrete file(s) backing an import, searching the
// current directory first and the official module path second (spec.md
// §4.G), matching zero or more files for wildcard path types.
func (r *Resolver) Resolve(path string, kind ast.ImportKind) ([]string, PathType) {
	pt := DetectPathType(path)
	if r.IsOfficialModulePath(path) {
		path = r.ResolveOfficialModulePath(path)
	}
	switch pt {
	case WildcardAll, WildcardCmod, WildcardChtl:
		return r.resolveWildcard(path, pt), pt
	case DirectoryPath:
		return []string{strings.TrimSuffix(path, "/")}, pt
	case FullFilePath, FilenameWithExt:
		return r.resolveInRoots(path, nil), pt
	default: // FilenameOnly
		return r.resolveInRoots(path, searchExtensions[kind]), pt
	}
}

func (r *Resolver) resolveInRoots(path string, exts []string) []string {
	roots := []string{r.CurrentDirectory, r.OfficialModulePath}
	var candidates []string
	if len(exts) == 0 {
		candidates = append(candidates, path)
	}
	for _, ext := range exts {
		candidates = append(candidates, path+ext)
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		for _, c := range candidates {
			full := filepath.Join(root, c)
			if _, exists := r.stat(full); exists {
				return []string{full}
			}
		}
	}
	if len(candidates) > 0 {
		return []string{filepath.Join(r.CurrentDirectory, candidates[0])}
	}
	return nil
}

func (r *Resolver) resolveWildcard(path string, pt PathType) []string {
	dir := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(path, "*.cmod"), "*.chtl"), "*")
	dir = strings.TrimSuffix(dir, ".")
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "."
	}
	full := filepath.Join(r.CurrentDirectory, dir)
	pattern := "*"
	switch pt {
	case WildcardCmod:
		pattern = "*.cmod"
	case WildcardChtl:
		pattern = "*.chtl"
	}
	matches, _ := filepath.Glob(filepath.Join(full, pattern))
	return matches
}

// NormalizePath collapses `.`/`..` segments and reports whether two paths
// are equivalent once normalized (spec.md §4.G "duplicate detection via
// path normalization").
func NormalizePath(path string) string {
	return filepath.Clean(filepath.ToSlash(path))
}

func PathsEquivalent(a, b string) bool {
	return NormalizePath(a) == NormalizePath(b)
}

// CycleDetector finds import cycles via DFS over a from->to dependency
// graph (spec.md §4.G), grounded on CircularDependencyDetector.
type CycleDetector struct {
	deps map[string]map[string]bool
}

func NewCycleDetector() *CycleDetector {
	return &CycleDetector{deps: make(map[string]map[string]bool)}
}

func (c *CycleDetector) AddDependency(from, to string) {
	from, to = NormalizePath(from), NormalizePath(to)
	set, ok := c.deps[from]
	if !ok {
		set = make(map[string]bool)
		c.deps[from] = set
	}
	set[to] = true
}

func (c *CycleDetector) RemoveDependency(from, to string) {
	from, to = NormalizePath(from), NormalizePath(to)
	if set, ok := c.deps[from]; ok {
		delete(set, to)
	}
}

// HasCircularDependency reports whether adding an edge from->to would
// close a cycle, i.e. whether to can already reach from.
func (c *CycleDetector) HasCircularDependency(from, to string) bool {
	from, to = NormalizePath(from), NormalizePath(to)
	visited := make(map[string]bool)
	stack := make(map[string]bool)
	var dfs func(cur string) bool
	dfs = func(cur string) bool {
		if cur == from {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		stack[cur] = true
		for next := range c.deps[cur] {
			if dfs(next) {
				return true
			}
		}
		stack[cur] = false
		return false
	}
	return dfs(to)
}

// DependencyChain returns file followed by every file reachable from it
// through recorded dependencies, in depth-first pre-order without repeats,
// for error messages. The order among one file's direct dependencies is
// not defined.
func (c *CycleDetector) DependencyChain(file string) []string {
	file = NormalizePath(file)
	visited := make(map[string]bool)
	var chain []string
	var dfs func(cur string)
	dfs = func(cur string) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		chain = append(chain, cur)
		for next := range c.deps[cur] {
			dfs(next)
		}
	}
	dfs(file)
	return chain
}

// CacheEntry is one resolved-and-parsed import, keyed by normalized path
// plus kind so an HTML and a CHTL import of the same basename don't
// collide (spec.md §4.G "duplicate detection").
type CacheEntry struct {
	NormalizedPath string
	Kind           ast.ImportKind
	Tree           *ast.Node
	Namespace      *symbols.Namespace // populated for @Chtl imports, nil otherwise
}

// Cache deduplicates repeated imports of the same resolved path across a
// compilation run (spec.md §4.G), grounded on DuplicateImportManager.
// A single Cache instance is shared across every file in a run. It has no
// internal locking and is not safe for concurrent use.
type Cache struct {
	entries map[string]CacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]CacheEntry)}
}

func cacheKey(path string, kind ast.ImportKind) string {
	return NormalizePath(path) + "#" + kind.String()
}

func (c *Cache) IsAlreadyImported(path string, kind ast.ImportKind) bool {
	_, ok := c.entries[cacheKey(path, kind)]
	return ok
}

func (c *Cache) MarkAsImported(path string, kind ast.ImportKind, tree *ast.Node) {
	c.entries[cacheKey(path, kind)] = CacheEntry{NormalizedPath: NormalizePath(path), Kind: kind, Tree: tree}
}

func (c *Cache) Get(path string, kind ast.ImportKind) (CacheEntry, bool) {
	e, ok := c.entries[cacheKey(path, kind)]
	return e, ok
}

// SetNamespace attaches the parsed declarations namespace to an already
// cached entry, so a second `[Import] @Chtl` of the same resolved path
// can merge the first import's symbols without re-parsing the file.
func (c *Cache) SetNamespace(path string, kind ast.ImportKind, ns *symbols.Namespace) {
	key := cacheKey(path, kind)
	e := c.entries[key]
	e.Namespace = ns
	c.entries[key] = e
}

func (c *Cache) Size() int { return len(c.entries) }

func (c *Cache) Clear() { c.entries = make(map[string]CacheEntry) }
