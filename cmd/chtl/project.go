package main

import (
	"os"
	"path/filepath"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/imports"
	"github.com/chtl-lang/chtl/internal/loc"
	"github.com/chtl-lang/chtl/internal/parser"
	"github.com/chtl-lang/chtl/internal/symbols"
	"github.com/chtl-lang/chtl/internal/transform"
)

// projectCompiler drives the recursive `[Import] @Chtl` file-graph walk
// internal/imports classifies and resolves but does not itself own (its
// package doc describes path classification, cycle detection, and a
// resolved-path cache, never a parse loop): this is that host-level loop.
type projectCompiler struct {
	resolver *imports.Resolver
	cache    *imports.Cache
	cycles   *imports.CycleDetector
	h        *diag.Handler
	cfg      config.Config
}

// compileProject parses entryPath and every .chtl file it transitively
// imports via `[Import] @Chtl from "..."`, merging each imported file's
// namespace into the entry file's global namespace — or, when the import
// carries `as Name`, into a freshly registered child namespace — with the
// default KEEP_EXISTING conflict policy (spec.md §4.F, §4.G), before
// running the semantic transforms once over the merged tree and symbol
// table. Only @Chtl imports recurse; @Html/@Style/@JavaScript/@CJmod
// imports are left as-is in the tree for the emit stage to inline.
func compileProject(entryPath string, cfg config.Config) (root *ast.Node, h *diag.Handler, err error) {
	h = diag.NewHandler()
	h.MaxErrors = cfg.MaxErrors

	defer func() {
		if r := recover(); r != nil {
			h.Fatalf(loc.PhaseImportResolution, loc.Range{}, loc.FATAL_INTERNAL, "internal error: %v", r)
		}
	}()

	absEntry, absErr := filepath.Abs(entryPath)
	if absErr != nil {
		return nil, h, absErr
	}

	pc := &projectCompiler{
		resolver: imports.NewResolver(filepath.Dir(absEntry), cfg.OfficialModulePath, statPath),
		cache:    imports.NewCache(),
		cycles:   imports.NewCycleDetector(),
		h:        h,
		cfg:      cfg,
	}

	symtab := symbols.NewManager()
	root, parseErr := pc.parseFile(absEntry, symtab, nil)
	if parseErr != nil {
		return nil, h, parseErr
	}
	if h.IsFatal() {
		return root, h, nil
	}

	transform.Transform(root, symtab, transform.Options{Filename: entryPath, Config: cfg}, h)
	return root, h, nil
}

func statPath(path string) (isDir bool, exists bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// parseFile parses one .chtl file into symtab and resolves every @Chtl
// import it contains through resolveChtlImport, which recurses into the
// imported file and merges its declarations into symtab. visited collects
// the importing files above this one; it is passed down but not read, and
// cycles are detected through pc.cycles.
func (pc *projectCompiler) parseFile(path string, symtab *symbols.Manager, visited []string) (*ast.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := parser.New(string(src), path, pc.h, symtab, parser.Recovering)
	root := p.Parse()

	ast.Walk(root, func(n *ast.Node) {
		if n.Kind != ast.KindImport || n.ImportKind != ast.ImportChtl {
			return
		}
		pc.resolveChtlImport(n, path, symtab, visited)
	})

	return root, nil
}

func (pc *projectCompiler) resolveChtlImport(n *ast.Node, importingFile string, importerSymtab *symbols.Manager, visited []string) {
	candidates, _ := pc.resolver.Resolve(n.FromPath, ast.ImportChtl)
	if len(candidates) == 0 {
		pc.h.Errorf(loc.PhaseImportResolution, loc.Range{Loc: n.Loc}, loc.ERROR_IMPORT_PATH_NOT_FOUND,
			"cannot resolve [Import] @Chtl from %q", n.FromPath)
		return
	}

	for _, resolved := range candidates {
		resolved = imports.NormalizePath(resolved)

		if pc.cycles.HasCircularDependency(importingFile, resolved) {
			chain := pc.cycles.DependencyChain(resolved)
			pc.h.Errorf(loc.PhaseImportResolution, loc.Range{Loc: n.Loc}, loc.ERROR_IMPORT_CYCLE,
				"import cycle detected importing %q: %v", n.FromPath, chain)
			continue
		}
		pc.cycles.AddDependency(importingFile, resolved)

		if cached, ok := pc.cache.Get(resolved, ast.ImportChtl); ok {
			pc.mergeImportedNamespace(n, importerSymtab, cached.Namespace)
			continue
		}

		importedSymtab := symbols.NewManager()
		importedRoot, err := pc.parseFile(resolved, importedSymtab, append(visited, importingFile))
		if err != nil {
			pc.h.Errorf(loc.PhaseImportResolution, loc.Range{Loc: n.Loc}, loc.ERROR_IMPORT_PATH_NOT_FOUND,
				"reading %q: %v", resolved, err)
			continue
		}
		pc.cache.MarkAsImported(resolved, ast.ImportChtl, importedRoot)
		pc.cache.SetNamespace(resolved, ast.ImportChtl, importedSymtab.Global)
		pc.mergeImportedNamespace(n, importerSymtab, importedSymtab.Global)
	}
}

func (pc *projectCompiler) mergeImportedNamespace(n *ast.Node, importerSymtab *symbols.Manager, imported *symbols.Namespace) {
	dst := importerSymtab.Global
	if n.AsName != "" {
		dst = importerSymtab.Register([]string{n.AsName})
	}
	for _, conflict := range dst.MergeWith(imported, symbols.KeepExisting) {
		pc.h.Warnf(loc.PhaseImportResolution, loc.Range{Loc: n.Loc}, loc.WARNING_SYMBOL_CONFLICT,
			"%s %q declared in both %s and %s; keeping the first declaration",
			conflict.Kind, conflict.Name, conflict.Existing.File, conflict.Incoming.File)
	}
}
