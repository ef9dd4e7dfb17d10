// Command chtl is the compiler's CLI front end. Flag parsing is
// deliberately manual, as in cmd/astro/astro.go: CLI argument parsing
// is out of scope for the compiler core, so this never reaches for a
// framework like cobra.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chtl-lang/chtl/internal/ast"
	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/emit"
	"github.com/chtl-lang/chtl/internal/loc"
	"github.com/chtl-lang/chtl/internal/parser"
	"github.com/chtl-lang/chtl/internal/symbols"
	"github.com/chtl-lang/chtl/internal/transform"
)

const usage = `chtl - CHTL to HTML/CSS/JS compiler

usage:
  chtl build <file.chtl> [-o <dir>] [-config <chtl.config.json>]
  chtl ast-json <file.chtl>
  chtl explain <file.chtl> <golden.html>
  chtl help

exit codes: 0 success, 1 user/file error, 2 internal error
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	case "build":
		return runBuild(args[1:])
	case "ast-json":
		return runASTJSON(args[1:])
	case "explain":
		return runExplain(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "chtl: unknown command %q\n\n%s", args[0], usage)
		return 1
	}
}

func runBuild(args []string) int {
	var input, outDir, configPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--out":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "chtl: -o requires a directory")
				return 1
			}
			outDir = args[i]
		case "-config", "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "chtl: -config requires a path")
				return 1
			}
			configPath = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "chtl: unknown flag %q\n", args[i])
				return 1
			}
			input = args[i]
		}
	}
	if input == "" {
		fmt.Fprintln(os.Stderr, "chtl: build requires a source file")
		return 1
	}

	cfg := config.Default()
	if configPath == "" {
		configPath = filepath.Join(filepath.Dir(input), "chtl.config.json")
	}
	if loaded, err := config.LoadFile(configPath); err == nil {
		cfg = loaded
	}

	root, h, err := compileProject(input, cfg)
	h.Print(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 2
	}
	if h.IsFatal() {
		return 2
	}
	if h.HasErrors() {
		return 1
	}

	out, err := emit.NewReferenceEmitter().Emit(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: emit failed: %v\n", err)
		return 2
	}

	if outDir == "" {
		outDir = "."
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if err := writeOutputs(outDir, base, out); err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 1
	}
	return 0
}

func runASTJSON(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "chtl: ast-json requires a source file")
		return 1
	}
	input := args[0]
	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 1
	}
	root, h, err := compile(string(src), input, config.Default())
	h.Print(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 2
	}
	if h.IsFatal() {
		return 2
	}
	data, err := dumpNodeJSON(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 2
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	if h.HasErrors() {
		return 1
	}
	return 0
}

// compile runs the parse and transform phases over a single file; it
// does not resolve `[Import] @Chtl` across files — that is compileProject
// (project.go), which `build` uses. ast-json and explain stay single-file
// since they're debugging aids over one file's own AST/output, not a
// project build.
func compile(src, filename string, cfg config.Config) (root *ast.Node, h *diag.Handler, err error) {
	h = diag.NewHandler()
	h.MaxErrors = cfg.MaxErrors

	defer func() {
		if r := recover(); r != nil {
			h.Fatalf(loc.PhaseParsing, loc.Range{}, loc.FATAL_INTERNAL, "internal error: %v", r)
		}
	}()

	symtab := symbols.NewManager()
	p := parser.New(src, filename, h, symtab, parser.Recovering)
	root = p.Parse()

	transform.Transform(root, symtab, transform.Options{Filename: filename, Config: cfg}, h)
	return root, h, nil
}

func writeOutputs(dir, base string, out emit.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]string{
		base + ".html": out.HTML,
		base + ".css":  out.CSS,
		base + ".js":   out.JS,
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
