package main

import (
	"fmt"
	"os"

	"github.com/pkg/diff"

	"github.com/chtl-lang/chtl/internal/config"
	"github.com/chtl-lang/chtl/internal/emit"
)

// runExplain compiles source, emits it, and prints a unified diff against
// a golden HTML file, for golden-file tests and as a CLI `--explain`-style
// aid, using github.com/pkg/diff for the textual diff.
func runExplain(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "chtl: explain requires <file.chtl> <golden.html>")
		return 1
	}
	input, goldenPath := args[0], args[1]

	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: %v\n", err)
		return 1
	}
	golden, err := os.ReadFile(goldenPath)
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
	if h.HasErrors() {
		return 1
	}

	out, err := emit.NewReferenceEmitter().Emit(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chtl: emit failed: %v\n", err)
		return 2
	}

	if out.HTML == string(golden) {
		fmt.Fprintln(os.Stdout, "chtl: output matches golden file")
		return 0
	}

	if err := diff.Text(goldenPath, input+" (actual)", string(golden), out.HTML, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "chtl: diff failed: %v\n", err)
		return 2
	}
	return 1
}
