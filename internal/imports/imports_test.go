package imports

import (
	"testing"

	"github.com/chtl-lang/chtl/internal/ast"
)

func TestDetectPathType(t *testing.T) {
	cases := map[string]PathType{
		"Box":                FilenameOnly,
		"Box.chtl":           FilenameWithExt,
		"components/Box.chtl": FullFilePath,
		"components/":         DirectoryPath,
		"components/*":        WildcardAll,
		"components/*.cmod":   WildcardCmod,
		"components/*.chtl":   WildcardChtl,
	}
	for path, want := range cases {
		if got := DetectPathType(path); got != want {
			t.Errorf("DetectPathType(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestPathsEquivalent(t *testing.T) {
	if !PathsEquivalent("a/./b.chtl", "a/b.chtl") {
		t.Fatalf("expected equivalent paths to normalize the same")
	}
	if PathsEquivalent("a/b.chtl", "a/c.chtl") {
		t.Fatalf("expected different paths to not be equivalent")
	}
}

func TestCycleDetectorFindsCycle(t *testing.T) {
	c := NewCycleDetector()
	c.AddDependency("a.chtl", "b.chtl")
	c.AddDependency("b.chtl", "c.chtl")
	if !c.HasCircularDependency("c.chtl", "a.chtl") {
		t.Fatalf("expected adding c->a to close a cycle through a->b->c")
	}
	if c.HasCircularDependency("c.chtl", "z.chtl") {
		t.Fatalf("did not expect a cycle through an unrelated file")
	}
}

func TestCacheDeduplicatesByPathAndKind(t *testing.T) {
	cache := NewCache()
	if cache.IsAlreadyImported("Box.chtl", ast.ImportChtl) {
		t.Fatalf("fresh cache should report nothing imported")
	}
	cache.MarkAsImported("Box.chtl", ast.ImportChtl, nil)
	if !cache.IsAlreadyImported("Box.chtl", ast.ImportChtl) {
		t.Fatalf("expected Box.chtl to be marked as imported")
	}
	if cache.IsAlreadyImported("Box.chtl", ast.ImportStyle) {
		t.Fatalf("same path with a different import kind should not count as the same entry")
	}
}
