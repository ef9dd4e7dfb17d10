// Package loc carries source position information shared by every compiler
// phase: the scanner and lexer stamp it on fragments and tokens, the parser
// copies it onto AST nodes, and diagnostics render it back to the user as
// file:line:col.
package loc

// Loc is a single point in a source file: a 0-based byte offset plus the
// 1-based line and column it resolves to (spec.md §3 — lines/columns are
// 1-based, tab width is not normalized).
type Loc struct {
	File   string
	Start  int
	Line   int
	Column int
}

// Range is a half-open byte span, [Loc.Start, Loc.Start+Len).
type Range struct {
	Loc Loc
	Len int
}

func (r Range) End() int {
	return r.Loc.Start + r.Len
}

// Span is a range of bytes in a source buffer. The start is inclusive, the
// end is exclusive. Used internally by the scanner before a span is
// resolved to line/column information.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }
