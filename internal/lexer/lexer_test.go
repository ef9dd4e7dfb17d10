package lexer

import (
	"testing"

	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/token"
)

type kindsTest struct {
	name   string
	input  string
	expect []token.Kind
}

func kindsOf(toks []token.Token) []token.Kind {
	var out []token.Kind
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenizePunctuationAndMarkers(t *testing.T) {
	tests := []kindsTest{
		{
			name:  "element body",
			input: `div { }`,
			expect: []token.Kind{token.Identifier, token.LBrace, token.RBrace, token.EOF},
		},
		{
			name:  "template marker",
			input: `[Template] @Style Base { }`,
			expect: []token.Kind{token.MarkerTemplate, token.TypeTag, token.Identifier, token.LBrace, token.RBrace, token.EOF},
		},
		{
			name:  "index access bracket is not a marker",
			input: `div[0]`,
			expect: []token.Kind{token.Identifier, token.LBracket, token.Number, token.RBracket, token.EOF},
		},
		{
			name:  "string literal",
			input: `"hello world"`,
			expect: []token.Kind{token.StringLiteral, token.EOF},
		},
		{
			name:  "dash comment line",
			input: "-- a note\ndiv",
			expect: []token.Kind{token.DashComment, token.Identifier, token.EOF},
		},
		{
			name:  "generator comment",
			input: `--> kept verbatim`,
			expect: []token.Kind{token.GeneratorComment, token.Identifier, token.Identifier, token.EOF},
		},
		{
			name:  "arrow and double colon",
			input: `a->b::c`,
			expect: []token.Kind{token.Identifier, token.Arrow, token.Identifier, token.DblColon, token.Identifier, token.EOF},
		},
		{
			name:  "number with unit",
			input: `16px`,
			expect: []token.Kind{token.Number, token.EOF},
		},
		{
			name:  "keywords",
			input: `inherit delete insert after except from as`,
			expect: []token.Kind{
				token.KwInherit, token.KwDelete, token.KwInsert, token.KwAfter,
				token.KwExcept, token.KwFrom, token.KwAs, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := diag.NewHandler()
			l := New(tt.input, "test.chtl", h)
			got := kindsOf(l.Tokenize())
			if len(got) != len(tt.expect) {
				t.Fatalf("got %v, want %v", got, tt.expect)
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Fatalf("token %d: got %v, want %v (full: got=%v want=%v)", i, got[i], tt.expect[i], got, tt.expect)
				}
			}
		})
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	h := diag.NewHandler()
	l := New(`"unterminated`, "test.chtl", h)
	l.Tokenize()
	if !h.HasErrors() {
		t.Fatalf("expected an error for an unterminated string literal")
	}
}

func TestScanUnquotedStopsAtSemicolon(t *testing.T) {
	h := diag.NewHandler()
	l := New(`1px solid red;`, "test.chtl", h)
	tok := l.ScanUnquoted()
	if tok.Text != "1px solid red" {
		t.Fatalf("got %q, want %q", tok.Text, "1px solid red")
	}
}
