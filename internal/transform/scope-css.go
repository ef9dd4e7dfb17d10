package transform

import (
	"bytes"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// LowerDashCommentsInCSS rewrites every CHTL `--` dash comment found in a
// raw CSS payload (an [Origin] @Style block, or a top-level style block
// treated as plain CSS) into a standard `/* ... */` CSS comment (spec.md
// §4.H "contextual comment lowering": "inside CSS text, a dash comment
// lowers to a block comment").
//
// Grounded on ScopeStyle (internal/transform/scope-css.go), which walks
// tdewolff/parse's CSS grammar token stream rather than
// regexing the raw text, so that a `--` appearing inside a string literal
// or an already-tokenized comment is never mistaken for a dash comment.
func LowerDashCommentsInCSS(raw string) string {
	p := css.NewParser(bytes.NewBufferString(raw), false)
	var out strings.Builder

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if len(data) > 0 {
				out.Write(data)
			}
			return out.String()
		case css.CommentGrammar:
			out.Write(data)
		case css.TokenGrammar:
			text := string(data)
			if strings.HasPrefix(strings.TrimSpace(text), "--") && !strings.HasPrefix(strings.TrimSpace(text), "--*") {
				out.WriteString(dashToBlockComment(text))
				continue
			}
			out.Write(data)
		default:
			out.Write(data)
		}
	}
}

// dashToBlockComment turns `-- note` into `/* note */`, stripping the
// leading dashes and trimming to one line, matching
// original_source/include/CHTL/Comments/ContextualCommentSystem.h's
// GenerateCSSComment.
func dashToBlockComment(line string) string {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "--"))
	return "/* " + body + " */"
}

// ValidateOriginCSS runs raw CSS through tdewolff's grammar tokenizer
// purely for well-formedness (spec.md §4.I / §7: a malformed [Origin]
// @Style payload should surface a diagnostic rather than be silently
// passed through to the emitter). It returns the first parse error
// encountered, if any; `nil` does not guarantee the CSS is semantically
// valid, only grammatically well-formed.
func ValidateOriginCSS(raw string) error {
	p := css.NewParser(bytes.NewBufferString(raw), false)
	for {
		gt, _, _ := p.Next()
		if gt == css.ErrorGrammar {
			if err := p.Err(); err != nil && err != io.EOF {
				return err
			}
			return nil
		}
	}
}

// NeverScopedSelectors lists pseudo-elements/classes selector automation
// must never rewrite, mirroring the NeverScopedSelectors map.
var NeverScopedSelectors = map[string]bool{
	"::before": true, "::after": true, "::placeholder": true,
}
