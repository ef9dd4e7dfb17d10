// Package scanner implements the Unified Scanner (spec.md §4.B): it slices
// a heterogeneous CHTL source file into typed fragments (CHTL, CHTL_JS,
// CSS, JS) using a two-pointer sliding-window algorithm with an optional
// front-extraction pass for CHTL-JS syntax, then builds the fragment
// dependency index.
//
// Grounded on original_source/include/Scanner/CHTLUnifiedScanner.h (the
// CodeFragment / ScanStrategy / FragmentIndexManager design) and, for the
// low-level character-scanning idiom (keyword-start checks, comment
// skipping, two-cursor buffering), on the internal/js_scanner package.
package scanner

import (
	"strings"

	"github.com/chtl-lang/chtl/internal/cjmod"
	"github.com/chtl-lang/chtl/internal/diag"
	"github.com/chtl-lang/chtl/internal/fragment"
	"github.com/chtl-lang/chtl/internal/loc"
)

// Strategy selects which of the two documented algorithms drives a scan
// (spec.md §4.B).
type Strategy int

const (
	SlidingWindow Strategy = iota
	FrontExtract
)

// InitialScanWindow is the prefix length initialScan bounds its window to
// (spec.md §4.B).
const InitialScanWindow = 1000

type blockKind int

const (
	blockGlobal blockKind = iota
	blockElement
	blockStyle
	blockScript
)

type scopeFrame struct {
	kind    blockKind
	isLocal bool
}

// Scanner slices one source file. A fresh Scanner is created per file; it
// is not safe for concurrent use by multiple goroutines (spec.md §5: one
// task owns a file's pipeline at a time).
type Scanner struct {
	src      []byte
	filename string
	strategy Strategy
	handler  *diag.Handler
	registry *cjmod.KeywordRegistry

	pos, line, col int
	nextID         int
	fragments      []*fragment.Fragment
	stack          []scopeFrame
}

func New(src []byte, filename string, strategy Strategy, h *diag.Handler, registry *cjmod.KeywordRegistry) *Scanner {
	return &Scanner{
		src: src, filename: filename, strategy: strategy, handler: h, registry: registry,
		line: 1, col: 1, nextID: 1,
		stack: []scopeFrame{{kind: blockGlobal}},
	}
}

// Scan runs the full scanner pipeline and returns the fragment dependency
// index (spec.md §4.B).
func (s *Scanner) Scan() *fragment.Index {
	s.initialScan()
	switch s.strategy {
	case FrontExtract:
		s.frontExtractScan()
	default:
		s.slidingWindowScan()
	}
	idx := fragment.NewIndex(s.fragments)
	s.buildDependencyIndex(idx)
	idx.TopologicalOrder()
	return idx
}

// initialScan bounds the prefix window to InitialScanWindow bytes and does
// nothing more (spec.md §4.B): it raises no diagnostic, and a keyword at
// the very start of the file is found by the main two-pointer scan, which
// begins at offset 0.
func (s *Scanner) initialScan() {
	window := s.src
	if len(window) > InitialScanWindow {
		window = window[:InitialScanWindow]
	}
	_ = window
}

func (s *Scanner) top() scopeFrame { return s.stack[len(s.stack)-1] }

func (s *Scanner) push(f scopeFrame) { s.stack = append(s.stack, f) }

func (s *Scanner) pop() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *Scanner) currentContext() fragment.Context {
	switch s.top().kind {
	case blockStyle:
		return fragment.StyleBlock
	case blockScript:
		return fragment.ScriptBlock
	case blockElement:
		return fragment.HTMLElement
	default:
		return fragment.GlobalScope
	}
}

func (s *Scanner) fragmentType() fragment.Type {
	switch s.top().kind {
	case blockStyle:
		return fragment.CSS
	case blockScript:
		return fragment.JS
	default:
		return fragment.CHTL
	}
}

func (s *Scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *Scanner) at(off int) byte {
	p := s.pos + off
	if p < 0 || p >= len(s.src) {
		return 0
	}
	return s.src[p]
}

func (s *Scanner) matchAt(off int, str string) bool {
	p := s.pos + off
	if p < 0 || p+len(str) > len(s.src) {
		return false
	}
	return string(s.src[p:p+len(str)]) == str
}

// slidingWindowScan is the primary two-pointer algorithm: `front` (s.pos)
// walks the source; `back` marks the start of the pending fragment. When
// front hits a cut-point keyword everything collected so far is flushed as
// one fragment (spec.md §4.B).
func (s *Scanner) slidingWindowScan() {
	back := s.pos
	backLine, backCol := s.line, s.col
	rawDepth := 0 // braces opened inside the current style/script block

	flush := func(end int) {
		if end > back {
			s.pushFragment(s.fragmentType(), back, end, backLine, backCol, s.line, s.col)
		}
	}

	for s.pos < len(s.src) {
		c := s.src[s.pos]

		switch {
		case c == '"' || c == '\'':
			if !s.skipString(c) {
				s.handler.Errorf(loc.PhaseScanning, s.rangeAt(s.pos, 1), loc.ERROR_UNTERMINATED_STRING, "unterminated string literal")
				return
			}
			continue
		case c == '/' && s.at(1) == '/':
			s.skipLineComment()
			continue
		case c == '/' && s.at(1) == '*':
			if !s.skipBlockComment() {
				s.handler.Errorf(loc.PhaseScanning, s.rangeAt(s.pos, 2), loc.ERROR_UNTERMINATED_BLOCK_COMMENT, "unterminated block comment")
				return
			}
			continue
		case c == '-' && s.at(1) == '-' && s.at(2) != '>':
			// dash comment: not a cut point, recognized for lowering later
			// (spec.md §4.H step 7); it ends at the end of its line.
			s.advance(2)
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance(1)
			}
			continue
		}

		if s.top().kind == blockGlobal || s.top().kind == blockElement {
			if kw, n := s.matchStyleOrScriptOpen(); n > 0 {
				flush(s.pos)
				isLocal := s.top().kind == blockElement
				kind := blockStyle
				if kw == "script" {
					kind = blockScript
				}
				s.advance(n)
				s.push(scopeFrame{kind: kind, isLocal: isLocal})
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
			if s.src[s.pos] == '{' {
				flush(s.pos)
				s.advance(1)
				s.push(scopeFrame{kind: blockElement})
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
			if s.src[s.pos] == '}' {
				flush(s.pos)
				s.advance(1)
				s.pop()
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
		}

		if s.top().kind == blockStyle || s.top().kind == blockScript {
			if s.src[s.pos] == '{' && !s.matchAt(0, "{{") {
				rawDepth++
			} else if s.src[s.pos] == '}' && rawDepth > 0 {
				rawDepth--
			} else if s.src[s.pos] == '}' {
				// closes the style/script block itself
				flush(s.pos)
				s.advance(1)
				s.pop()
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
		}

		if s.top().kind == blockScript {
			if n, complete := s.detectCHTLJS(); n > 0 {
				flush(s.pos)
				start, sl, sc := s.pos, s.line, s.col
				s.advance(n)
				integrity := fragment.Complete
				if !complete {
					integrity = fragment.Partial
					s.handler.Warnf(loc.PhaseScanning, s.rangeAt(start, n), loc.WARNING_FRAGMENT_PARTIAL, "CHTL-JS fragment could not be completed before EOF")
				}
				s.pushFragmentFull(fragment.CHTLJS, start, s.pos, sl, sc, s.line, s.col, integrity, "chtljs")
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
			if kw, handled := s.tryCJMODKeyword(); handled {
				flush(s.pos)
				start, sl, sc := s.pos, s.line, s.col
				replacement := kw
				s.pushFragmentContent(fragment.CHTLJS, replacement, start, s.pos, sl, sc, s.line, s.col, fragment.Complete, "cjmod")
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
		}

		s.advance(1)
	}
	flush(len(s.src))

	if len(s.stack) > 1 {
		s.handler.Errorf(loc.PhaseScanning, s.rangeAt(len(s.src), 0), loc.ERROR_UNMATCHED_BRACE, "unclosed block at end of file")
	}
}

// frontExtractScan slices CHTL-JS syntax off the front of the buffer before
// it can reach a downstream sub-compiler, re-emitting the residue as the
// original fragment type (spec.md §4.B "Front Extraction").
func (s *Scanner) frontExtractScan() {
	back := s.pos
	backLine, backCol := s.line, s.col
	for s.pos < len(s.src) {
		if s.top().kind == blockScript {
			if n, complete := s.detectCHTLJS(); n > 0 {
				if s.pos > back {
					s.pushFragment(s.fragmentType(), back, s.pos, backLine, backCol, s.line, s.col)
				}
				start, sl, sc := s.pos, s.line, s.col
				s.advance(n)
				integrity := fragment.Complete
				if !complete {
					integrity = fragment.Partial
				}
				s.pushFragmentFull(fragment.CHTLJS, start, s.pos, sl, sc, s.line, s.col, integrity, "chtljs")
				back, backLine, backCol = s.pos, s.line, s.col
				continue
			}
		}
		if s.src[s.pos] == '"' || s.src[s.pos] == '\'' {
			s.skipString(s.src[s.pos])
			continue
		}
		if s.matchStyleOrScriptBoundary() || s.src[s.pos] == '{' || s.src[s.pos] == '}' {
			// fall back to the sliding-window handling for block boundaries
			s.slidingWindowStep(&back, &backLine, &backCol)
			continue
		}
		s.advance(1)
	}
	if s.pos > back {
		s.pushFragment(s.fragmentType(), back, s.pos, backLine, backCol, s.line, s.col)
	}
}

func (s *Scanner) matchStyleOrScriptBoundary() bool {
	_, n := s.matchStyleOrScriptOpen()
	return n > 0
}

// slidingWindowStep performs one iteration of the block-boundary state
// machine shared by both strategies, used by frontExtractScan to delegate
// brace handling.
func (s *Scanner) slidingWindowStep(back *int, backLine, backCol *int) {
	flush := func(end int) {
		if end > *back {
			s.pushFragment(s.fragmentType(), *back, end, *backLine, *backCol, s.line, s.col)
		}
	}
	if kw, n := s.matchStyleOrScriptOpen(); n > 0 {
		flush(s.pos)
		isLocal := s.top().kind == blockElement
		kind := blockStyle
		if kw == "script" {
			kind = blockScript
		}
		s.advance(n)
		s.push(scopeFrame{kind: kind, isLocal: isLocal})
		*back, *backLine, *backCol = s.pos, s.line, s.col
		return
	}
	if s.src[s.pos] == '{' {
		flush(s.pos)
		s.advance(1)
		s.push(scopeFrame{kind: blockElement})
		*back, *backLine, *backCol = s.pos, s.line, s.col
		return
	}
	flush(s.pos)
	s.advance(1)
	s.pop()
	*back, *backLine, *backCol = s.pos, s.line, s.col
}

// matchStyleOrScriptOpen recognizes `style {` / `script {` at the current
// position (ignoring intervening whitespace) and returns the keyword plus
// the byte length to consume, or ("", 0) if no match.
func (s *Scanner) matchStyleOrScriptOpen() (string, int) {
	for _, kw := range [...]string{"style", "script"} {
		if s.matchAt(0, kw) {
			n := len(kw)
			for isSpace(s.at(n)) {
				n++
			}
			if s.at(n) == '{' {
				return kw, n + 1
			}
		}
	}
	return "", 0
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// detectCHTLJS recognizes CHTL-JS cut points inside a script block:
// `{{ ... }}` (enhanced selectors and `{{&}}`), `->`, and bare
// variable-template calls `Name()` (spec.md §4.B "Cut points"). It returns
// the byte length of the construct and whether it completed (balanced)
// before EOF.
func (s *Scanner) detectCHTLJS() (int, bool) {
	if n, complete := s.detectVirtualObject(); n > 0 {
		return n, complete
	}
	if s.matchAt(0, "{{") {
		end := s.pos + 2
		for end < len(s.src)-1 {
			if s.src[end] == '}' && s.src[end+1] == '}' {
				return end + 2 - s.pos, true
			}
			end++
		}
		return len(s.src) - s.pos, false
	}
	if s.matchAt(0, "->") {
		return 2, true
	}
	if isIdentStart(s.at(0)) {
		n := 0
		for isIdentPart(s.at(n)) {
			n++
		}
		if s.at(n) == '(' {
			depth := 1
			p := n + 1
			for s.pos+p < len(s.src) {
				c := s.src[s.pos+p]
				if c == '(' {
					depth++
				} else if c == ')' {
					depth--
					if depth == 0 {
						return p + 1, true
					}
				}
				p++
			}
			return len(s.src) - s.pos, false
		}
	}
	return 0, true
}

// detectVirtualObject recognizes `vir name = func({ key: ... });` (spec.md
// §6 CJMOD virtual-object syntax) at the current position, relative
// offsets only (matching detectCHTLJS's other branches). Every key used
// in the object literal is checked against the named function's
// registered key set, raising ERROR_UNREGISTERED_VIRTUAL_KEY for one
// that was never declared with RegisterVirtualObjectKeys.
func (s *Scanner) detectVirtualObject() (int, bool) {
	if !s.matchAt(0, "vir") || isIdentPart(s.at(3)) {
		return 0, true
	}
	n := s.skipSpacesAt(3)
	nameStart := n
	for isIdentPart(s.at(n)) {
		n++
	}
	if n == nameStart {
		return 0, true
	}
	n = s.skipSpacesAt(n)
	if s.at(n) != '=' {
		return 0, true
	}
	n++
	n = s.skipSpacesAt(n)
	funcStart := n
	for isIdentPart(s.at(n)) {
		n++
	}
	if n == funcStart {
		return 0, true
	}
	funcName := string(s.src[s.pos+funcStart : s.pos+n])
	n = s.skipSpacesAt(n)
	if s.at(n) != '(' {
		return 0, true
	}
	n++
	n = s.skipSpacesAt(n)
	if s.at(n) != '{' {
		return 0, true
	}
	braceStart := n
	depth := 1
	n++
	for s.at(n) != 0 && depth > 0 {
		switch s.at(n) {
		case '{':
			depth++
		case '}':
			depth--
		}
		n++
	}
	if depth != 0 {
		return len(s.src) - s.pos, false
	}
	literal := string(s.src[s.pos+braceStart : s.pos+n])
	s.checkVirtualObjectKeys(funcName, literal, s.pos+funcStart)
	n = s.skipSpacesAt(n)
	if s.at(n) == ')' {
		n++
	}
	if s.at(n) == ';' {
		n++
	}
	return n, true
}

func (s *Scanner) skipSpacesAt(n int) int {
	for isSpace(s.at(n)) {
		n++
	}
	return n
}

func (s *Scanner) checkVirtualObjectKeys(funcName, body string, pos int) {
	if s.registry == nil {
		return
	}
	for _, key := range cjmod.ParseVirtualObjectKeys(body) {
		if !s.registry.CheckVirtualObjectKey(funcName, key) {
			s.handler.Errorf(loc.PhaseScanning, s.rangeAt(pos, len(funcName)), loc.ERROR_UNREGISTERED_VIRTUAL_KEY,
				"virtual object key %q is not registered for %q", key, funcName)
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// tryCJMODKeyword consults the CJMOD keyword registry (spec.md §6): if the
// current position matches a registered keyword the handler is invoked
// with the surrounding buffer and its returned replacement text becomes a
// CHTL_JS fragment.
func (s *Scanner) tryCJMODKeyword() (string, bool) {
	if s.registry == nil {
		return "", false
	}
	kw, ok := s.registry.MatchAt(s.src, s.pos)
	if !ok {
		return "", false
	}
	handler, reg := s.registry.Handler(kw)
	back := reg.BacktrackDistance
	fwd := reg.ForwardCollectDistance
	start := s.pos - back
	if start < 0 {
		start = 0
	}
	end := s.pos + len(kw) + fwd
	if end > len(s.src) {
		end = len(s.src)
	}
	replacement := handler(string(s.src[start:end]), s.pos-start)
	s.advance(len(kw))
	return replacement, true
}

func (s *Scanner) skipString(quote byte) bool {
	s.advance(1)
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.advance(2)
			continue
		}
		if c == quote {
			s.advance(1)
			return true
		}
		if c == '\n' {
			return false
		}
		s.advance(1)
	}
	return false
}

func (s *Scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance(1)
	}
}

func (s *Scanner) skipBlockComment() bool {
	s.advance(2)
	for s.pos < len(s.src) {
		if s.matchAt(0, "*/") {
			s.advance(2)
			return true
		}
		s.advance(1)
	}
	return false
}

func (s *Scanner) rangeAt(pos, n int) loc.Range {
	return loc.Range{Loc: loc.Loc{File: s.filename, Start: pos, Line: s.line, Column: s.col}, Len: n}
}

func (s *Scanner) pushFragment(t fragment.Type, start, end, sl, sc, el, ec int) {
	s.pushFragmentFull(t, start, end, sl, sc, el, ec, fragment.Complete, "")
}

func (s *Scanner) pushFragmentFull(t fragment.Type, start, end, sl, sc, el, ec int, integrity fragment.Integrity, trigger string) {
	s.pushFragmentContent(t, string(s.src[start:end]), start, end, sl, sc, el, ec, integrity, trigger)
}

func (s *Scanner) pushFragmentContent(t fragment.Type, content string, start, end, sl, sc, el, ec int, integrity fragment.Integrity, trigger string) {
	f := &fragment.Fragment{
		ID: s.nextID, Type: t, Content: content,
		Span:          loc.Span{Start: start, End: end},
		StartLine:     sl, StartColumn: sc, EndLine: el, EndColumn: ec,
		Context:       s.currentContext(),
		Integrity:     s.checkIntegrity(content, integrity),
		Sequence:      s.nextID,
		TriggerKeyword: trigger,
	}
	s.analyzeKeywords(f)
	s.nextID++
	s.fragments = append(s.fragments, f)
}

func (s *Scanner) checkIntegrity(content string, hint fragment.Integrity) fragment.Integrity {
	if hint != fragment.Complete {
		return hint
	}
	if braceBalance(content) != 0 || parenBalance(content) != 0 {
		return fragment.Incomplete
	}
	return fragment.Complete
}

func braceBalance(s string) int {
	n := 0
	for _, c := range s {
		if c == '{' {
			n++
		} else if c == '}' {
			n--
		}
	}
	return n
}

func parenBalance(s string) int {
	n := 0
	for _, c := range s {
		if c == '(' {
			n++
		} else if c == ')' {
			n--
		}
	}
	return n
}

var cutKeywords = []string{"style", "script", "inherit", "delete", "insert", "except", "from", "as", "->"}

func (s *Scanner) analyzeKeywords(f *fragment.Fragment) {
	for _, kw := range cutKeywords {
		if strings.Contains(f.Content, kw) {
			f.AddContainedKeyword(kw)
		}
	}
}

// buildDependencyIndex performs the selector part of the second pass
// described in spec.md §4.B: a JS or CHTL_JS fragment whose text contains
// a `.name`/`#name` selector depends on every CSS fragment in the file that
// defines it. Scope is not taken into account, and no child-on-parent
// dependency is recorded.
func (s *Scanner) buildDependencyIndex(idx *fragment.Index) {
	var styleSelectors []struct {
		id   int
		name string
	}
	for _, f := range idx.Fragments {
		if f.Type != fragment.CSS {
			continue
		}
		for _, name := range extractSelectorNames(f.Content) {
			styleSelectors = append(styleSelectors, struct {
				id   int
				name string
			}{f.ID, name})
		}
	}
	for _, f := range idx.Fragments {
		if f.Type != fragment.JS && f.Type != fragment.CHTLJS {
			continue
		}
		for _, sel := range styleSelectors {
			if strings.Contains(f.Content, sel.name) {
				idx.AddDependency(f.ID, sel.id)
			}
		}
	}
}

// extractSelectorNames pulls `.foo` / `#foo` selector names out of a raw
// CSS fragment's text with a light scan, used only to seed the dependency
// graph (the parser reads style blocks with its own grammar).
func extractSelectorNames(css string) []string {
	var names []string
	for i := 0; i < len(css); i++ {
		if css[i] == '.' || css[i] == '#' {
			j := i + 1
			for j < len(css) && isIdentPart(css[j]) {
				j++
			}
			if j > i+1 {
				names = append(names, css[i:j])
			}
			i = j
		}
	}
	return names
}
