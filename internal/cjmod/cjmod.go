// Package cjmod implements the narrow CJMOD keyword-registration interface
// the Unified Scanner consults (spec.md §6), plus the per-function virtual
// object key registry and checker it names ("a checker refuses source that
// uses a virtual-object key not in the registry").
//
// Grounded on original_source/include/CJMOD/ElegantCJMODApi.h and the
// CJMOD keyword-registration methods of
// original_source/include/Scanner/CHTLUnifiedScanner.h
// (RegisterCJMODKeyword / IsKeywordRegistered / GetKeywordHandler).
package cjmod

import (
	"strings"

	"github.com/chtl-lang/chtl/internal/helpers"
)

// Handler is invoked by the scanner when its front pointer matches a
// registered keyword. It receives the surrounding buffer slice (sized by
// BacktrackDistance/ForwardCollectDistance) and the keyword's offset within
// that slice, and returns the replacement text to emit as a CHTL_JS
// fragment (spec.md §6).
type Handler func(buffer string, keywordOffset int) string

// Registration carries a keyword's handler plus how much surrounding
// context the scanner should collect before invoking it (spec.md §6).
type Registration struct {
	Keyword                string
	Handler                Handler
	NeedsBacktrack         bool
	BacktrackDistance      int
	NeedsForwardCollect    bool
	ForwardCollectDistance int
}

// KeywordRegistry is read-only during a compilation run; registration
// happens once at host initialization (spec.md §5 "Shared-resource
// policy").
type KeywordRegistry struct {
	byKeyword map[string]Registration
	// longest registered keyword length; recorded by Register, not read by MatchAt
	maxLen int

	virtualObjects map[string]map[string]bool // function name -> allowed keys
}

func NewKeywordRegistry() *KeywordRegistry {
	return &KeywordRegistry{
		byKeyword:      make(map[string]Registration),
		virtualObjects: make(map[string]map[string]bool),
	}
}

// Register adds a host-provided keyword handler. A zero-value Registration
// beyond Keyword/Handler means no extra backtrack/forward context.
func (r *KeywordRegistry) Register(reg Registration) {
	r.byKeyword[reg.Keyword] = reg
	if len(reg.Keyword) > r.maxLen {
		r.maxLen = len(reg.Keyword)
	}
}

func (r *KeywordRegistry) Unregister(keyword string) {
	delete(r.byKeyword, keyword)
}

func (r *KeywordRegistry) IsRegistered(keyword string) bool {
	_, ok := r.byKeyword[keyword]
	return ok
}

func (r *KeywordRegistry) Handler(keyword string) (Handler, Registration) {
	reg := r.byKeyword[keyword]
	return reg.Handler, reg
}

// MatchAt reports whether a registered keyword begins at src[pos].
func (r *KeywordRegistry) MatchAt(src []byte, pos int) (string, bool) {
	for kw := range r.byKeyword {
		if pos+len(kw) <= len(src) && string(src[pos:pos+len(kw)]) == kw {
			return kw, true
		}
	}
	return "", false
}

// RegisterVirtualObjectKeys declares which `vir name = func({ key: ... })`
// keys a CJMOD-provided function accepts (spec.md §6).
func (r *KeywordRegistry) RegisterVirtualObjectKeys(funcName string, keys ...string) {
	set, ok := r.virtualObjects[funcName]
	if !ok {
		set = make(map[string]bool)
		r.virtualObjects[funcName] = set
	}
	for _, k := range keys {
		set[k] = true
	}
}

// CheckVirtualObjectKey reports whether funcName declared support for key.
// An unregistered function name (no CJMOD extension claimed it) is
// considered unchecked and always passes, since the restriction only
// applies to keys a registered extension explicitly scoped.
func (r *KeywordRegistry) CheckVirtualObjectKey(funcName, key string) bool {
	set, ok := r.virtualObjects[funcName]
	if !ok {
		return true
	}
	return set[key]
}

// ParseVirtualObjectKeys extracts the top-level `key:` identifiers from a
// `vir` object-literal body, e.g. `{ click: fn, hover: fn2 }` -> [click,
// hover]. It is a light structural scan, not a full JS parse, matching the
// scanner's treatment of script payloads as opaque text (spec.md §1).
func ParseVirtualObjectKeys(body string) []string {
	if cleaned, err := helpers.RemoveComments(body); err == nil {
		body = cleaned
	}
	var keys []string
	depth := 0
	i := 0
	for i < len(body) {
		c := body[i]
		switch c {
		case '{', '(', '[':
			depth++
			i++
			continue
		case '}', ')', ']':
			depth--
			i++
			continue
		}
		if depth == 1 && isIdentByte(c) && !(c >= '0' && c <= '9') {
			j := i
			for j < len(body) && isIdentByte(body[j]) {
				j++
			}
			rest := strings.TrimLeft(body[j:], " \t\n\r")
			if strings.HasPrefix(rest, ":") {
				keys = append(keys, body[i:j])
			}
			i = j
			continue
		}
		i++
	}
	return keys
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
