// Package token defines the position-bearing token type produced by the
// CHTL lexer (spec.md §3, §4.C).
package token

import "github.com/chtl-lang/chtl/internal/loc"

type Kind int

const (
	EOF Kind = iota

	// Punctuation
	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Colon     // :
	Semicolon // ;
	Equals    // =
	Comma     // ,
	Amp       // &
	Dot       // .
	Hash      // #
	Arrow     // ->
	DblColon  // ::
	Star      // *

	// Keywords
	KwText
	KwStyle
	KwScript
	KwInherit
	KwDelete
	KwInsert
	KwAfter
	KwBefore
	KwReplace
	KwAt
	KwTop
	KwBottom
	KwExcept
	KwFrom
	KwAs

	// Markers: [Template] [Custom] [Origin] [Import] [Namespace] [Configuration] [Info]
	MarkerTemplate
	MarkerCustom
	MarkerOrigin
	MarkerImport
	MarkerNamespace
	MarkerConfiguration
	MarkerInfo

	// Type tags: @Html @Style @JavaScript @Element @Var @Chtl @CJmod @Config or user @Name
	TypeTag

	Identifier
	Number
	StringLiteral
	UnquotedLiteral
	HTMLTagIdentifier

	// Comments
	LineComment      // //
	BlockComment     // /* */
	DashComment      // --
	GeneratorComment // -->
)

var kindNames = map[Kind]string{
	EOF: "EOF", LBrace: "{", RBrace: "}", LParen: "(", RParen: ")",
	LBracket: "[", RBracket: "]", Colon: ":", Semicolon: ";", Equals: "=",
	Comma: ",", Amp: "&", Dot: ".", Hash: "#", Arrow: "->", DblColon: "::", Star: "*",
	KwText: "text", KwStyle: "style", KwScript: "script", KwInherit: "inherit",
	KwDelete: "delete", KwInsert: "insert", KwAfter: "after", KwBefore: "before",
	KwReplace: "replace", KwAt: "at", KwTop: "top", KwBottom: "bottom",
	KwExcept: "except", KwFrom: "from", KwAs: "as",
	MarkerTemplate: "[Template]", MarkerCustom: "[Custom]", MarkerOrigin: "[Origin]",
	MarkerImport: "[Import]", MarkerNamespace: "[Namespace]",
	MarkerConfiguration: "[Configuration]", MarkerInfo: "[Info]",
	TypeTag: "TypeTag", Identifier: "Identifier", Number: "Number",
	StringLiteral: "StringLiteral", UnquotedLiteral: "UnquotedLiteral",
	HTMLTagIdentifier: "HTMLTagIdentifier",
	LineComment:       "LineComment", BlockComment: "BlockComment",
	DashComment: "DashComment", GeneratorComment: "GeneratorComment",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var Keywords = map[string]Kind{
	"text": KwText, "style": KwStyle, "script": KwScript, "inherit": KwInherit,
	"delete": KwDelete, "insert": KwInsert, "after": KwAfter, "before": KwBefore,
	"replace": KwReplace, "at": KwAt, "top": KwTop, "bottom": KwBottom,
	"except": KwExcept, "from": KwFrom, "as": KwAs,
}

var Markers = map[string]Kind{
	"Template": MarkerTemplate, "Custom": MarkerCustom, "Origin": MarkerOrigin,
	"Import": MarkerImport, "Namespace": MarkerNamespace,
	"Configuration": MarkerConfiguration, "Info": MarkerInfo,
}

// Token carries its source position, as required by spec.md §3.
type Token struct {
	Kind  Kind
	Text  string // raw lexeme, or the decoded value for string/unquoted literals
	Pos   loc.Loc
	Len   int
}

func (t Token) Range() loc.Range { return loc.Range{Loc: t.Pos, Len: t.Len} }

func (t Token) String() string { return t.Kind.String() + "(" + t.Text + ")" }
