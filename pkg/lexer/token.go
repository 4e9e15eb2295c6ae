// Package lexer turns DadaLang source text into a flat token sequence.
package lexer

import "fmt"

// Kind identifies the lexical category of a token.
type Kind uint8

const (
	EOF Kind = iota

	// Keywords (multi-word phrases)
	ProgramStart // nomoshkar dada
	ProgramEnd   // jachchhi dada
	Declare      // dada ei je
	Print        // bolo dada
	Input        // porashona dada
	If           // jodi dada
	ElseIf       // nahole jodi dada
	Else         // nahole dada
	While        // jotokhon dada
	For          // joto bar dada
	Function     // dada kaj
	Return       // phiriye dao

	// Punctuation and operators
	Assign    // =
	Equal     // ==
	NotEqual  // !=
	Less      // <
	LessEq    // <=
	Greater   // >
	GreaterEq // >=
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Semicolon // ;
	Comma     // ,
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }

	// Literals
	String
	Number
	Identifier

	kindCount
)

var kindNames = [...]string{
	EOF: "EOF",

	ProgramStart: "NOMOSHKAR_DADA",
	ProgramEnd:   "JACHCHHI_DADA",
	Declare:      "DADA_EI_JE",
	Print:        "BOLO_DADA",
	Input:        "PORASHONA_DADA",
	If:           "JODI_DADA",
	ElseIf:       "NAHOLE_JODI_DADA",
	Else:         "NAHOLE_DADA",
	While:        "JOTOKHON_DADA",
	For:          "JOTO_BAR_DADA",
	Function:     "DADA_KAJ",
	Return:       "PHIRIYE_DAO",

	Assign:    "EQUAL",
	Equal:     "EQUALITY",
	NotEqual:  "NEQ",
	Less:      "LT",
	LessEq:    "LTE",
	Greater:   "GT",
	GreaterEq: "GTE",
	Plus:      "PLUS",
	Minus:     "MINUS",
	Star:      "ASTERISK",
	Slash:     "SLASH",
	Semicolon: "SEMICOLON",
	Comma:     "COMMA",
	LParen:    "LPAREN",
	RParen:    "RPAREN",
	LBrace:    "LBRACE",
	RBrace:    "RBRACE",

	String:     "STRING",
	Number:     "NUMBER",
	Identifier: "IDENTIFIER",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type keyword struct {
	text string
	kind Kind
}

// keywords is ordered longest phrase first so that a phrase which is a prefix
// of another (nahole dada / nahole jodi dada) never claims the longer one.
var keywords = sortedKeywords([]keyword{
	{"nomoshkar dada", ProgramStart},
	{"jachchhi dada", ProgramEnd},
	{"dada ei je", Declare},
	{"bolo dada", Print},
	{"porashona dada", Input},
	{"jodi dada", If},
	{"nahole jodi dada", ElseIf},
	{"nahole dada", Else},
	{"jotokhon dada", While},
	{"joto bar dada", For},
	{"dada kaj", Function},
	{"phiriye dao", Return},
})

// Keywords returns the keyword phrases in matching order.
func Keywords() []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = kw.text
	}
	return out
}

// Pos is a location in the source text. Line and Column are 1-based;
// Column counts bytes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Token is one lexical unit. Text holds the literal source spelling
// (string contents without quotes for STRING); Number is set for NUMBER.
type Token struct {
	Kind   Kind
	Text   string
	Number float64
	Pos    Pos
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case Number, Identifier:
		return fmt.Sprintf("%s %s", t.Kind, t.Text)
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("%s %s", t.Kind, t.Text)
	}
}

// Describe renders the token for diagnostics.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("STRING %q", t.Text)
	case Number, Identifier:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
