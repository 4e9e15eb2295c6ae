package lexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error reports a lexical failure. Char is the offending character.
type Error struct {
	Pos  Pos
	Char rune
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == msgUnrecognized {
		return fmt.Sprintf("%s: %s %q", e.Pos, e.Msg, e.Char)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

const (
	msgUnterminated = "unterminated string"
	msgUnrecognized = "unrecognized character"
)

func sortedKeywords(list []keyword) []keyword {
	sort.SliceStable(list, func(i, j int) bool {
		return len(list[i].text) > len(list[j].text)
	})
	return list
}

var twoCharOperators = map[string]Kind{
	"==": Equal,
	"!=": NotEqual,
	"<=": LessEq,
	">=": GreaterEq,
}

var oneCharOperators = map[byte]Kind{
	'=': Assign,
	'<': Less,
	'>': Greater,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	';': Semicolon,
	',': Comma,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
}

// Tokenize scans src into tokens. The returned slice always ends with a
// single EOF token.
func Tokenize(src string) ([]Token, error) {
	s := &scanner{src: src, line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

type scanner struct {
	src  string
	off  int
	line int
	col  int
}

func (s *scanner) pos() Pos {
	return Pos{Offset: s.off, Line: s.line, Column: s.col}
}

// advance moves the cursor n bytes forward, tracking lines.
func (s *scanner) advance(n int) {
	for i := 0; i < n && s.off < len(s.src); i++ {
		if s.src[s.off] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.off++
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for s.off < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		switch {
		case unicode.IsSpace(r):
			s.advance(size)
		case strings.HasPrefix(s.src[s.off:], "//"):
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.advance(1)
			}
		default:
			return
		}
	}
}

func (s *scanner) next() (Token, error) {
	s.skipWhitespaceAndComments()
	start := s.pos()
	if s.off >= len(s.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}
	rest := s.src[s.off:]

	for _, kw := range keywords {
		if strings.HasPrefix(rest, kw.text) {
			s.advance(len(kw.text))
			return Token{Kind: kw.kind, Text: kw.text, Pos: start}, nil
		}
	}

	if len(rest) >= 2 {
		if kind, ok := twoCharOperators[rest[:2]]; ok {
			s.advance(2)
			return Token{Kind: kind, Text: rest[:2], Pos: start}, nil
		}
	}
	if kind, ok := oneCharOperators[rest[0]]; ok {
		s.advance(1)
		return Token{Kind: kind, Text: rest[:1], Pos: start}, nil
	}

	c := rest[0]
	switch {
	case c == '"':
		return s.scanString(start)
	case isDigit(c):
		return s.scanNumber(start)
	case isLetter(c):
		return s.scanIdentifier(start), nil
	}

	r, _ := utf8.DecodeRuneInString(rest)
	return Token{}, &Error{Pos: start, Char: r, Msg: msgUnrecognized}
}

// scanString copies raw characters up to the closing quote. A backslash
// keeps the following character in the literal untouched, so \" does not
// terminate it; no unescaping takes place.
func (s *scanner) scanString(start Pos) (Token, error) {
	s.advance(1)
	begin := s.off
	for s.off < len(s.src) {
		switch s.src[s.off] {
		case '"':
			text := s.src[begin:s.off]
			s.advance(1)
			return Token{Kind: String, Text: text, Pos: start}, nil
		case '\\':
			s.advance(1)
			if s.off < len(s.src) {
				_, size := utf8.DecodeRuneInString(s.src[s.off:])
				s.advance(size)
			}
		default:
			s.advance(1)
		}
	}
	return Token{}, &Error{Pos: start, Char: '"', Msg: msgUnterminated}
}

func (s *scanner) scanNumber(start Pos) (Token, error) {
	begin := s.off
	for s.off < len(s.src) && isDigit(s.src[s.off]) {
		s.advance(1)
	}
	text := s.src[begin:s.off]
	// A digit run always parses; runs past float64 range saturate to +Inf.
	n, _ := strconv.ParseFloat(text, 64)
	return Token{Kind: Number, Text: text, Number: n, Pos: start}, nil
}

func (s *scanner) scanIdentifier(start Pos) Token {
	begin := s.off
	for s.off < len(s.src) && (isLetter(s.src[s.off]) || isDigit(s.src[s.off])) {
		s.advance(1)
	}
	return Token{Kind: Identifier, Text: s.src[begin:s.off], Pos: start}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
