// Package lexer turns nox source text into a flat token stream.
//
// The scanner walks the source left to right and, at each position, tries a
// fixed priority order of rules: whitespace/comments (skipped), keywords
// (checked before the general identifier rule), numbers, strings, then
// operators/punctuation longest-match-first. The first rule that matches
// wins and its lexeme is consumed.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nox-lang/nox/internal/token"
)

// Error is a scan-time failure: an unrecognized character at a position.
type Error struct {
	Message string
	Pos     int
}

func (e *Error) Error() string { return e.Message }

// Lexer scans a single source string into tokens. It is stateful and
// single-use: Tokenize constructs one with New for each source string.
type Lexer struct {
	src string
	pos int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the whole input and returns the token stream terminated by
// a sentinel token.EOI token, or the first scan error encountered.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Tag == token.EOI {
			return out, nil
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return token.Token{Tag: token.EOI, Pos: start}, nil
	}

	c := l.peek()

	switch {
	case isIdentStart(c):
		return l.scanIdentOrKeyword(start), nil
	case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(start)
	case c == '"':
		return l.scanString(start)
	}

	if tok, ok := l.scanOperator(start); ok {
		return tok, nil
	}

	l.pos++
	return token.Token{}, &Error{
		Message: fmt.Sprintf("illegal character %q at position %d", c, start),
		Pos:     start,
	}
}

func (l *Lexer) scanIdentOrKeyword(start int) token.Token {
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.pos++
	}
	word := l.src[start:l.pos]
	if tag, ok := token.Lookup(word); ok {
		switch tag {
		case token.TRUE:
			return token.Token{Tag: token.TRUE, Value: true, Pos: start}
		case token.FALSE:
			return token.Token{Tag: token.FALSE, Value: false, Pos: start}
		default:
			return token.Token{Tag: tag, Pos: start}
		}
	}
	return token.Token{Tag: token.IDENT, Value: word, Pos: start}
}

// scanNumber handles four lexical forms: \d+, \d+\., \.\d+, and \d+\.\d+. A
// dot in the lexeme means the value decodes to a float64; otherwise it
// decodes to an exact integer (int64).
func (l *Lexer) scanNumber(start int) (token.Token, error) {
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.pos++
	}
	isFloat := false
	if l.peek() == '.' && l.peekAt(1) != '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.pos++
		}
	}
	lexeme := l.src[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, &Error{Message: fmt.Sprintf("invalid number %q", lexeme), Pos: start}
		}
		return token.Token{Tag: token.NUMBER, Value: f, Pos: start}, nil
	}
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, &Error{Message: fmt.Sprintf("invalid number %q", lexeme), Pos: start}
	}
	return token.Token{Tag: token.NUMBER, Value: n, Pos: start}, nil
}

// scanString decodes a double-quoted literal. "" is the sole escape and
// decodes to a single ".
func (l *Lexer) scanString(start int) (token.Token, error) {
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token.Token{}, &Error{Message: "unterminated string literal", Pos: start}
		}
		c := l.peek()
		if c == '"' {
			if l.peekAt(1) == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token.Token{Tag: token.STRING, Value: sb.String(), Pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
}

// operators is tried longest-first so e.g. "==" wins over "=" followed by "=".
var operators = []struct {
	lexeme string
	tag    token.Tag
}{
	{"&&", token.LAND}, {"||", token.LOR},
	{"==", token.EQ}, {"!=", token.NEQ}, {"<=", token.LE}, {">=", token.GE},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH}, {"%", token.PERCENT},
	{"(", token.LPAREN}, {")", token.RPAREN}, {"{", token.LBRACE}, {"}", token.RBRACE},
	{"[", token.LBRACKET}, {"]", token.RBRACKET},
	{".", token.DOT}, {",", token.COMMA}, {";", token.SEMI}, {":", token.COLON},
	{"=", token.ASSIGN}, {"<", token.LT}, {">", token.GT}, {"!", token.BANG},
}

func (l *Lexer) scanOperator(start int) (token.Token, bool) {
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op.lexeme) {
			l.pos += len(op.lexeme)
			return token.Token{Tag: op.tag, Pos: start}, true
		}
	}
	return token.Token{}, false
}
