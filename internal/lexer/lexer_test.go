package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nox-lang/nox/internal/token"
)

func tags(toks []token.Token) []token.Tag {
	out := make([]token.Tag, len(toks))
	for i, t := range toks {
		out[i] = t.Tag
	}
	return out
}

func TestTokenizeEndsWithSentinel(t *testing.T) {
	toks, err := Tokenize("1 + 2")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[len(toks)-1].Tag != token.EOI {
		t.Fatalf("last token = %v, want EOI", toks[len(toks)-1])
	}
}

func TestKeywordsWinOverIdentifiers(t *testing.T) {
	toks, err := Tokenize("if")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if got := tags(toks); !cmp.Equal(got, []token.Tag{token.IF, token.EOI}) {
		t.Errorf("tags = %v, want [IF EOI]", got)
	}
}

func TestIdentifierNotShadowedByPartialKeyword(t *testing.T) {
	toks, err := Tokenize("ifx")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Tag != token.IDENT || toks[0].Value != "ifx" {
		t.Errorf("token = %v, want IDENT(ifx)", toks[0])
	}
}

func TestNumericDecoding(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"12", int64(12)},
		{"12.5", 12.5},
		{".5", 0.5},
		{"5.", 5.0},
		{"0", int64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.input, err)
			}
			if toks[0].Tag != token.NUMBER {
				t.Fatalf("tag = %v, want NUMBER", toks[0].Tag)
			}
			if toks[0].Value != tt.want {
				t.Errorf("value = %#v, want %#v", toks[0].Value, tt.want)
			}
		})
	}
}

func TestStringEscaping(t *testing.T) {
	toks, err := Tokenize(`"a""b"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Tag != token.STRING || toks[0].Value != `a"b` {
		t.Errorf("token = %v, want STRING(a\"b)", toks[0])
	}
}

func TestWhitespaceAndCommentsAreInvisible(t *testing.T) {
	a, err := Tokenize("1+2")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	b, err := Tokenize(" 1 + 2 // c\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if diff := cmp.Diff(tagsAndValues(a), tagsAndValues(b)); diff != "" {
		t.Errorf("token streams differ (-a +b):\n%s", diff)
	}
}

func tagsAndValues(toks []token.Token) []struct {
	Tag   token.Tag
	Value any
} {
	out := make([]struct {
		Tag   token.Tag
		Value any
	}, len(toks))
	for i, t := range toks {
		out[i] = struct {
			Tag   token.Tag
			Value any
		}{t.Tag, t.Value}
	}
	return out
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		want  token.Tag
	}{
		{"==", token.EQ}, {"!=", token.NEQ}, {"<=", token.LE}, {">=", token.GE},
		{"<", token.LT}, {">", token.GT}, {"=", token.ASSIGN},
		{"&&", token.LAND}, {"||", token.LOR}, {"!", token.BANG},
	}
	for _, tt := range tests {
		toks, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.input, err)
		}
		if toks[0].Tag != tt.want {
			t.Errorf("Tokenize(%q)[0].Tag = %v, want %v", tt.input, toks[0].Tag, tt.want)
		}
	}
}

func TestIllegalCharacter(t *testing.T) {
	_, err := Tokenize("1 @ 2")
	if err == nil {
		t.Fatal("expected an error for illegal character")
	}
}

func TestUnknownKeywordsFallBackToIdentifier(t *testing.T) {
	toks, err := Tokenize("foobar")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Tag != token.IDENT {
		t.Errorf("tag = %v, want IDENT", toks[0].Tag)
	}
}
