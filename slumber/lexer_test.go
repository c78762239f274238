package slumber

import (
	"errors"
	"strings"
	"testing"
)

func lexTypes(t *testing.T, text string) []*Token {
	t.Helper()
	tokens, err := Lex(NewSource("<test>", text))
	if err != nil {
		t.Fatalf("lex failed: %v", err)
	}
	return tokens
}

func TestLexWhileBlock(t *testing.T) {
	tokens := lexTypes(t, "\nwhile True:\n  'hello\\n world' 5 4.4 x.y # hoi\n# fun")

	want := []struct {
		typ   TokenType
		value any
	}{
		{"while", nil},
		{"True", nil},
		{":", nil},
		{TokenNewline, nil},
		{TokenIndent, nil},
		{TokenString, "hello\n world"},
		{TokenNumber, 5.0},
		{TokenNumber, 4.4},
		{TokenName, "x"},
		{".", nil},
		{TokenName, "y"},
		{TokenNewline, nil},
		{TokenDedent, nil},
		{TokenEOF, nil},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ {
			t.Fatalf("token %d: expected type %s, got %s", i, w.typ, tokens[i].Type)
		}
		if tokens[i].Value != w.value {
			t.Fatalf("token %d: expected value %#v, got %#v", i, w.value, tokens[i].Value)
		}
	}
}

func TestLexStringForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "single", text: `'a\tb'`, want: "a\tb"},
		{name: "double", text: `"it's"`, want: "it's"},
		{name: "raw", text: `r'a\nb'`, want: `a\nb`},
		{name: "triple", text: "'''one\ntwo'''", want: "one\ntwo"},
		{name: "triple double", text: `"""say "hi" """`, want: `say "hi" `},
		{name: "escaped quote", text: `'don\'t'`, want: "don't"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := lexTypes(t, tt.text)
			if tokens[0].Type != TokenString {
				t.Fatalf("expected STRING, got %s", tokens[0].Type)
			}
			if tokens[0].Value != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, tokens[0].Value)
			}
		})
	}
}

func TestLexNumbers(t *testing.T) {
	tokens := lexTypes(t, "12 3.25 .5 7.")
	want := []any{12.0, 3.25, 0.5, 7.0}
	for i, w := range want {
		if tokens[i].Type != TokenNumber || tokens[i].Value != w {
			t.Fatalf("token %d: expected NUMBER(%v), got %s", i, w, tokens[i])
		}
	}
	if tokens[4].Type != "." {
		t.Fatalf("expected trailing dot to lex as a symbol, got %s", tokens[4])
	}
}

func TestLexLongestSymbolMatch(t *testing.T) {
	tokens := lexTypes(t, "a // b <= c == d != e")
	var got []TokenType
	for _, tok := range tokens {
		if tok.Type != TokenName {
			got = append(got, tok.Type)
		}
	}
	want := []TokenType{"//", "<=", "==", "!=", TokenNewline, TokenEOF}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLexSuppressesNewlinesInsideBrackets(t *testing.T) {
	tokens := lexTypes(t, "f(1,\n    2)\nx = \\\n  3\n")
	newlines := 0
	for _, tok := range tokens {
		switch tok.Type {
		case TokenNewline:
			newlines++
		case TokenIndent, TokenDedent:
			t.Fatalf("unexpected indentation token %s", tok)
		}
	}
	if newlines != 2 {
		t.Fatalf("expected 2 NEWLINE tokens, got %d", newlines)
	}
}

func TestLexSkipsBlankAndCommentLines(t *testing.T) {
	tokens := lexTypes(t, "# header\n\nx\n    # indented comment\n\ny\n")
	for _, tok := range tokens {
		if tok.Type == TokenIndent {
			t.Fatalf("comment line should not change indentation")
		}
	}
	if len(tokens) != 5 {
		t.Fatalf("expected x NEWLINE y NEWLINE EOF, got %v", tokens)
	}
}

func TestLexDedentsToMatchingLevel(t *testing.T) {
	tokens := lexTypes(t, "a\n  b\n    c\nd\n")
	dedents := 0
	for _, tok := range tokens {
		if tok.Type == TokenDedent {
			dedents++
		}
	}
	if dedents != 2 {
		t.Fatalf("expected 2 DEDENT tokens, got %d", dedents)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "tab indentation", text: "if x\n\ty\n", want: "Indentation with tabs are not allowed"},
		{name: "invalid dedent", text: "if x\n    y\n  z\n", want: "Invalid indentation depth"},
		{name: "unterminated", text: "x = 'abc\n", want: "Unterminated string literal"},
		{name: "unterminated triple", text: "x = '''abc", want: "Unterminated string literal"},
		{name: "bad escape", text: `'\q'`, want: "Invalid string escape"},
		{name: "unrecognized", text: "x = $money here", want: `Unrecognized token "$money"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(NewSource("<test>", tt.text))
			if err == nil {
				t.Fatalf("expected error")
			}
			var se *Error
			if !errors.As(err, &se) || se.Type != ErrorTypeLex {
				t.Fatalf("expected LexError, got %T %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestTokenLocation(t *testing.T) {
	tokens := lexTypes(t, "x = 1\ny = oops + 2\n")
	var oops *Token
	for _, tok := range tokens {
		if tok.Value == "oops" {
			oops = tok
		}
	}
	if oops == nil {
		t.Fatalf("token not found")
	}
	if oops.Line() != 2 || oops.Column() != 5 {
		t.Fatalf("expected 2:5, got %d:%d", oops.Line(), oops.Column())
	}
	want := "File \"<test>\", line 2\ny = oops + 2\n    ^"
	if got := oops.Location(); got != want {
		t.Fatalf("unexpected location:\n%s\nwant:\n%s", got, want)
	}
	if got := oops.String(); got != "Token(<test>, 10, NAME, oops)" {
		t.Fatalf("unexpected token string %q", got)
	}
}
