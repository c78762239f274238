package slumber

import (
	"fmt"
	"sort"
	"strings"
)

// TokenType identifies the lexical category of a token. Keywords and
// symbols use their own spelling as their type.
type TokenType string

const (
	TokenName    TokenType = "NAME"
	TokenNumber  TokenType = "NUMBER"
	TokenString  TokenType = "STRING"
	TokenNewline TokenType = "NEWLINE"
	TokenIndent  TokenType = "INDENT"
	TokenDedent  TokenType = "DEDENT"
	TokenEOF     TokenType = "EOF"
)

var keywords = map[string]struct{}{
	"False": {}, "class": {}, "finally": {}, "is": {}, "return": {},
	"None": {}, "continue": {}, "for": {}, "lambda": {}, "try": {},
	"True": {}, "def": {}, "from": {}, "nonlocal": {}, "while": {},
	"and": {}, "del": {}, "global": {}, "not": {}, "with": {},
	"as": {}, "elif": {}, "if": {}, "or": {}, "yield": {},
	"else": {}, "import": {}, "pass": {}, "break": {}, "except": {},
	"in": {}, "raise": {}, "self": {}, "super": {},
	"async": {}, "await": {}, "sync": {},
}

// symbols is sorted longest first so the lexer can take the first match.
var symbols = []string{
	"//=", ">>=", "<<=", "**=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->",
	"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";", "=", "\\",
}

// IsKeyword reports whether word lexes as a keyword rather than a NAME.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Keywords returns every reserved word, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for word := range keywords {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// Source is a named chunk of program text.
type Source struct {
	URI  string
	Text string
}

func NewSource(uri, text string) *Source {
	return &Source{URI: uri, Text: text}
}

// Token is one lexeme. Pos is a byte offset into Source.Text; line and
// column information is derived on demand.
type Token struct {
	Source *Source
	Pos    int
	Type   TokenType
	Value  any
}

// Line returns the 1-based line number of the token.
func (t *Token) Line() int {
	if t == nil || t.Source == nil {
		return 0
	}
	return strings.Count(t.Source.Text[:t.clampedPos()], "\n") + 1
}

// Column returns the 1-based column of the token within its line.
func (t *Token) Column() int {
	if t == nil || t.Source == nil {
		return 0
	}
	pos := t.clampedPos()
	return pos - strings.LastIndexByte(t.Source.Text[:pos], '\n')
}

// LineText returns the full source line the token sits on.
func (t *Token) LineText() string {
	if t == nil || t.Source == nil {
		return ""
	}
	text := t.Source.Text
	pos := t.clampedPos()
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : pos+end]
}

// Location renders the file, line, source text and a caret under the
// token's column.
func (t *Token) Location() string {
	if t == nil || t.Source == nil {
		return ""
	}
	return fmt.Sprintf("File %q, line %d\n%s\n%s^",
		t.Source.URI, t.Line(), t.LineText(), strings.Repeat(" ", t.Column()-1))
}

func (t *Token) String() string {
	uri := ""
	if t.Source != nil {
		uri = t.Source.URI
	}
	return fmt.Sprintf("Token(%s, %d, %s, %v)", uri, t.Pos, t.Type, t.Value)
}

func (t *Token) clampedPos() int {
	if t.Pos < 0 {
		return 0
	}
	if t.Pos > len(t.Source.Text) {
		return len(t.Source.Text)
	}
	return t.Pos
}
