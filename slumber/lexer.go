package slumber

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var escapeTable = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'f':  '\f',
}

type lexer struct {
	src    *Source
	text   string
	pos    int
	parens int

	indents []int
	tokens  []*Token
}

// Lex splits src into tokens. The result always ends with an EOF token;
// indentation is reported with INDENT and DEDENT tokens.
func Lex(src *Source) ([]*Token, error) {
	l := &lexer{src: src, text: src.Text, indents: []int{0}}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for {
		if l.parens == 0 {
			done, err := l.lineStart()
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		if err := l.lineBody(); err != nil {
			return err
		}
		if l.pos >= len(l.text) {
			break
		}
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(l.pos, TokenDedent, nil)
	}
	l.emit(l.pos, TokenEOF, nil)
	return nil
}

// lineStart skips blank and comment-only lines, then emits the
// indentation change for the next significant line. It reports true
// when input is exhausted.
func (l *lexer) lineStart() (bool, error) {
	for {
		j := l.pos
		for j < len(l.text) && (l.text[j] == ' ' || l.text[j] == '\t') {
			j++
		}
		if j < len(l.text) && l.text[j] == '#' {
			for j < len(l.text) && l.text[j] != '\n' {
				j++
			}
		}
		if j >= len(l.text) {
			l.pos = j
			return true, nil
		}
		if l.text[j] == '\n' {
			l.pos = j + 1
			continue
		}
		indent := l.text[l.pos:j]
		if i := strings.IndexByte(indent, '\t'); i >= 0 {
			return false, l.errorAt(l.pos+i, "Indentation with tabs are not allowed")
		}
		depth := len(indent)
		l.pos = j
		top := l.indents[len(l.indents)-1]
		switch {
		case depth > top:
			l.indents = append(l.indents, depth)
			l.emit(j, TokenIndent, nil)
		case depth < top:
			for depth < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.emit(j, TokenDedent, nil)
			}
			if depth != l.indents[len(l.indents)-1] {
				return false, l.errorAt(j, "Invalid indentation depth")
			}
		}
		return false, nil
	}
}

// lineBody tokenizes up to and including the NEWLINE that ends the
// current logical line.
func (l *lexer) lineBody() error {
	for {
		l.skipSpace()
		if l.pos >= len(l.text) || l.text[l.pos] == '\n' {
			l.emit(l.pos, TokenNewline, nil)
			if l.pos < len(l.text) {
				l.pos++
			}
			return nil
		}
		if err := l.next(); err != nil {
			return err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.text) {
		c := l.text[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '\\' && l.pos+1 < len(l.text) && l.text[l.pos+1] == '\n':
			l.pos += 2
		case c == '\n' && l.parens > 0:
			l.pos++
		case c == '#':
			for l.pos < len(l.text) && l.text[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() error {
	start := l.pos
	c := l.text[start]

	if l.atString() {
		return l.lexString()
	}
	if isDigit(c) || (c == '.' && start+1 < len(l.text) && isDigit(l.text[start+1])) {
		l.lexNumber()
		return nil
	}
	if r, _ := utf8.DecodeRuneInString(l.text[start:]); isWordStart(r) {
		l.lexWord()
		return nil
	}
	for _, sym := range symbols {
		if strings.HasPrefix(l.text[start:], sym) {
			switch sym {
			case "(", "[", "{":
				l.parens++
			case ")", "]", "}":
				if l.parens > 0 {
					l.parens--
				}
			}
			l.pos += len(sym)
			l.emit(start, TokenType(sym), nil)
			return nil
		}
	}
	end := start
	for end < len(l.text) && !unicode.IsSpace(rune(l.text[end])) {
		end++
	}
	return l.errorAt(start, "Unrecognized token %q", l.text[start:end])
}

func (l *lexer) atString() bool {
	rest := l.text[l.pos:]
	if strings.HasPrefix(rest, "r") {
		rest = rest[1:]
	}
	return strings.HasPrefix(rest, "'") || strings.HasPrefix(rest, `"`)
}

func (l *lexer) lexString() error {
	start := l.pos
	raw := false
	if l.text[l.pos] == 'r' {
		raw = true
		l.pos++
	}
	quote := l.text[l.pos : l.pos+1]
	if strings.HasPrefix(l.text[l.pos:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	l.pos += len(quote)

	var b strings.Builder
	for {
		if l.pos >= len(l.text) {
			return l.errorAt(start, "Unterminated string literal")
		}
		if strings.HasPrefix(l.text[l.pos:], quote) {
			l.pos += len(quote)
			break
		}
		c := l.text[l.pos]
		if len(quote) == 1 && c == '\n' {
			return l.errorAt(start, "Unterminated string literal")
		}
		if c == '\\' && !raw {
			if l.pos+1 >= len(l.text) {
				return l.errorAt(start, "Unterminated string literal")
			}
			esc, ok := escapeTable[l.text[l.pos+1]]
			if !ok {
				return l.errorAt(l.pos, "Invalid string escape \\%c", l.text[l.pos+1])
			}
			b.WriteByte(esc)
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	l.emit(start, TokenString, b.String())
	return nil
}

func (l *lexer) lexNumber() {
	start := l.pos
	for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.text) && l.text[l.pos] == '.' && isDigit(l.text[l.pos+1]) {
		l.pos++
		for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
			l.pos++
		}
	}
	// digits with at most one dot always parse
	value, _ := strconv.ParseFloat(l.text[start:l.pos], 64)
	l.emit(start, TokenNumber, value)
}

func (l *lexer) lexWord() {
	start := l.pos
	for l.pos < len(l.text) {
		r, w := utf8.DecodeRuneInString(l.text[l.pos:])
		if !isWordStart(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += w
	}
	word := l.text[start:l.pos]
	if IsKeyword(word) {
		l.emit(start, TokenType(word), nil)
		return
	}
	l.emit(start, TokenName, word)
}

func (l *lexer) emit(pos int, typ TokenType, value any) {
	l.tokens = append(l.tokens, &Token{Source: l.src, Pos: pos, Type: typ, Value: value})
}

func (l *lexer) errorAt(pos int, format string, args ...any) error {
	return newError(ErrorTypeLex, &Token{Source: l.src, Pos: pos, Type: "ERR"}, format, args...)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
