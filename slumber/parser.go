package slumber

import (
	"path"
	"strings"
)

type parser struct {
	src     *Source
	tokens  []*Token
	pos     int
	scopes  []*declaredNames
	imports []string
}

// declaredNames is an insertion-ordered set of names bound in one scope.
type declaredNames struct {
	names []string
	seen  map[string]struct{}
}

func (d *declaredNames) add(name string) {
	if _, ok := d.seen[name]; ok {
		return
	}
	d.seen[name] = struct{}{}
	d.names = append(d.names, name)
}

type parseBailout struct {
	err *Error
}

// Parse lexes and parses src. The first error aborts the parse.
func Parse(src *Source) (file *FileInput, err error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	defer func() {
		if r := recover(); r != nil {
			bail, ok := r.(parseBailout)
			if !ok {
				panic(r)
			}
			file, err = nil, bail.err
		}
	}()
	return p.parseFileInput(), nil
}

func (p *parser) parseFileInput() *FileInput {
	file := &FileInput{tok: p.peek()}
	p.pushScope()
	p.skipNewlines()
	for !p.at(TokenEOF) {
		file.Statements = append(file.Statements, p.parseStatement())
		p.skipNewlines()
	}
	file.Vars = p.popScope()
	file.Imports = p.imports
	return file
}

func (p *parser) peek() *Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) *Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) at(typ TokenType) bool {
	return p.peek().Type == typ
}

func (p *parser) next() *Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// consume advances past the next token if it has type typ.
func (p *parser) consume(typ TokenType) *Token {
	if p.at(typ) {
		return p.next()
	}
	return nil
}

func (p *parser) expect(typ TokenType) *Token {
	if !p.at(typ) {
		p.fail(p.peek(), "Expected %s but found %s", typ, p.peek().Type)
	}
	return p.next()
}

func (p *parser) expectName() string {
	return p.expect(TokenName).Value.(string)
}

func (p *parser) skipNewlines() {
	for p.consume(TokenNewline) != nil {
	}
}

func (p *parser) fail(tok *Token, format string, args ...any) {
	panic(parseBailout{err: newError(ErrorTypeParse, tok, format, args...)})
}

func (p *parser) pushScope() {
	p.scopes = append(p.scopes, &declaredNames{seen: make(map[string]struct{})})
}

func (p *parser) popScope() []string {
	top := p.scopes[len(p.scopes)-1]
	p.scopes = p.scopes[:len(p.scopes)-1]
	return top.names
}

func (p *parser) declare(name string) {
	p.scopes[len(p.scopes)-1].add(name)
}

// moduleAlias derives the binding name for an import without 'as'.
func moduleAlias(uri string) string {
	base := path.Base(uri)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || IsKeyword(base) {
		return ""
	}
	for i, r := range base {
		if !isWordStart(r) && (i == 0 || r < '0' || r > '9') {
			return ""
		}
	}
	return base
}
