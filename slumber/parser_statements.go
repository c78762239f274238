package slumber

func (p *parser) parseStatement() Statement {
	tok := p.peek()
	switch tok.Type {
	case "pass":
		p.next()
		p.expect(TokenNewline)
		return &PassStmt{tok: tok}
	case "import":
		return p.parseImport()
	case "sync":
		p.next()
		return &SyncStmt{Body: p.parseBlock(), tok: tok}
	case "if":
		return p.parseIf()
	case "while":
		p.next()
		cond := p.parseExpression()
		return &WhileStmt{Cond: cond, Body: p.parseBlock(), tok: tok}
	case "for":
		p.next()
		name := p.expectName()
		p.declare(name)
		p.expect("in")
		iterable := p.parseExpression()
		return &ForStmt{Var: name, Iterable: iterable, Body: p.parseBlock(), tok: tok}
	case "break":
		p.next()
		p.expect(TokenNewline)
		return &BreakStmt{tok: tok}
	case "continue":
		p.next()
		p.expect(TokenNewline)
		return &ContinueStmt{tok: tok}
	case "return":
		p.next()
		stmt := &ReturnStmt{tok: tok}
		if !p.at(TokenNewline) {
			stmt.Value = p.parseExpression()
		}
		p.expect(TokenNewline)
		return stmt
	case "@", "async", "def":
		return p.parseFunction()
	case "class":
		return p.parseClass()
	}
	expr := p.parseExpression()
	p.expect(TokenNewline)
	return &ExprStmt{Expr: expr, tok: tok}
}

func (p *parser) parseImport() Statement {
	tok := p.next()
	if len(p.scopes) != 1 {
		p.fail(tok, "import statements are only allowed in global scope")
	}
	uri := p.expect(TokenString).Value.(string)
	alias := ""
	if p.consume("as") != nil {
		alias = p.expectName()
	} else if alias = moduleAlias(uri); alias == "" {
		p.fail(tok, "Cannot derive a name for import %q, use 'as'", uri)
	}
	p.expect(TokenNewline)
	p.declare(alias)
	p.imports = append(p.imports, uri)
	return &ImportStmt{URI: uri, Alias: alias, tok: tok}
}

func (p *parser) parseIf() Statement {
	stmt := &IfStmt{tok: p.next()}
	stmt.Conds = append(stmt.Conds, p.parseExpression())
	stmt.Bodies = append(stmt.Bodies, p.parseBlock())
	for p.consume("elif") != nil {
		stmt.Conds = append(stmt.Conds, p.parseExpression())
		stmt.Bodies = append(stmt.Bodies, p.parseBlock())
	}
	if p.consume("else") != nil {
		stmt.Else = p.parseBlock()
	}
	return stmt
}

// parseBlock reads NEWLINE INDENT statement... DEDENT.
func (p *parser) parseBlock() *Block {
	p.skipNewlines()
	block := &Block{tok: p.expect(TokenIndent)}
	p.skipNewlines()
	for !p.at(TokenDedent) {
		block.Statements = append(block.Statements, p.parseStatement())
		p.skipNewlines()
	}
	p.expect(TokenDedent)
	return block
}

// parseOptionalBlock allows a definition header with no indented body.
func (p *parser) parseOptionalBlock() *Block {
	tok := p.expect(TokenNewline)
	p.skipNewlines()
	if !p.at(TokenIndent) {
		return &Block{tok: tok}
	}
	return p.parseBlock()
}

func (p *parser) parseFunction() *FunctionStmt {
	stmt := &FunctionStmt{}
	for p.consume("@") != nil {
		stmt.Decorators = append(stmt.Decorators, p.parseExpression())
		p.expect(TokenNewline)
		p.skipNewlines()
	}
	stmt.Async = p.consume("async") != nil
	stmt.tok = p.expect("def")
	stmt.IsGenerator = p.consume("*") != nil
	if stmt.Async && stmt.IsGenerator {
		p.fail(stmt.tok, "Async functions cannot also be generators")
	}
	stmt.Name = p.expectName()
	p.declare(stmt.Name)

	p.pushScope()
	p.expect("(")
	stmt.Args = p.parseArgumentList()
	p.expect(")")
	stmt.Body = p.parseOptionalBlock()
	stmt.Vars = p.popScope()
	return stmt
}

func (p *parser) parseArgumentList() *ArgumentList {
	list := &ArgumentList{tok: p.peek()}
	for p.at(TokenName) {
		name := p.expectName()
		p.declare(name)
		list.Args = append(list.Args, name)
		p.consume(",")
	}
	for p.consume("/") != nil {
		name := p.expectName()
		p.declare(name)
		list.OptArgs = append(list.OptArgs, name)
		p.consume(",")
	}
	if p.consume("*") != nil {
		list.VarArg = p.expectName()
		p.declare(list.VarArg)
		p.consume(",")
	}
	return list
}

func (p *parser) parseClass() *ClassStmt {
	stmt := &ClassStmt{tok: p.next()}
	stmt.Name = p.expectName()
	p.declare(stmt.Name)
	if p.consume("(") != nil {
		for !p.at(")") {
			stmt.Bases = append(stmt.Bases, p.parseExpression())
			if p.consume(",") == nil {
				break
			}
		}
		p.expect(")")
	}

	p.pushScope()
	p.expect(TokenNewline)
	p.skipNewlines()
	if p.consume(TokenIndent) != nil {
		p.skipNewlines()
		for !p.at(TokenDedent) {
			switch p.peek().Type {
			case "pass":
				p.next()
				p.expect(TokenNewline)
			case "@", "async", "def":
				stmt.Methods = append(stmt.Methods, p.parseFunction())
			default:
				p.fail(p.peek(), "Expected method but found %s", p.peek().Type)
			}
			p.skipNewlines()
		}
		p.expect(TokenDedent)
	}
	stmt.Vars = p.popScope()
	return stmt
}
