package slumber

var comparisonMethods = map[TokenType]string{
	"<":  "__lt",
	"<=": "__le",
	">":  "__gt",
	">=": "__ge",
	"==": "__eq",
	"!=": "__ne",
}

var additiveMethods = map[TokenType]string{
	"+": "__add",
	"-": "__sub",
}

var multiplicativeMethods = map[TokenType]string{
	"*":  "__mul",
	"/":  "__div",
	"//": "__floordiv",
	"%":  "__mod",
}

func (p *parser) parseExpression() Expression {
	return p.parseTernary()
}

func (p *parser) parseTernary() Expression {
	expr := p.parseOr()
	if tok := p.consume("if"); tok != nil {
		cond := p.parseOr()
		p.expect("else")
		return &TernaryExpr{Cond: cond, IfTrue: expr, IfFalse: p.parseTernary(), tok: tok}
	}
	return expr
}

func (p *parser) parseOr() Expression {
	left := p.parseAnd()
	for tok := p.consume("or"); tok != nil; tok = p.consume("or") {
		left = &OrExpr{Left: left, Right: p.parseAnd(), tok: tok}
	}
	return left
}

func (p *parser) parseAnd() Expression {
	left := p.parseNot()
	for tok := p.consume("and"); tok != nil; tok = p.consume("and") {
		left = &AndExpr{Left: left, Right: p.parseNot(), tok: tok}
	}
	return left
}

func (p *parser) parseNot() Expression {
	if tok := p.consume("not"); tok != nil {
		return &NotExpr{Expr: p.parseNot(), tok: tok}
	}
	return p.parseComparison()
}

// parseComparison does not chain: a < b < c is a parse error.
func (p *parser) parseComparison() Expression {
	left := p.parseAdditive()
	if name, ok := comparisonMethods[p.peek().Type]; ok {
		tok := p.next()
		right := p.parseAdditive()
		return p.binary(tok, left, name, right)
	}
	return left
}

func (p *parser) parseAdditive() Expression {
	left := p.parseMultiplicative()
	for {
		name, ok := additiveMethods[p.peek().Type]
		if !ok {
			return left
		}
		tok := p.next()
		left = p.binary(tok, left, name, p.parseMultiplicative())
	}
}

func (p *parser) parseMultiplicative() Expression {
	left := p.parseUnary()
	for {
		name, ok := multiplicativeMethods[p.peek().Type]
		if !ok {
			return left
		}
		tok := p.next()
		left = p.binary(tok, left, name, p.parseUnary())
	}
}

func (p *parser) parseUnary() Expression {
	if tok := p.consume("-"); tok != nil {
		operand := p.parseUnary()
		return &MethodCall{Owner: operand, Name: "__neg", Args: &ExpressionList{tok: tok}, tok: tok}
	}
	return p.parsePostfix()
}

func (p *parser) binary(tok *Token, left Expression, name string, right Expression) Expression {
	args := &ExpressionList{Exprs: []Expression{right}, tok: tok}
	return &MethodCall{Owner: left, Name: name, Args: args, tok: tok}
}

func (p *parser) parsePostfix() Expression {
	expr := p.parsePrimary()
	for {
		tok := p.peek()
		switch tok.Type {
		case "(":
			expr = &MethodCall{Owner: expr, Name: "__call", Args: p.parseCallArgs(), tok: tok}
		case ".":
			p.next()
			name := p.expectName()
			switch {
			case p.at("("):
				expr = &MethodCall{Owner: expr, Name: name, Args: p.parseCallArgs(), tok: tok}
			case p.consume("=") != nil:
				return &SetAttribute{Owner: expr, Name: name, Value: p.parseExpression(), tok: tok}
			default:
				expr = &GetAttribute{Owner: expr, Name: name, tok: tok}
			}
		case "[":
			p.next()
			index := p.parseExpression()
			p.expect("]")
			if p.consume("=") != nil {
				args := &ExpressionList{Exprs: []Expression{index, p.parseExpression()}, tok: tok}
				return &MethodCall{Owner: expr, Name: "__setitem", Args: args, tok: tok}
			}
			args := &ExpressionList{Exprs: []Expression{index}, tok: tok}
			expr = &MethodCall{Owner: expr, Name: "__getitem", Args: args, tok: tok}
		default:
			return expr
		}
	}
}

func (p *parser) parseCallArgs() *ExpressionList {
	p.expect("(")
	args := p.parseExpressionList(")")
	p.expect(")")
	return args
}

// parseExpressionList reads comma separated expressions up to closer,
// which it leaves unconsumed. A trailing '*expr' is the splat argument.
func (p *parser) parseExpressionList(closer TokenType) *ExpressionList {
	list := &ExpressionList{tok: p.peek()}
	for !p.at(closer) {
		if p.consume("*") != nil {
			list.VarArg = p.parseExpression()
			p.consume(",")
			break
		}
		list.Exprs = append(list.Exprs, p.parseExpression())
		if p.consume(",") == nil {
			break
		}
	}
	return list
}

func (p *parser) parsePrimary() Expression {
	tok := p.peek()
	switch tok.Type {
	case TokenNumber:
		p.next()
		return &NumberLiteral{Value: tok.Value.(float64), tok: tok}
	case TokenString:
		p.next()
		return &StringLiteral{Value: tok.Value.(string), tok: tok}
	case TokenName:
		p.next()
		name := tok.Value.(string)
		if p.consume("=") != nil {
			p.declare(name)
			return &SimpleAssignment{Name: name, Value: p.parseExpression(), tok: tok}
		}
		return &Name{Name: name, tok: tok}
	case "self":
		p.next()
		return &SelfExpr{tok: tok}
	case "super":
		p.next()
		p.expect(".")
		name := p.expectName()
		return &SuperMethodCall{Name: name, Args: p.parseCallArgs(), tok: tok}
	case "(":
		p.next()
		expr := p.parseExpression()
		p.expect(")")
		return expr
	case "[":
		p.next()
		items := p.parseExpressionList("]")
		p.expect("]")
		return &ListDisplay{Items: items, tok: tok}
	case "\\":
		p.next()
		lambda := &LambdaExpr{tok: tok}
		p.pushScope()
		lambda.Args = p.parseArgumentList()
		p.expect(".")
		lambda.Body = p.parseExpression()
		lambda.Vars = p.popScope()
		return lambda
	case "yield":
		p.next()
		if p.consume("*") != nil {
			return &YieldStarExpr{Iterable: p.parseExpression(), tok: tok}
		}
		if p.atExpressionEnd() {
			return &YieldExpr{tok: tok}
		}
		return &YieldExpr{Value: p.parseExpression(), tok: tok}
	}
	p.fail(tok, "Expected expression but found %s", tok.Type)
	return nil
}

func (p *parser) atExpressionEnd() bool {
	switch p.peek().Type {
	case TokenNewline, TokenEOF, ")", "]", ",":
		return true
	}
	return false
}
