package slumber

type SimpleAssignment struct {
	Name  string
	Value Expression
	tok   *Token
}

func (e *SimpleAssignment) exprNode()     {}
func (e *SimpleAssignment) Token() *Token { return e.tok }

type Name struct {
	Name string
	tok  *Token
}

func (e *Name) exprNode()     {}
func (e *Name) Token() *Token { return e.tok }

type SelfExpr struct {
	tok *Token
}

func (e *SelfExpr) exprNode()     {}
func (e *SelfExpr) Token() *Token { return e.tok }

type NumberLiteral struct {
	Value float64
	tok   *Token
}

func (e *NumberLiteral) exprNode()     {}
func (e *NumberLiteral) Token() *Token { return e.tok }

type StringLiteral struct {
	Value string
	tok   *Token
}

func (e *StringLiteral) exprNode()     {}
func (e *StringLiteral) Token() *Token { return e.tok }

type ListDisplay struct {
	Items *ExpressionList
	tok   *Token
}

func (e *ListDisplay) exprNode()     {}
func (e *ListDisplay) Token() *Token { return e.tok }

type GetAttribute struct {
	Owner Expression
	Name  string
	tok   *Token
}

func (e *GetAttribute) exprNode()     {}
func (e *GetAttribute) Token() *Token { return e.tok }

type SetAttribute struct {
	Owner Expression
	Name  string
	Value Expression
	tok   *Token
}

func (e *SetAttribute) exprNode()     {}
func (e *SetAttribute) Token() *Token { return e.tok }

// MethodCall is also the desugared form of every operator, call and
// index expression.
type MethodCall struct {
	Owner Expression
	Name  string
	Args  *ExpressionList
	tok   *Token
}

func (e *MethodCall) exprNode()     {}
func (e *MethodCall) Token() *Token { return e.tok }

type SuperMethodCall struct {
	Name string
	Args *ExpressionList
	tok  *Token
}

func (e *SuperMethodCall) exprNode()     {}
func (e *SuperMethodCall) Token() *Token { return e.tok }

type NotExpr struct {
	Expr Expression
	tok  *Token
}

func (e *NotExpr) exprNode()     {}
func (e *NotExpr) Token() *Token { return e.tok }

type AndExpr struct {
	Left  Expression
	Right Expression
	tok   *Token
}

func (e *AndExpr) exprNode()     {}
func (e *AndExpr) Token() *Token { return e.tok }

type OrExpr struct {
	Left  Expression
	Right Expression
	tok   *Token
}

func (e *OrExpr) exprNode()     {}
func (e *OrExpr) Token() *Token { return e.tok }

type TernaryExpr struct {
	Cond    Expression
	IfTrue  Expression
	IfFalse Expression
	tok     *Token
}

func (e *TernaryExpr) exprNode()     {}
func (e *TernaryExpr) Token() *Token { return e.tok }

type LambdaExpr struct {
	Args *ArgumentList
	Body Expression
	Vars []string
	tok  *Token
}

func (e *LambdaExpr) exprNode()     {}
func (e *LambdaExpr) Token() *Token { return e.tok }

type YieldExpr struct {
	Value Expression
	tok   *Token
}

func (e *YieldExpr) exprNode()     {}
func (e *YieldExpr) Token() *Token { return e.tok }

type YieldStarExpr struct {
	Iterable Expression
	tok      *Token
}

func (e *YieldStarExpr) exprNode()     {}
func (e *YieldStarExpr) Token() *Token { return e.tok }
