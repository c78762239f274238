package slumber

// Node is any syntax tree element. Token returns the token the node
// started at, used for error traces.
type Node interface {
	Token() *Token
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// FileInput is a parsed source file. Vars lists names declared at file
// scope; Imports lists every imported uri.
type FileInput struct {
	Statements []Statement
	Vars       []string
	Imports    []string
	tok        *Token
}

func (n *FileInput) Token() *Token { return n.tok }

type Block struct {
	Statements []Statement
	tok        *Token
}

func (n *Block) Token() *Token { return n.tok }

// ArgumentList holds required names, then optional names introduced by
// '/', then an optional variadic name introduced by '*'.
type ArgumentList struct {
	Args    []string
	OptArgs []string
	VarArg  string
	tok     *Token
}

func (n *ArgumentList) Token() *Token { return n.tok }

// HasVarArg reports whether the list ends in a '*name' parameter.
func (n *ArgumentList) HasVarArg() bool { return n.VarArg != "" }

// ExpressionList is a call's argument expressions. VarArg, when set, is
// spliced into the arguments after iteration.
type ExpressionList struct {
	Exprs  []Expression
	VarArg Expression
	tok    *Token
}

func (n *ExpressionList) Token() *Token { return n.tok }

type ExprStmt struct {
	Expr Expression
	tok  *Token
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Token() *Token { return s.tok }

type FunctionStmt struct {
	Decorators  []Expression
	Async       bool
	IsGenerator bool
	Name        string
	Args        *ArgumentList
	Body        *Block
	Vars        []string
	tok         *Token
}

func (s *FunctionStmt) stmtNode()     {}
func (s *FunctionStmt) Token() *Token { return s.tok }

type ClassStmt struct {
	Name    string
	Bases   []Expression
	Methods []*FunctionStmt
	Vars    []string
	tok     *Token
}

func (s *ClassStmt) stmtNode()     {}
func (s *ClassStmt) Token() *Token { return s.tok }

type PassStmt struct {
	tok *Token
}

func (s *PassStmt) stmtNode()     {}
func (s *PassStmt) Token() *Token { return s.tok }

type SyncStmt struct {
	Body *Block
	tok  *Token
}

func (s *SyncStmt) stmtNode()     {}
func (s *SyncStmt) Token() *Token { return s.tok }

// IfStmt holds the 'if' and every 'elif' as parallel condition/body
// pairs. Else is nil when absent.
type IfStmt struct {
	Conds  []Expression
	Bodies []*Block
	Else   *Block
	tok    *Token
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Token() *Token { return s.tok }

type WhileStmt struct {
	Cond Expression
	Body *Block
	tok  *Token
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Token() *Token { return s.tok }

type ForStmt struct {
	Var      string
	Iterable Expression
	Body     *Block
	tok      *Token
}

func (s *ForStmt) stmtNode()     {}
func (s *ForStmt) Token() *Token { return s.tok }

type BreakStmt struct {
	tok *Token
}

func (s *BreakStmt) stmtNode()     {}
func (s *BreakStmt) Token() *Token { return s.tok }

type ContinueStmt struct {
	tok *Token
}

func (s *ContinueStmt) stmtNode()     {}
func (s *ContinueStmt) Token() *Token { return s.tok }

// ReturnStmt with a nil Value returns nil.
type ReturnStmt struct {
	Value Expression
	tok   *Token
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Token() *Token { return s.tok }

type ImportStmt struct {
	URI   string
	Alias string
	tok   *Token
}

func (s *ImportStmt) stmtNode()     {}
func (s *ImportStmt) Token() *Token { return s.tok }
