package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgomes/slumber/slumber"
)

type lintWarning struct {
	Function string
	Tok      *slumber.Token
	Message  string
}

type linter struct {
	function        string
	generator       bool
	applyDecorators bool
	warnings        []lintWarning
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("slumber analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	cfg, err := findConfig(filepath.Dir(scriptPath))
	if err != nil {
		return err
	}

	file, err := slumber.Parse(slumber.NewSource(scriptPath, string(input)))
	if err != nil {
		return fmt.Errorf("analysis compile failed: %w", err)
	}

	warnings := analyzeFile(file, cfg.Run.ApplyDecorators)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		line := max(warning.Tok.Line(), 1)
		column := max(warning.Tok.Column(), 1)
		fmt.Printf("%s:%d:%d: %s (%s)\n", scriptPath, line, column, warning.Message, warning.Function)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func analyzeFile(file *slumber.FileInput, applyDecorators bool) []lintWarning {
	l := &linter{function: "<module>", applyDecorators: applyDecorators}
	l.statements(file.Statements)

	warnings := l.warnings
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Tok.Pos != warnings[j].Tok.Pos {
			return warnings[i].Tok.Pos < warnings[j].Tok.Pos
		}
		return warnings[i].Function < warnings[j].Function
	})
	return warnings
}

func (l *linter) warn(tok *slumber.Token, format string, args ...any) {
	l.warnings = append(l.warnings, lintWarning{
		Function: l.function,
		Tok:      tok,
		Message:  fmt.Sprintf(format, args...),
	})
}

// statements lints a statement list and reports whether it always
// leaves through return, break or continue.
func (l *linter) statements(stmts []slumber.Statement) bool {
	terminated := false
	for _, stmt := range stmts {
		if terminated {
			l.warn(stmt.Token(), "unreachable statement")
			continue
		}
		if l.statement(stmt) {
			terminated = true
		}
	}
	return terminated
}

func (l *linter) block(b *slumber.Block) bool {
	if b == nil {
		return false
	}
	return l.statements(b.Statements)
}

func (l *linter) statement(stmt slumber.Statement) bool {
	switch s := stmt.(type) {
	case *slumber.ReturnStmt:
		if s.Value != nil {
			l.expr(s.Value)
		}
		return true
	case *slumber.BreakStmt, *slumber.ContinueStmt:
		return true
	case *slumber.ExprStmt:
		l.expr(s.Expr)
	case *slumber.IfStmt:
		all := s.Else != nil
		for i, cond := range s.Conds {
			l.expr(cond)
			if !l.block(s.Bodies[i]) {
				all = false
			}
		}
		if s.Else != nil && !l.block(s.Else) {
			all = false
		}
		return all
	case *slumber.WhileStmt:
		l.expr(s.Cond)
		l.block(s.Body)
	case *slumber.ForStmt:
		l.expr(s.Iterable)
		l.block(s.Body)
	case *slumber.SyncStmt:
		return l.block(s.Body)
	case *slumber.FunctionStmt:
		l.lintFunction(s, s.Name)
	case *slumber.ClassStmt:
		for _, base := range s.Bases {
			l.expr(base)
		}
		for _, m := range s.Methods {
			l.lintFunction(m, s.Name+"."+m.Name)
		}
	}
	return false
}

func (l *linter) lintFunction(fn *slumber.FunctionStmt, name string) {
	if len(fn.Decorators) > 0 && !l.applyDecorators {
		l.warn(fn.Token(), "decorator on %s is ignored", fn.Name)
	}
	outerName, outerGen := l.function, l.generator
	l.function, l.generator = name, fn.IsGenerator
	l.block(fn.Body)
	l.function, l.generator = outerName, outerGen
}

func (l *linter) expr(e slumber.Expression) {
	switch x := e.(type) {
	case *slumber.YieldExpr:
		if !l.generator {
			l.warn(x.Token(), "yield outside a generator function")
		}
		if x.Value != nil {
			l.expr(x.Value)
		}
	case *slumber.YieldStarExpr:
		if !l.generator {
			l.warn(x.Token(), "yield* outside a generator function")
		}
		l.expr(x.Iterable)
	case *slumber.SimpleAssignment:
		l.expr(x.Value)
	case *slumber.ListDisplay:
		l.exprList(x.Items)
	case *slumber.GetAttribute:
		l.expr(x.Owner)
	case *slumber.SetAttribute:
		l.expr(x.Owner)
		l.expr(x.Value)
	case *slumber.MethodCall:
		l.expr(x.Owner)
		l.exprList(x.Args)
	case *slumber.SuperMethodCall:
		l.exprList(x.Args)
	case *slumber.NotExpr:
		l.expr(x.Expr)
	case *slumber.AndExpr:
		l.expr(x.Left)
		l.expr(x.Right)
	case *slumber.OrExpr:
		l.expr(x.Left)
		l.expr(x.Right)
	case *slumber.TernaryExpr:
		l.expr(x.Cond)
		l.expr(x.IfTrue)
		l.expr(x.IfFalse)
	case *slumber.LambdaExpr:
		outerName, outerGen := l.function, l.generator
		l.function, l.generator = "<lambda>", false
		l.expr(x.Body)
		l.function, l.generator = outerName, outerGen
	}
}

func (l *linter) exprList(list *slumber.ExpressionList) {
	if list == nil {
		return
	}
	for _, e := range list.Exprs {
		l.expr(e)
	}
	if list.VarArg != nil {
		l.expr(list.VarArg)
	}
}
