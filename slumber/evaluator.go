package slumber

// frame is the evaluation state of one function, method, lambda or
// module body.
type frame struct {
	rt    *Runtime
	scope *Scope

	breakFlag    bool
	continueFlag bool
	returnFlag   bool

	generator bool
	gen       *generator

	method bool
	self   *Object
	owner  *Object
}

func (f *frame) controlFlowSet() bool {
	return f.breakFlag || f.continueFlag || f.returnFlag
}

func (f *frame) eval(node Node) (*Object, error) {
	if err := f.rt.step(); err != nil {
		return nil, wrapError(err, node.Token())
	}
	switch n := node.(type) {
	case *FileInput:
		return f.evalStatements(n.Statements)
	case *Block:
		return f.evalStatements(n.Statements)
	case Statement:
		return f.evalStatement(n)
	case Expression:
		return f.evalExpression(n)
	default:
		return nil, runtimeErrorf(node.Token(), "unsupported node %T", node)
	}
}

// evalStatements stops at the first statement that sets a control flow
// flag and returns that statement's value. A block that runs off its
// end evaluates to nil.
func (f *frame) evalStatements(stmts []Statement) (*Object, error) {
	for _, stmt := range stmts {
		value, err := f.eval(stmt)
		if err != nil {
			return nil, err
		}
		if f.controlFlowSet() {
			return value, nil
		}
	}
	return f.rt.Nil, nil
}

func (f *frame) evalStatement(stmt Statement) (*Object, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		if _, err := f.eval(s.Expr); err != nil {
			return nil, err
		}
		return f.rt.Nil, nil
	case *PassStmt:
		return f.rt.Nil, nil
	case *SyncStmt:
		return f.eval(s.Body)
	case *IfStmt:
		return f.evalIf(s)
	case *WhileStmt:
		return f.evalWhile(s)
	case *ForStmt:
		return f.evalFor(s)
	case *BreakStmt:
		f.breakFlag = true
		return f.rt.Nil, nil
	case *ContinueStmt:
		f.continueFlag = true
		return f.rt.Nil, nil
	case *ReturnStmt:
		value := f.rt.Nil
		if s.Value != nil {
			var err error
			if value, err = f.eval(s.Value); err != nil {
				return nil, err
			}
		}
		f.returnFlag = true
		return value, nil
	case *ImportStmt:
		return f.evalImport(s)
	case *FunctionStmt:
		return f.evalFunctionStmt(s)
	case *ClassStmt:
		return f.evalClassStmt(s)
	default:
		return nil, runtimeErrorf(stmt.Token(), "unsupported statement %T", stmt)
	}
}

func (f *frame) truthy(expr Expression) (bool, error) {
	value, err := f.eval(expr)
	if err != nil {
		return false, err
	}
	var ok bool
	_, err = f.callWithTrace(expr.Token(), func() (*Object, error) {
		var err error
		ok, err = value.Truthy()
		return nil, err
	})
	return ok, err
}

func (f *frame) evalIf(s *IfStmt) (*Object, error) {
	for i, cond := range s.Conds {
		ok, err := f.truthy(cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return f.eval(s.Bodies[i])
		}
	}
	if s.Else != nil {
		return f.eval(s.Else)
	}
	return f.rt.Nil, nil
}

// loopBody runs one iteration and reports whether the loop should
// stop. break and continue are consumed here; return propagates.
func (f *frame) loopBody(body *Block) (value *Object, stop bool, err error) {
	value, err = f.eval(body)
	if err != nil {
		return nil, true, err
	}
	switch {
	case f.breakFlag:
		f.breakFlag = false
		return f.rt.Nil, true, nil
	case f.continueFlag:
		f.continueFlag = false
	case f.returnFlag:
		return value, true, nil
	}
	return value, false, nil
}

func (f *frame) evalWhile(s *WhileStmt) (*Object, error) {
	for {
		ok, err := f.truthy(s.Cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			return f.rt.Nil, nil
		}
		value, stop, err := f.loopBody(s.Body)
		if stop || err != nil {
			return value, err
		}
	}
}

func (f *frame) evalFor(s *ForStmt) (*Object, error) {
	iterable, err := f.eval(s.Iterable)
	if err != nil {
		return nil, err
	}
	tok := s.Iterable.Token()
	iter, err := f.callWithTrace(tok, func() (*Object, error) {
		return iterable.CallMethod("__iter", nil)
	})
	if err != nil {
		return nil, err
	}
	for {
		more, err := f.callWithTrace(tok, func() (*Object, error) {
			more, err := iter.CallMethod("__more", nil)
			if err != nil {
				return nil, err
			}
			ok, err := more.Truthy()
			return f.rt.NewBool(ok), err
		})
		if err != nil {
			return nil, err
		}
		if more == f.rt.False {
			return f.rt.Nil, nil
		}
		item, err := f.callWithTrace(tok, func() (*Object, error) {
			return iter.CallMethod("__next", nil)
		})
		if err != nil {
			return nil, err
		}
		f.scope.Assign(s.Var, item)
		value, stop, err := f.loopBody(s.Body)
		if stop || err != nil {
			return value, err
		}
	}
}

func (f *frame) evalImport(s *ImportStmt) (*Object, error) {
	if f.rt.config.Loader == nil {
		f.rt.log.Debugf("no loader configured, skipping import %q", s.URI)
		return f.rt.Nil, nil
	}
	module, err := f.callWithTrace(s.tok, func() (*Object, error) {
		return f.rt.importModule(s.URI)
	})
	if err != nil {
		return nil, err
	}
	f.scope.Define(s.Alias, module)
	return f.rt.Nil, nil
}

// callWithTrace runs call and records tok on any error that escapes
// it. Panics from native code become HostErrors.
func (f *frame) callWithTrace(tok *Token, call func() (*Object, error)) (result *Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, wrapPanic(r, tok)
		}
	}()
	result, err = call()
	if err != nil {
		return nil, wrapError(err, tok)
	}
	if result == nil {
		result = f.rt.Nil
	}
	return result, nil
}
