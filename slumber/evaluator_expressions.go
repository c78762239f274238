package slumber

func (f *frame) evalExpression(expr Expression) (*Object, error) {
	switch e := expr.(type) {
	case *NumberLiteral:
		return f.rt.NewNumber(e.Value), nil
	case *StringLiteral:
		return f.rt.NewString(e.Value), nil
	case *Name:
		value, ok := f.scope.Get(e.Name)
		if !ok {
			return nil, runtimeErrorf(e.tok, "Variable %q never set", e.Name)
		}
		return value, nil
	case *SelfExpr:
		if !f.method {
			return nil, runtimeErrorf(e.tok, "You can't use 'self' from a non-method")
		}
		return f.self, nil
	case *SimpleAssignment:
		value, err := f.eval(e.Value)
		if err != nil {
			return nil, err
		}
		f.scope.Assign(e.Name, value)
		return value, nil
	case *ListDisplay:
		items, err := f.evalArgs(e.Items)
		if err != nil {
			return nil, err
		}
		return f.rt.NewList(items), nil
	case *GetAttribute:
		owner, err := f.eval(e.Owner)
		if err != nil {
			return nil, err
		}
		return f.callWithTrace(e.tok, func() (*Object, error) {
			return owner.GetAttr(e.Name)
		})
	case *SetAttribute:
		owner, err := f.eval(e.Owner)
		if err != nil {
			return nil, err
		}
		value, err := f.eval(e.Value)
		if err != nil {
			return nil, err
		}
		return f.callWithTrace(e.tok, func() (*Object, error) {
			return value, owner.SetAttr(e.Name, value)
		})
	case *MethodCall:
		owner, err := f.eval(e.Owner)
		if err != nil {
			return nil, err
		}
		args, err := f.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		return f.callWithTrace(e.tok, func() (*Object, error) {
			return owner.CallMethod(e.Name, args)
		})
	case *SuperMethodCall:
		if !f.method {
			return nil, runtimeErrorf(e.tok, "You can only call super methods from inside a method")
		}
		args, err := f.evalArgs(e.Args)
		if err != nil {
			return nil, err
		}
		return f.callWithTrace(e.tok, func() (*Object, error) {
			return f.self.callSuper(f.owner, e.Name, args)
		})
	case *NotExpr:
		ok, err := f.truthy(e.Expr)
		if err != nil {
			return nil, err
		}
		return f.rt.NewBool(!ok), nil
	case *AndExpr:
		return f.evalShortCircuit(e.Left, e.Right, false)
	case *OrExpr:
		return f.evalShortCircuit(e.Left, e.Right, true)
	case *TernaryExpr:
		ok, err := f.truthy(e.Cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return f.eval(e.IfTrue)
		}
		return f.eval(e.IfFalse)
	case *LambdaExpr:
		return f.makeLambda(e), nil
	case *YieldExpr:
		return f.evalYield(e)
	case *YieldStarExpr:
		return f.evalYieldStar(e)
	default:
		return nil, runtimeErrorf(expr.Token(), "unsupported expression %T", expr)
	}
}

// evalShortCircuit returns the left operand when its truthiness settles
// the result (true for 'or', false for 'and'), else the right operand.
func (f *frame) evalShortCircuit(left, right Expression, settleOn bool) (*Object, error) {
	value, err := f.eval(left)
	if err != nil {
		return nil, err
	}
	ok, err := f.callWithTrace(left.Token(), func() (*Object, error) {
		truthy, err := value.Truthy()
		return f.rt.NewBool(truthy), err
	})
	if err != nil {
		return nil, err
	}
	if (ok == f.rt.True) == settleOn {
		return value, nil
	}
	return f.eval(right)
}

// evalArgs evaluates call arguments in order and splices the splat
// argument's items onto the end.
func (f *frame) evalArgs(list *ExpressionList) ([]*Object, error) {
	args := make([]*Object, 0, len(list.Exprs))
	for _, expr := range list.Exprs {
		value, err := f.eval(expr)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	if list.VarArg == nil {
		return args, nil
	}
	splat, err := f.eval(list.VarArg)
	if err != nil {
		return nil, err
	}
	_, err = f.callWithTrace(list.VarArg.Token(), func() (*Object, error) {
		return nil, f.rt.iterate(splat, func(x *Object) error {
			args = append(args, x)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return args, nil
}
