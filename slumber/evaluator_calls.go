package slumber

// bindArguments binds required names, then optional names while
// arguments remain (nil after that), then the variadic rest as a List.
func (rt *Runtime) bindArguments(scope *Scope, params *ArgumentList, args []*Object) error {
	required := len(params.Args)
	switch {
	case params.HasVarArg():
		if err := CheckArgsMin(args, required); err != nil {
			return err
		}
	case len(params.OptArgs) > 0:
		if err := CheckArgsRange(args, required, required+len(params.OptArgs)); err != nil {
			return err
		}
	default:
		if err := CheckArgs(args, required); err != nil {
			return err
		}
	}
	i := 0
	for ; i < required; i++ {
		scope.Define(params.Args[i], args[i])
	}
	for _, name := range params.OptArgs {
		if i < len(args) {
			scope.Define(name, args[i])
			i++
			continue
		}
		scope.Define(name, rt.Nil)
	}
	if params.HasVarArg() {
		rest := append([]*Object(nil), args[i:]...)
		scope.Define(params.VarArg, rt.NewList(rest))
	}
	return nil
}

// invoke binds args into the callee frame and either runs body to
// completion or, for generator frames, returns an Iterator over it.
func (f *frame) invoke(params *ArgumentList, args []*Object, body Node) (*Object, error) {
	if err := f.rt.bindArguments(f.scope, params, args); err != nil {
		return nil, err
	}
	if f.generator {
		return f.rt.newGenerator(f, body), nil
	}
	if err := f.rt.enterCall(); err != nil {
		return nil, err
	}
	defer f.rt.leaveCall()
	return f.eval(body)
}

func (f *frame) makeFunction(s *FunctionStmt) *Object {
	scope := f.scope
	return f.rt.NewFunction(s.Name, func(_ *Object, args []*Object) (*Object, error) {
		callee := &frame{rt: f.rt, scope: scope.NewChild(), generator: s.IsGenerator}
		return callee.invoke(s.Args, args, s.Body)
	})
}

// makeLambda closes over the defining scope. Inside a method the
// lambda also sees the method's self.
func (f *frame) makeLambda(e *LambdaExpr) *Object {
	scope, method, self, owner := f.scope, f.method, f.self, f.owner
	return f.rt.NewFunction("<lambda>", func(_ *Object, args []*Object) (*Object, error) {
		callee := &frame{rt: f.rt, scope: scope.NewChild(), method: method, self: self, owner: owner}
		return callee.invoke(e.Args, args, e.Body)
	})
}

func (f *frame) evalFunctionStmt(s *FunctionStmt) (*Object, error) {
	if s.Async {
		return nil, runtimeErrorf(s.tok, "Async functions are not yet supported")
	}
	fn := f.makeFunction(s)
	if len(s.Decorators) > 0 {
		if !f.rt.config.ApplyDecorators {
			f.rt.log.Warningf("decorators on %s at %s:%d are not applied", s.Name, s.tok.Source.URI, s.tok.Line())
		} else {
			for i := len(s.Decorators) - 1; i >= 0; i-- {
				dn := s.Decorators[i]
				decorator, err := f.eval(dn)
				if err != nil {
					return nil, err
				}
				wrapped := fn
				fn, err = f.callWithTrace(dn.Token(), func() (*Object, error) {
					return decorator.CallMethod("__call", []*Object{wrapped})
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}
	f.scope.Define(s.Name, fn)
	return fn, nil
}

func (f *frame) evalClassStmt(s *ClassStmt) (*Object, error) {
	bases := make([]*Object, 0, len(s.Bases))
	for _, expr := range s.Bases {
		base, err := f.eval(expr)
		if err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}
	cls, err := f.callWithTrace(s.tok, func() (*Object, error) {
		return f.rt.MakeClass(s.Name, bases, true)
	})
	if err != nil {
		return nil, err
	}
	scope := f.scope
	for _, m := range s.Methods {
		if len(m.Decorators) > 0 {
			return nil, runtimeErrorf(m.tok, "Decorators on methods not yet supported")
		}
		if m.Async {
			return nil, runtimeErrorf(m.tok, "Async methods not yet supported")
		}
		m := m
		method := func(self *Object, args []*Object) (*Object, error) {
			callee := &frame{
				rt:        f.rt,
				scope:     scope.NewChild(),
				generator: m.IsGenerator,
				method:    true,
				self:      self,
				owner:     cls,
			}
			return callee.invoke(m.Args, args, m.Body)
		}
		if err := AddMethod(cls, m.Name, NativeMethod(method)); err != nil {
			return nil, wrapError(err, m.tok)
		}
	}
	f.scope.Define(s.Name, cls)
	return cls, nil
}
