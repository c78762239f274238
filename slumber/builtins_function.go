package slumber

func (rt *Runtime) NewFunction(name string, fn NativeMethod) *Object {
	return newObject(rt.FunctionClass, nil, &FunctionInfo{Name: name, Fn: fn})
}

func (rt *Runtime) functionArg(arg *Object) (*FunctionInfo, error) {
	if err := CheckType(arg, rt.FunctionClass); err != nil {
		return nil, err
	}
	info, ok := arg.Dat.(*FunctionInfo)
	if !ok {
		return nil, Errorf("Function has no body")
	}
	return info, nil
}

func (rt *Runtime) registerFunction(root []*Object) {
	rt.FunctionClass = rt.mustMakeClass("Function", root, false)
	mustAddMethod(rt.FunctionClass, "__call", func(self *Object, args []*Object) (*Object, error) {
		info, err := rt.functionArg(self)
		if err != nil {
			return nil, err
		}
		return info.Fn(self, args)
	})
	mustAddMethod(rt.FunctionClass, "getName", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		info, err := rt.functionArg(self)
		if err != nil {
			return nil, err
		}
		return rt.NewString(info.Name), nil
	})
}

func (rt *Runtime) newModule(uri string, scope *Scope) *Object {
	attrs := make(map[string]*Object, len(scope.values))
	for name, val := range scope.values {
		attrs[name] = val
	}
	return newObject(rt.ModuleClass, attrs, &moduleInfo{uri: uri})
}

// ModuleURI returns the uri a Module was run from.
func ModuleURI(module *Object) string {
	if info, ok := module.Dat.(*moduleInfo); ok {
		return info.uri
	}
	return ""
}

func (rt *Runtime) registerModule(root []*Object) {
	rt.ModuleClass = rt.mustMakeClass("Module", root, false)
	mustAddMethod(rt.ModuleClass, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewString("<Module " + ModuleURI(self) + ">"), nil
	})
}
