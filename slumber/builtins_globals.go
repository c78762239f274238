package slumber

import (
	"context"
	"errors"
)

func (rt *Runtime) registerGlobals() {
	g := rt.globals
	for _, cls := range []*Object{
		rt.MetaClass, rt.ObjectClass, rt.NilClass, rt.BoolClass, rt.NumberClass,
		rt.StringClass, rt.ListClass, rt.FunctionClass, rt.IteratorClass, rt.ModuleClass,
	} {
		g.Define(cls.ClassInfo().Name, cls)
	}
	g.Define("nil", rt.Nil)
	g.Define("true", rt.True)
	g.Define("false", rt.False)

	rt.RegisterFunction("print", rt.builtinPrint)
	rt.RegisterFunction("assert", rt.builtinAssert)
	rt.RegisterFunction("assertRaise", rt.builtinAssertRaise)
	rt.RegisterFunction("_addMethodTo", rt.builtinAddMethodTo)
}

// RegisterFunction binds a native function in the global scope.
func (rt *Runtime) RegisterFunction(name string, fn NativeMethod) {
	rt.globals.Define(name, rt.NewFunction(name, fn))
}

func (rt *Runtime) builtinPrint(_ *Object, args []*Object) (*Object, error) {
	if err := CheckArgs(args, 1); err != nil {
		return nil, err
	}
	text, err := args[0].Str()
	if err != nil {
		return nil, err
	}
	rt.config.Print(text)
	return nil, nil
}

func (rt *Runtime) builtinAssert(_ *Object, args []*Object) (*Object, error) {
	if err := CheckArgsRange(args, 1, 2); err != nil {
		return nil, err
	}
	ok, err := args[0].Truthy()
	if err != nil || ok {
		return nil, err
	}
	message := "assertion error"
	if len(args) == 2 {
		if message, err = args[1].Str(); err != nil {
			return nil, err
		}
	}
	return nil, newError(ErrorTypeAssertion, nil, "%s", message)
}

// builtinAssertRaise fails unless calling its argument fails. Quota,
// recursion and cancellation errors are never swallowed.
func (rt *Runtime) builtinAssertRaise(_ *Object, args []*Object) (*Object, error) {
	if err := CheckArgsRange(args, 1, 2); err != nil {
		return nil, err
	}
	if err := CheckType(args[0], rt.FunctionClass); err != nil {
		return nil, err
	}
	_, err := args[0].CallMethod("__call", nil)
	if err == nil {
		message := "Expected an error"
		if len(args) == 2 {
			if message, err = args[1].Str(); err != nil {
				return nil, err
			}
		}
		return nil, newError(ErrorTypeAssertion, nil, "%s", message)
	}
	if isAbort(err) {
		return nil, err
	}
	return nil, nil
}

func isAbort(err error) bool {
	return errors.Is(err, ErrStepQuotaExceeded) ||
		errors.Is(err, ErrRecursionLimit) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, errGeneratorClosed)
}

// builtinAddMethodTo returns a decorator that installs a function as a
// method of the given class.
func (rt *Runtime) builtinAddMethodTo(_ *Object, args []*Object) (*Object, error) {
	if err := CheckArgs(args, 1); err != nil {
		return nil, err
	}
	if err := CheckType(args[0], rt.MetaClass); err != nil {
		return nil, err
	}
	cls := args[0]
	return rt.NewFunction("addMethodToWrapper", func(_ *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		fn, err := rt.functionArg(args[0])
		if err != nil {
			return nil, err
		}
		if err := AddMethod(cls, fn.Name, fn.Fn); err != nil {
			return nil, err
		}
		return args[0], nil
	}), nil
}
