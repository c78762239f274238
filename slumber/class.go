package slumber

import "fmt"

// MakeClass builds a class with at most one base. With no bases the
// class derives from Object. Creating a subclass makes the base
// non-leaf, which freezes its method table.
func (rt *Runtime) MakeClass(name string, bases []*Object, instantiable bool) (*Object, error) {
	if len(bases) == 0 {
		bases = []*Object{rt.ObjectClass}
	}
	return rt.makeClass(name, bases, instantiable)
}

func (rt *Runtime) makeClass(name string, bases []*Object, instantiable bool) (*Object, error) {
	if len(bases) > 1 {
		return nil, Errorf("Multiple inheritance is not yet supported")
	}
	info := &ClassInfo{
		Name:         name,
		Methods:      make(map[string]NativeMethod),
		Instantiable: instantiable,
		IsLeaf:       true,
		rt:           rt,
	}
	cls := newObject(rt.MetaClass, nil, info)
	info.MRO = []*Object{cls}
	for _, base := range bases {
		baseInfo := base.ClassInfo()
		if baseInfo == nil {
			return nil, Errorf("Base classes must be \"Class\" objects but found %s", base.ClassName())
		}
		baseInfo.IsLeaf = false
		info.Bases = append(info.Bases, base)
		info.MRO = append(info.MRO, baseInfo.MRO...)
	}
	return cls, nil
}

func (rt *Runtime) mustMakeClass(name string, bases []*Object, instantiable bool) *Object {
	cls, err := rt.makeClass(name, bases, instantiable)
	if err != nil {
		panic(err)
	}
	return cls
}

// AddMethod registers fn in cls's method table. fn must be a
// NativeMethod or a func with the same (self, args) signature. Classes
// that already have subclasses reject new methods.
func AddMethod(cls *Object, name string, fn any) error {
	info := cls.ClassInfo()
	if info == nil {
		return Errorf("Expected Class but found %s", cls.ClassName())
	}
	if !info.IsLeaf {
		return Errorf("You cannot add a method to a class that already has subclasses (%s.%s)", info.Name, name)
	}
	if name == "" {
		return Errorf("Method names must be a non-empty string (%s)", info.Name)
	}
	var method NativeMethod
	switch f := fn.(type) {
	case NativeMethod:
		method = f
	case func(*Object, []*Object) (*Object, error):
		method = f
	default:
		return Errorf("Native method %s.%s must accept (self, args) but found %T", info.Name, name, fn)
	}
	if method == nil {
		return Errorf("Native method %s.%s is nil", info.Name, name)
	}
	info.Methods[name] = method
	return nil
}

func mustAddMethod(cls *Object, name string, fn NativeMethod) {
	if err := AddMethod(cls, name, fn); err != nil {
		panic(fmt.Sprintf("slumber: register %s: %v", name, err))
	}
}

// CheckArgs requires exactly n arguments.
func CheckArgs(args []*Object, n int) error {
	if len(args) != n {
		return Errorf("Expected %d args but got %d", n, len(args))
	}
	return nil
}

func CheckArgsRange(args []*Object, min, max int) error {
	if len(args) < min || len(args) > max {
		return Errorf("Expected %d to %d args but got %d", min, max, len(args))
	}
	return nil
}

func CheckArgsMin(args []*Object, min int) error {
	if len(args) < min {
		return Errorf("Expected at least %d args but got %d", min, len(args))
	}
	return nil
}

// CheckType requires arg to be an instance of cls. An optional message
// is appended to the error.
func CheckType(arg *Object, cls *Object, message ...string) error {
	if arg.IsA(cls) {
		return nil
	}
	suffix := ""
	if len(message) > 0 && message[0] != "" {
		suffix = ": " + message[0]
	}
	return Errorf("Expected %s but found %s%s", cls.ClassInfo().Name, arg.ClassName(), suffix)
}
