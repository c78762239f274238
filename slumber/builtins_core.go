package slumber

import "fmt"

// bootstrap creates the metaclass, Object and the remaining builtin
// classes. Methods are registered on each class before it gains
// subclasses.
func (rt *Runtime) bootstrap() {
	metaInfo := &ClassInfo{
		Name:    "Class",
		Methods: make(map[string]NativeMethod),
		IsLeaf:  true,
		rt:      rt,
	}
	meta := &Object{Dat: metaInfo, id: objectIDs.Add(1)}
	meta.class = meta
	metaInfo.MRO = []*Object{meta}
	rt.MetaClass = meta
	rt.registerClassMethods()

	rt.ObjectClass = rt.mustMakeClass("Object", nil, false)
	rt.registerObjectMethods()
	metaInfo.Bases = []*Object{rt.ObjectClass}
	metaInfo.MRO = append(metaInfo.MRO, rt.ObjectClass)
	rt.ObjectClass.ClassInfo().IsLeaf = false

	root := []*Object{rt.ObjectClass}
	rt.NilClass = rt.mustMakeClass("Nil", root, false)
	rt.Nil = newObject(rt.NilClass, nil, nil)
	mustAddMethod(rt.NilClass, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewString("nil"), nil
	})
	mustAddMethod(rt.NilClass, "__bool", func(self *Object, args []*Object) (*Object, error) {
		return rt.False, CheckArgs(args, 0)
	})

	rt.BoolClass = rt.mustMakeClass("Bool", root, false)
	rt.True = newObject(rt.BoolClass, nil, true)
	rt.False = newObject(rt.BoolClass, nil, false)
	mustAddMethod(rt.BoolClass, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if self.Dat.(bool) {
			return rt.NewString("true"), nil
		}
		return rt.NewString("false"), nil
	})
	mustAddMethod(rt.BoolClass, "__bool", func(self *Object, args []*Object) (*Object, error) {
		return self, nil
	})

	rt.registerNumber(root)
	rt.registerString(root)
	rt.registerList(root)
	rt.registerFunction(root)
	rt.registerIterator(root)
	rt.registerModule(root)
}

func (rt *Runtime) registerClassMethods() {
	meta := rt.MetaClass
	mustAddMethod(meta, "__call", func(self *Object, args []*Object) (*Object, error) {
		info := self.ClassInfo()
		if info.maker != nil {
			return info.maker(args)
		}
		if !info.Instantiable {
			return nil, Errorf("Class %s is not instantiable", info.Name)
		}
		instance := newObject(self, make(map[string]*Object), nil)
		instance.growing = true
		if _, err := instance.CallMethod("__init", args); err != nil {
			return nil, err
		}
		instance.growing = false
		return instance, nil
	})
	mustAddMethod(meta, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewString("<Class " + self.ClassInfo().Name + ">"), nil
	})
	mustAddMethod(meta, "getMro", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewList(append([]*Object(nil), self.ClassInfo().MRO...)), nil
	})
	mustAddMethod(meta, "getName", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewString(self.ClassInfo().Name), nil
	})
}

func (rt *Runtime) registerObjectMethods() {
	object := rt.ObjectClass
	mustAddMethod(object, "__init", func(self *Object, args []*Object) (*Object, error) {
		return nil, CheckArgs(args, 0)
	})
	mustAddMethod(object, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		return rt.NewString(fmt.Sprintf("<%s id=%d>", self.ClassName(), self.id)), nil
	})
	mustAddMethod(object, "__str", func(self *Object, args []*Object) (*Object, error) {
		return self.CallMethod("__repr", args)
	})
	mustAddMethod(object, "__bool", func(self *Object, args []*Object) (*Object, error) {
		return rt.True, CheckArgs(args, 0)
	})
	mustAddMethod(object, "__eq", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		return rt.NewBool(self == args[0]), nil
	})
	mustAddMethod(object, "__ne", func(self *Object, args []*Object) (*Object, error) {
		return rt.negate(self.CallMethod("__eq", args))
	})
	mustAddMethod(object, "__gt", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		return args[0].CallMethod("__lt", []*Object{self})
	})
	mustAddMethod(object, "__ge", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		return rt.negate(self.CallMethod("__lt", args))
	})
	mustAddMethod(object, "__le", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		return rt.negate(args[0].CallMethod("__lt", []*Object{self}))
	})
}

func (rt *Runtime) negate(result *Object, err error) (*Object, error) {
	if err != nil {
		return nil, err
	}
	truthy, err := result.Truthy()
	if err != nil {
		return nil, err
	}
	return rt.NewBool(!truthy), nil
}

func (rt *Runtime) NewBool(b bool) *Object {
	if b {
		return rt.True
	}
	return rt.False
}
