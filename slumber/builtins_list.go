package slumber

import (
	"math"
	"strings"
)

// ListData is the payload of a List. Items is shared by every holder
// of the list object.
type ListData struct {
	Items []*Object
}

func (rt *Runtime) NewList(items []*Object) *Object {
	return newObject(rt.ListClass, nil, &ListData{Items: items})
}

func (rt *Runtime) listArg(arg *Object) (*ListData, error) {
	if err := CheckType(arg, rt.ListClass); err != nil {
		return nil, err
	}
	list, ok := arg.Dat.(*ListData)
	if !ok {
		return nil, Errorf("List has no item payload")
	}
	return list, nil
}

func (rt *Runtime) indexArg(list *ListData, arg *Object) (int, error) {
	f, err := rt.numberArg(arg)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 || f >= float64(len(list.Items)) {
		return 0, Errorf("Index %s out of range for List of length %d", formatNumber(f), len(list.Items))
	}
	return int(f), nil
}

func (rt *Runtime) registerList(root []*Object) {
	rt.ListClass = rt.mustMakeClass("List", root, false)
	cls := rt.ListClass
	cls.ClassInfo().maker = func(args []*Object) (*Object, error) {
		if err := CheckArgsRange(args, 0, 1); err != nil {
			return nil, err
		}
		var items []*Object
		if len(args) == 1 {
			err := rt.iterate(args[0], func(x *Object) error {
				items = append(items, x)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		return rt.NewList(items), nil
	}

	method := func(arity int, fn func(self *ListData, args []*Object) (*Object, error)) NativeMethod {
		return func(self *Object, args []*Object) (*Object, error) {
			if err := CheckArgs(args, arity); err != nil {
				return nil, err
			}
			list, err := rt.listArg(self)
			if err != nil {
				return nil, err
			}
			return fn(list, args)
		}
	}

	mustAddMethod(cls, "__len", method(0, func(list *ListData, _ []*Object) (*Object, error) {
		return rt.NewNumber(float64(len(list.Items))), nil
	}))
	mustAddMethod(cls, "__bool", method(0, func(list *ListData, _ []*Object) (*Object, error) {
		return rt.NewBool(len(list.Items) > 0), nil
	}))
	mustAddMethod(cls, "__repr", method(0, func(list *ListData, _ []*Object) (*Object, error) {
		parts := make([]string, len(list.Items))
		for i, item := range list.Items {
			s, err := item.Repr()
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return rt.NewString("[" + strings.Join(parts, ", ") + "]"), nil
	}))
	mustAddMethod(cls, "__eq", method(1, func(list *ListData, args []*Object) (*Object, error) {
		other, ok := args[0].Dat.(*ListData)
		if !ok || !args[0].IsA(cls) || len(other.Items) != len(list.Items) {
			return rt.False, nil
		}
		for i, item := range list.Items {
			eq, err := item.CallMethod("__eq", []*Object{other.Items[i]})
			if err != nil {
				return nil, err
			}
			truthy, err := eq.Truthy()
			if err != nil {
				return nil, err
			}
			if !truthy {
				return rt.False, nil
			}
		}
		return rt.True, nil
	}))
	mustAddMethod(cls, "__iter", method(0, func(list *ListData, _ []*Object) (*Object, error) {
		snapshot := append([]*Object(nil), list.Items...)
		return rt.newIterator(&sliceSource{rt: rt, items: snapshot}), nil
	}))
	mustAddMethod(cls, "__getitem", method(1, func(list *ListData, args []*Object) (*Object, error) {
		i, err := rt.indexArg(list, args[0])
		if err != nil {
			return nil, err
		}
		return list.Items[i], nil
	}))
	mustAddMethod(cls, "__setitem", method(2, func(list *ListData, args []*Object) (*Object, error) {
		i, err := rt.indexArg(list, args[0])
		if err != nil {
			return nil, err
		}
		list.Items[i] = args[1]
		return args[1], nil
	}))
	mustAddMethod(cls, "push", method(1, func(list *ListData, args []*Object) (*Object, error) {
		list.Items = append(list.Items, args[0])
		return nil, nil
	}))
}
