package slumber

import (
	"fmt"
	"sort"
	"sync/atomic"
)

var objectIDs atomic.Int64

// NativeMethod is the calling convention for every method in a class
// method table and for every function body.
type NativeMethod func(self *Object, args []*Object) (*Object, error)

// Object is a value of the language. attrs is nil for objects that do
// not carry attributes (the builtin wrapper types and classes).
type Object struct {
	class   *Object
	attrs   map[string]*Object
	growing bool
	Dat     any
	id      int64
}

func newObject(class *Object, attrs map[string]*Object, dat any) *Object {
	return &Object{class: class, attrs: attrs, Dat: dat, id: objectIDs.Add(1)}
}

// ClassInfo is the payload of a class object.
type ClassInfo struct {
	Name         string
	Methods      map[string]NativeMethod
	Bases        []*Object
	MRO          []*Object
	Instantiable bool
	IsLeaf       bool

	maker func(args []*Object) (*Object, error)
	rt    *Runtime
}

// FunctionInfo is the payload of a Function object.
type FunctionInfo struct {
	Name string
	Fn   NativeMethod
}

type moduleInfo struct {
	uri string
}

func (o *Object) Class() *Object { return o.class }

func (o *Object) ID() int64 { return o.id }

func (o *Object) classInfo() *ClassInfo {
	return o.class.Dat.(*ClassInfo)
}

// ClassInfo returns the payload of a class object, or nil when o is not
// a class.
func (o *Object) ClassInfo() *ClassInfo {
	info, _ := o.Dat.(*ClassInfo)
	return info
}

func (o *Object) runtime() *Runtime {
	return o.classInfo().rt
}

func (o *Object) ClassName() string {
	return o.classInfo().Name
}

// IsA reports whether cls appears in the MRO of o's class.
func (o *Object) IsA(cls *Object) bool {
	for _, c := range o.classInfo().MRO {
		if c == cls {
			return true
		}
	}
	return false
}

// CallMethod dispatches name through the MRO of o's class. Modules
// dispatch to a bound function of the same name first.
func (o *Object) CallMethod(name string, args []*Object) (*Object, error) {
	rt := o.runtime()
	if o.class == rt.ModuleClass {
		if fn, ok := o.attrs[name]; ok {
			return fn.CallMethod("__call", args)
		}
	}
	return o.callFrom(name, args, 0)
}

func (o *Object) callFrom(name string, args []*Object, start int) (*Object, error) {
	mro := o.classInfo().MRO
	for i := start; i < len(mro); i++ {
		if method, ok := mro[i].Dat.(*ClassInfo).Methods[name]; ok {
			result, err := method(o, args)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = o.runtime().Nil
			}
			return result, nil
		}
	}
	return nil, Errorf("No method %q for class %s", name, o.ClassName())
}

// callSuper looks name up starting just past owner in o's MRO.
func (o *Object) callSuper(owner *Object, name string, args []*Object) (*Object, error) {
	mro := o.classInfo().MRO
	for i, cls := range mro {
		if cls == owner {
			return o.callFrom(name, args, i+1)
		}
	}
	return nil, Errorf("Class %s is not in the MRO of %s", owner.ClassInfo().Name, o.ClassName())
}

func (o *Object) HasAttr(name string) bool {
	_, ok := o.attrs[name]
	return ok
}

func (o *Object) GetAttr(name string) (*Object, error) {
	if o.attrs == nil {
		return nil, Errorf("Tried to get attribute on non-gettable object (key = %s)", name)
	}
	val, ok := o.attrs[name]
	if !ok {
		return nil, Errorf("No such attribute %s for class %s", name, o.ClassName())
	}
	return val, nil
}

// SetAttr updates an attribute. New attributes can only be introduced
// while the object's __init is running.
func (o *Object) SetAttr(name string, val *Object) error {
	if o.attrs == nil {
		return Errorf("Tried to set attribute on non-settable object (key = %s)", name)
	}
	if _, ok := o.attrs[name]; !ok && !o.growing {
		return Errorf("No such attribute %s for class %s (You can't set new attributes once you exit __init)", name, o.ClassName())
	}
	o.attrs[name] = val
	return nil
}

// AttrNames lists o's attribute names, sorted.
func (o *Object) AttrNames() []string {
	names := make([]string, 0, len(o.attrs))
	for name := range o.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *Object) Truthy() (bool, error) {
	b, err := o.CallMethod("__bool", nil)
	if err != nil {
		return false, err
	}
	if err := CheckType(b, o.runtime().BoolClass); err != nil {
		return false, err
	}
	return b.Dat.(bool), nil
}

// Str returns the text of o's __str method.
func (o *Object) Str() (string, error) {
	return o.textOf("__str")
}

func (o *Object) Repr() (string, error) {
	return o.textOf("__repr")
}

func (o *Object) textOf(method string) (string, error) {
	s, err := o.CallMethod(method, nil)
	if err != nil {
		return "", err
	}
	text, ok := s.Dat.(string)
	if !ok || !s.IsA(o.runtime().StringClass) {
		return "", Errorf("%s returned a non-string value: %s", method, s.ClassName())
	}
	return text, nil
}

// String renders o for host-side display, falling back to its class
// and id when __str fails.
func (o *Object) String() string {
	s, err := o.Str()
	if err != nil {
		return fmt.Sprintf("<%s id=%d>", o.ClassName(), o.id)
	}
	return s
}
