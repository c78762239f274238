package slumber

// iteratorSource is a pull-based sequence. resume hands v to the point
// where the sequence last paused and reports the next value, or done
// together with the sequence's final result.
type iteratorSource interface {
	resume(v *Object) (value *Object, done bool, err error)
}

// Iterator adapts an iteratorSource to the __more/__next protocol by
// always holding the next pending value.
type Iterator struct {
	src    iteratorSource
	primed bool
	value  *Object
	done   bool
}

func (rt *Runtime) newIterator(src iteratorSource) *Object {
	return newObject(rt.IteratorClass, nil, &Iterator{src: src})
}

func (it *Iterator) prime(rt *Runtime) error {
	if it.primed {
		return nil
	}
	it.primed = true
	return it.advance(rt, rt.Nil)
}

func (it *Iterator) advance(rt *Runtime, v *Object) error {
	value, done, err := it.src.resume(v)
	if err != nil {
		it.value, it.done = rt.Nil, true
		return err
	}
	if value == nil {
		value = rt.Nil
	}
	it.value, it.done = value, done
	return nil
}

type sliceSource struct {
	rt    *Runtime
	items []*Object
	next  int
}

func (s *sliceSource) resume(*Object) (*Object, bool, error) {
	if s.next >= len(s.items) {
		return s.rt.Nil, true, nil
	}
	item := s.items[s.next]
	s.next++
	return item, false, nil
}

func (rt *Runtime) iteratorArg(arg *Object) (*Iterator, error) {
	if err := CheckType(arg, rt.IteratorClass); err != nil {
		return nil, err
	}
	it, ok := arg.Dat.(*Iterator)
	if !ok {
		return nil, Errorf("Iterator has no source")
	}
	return it, nil
}

func (rt *Runtime) registerIterator(root []*Object) {
	rt.IteratorClass = rt.mustMakeClass("Iterator", root, false)
	cls := rt.IteratorClass
	mustAddMethod(cls, "__iter", func(self *Object, args []*Object) (*Object, error) {
		return self, CheckArgs(args, 0)
	})
	mustAddMethod(cls, "__more", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		it, err := rt.iteratorArg(self)
		if err != nil {
			return nil, err
		}
		if err := it.prime(rt); err != nil {
			return nil, err
		}
		return rt.NewBool(!it.done), nil
	})
	mustAddMethod(cls, "__next", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgsRange(args, 0, 1); err != nil {
			return nil, err
		}
		it, err := rt.iteratorArg(self)
		if err != nil {
			return nil, err
		}
		if err := it.prime(rt); err != nil {
			return nil, err
		}
		value := it.value
		if !it.done {
			resume := rt.Nil
			if len(args) == 1 {
				resume = args[0]
			}
			if err := it.advance(rt, resume); err != nil {
				return nil, err
			}
		}
		return value, nil
	})
}

// iterate drives obj through __iter, __more and __next, calling fn on
// each value.
func (rt *Runtime) iterate(obj *Object, fn func(*Object) error) error {
	iter, err := obj.CallMethod("__iter", nil)
	if err != nil {
		return err
	}
	for {
		more, err := iter.CallMethod("__more", nil)
		if err != nil {
			return err
		}
		ok, err := more.Truthy()
		if err != nil || !ok {
			return err
		}
		value, err := iter.CallMethod("__next", nil)
		if err != nil {
			return err
		}
		if err := fn(value); err != nil {
			return err
		}
	}
}
