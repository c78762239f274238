package slumber

import (
	"math"
	"strconv"
)

func (rt *Runtime) NewNumber(f float64) *Object {
	return newObject(rt.NumberClass, nil, f)
}

// number builds a Number from an arithmetic result, rejecting NaN.
func (rt *Runtime) number(f float64) (*Object, error) {
	if math.IsNaN(f) {
		return nil, Errorf("Tried to make a NaN")
	}
	return rt.NewNumber(f), nil
}

func (rt *Runtime) numberArg(arg *Object) (float64, error) {
	if err := CheckType(arg, rt.NumberClass); err != nil {
		return 0, err
	}
	f, ok := arg.Dat.(float64)
	if !ok {
		return 0, Errorf("Number has no numeric payload")
	}
	return f, nil
}

func formatNumber(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (rt *Runtime) registerNumber(root []*Object) {
	rt.NumberClass = rt.mustMakeClass("Number", root, false)
	cls := rt.NumberClass

	arith := func(op func(a, b float64) float64) NativeMethod {
		return func(self *Object, args []*Object) (*Object, error) {
			if err := CheckArgs(args, 1); err != nil {
				return nil, err
			}
			a, err := rt.numberArg(self)
			if err != nil {
				return nil, err
			}
			b, err := rt.numberArg(args[0])
			if err != nil {
				return nil, err
			}
			return rt.number(op(a, b))
		}
	}
	mustAddMethod(cls, "__add", arith(func(a, b float64) float64 { return a + b }))
	mustAddMethod(cls, "__sub", arith(func(a, b float64) float64 { return a - b }))
	mustAddMethod(cls, "__mul", arith(func(a, b float64) float64 { return a * b }))
	mustAddMethod(cls, "__div", arith(func(a, b float64) float64 { return a / b }))
	mustAddMethod(cls, "__floordiv", arith(func(a, b float64) float64 { return math.Floor(a / b) }))
	mustAddMethod(cls, "__mod", arith(func(a, b float64) float64 {
		// result takes the sign of the divisor
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m
	}))
	mustAddMethod(cls, "__neg", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		f, err := rt.numberArg(self)
		if err != nil {
			return nil, err
		}
		return rt.NewNumber(-f), nil
	})
	mustAddMethod(cls, "__lt", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		a, err := rt.numberArg(self)
		if err != nil {
			return nil, err
		}
		b, err := rt.numberArg(args[0])
		if err != nil {
			return nil, err
		}
		return rt.NewBool(a < b), nil
	})
	mustAddMethod(cls, "__eq", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		a, _ := self.Dat.(float64)
		b, ok := args[0].Dat.(float64)
		return rt.NewBool(args[0].IsA(cls) && ok && a == b), nil
	})
	mustAddMethod(cls, "__repr", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		f, err := rt.numberArg(self)
		if err != nil {
			return nil, err
		}
		return rt.NewString(formatNumber(f)), nil
	})
	mustAddMethod(cls, "__bool", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 0); err != nil {
			return nil, err
		}
		f, err := rt.numberArg(self)
		if err != nil {
			return nil, err
		}
		return rt.NewBool(f != 0), nil
	})
}
