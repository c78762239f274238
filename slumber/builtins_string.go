package slumber

import (
	"strings"
	"unicode/utf8"
)

var reverseEscapeTable = map[rune]string{
	'\\': `\\`,
	'"':  `\"`,
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	'\f': `\f`,
}

func (rt *Runtime) NewString(s string) *Object {
	return newObject(rt.StringClass, nil, s)
}

func (rt *Runtime) stringArg(arg *Object, message ...string) (string, error) {
	if err := CheckType(arg, rt.StringClass, message...); err != nil {
		return "", err
	}
	s, ok := arg.Dat.(string)
	if !ok {
		return "", Errorf("String has no text payload")
	}
	return s, nil
}

// escapeString quotes s with double quotes, escaping with the same
// table the lexer reads.
func escapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if esc, ok := reverseEscapeTable[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func (rt *Runtime) registerString(root []*Object) {
	rt.StringClass = rt.mustMakeClass("String", root, false)
	cls := rt.StringClass

	unary := func(fn func(s string) *Object) NativeMethod {
		return func(self *Object, args []*Object) (*Object, error) {
			if err := CheckArgs(args, 0); err != nil {
				return nil, err
			}
			s, err := rt.stringArg(self)
			if err != nil {
				return nil, err
			}
			return fn(s), nil
		}
	}
	binary := func(fn func(a, b string) *Object) NativeMethod {
		return func(self *Object, args []*Object) (*Object, error) {
			if err := CheckArgs(args, 1); err != nil {
				return nil, err
			}
			a, err := rt.stringArg(self)
			if err != nil {
				return nil, err
			}
			b, err := rt.stringArg(args[0])
			if err != nil {
				return nil, err
			}
			return fn(a, b), nil
		}
	}

	mustAddMethod(cls, "__add", binary(func(a, b string) *Object { return rt.NewString(a + b) }))
	mustAddMethod(cls, "__lt", binary(func(a, b string) *Object { return rt.NewBool(a < b) }))
	mustAddMethod(cls, "__str", func(self *Object, args []*Object) (*Object, error) {
		return self, CheckArgs(args, 0)
	})
	mustAddMethod(cls, "__repr", unary(func(s string) *Object { return rt.NewString(escapeString(s)) }))
	mustAddMethod(cls, "__len", unary(func(s string) *Object { return rt.NewNumber(float64(utf8.RuneCountInString(s))) }))
	mustAddMethod(cls, "__bool", unary(func(s string) *Object { return rt.NewBool(s != "") }))
	mustAddMethod(cls, "__eq", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		a, _ := self.Dat.(string)
		b, ok := args[0].Dat.(string)
		return rt.NewBool(args[0].IsA(cls) && ok && a == b), nil
	})
	mustAddMethod(cls, "join", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		sep, err := rt.stringArg(self)
		if err != nil {
			return nil, err
		}
		var parts []string
		err = rt.iterate(args[0], func(x *Object) error {
			s, err := rt.stringArg(x, "String.join requires an iterable of String")
			if err != nil {
				return err
			}
			parts = append(parts, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return rt.NewString(strings.Join(parts, sep)), nil
	})
	mustAddMethod(cls, "__mod", func(self *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		format, err := rt.stringArg(self)
		if err != nil {
			return nil, err
		}
		values := []*Object{args[0]}
		if list, ok := args[0].Dat.(*ListData); ok && args[0].IsA(rt.ListClass) {
			values = list.Items
		}
		return rt.formatString(format, values)
	})
}

// formatString implements String.__mod: %s inserts __str, %r inserts
// __repr, %d requires a Number, %% is a literal percent sign.
func (rt *Runtime) formatString(format string, values []*Object) (*Object, error) {
	var b strings.Builder
	used := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			b.WriteRune(runes[i])
			continue
		}
		i++
		if i >= len(runes) {
			return nil, Errorf("Incomplete format at end of string")
		}
		if runes[i] == '%' {
			b.WriteByte('%')
			continue
		}
		if used >= len(values) {
			return nil, Errorf("Not enough format arguments")
		}
		value := values[used]
		used++
		var text string
		var err error
		switch runes[i] {
		case 'r':
			text, err = value.Repr()
		case 'd':
			if err = CheckType(value, rt.NumberClass); err == nil {
				text, err = value.Str()
			}
		case 's':
			text, err = value.Str()
		default:
			return nil, Errorf("Invalid format character: %c", runes[i])
		}
		if err != nil {
			return nil, err
		}
		b.WriteString(text)
	}
	if used < len(values) {
		return nil, Errorf("Only %d of the %d supplied arguments were used", used, len(values))
	}
	return rt.NewString(b.String()), nil
}
