package slumber

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestRuntime(t *testing.T, cfg Config) *Runtime {
	t.Helper()
	rt, err := NewRuntime(cfg)
	if err != nil {
		t.Fatalf("runtime init failed: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func runSource(t *testing.T, rt *Runtime, text string) *Object {
	t.Helper()
	module, err := rt.Run(context.Background(), NewSource("<test>", text), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return module
}

func runError(t *testing.T, rt *Runtime, text string) *Error {
	t.Helper()
	_, err := rt.Run(context.Background(), NewSource("<test>", text), nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return se
}

func moduleAttr(t *testing.T, module *Object, name string) *Object {
	t.Helper()
	value, err := module.GetAttr(name)
	if err != nil {
		t.Fatalf("module attribute %s: %v", name, err)
	}
	return value
}

func reprOf(t *testing.T, obj *Object) string {
	t.Helper()
	s, err := obj.Repr()
	if err != nil {
		t.Fatalf("repr failed: %v", err)
	}
	return s
}

func TestRunReturnsModuleBindings(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, "x = 5\ny = x + 7\n")

	x := moduleAttr(t, module, "x")
	y := moduleAttr(t, module, "y")
	if !x.IsA(rt.NumberClass) || x.Dat.(float64) != 5 {
		t.Fatalf("expected x = 5, got %s", x)
	}
	if !y.IsA(rt.NumberClass) || y.Dat.(float64) != 12 {
		t.Fatalf("expected y = 12, got %s", y)
	}
	if module.ClassName() != "Module" || ModuleURI(module) != "<test>" {
		t.Fatalf("unexpected module %s", reprOf(t, module))
	}
}

func TestRunExpressions(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	tests := []struct {
		expr string
		want string
	}{
		{expr: "1 + 2 * 3", want: "7"},
		{expr: "(1 + 2) * 3", want: "9"},
		{expr: "7 // 2", want: "3"},
		{expr: "-7 % 3", want: "2"},
		{expr: "7 % -3", want: "-2"},
		{expr: "1 / 4", want: "0.25"},
		{expr: "1 / 0", want: "Infinity"},
		{expr: "-2 - -3", want: "1"},
		{expr: "3 > 2", want: "true"},
		{expr: "3 >= 4", want: "false"},
		{expr: "2 <= 2", want: "true"},
		{expr: "1 != 1", want: "false"},
		{expr: "'a' + 'b'", want: `"ab"`},
		{expr: "'a' < 'b'", want: "true"},
		{expr: "'x' if 0 else 'y'", want: `"y"`},
		{expr: "0 or 'fallback'", want: `"fallback"`},
		{expr: "1 and 0", want: "0"},
		{expr: "not []", want: "true"},
		{expr: "nil", want: "nil"},
		{expr: "len('héllo')", want: "5"},
		{expr: "'%s and %r, %d%%' % ['a', 'b', 5]", want: `"a and \"b\", 5%"`},
		{expr: "'<%s>' % 3", want: `"<3>"`},
		{expr: "', '.join(['a', 'b'])", want: `"a, b"`},
		{expr: "str(5)", want: `"5"`},
		{expr: "repr('q\\n')", want: `"\"q\\n\""`},
		{expr: "List(range(3))", want: "[0, 1, 2]"},
		{expr: "List(range(2, 4))", want: "[2, 3]"},
		{expr: "List(map(\\x. x * 2, [1, 2]))", want: "[2, 4]"},
		{expr: "Number.getName()", want: `"Number"`},
		{expr: "print.getName()", want: `"print"`},
		{expr: "Object", want: "<Class Object>"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			module := runSource(t, rt, "result = "+tt.expr+"\n")
			if got := reprOf(t, moduleAttr(t, module, "result")); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRunExpressionErrors(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	tests := []struct {
		src  string
		want string
	}{
		{src: "0 / 0\n", want: "Tried to make a NaN"},
		{src: "nope\n", want: `Variable "nope" never set`},
		{src: "nil + 1\n", want: `No method "__add" for class Nil`},
		{src: "1 + 'a'\n", want: "Expected Number but found String"},
		{src: "'%s %s' % 'x'\n", want: "Not enough format arguments"},
		{src: "'%s' % [1, 2]\n", want: "Only 1 of the 2 supplied arguments were used"},
		{src: "'%q' % 1\n", want: "Invalid format character: q"},
		{src: "[1][3]\n", want: "Index 3 out of range for List of length 1"},
		{src: "self\n", want: "You can't use 'self' from a non-method"},
		{src: "(1).x = 2\n", want: "Tried to set attribute on non-settable object"},
		{src: "(1).x\n", want: "Tried to get attribute on non-gettable object"},
		{src: "Number()\n", want: "Class Number is not instantiable"},
		{src: "def f(a)\n  return a\nf()\n", want: "Expected 1 args but got 0"},
		{src: "def f(a, /b)\n  return a\nf(1, 2, 3)\n", want: "Expected 1 to 2 args but got 3"},
		{src: "async def f()\n  pass\n", want: "Async functions are not yet supported"},
		{src: "class A\n  async def m()\n    pass\n", want: "Async methods not yet supported"},
		{src: "class A\nclass B\nclass C(A, B)\n", want: "Multiple inheritance is not yet supported"},
		{src: "class C(5)\n", want: "Base classes must be"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			se := runError(t, rt, tt.src)
			if !strings.Contains(se.Message, tt.want) {
				t.Fatalf("expected %q in %q", tt.want, se.Message)
			}
		})
	}
}

func TestClassMro(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `class A
class B(A)
a = A.getMro()
b = B.getMro()
assert(a == [A, Object])
assert(b == [B, A, Object])
`)
	if got := reprOf(t, moduleAttr(t, module, "b")); got != "[<Class B>, <Class A>, <Class Object>]" {
		t.Fatalf("unexpected mro %s", got)
	}
	b := moduleAttr(t, module, "B")
	a := moduleAttr(t, module, "A")
	instance, err := b.CallMethod("__call", nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if !instance.IsA(a) || !instance.IsA(rt.ObjectClass) || instance.IsA(rt.ListClass) {
		t.Fatalf("unexpected isA results for %s", instance)
	}
}

func TestClassesAndSuper(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `class A
  def __init(x)
    self.x = x
  def describe()
    return 'A' + str(self.x)
class B(A)
  def __init(x, y)
    super.__init(x)
    self.y = y
  def describe()
    return 'B' + super.describe()
b = B(1, 2)
result = b.describe()
b.x = 5
x = b.x
`)
	if got := reprOf(t, moduleAttr(t, module, "result")); got != `"BA1"` {
		t.Fatalf("expected BA1, got %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "x")); got != "5" {
		t.Fatalf("expected updated attribute, got %s", got)
	}

	se := runError(t, rt, `class P
  def __init()
    self.a = 1
p = P()
p.b = 2
`)
	if !strings.Contains(se.Message, "You can't set new attributes once you exit __init") {
		t.Fatalf("unexpected error %v", se)
	}

	se = runError(t, rt, "super.m()\n")
	if !strings.Contains(se.Message, "You can only call super methods from inside a method") {
		t.Fatalf("unexpected error %v", se)
	}
}

func TestListEquality(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	tests := []struct {
		expr string
		want *Object
	}{
		{expr: "[1, 2] == [1, 2]", want: rt.True},
		{expr: "[[1, 'a']] == [[1, 'a']]", want: rt.True},
		{expr: "[] == []", want: rt.True},
		{expr: "[1, 2] == [1, 2, 3]", want: rt.False},
		{expr: "[1, 'a'] == [1, 'b']", want: rt.False},
		{expr: "[1] == 1", want: rt.False},
		{expr: "[1] != [2]", want: rt.True},
	}
	for _, tt := range tests {
		module := runSource(t, rt, "result = "+tt.expr+"\n")
		if got := moduleAttr(t, module, "result"); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.expr, tt.want, got)
		}
	}
}

func TestListMethods(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `xs = [1, 2]
xs[0] = 5
xs.push(3)
ys = List(xs)
ys.push(4)
seen = []
for x in xs
  xs.push(x)
  seen.push(x)
`)
	if got := reprOf(t, moduleAttr(t, module, "ys")); got != "[5, 2, 3, 4]" {
		t.Fatalf("unexpected copy %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "seen")); got != "[5, 2, 3]" {
		t.Fatalf("iteration should use a snapshot, got %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "xs")); got != "[5, 2, 3, 5, 2, 3]" {
		t.Fatalf("unexpected list %s", got)
	}

	huge := "1" + strings.Repeat("0", 300)
	badIndexes := map[string]string{
		"xs = [1]\nxs[1]\n":                "Index 1 out of range for List of length 1",
		"xs = [1]\nxs[-1]\n":               "Index -1 out of range for List of length 1",
		"xs = [1]\nxs[0.5]\n":              "Index 0.5 out of range for List of length 1",
		"xs = [1]\nxs[1 / 0]\n":            "Index Infinity out of range for List of length 1",
		"xs = [1]\nxs[" + huge + "]\n":     "Index 1e+300 out of range for List of length 1",
		"xs = [1]\nxs[" + huge + "] = 2\n": "Index 1e+300 out of range for List of length 1",
	}
	for text, want := range badIndexes {
		se := runError(t, rt, text)
		if se.Type != ErrorTypeRuntime || se.Message != want {
			t.Fatalf("%q: unexpected error %s: %s", text, se.Type, se.Message)
		}
	}
}

func TestControlFlow(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `def classify(n)
  if n < 0
    return 'negative'
  elif n == 0
    return 'zero'
  else
    return 'positive'

def firstEven(xs)
  for x in xs
    if x % 2 == 1
      continue
    return x
  return nil

total = 0
i = 0
while true
  i = i + 1
  if i > 10
    break
  if i % 2 == 0
    continue
  total = total + i

sync
  synced = 1

labels = [classify(-1), classify(0), classify(3)]
even = firstEven([1, 3, 4, 6])
none = firstEven([1])
`)
	if got := reprOf(t, moduleAttr(t, module, "labels")); got != `["negative", "zero", "positive"]` {
		t.Fatalf("unexpected labels %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "total")); got != "25" {
		t.Fatalf("expected sum of odd numbers to be 25, got %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "even")); got != "4" {
		t.Fatalf("expected 4, got %s", got)
	}
	if got := moduleAttr(t, module, "none"); got != rt.Nil {
		t.Fatalf("expected nil, got %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "synced")); got != "1" {
		t.Fatalf("expected sync body to bind in the current scope, got %s", got)
	}
}

func TestArgumentBinding(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `def f(a, /b, *rest)
  return [a, b, rest]
one = f(1)
many = f(1, 2, 3, 4)
splat = f(*[7, 8])
`)
	tests := map[string]string{
		"one":   "[1, nil, []]",
		"many":  "[1, 2, [3, 4]]",
		"splat": "[7, 8, []]",
	}
	for name, want := range tests {
		if got := reprOf(t, moduleAttr(t, module, name)); got != want {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestClosuresShareDefiningScope(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, `def counter()
  n = 0
  inc = \. n = n + 1
  get = \. n
  return [inc, get]
fs = counter()
inc = fs[0]
get = fs[1]
inc()
inc()
result = get()

x = 1
def setX()
  x = 2
setX()
`)
	if got := reprOf(t, moduleAttr(t, module, "result")); got != "2" {
		t.Fatalf("expected closures to share n, got %s", got)
	}
	if got := reprOf(t, moduleAttr(t, module, "x")); got != "2" {
		t.Fatalf("expected assignment to rebind the owning scope, got %s", got)
	}
}

func TestGlobalsAreShadowedNotRebound(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	module := runSource(t, rt, "len = 3\n")
	if got := reprOf(t, moduleAttr(t, module, "len")); got != "3" {
		t.Fatalf("expected local binding, got %s", got)
	}
	global, ok := rt.Globals().Get("len")
	if !ok || !global.IsA(rt.FunctionClass) {
		t.Fatalf("global len should be untouched, got %v", global)
	}
	runSource(t, rt, "assert(len([1]) == 1)\n")
}

func TestAssertMessages(t *testing.T) {
	rt := newTestRuntime(t, Config{})

	se := runError(t, rt, "assert(false)\n")
	if se.Type != ErrorTypeAssertion || se.Message != "assertion error" {
		t.Fatalf("unexpected default assertion %s: %q", se.Type, se.Message)
	}
	se = runError(t, rt, "assert(1 == 2, 'numbers differ')\n")
	if se.Type != ErrorTypeAssertion || se.Message != "numbers differ" {
		t.Fatalf("unexpected custom assertion %s: %q", se.Type, se.Message)
	}
	se = runError(t, rt, "assertEqual(1, 2)\n")
	if se.Message != "1" {
		t.Fatalf("expected assertEqual to report the actual value, got %q", se.Message)
	}
	se = runError(t, rt, "assertRaise(\\. 1)\n")
	if se.Message != "Expected an error" {
		t.Fatalf("unexpected assertRaise message %q", se.Message)
	}

	runSource(t, rt, "assert(1)\nassertEqual([1], [1])\nassertRaise(\\. nil + 1)\n")
}

func TestPrintUsesSink(t *testing.T) {
	var out []string
	rt := newTestRuntime(t, Config{Print: func(s string) { out = append(out, s) }})
	runSource(t, rt, "print('x')\nprint([1, 'a'])\nprint(nil)\n")
	want := []string{"x", `[1, "a"]`, "nil"}
	if strings.Join(out, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, out)
	}
}

func TestAddMethodLeafRule(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	noop := func(self *Object, args []*Object) (*Object, error) { return nil, nil }

	base, err := rt.MakeClass("Base", nil, true)
	if err != nil {
		t.Fatalf("make class: %v", err)
	}
	if err := AddMethod(base, "before", noop); err != nil {
		t.Fatalf("leaf class should accept methods: %v", err)
	}
	if _, err := rt.MakeClass("Derived", []*Object{base}, true); err != nil {
		t.Fatalf("make subclass: %v", err)
	}
	err = AddMethod(base, "after", noop)
	if err == nil || !strings.Contains(err.Error(), "You cannot add a method to a class that already has subclasses (Base.after)") {
		t.Fatalf("expected leaf violation, got %v", err)
	}

	other, _ := rt.MakeClass("Other", nil, true)
	if err := AddMethod(other, "bad", func(args []*Object) *Object { return nil }); err == nil {
		t.Fatalf("expected calling convention error")
	}
	if err := AddMethod(other, "", noop); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := AddMethod(other, "named", NativeMethod(noop)); err != nil {
		t.Fatalf("NativeMethod should be accepted: %v", err)
	}

	se := runError(t, rt, `def m()
  return 1
_addMethodTo(Object)(m)
`)
	if !strings.Contains(se.Message, "already has subclasses") {
		t.Fatalf("unexpected error %v", se)
	}
}

func TestCheckGuards(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	one := []*Object{rt.Nil}
	if err := CheckArgs(one, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckArgsRange(one, 2, 3); err == nil {
		t.Fatalf("expected range error")
	}
	if err := CheckArgsMin(one, 2); err == nil || !strings.Contains(err.Error(), "Expected at least 2 args but got 1") {
		t.Fatalf("unexpected min error: %v", err)
	}
	err := CheckType(rt.NewNumber(1), rt.StringClass, "label")
	if err == nil || err.Error() != "Expected String but found Number: label" {
		t.Fatalf("unexpected type error: %v", err)
	}
}

func TestDecorators(t *testing.T) {
	src := `def twice(f)
  return \x. f(f(x))
@twice
def inc(x)
  return x + 1
result = inc(1)
`
	inert := newTestRuntime(t, Config{})
	if got := reprOf(t, moduleAttr(t, runSource(t, inert, src), "result")); got != "2" {
		t.Fatalf("decorators should be inert by default, got %s", got)
	}

	applied := newTestRuntime(t, Config{ApplyDecorators: true})
	if got := reprOf(t, moduleAttr(t, runSource(t, applied, src), "result")); got != "3" {
		t.Fatalf("expected decorator to apply, got %s", got)
	}

	module := runSource(t, applied, `class P
  pass
@_addMethodTo(P)
def hello()
  return 'hi'
result = P().hello()
`)
	if got := reprOf(t, moduleAttr(t, module, "result")); got != `"hi"` {
		t.Fatalf("expected added method, got %s", got)
	}

	se := runError(t, applied, "class Q\n  @twice\n  def m()\n    pass\n")
	if !strings.Contains(se.Message, "Decorators on methods not yet supported") {
		t.Fatalf("unexpected error %v", se)
	}
}

func TestStepQuota(t *testing.T) {
	rt := newTestRuntime(t, Config{StepQuota: 200})
	_, err := rt.Run(context.Background(), NewSource("<test>", "while true\n  pass\n"), nil)
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
	var se *Error
	if !errors.As(err, &se) || se.Type != ErrorTypeRuntime {
		t.Fatalf("expected RuntimeError, got %v", err)
	}

	unlimited := newTestRuntime(t, Config{StepQuota: -1})
	runSource(t, unlimited, "i = 0\nwhile i < 10000\n  i = i + 1\n")
}

func TestRecursionLimit(t *testing.T) {
	rt := newTestRuntime(t, Config{RecursionLimit: 40})
	_, err := rt.Run(context.Background(), NewSource("<test>", "def f(n)\n  return f(n + 1)\nf(0)\n"), nil)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion error, got %v", err)
	}
	if !strings.Contains(err.Error(), "recursion depth exceeded (limit 40)") {
		t.Fatalf("unexpected message: %v", err)
	}
	if !strings.Contains(err.Error(), "frames omitted") {
		t.Fatalf("expected collapsed trace, got %v", err)
	}

	runSource(t, rt, "def g(n)\n  return 0 if n == 0 else g(n - 1)\ng(30)\n")
}

func TestContextCancellation(t *testing.T) {
	rt := newTestRuntime(t, Config{StepQuota: -1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rt.Run(ctx, NewSource("<test>", "while true\n  pass\n"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRunIntoExplicitScope(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	scope := rt.NewScope()
	scope.Define("seed", rt.NewNumber(4))
	runSource(t, rt, "ignored = 1\n")
	if _, err := rt.Run(context.Background(), NewSource("<test>", "doubled = seed * 2\n"), scope); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	doubled, ok := scope.Get("doubled")
	if !ok || reprOf(t, doubled) != "8" {
		t.Fatalf("expected doubled in the supplied scope, got %v", doubled)
	}
	if got := strings.Join(scope.Names(), ","); got != "doubled,seed" {
		t.Fatalf("unexpected scope names %s", got)
	}
}

func TestRegisterFunction(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	rt.RegisterFunction("double", func(_ *Object, args []*Object) (*Object, error) {
		if err := CheckArgs(args, 1); err != nil {
			return nil, err
		}
		n, err := rt.numberArg(args[0])
		if err != nil {
			return nil, err
		}
		return rt.NewNumber(n * 2), nil
	})
	module := runSource(t, rt, "result = double(21)\n")
	if got := reprOf(t, moduleAttr(t, module, "result")); got != "42" {
		t.Fatalf("expected 42, got %s", got)
	}
}
