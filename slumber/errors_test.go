package slumber

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTraceAccumulatesCallSites(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	se := runError(t, rt, `def inner()
  return nope
def outer()
  return inner()
outer()
`)
	if se.Type != ErrorTypeRuntime || se.Message != `Variable "nope" never set` {
		t.Fatalf("unexpected error %s: %s", se.Type, se.Message)
	}
	lines := make([]int, 0, len(se.Trace))
	for _, tok := range se.Trace {
		lines = append(lines, tok.Line())
	}
	if fmt.Sprint(lines) != "[2 4 5]" {
		t.Fatalf("expected innermost-first trace lines [2 4 5], got %v", lines)
	}

	rendered := se.Error()
	want := `Variable "nope" never set
File "<test>", line 2
  return nope
         ^
File "<test>", line 4
  return inner()
              ^
File "<test>", line 5
outer()
     ^`
	if rendered != want {
		t.Fatalf("unexpected rendering:\n%s\nwant:\n%s", rendered, want)
	}
}

func TestHostPanicBecomesHostError(t *testing.T) {
	rt := newTestRuntime(t, Config{})
	rt.RegisterFunction("boom", func(_ *Object, _ []*Object) (*Object, error) {
		panic("kaboom")
	})
	se := runError(t, rt, "boom()\n")
	if se.Type != ErrorTypeHost || se.Message != "kaboom" {
		t.Fatalf("unexpected error %s: %s", se.Type, se.Message)
	}
	if !strings.Contains(se.Verbose(), "--- host trace ---") {
		t.Fatalf("expected host trace in verbose output")
	}
	if strings.Contains(se.Error(), "--- host trace ---") {
		t.Fatalf("plain rendering should omit the host trace")
	}
}

func TestHostErrorKeepsCause(t *testing.T) {
	sentinel := errors.New("disk on fire")
	rt := newTestRuntime(t, Config{})
	rt.RegisterFunction("fail", func(_ *Object, _ []*Object) (*Object, error) {
		return nil, fmt.Errorf("write: %w", sentinel)
	})
	se := runError(t, rt, "fail()\n")
	if se.Type != ErrorTypeHost || !errors.Is(se, sentinel) {
		t.Fatalf("expected wrapped host error, got %s %v", se.Type, se)
	}
	if se.HostTrace == "" {
		t.Fatalf("expected captured host stack")
	}
}

func TestErrorTraceCollapses(t *testing.T) {
	src := NewSource("<test>", "x\n")
	tok := &Token{Source: src, Pos: 0, Type: TokenName, Value: "x"}
	se := &Error{Type: ErrorTypeRuntime, Message: "deep"}
	for i := 0; i < 20; i++ {
		se.addToken(tok)
	}
	rendered := se.Error()
	if !strings.Contains(rendered, "... 4 frames omitted ...") {
		t.Fatalf("expected collapsed trace, got %s", rendered)
	}
	if got := strings.Count(rendered, `File "<test>"`); got != 16 {
		t.Fatalf("expected 16 rendered frames, got %d", got)
	}
}
