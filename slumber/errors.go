package slumber

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	ErrorTypeLex       = "LexError"
	ErrorTypeParse     = "ParseError"
	ErrorTypeRuntime   = "RuntimeError"
	ErrorTypeAssertion = "AssertionError"
	ErrorTypeHost      = "HostError"

	traceHead = 8
	traceTail = 8
)

var (
	ErrStepQuotaExceeded = errors.New("step quota exceeded")
	ErrRecursionLimit    = errors.New("recursion depth exceeded")
)

// Error is the single error shape surfaced by the lexer, parser and
// evaluator. Trace holds one token per call boundary the error crossed,
// innermost first.
type Error struct {
	Type      string
	Message   string
	Trace     []*Token
	HostTrace string
	cause     error
}

func newError(kind string, tok *Token, format string, args ...any) *Error {
	e := &Error{Type: kind, Message: fmt.Sprintf(format, args...)}
	if tok != nil {
		e.Trace = append(e.Trace, tok)
	}
	return e
}

func runtimeErrorf(tok *Token, format string, args ...any) *Error {
	return newError(ErrorTypeRuntime, tok, format, args...)
}

// Errorf builds a RuntimeError for use by native methods. The evaluator
// attaches locations as it propagates.
func Errorf(format string, args ...any) error {
	return newError(ErrorTypeRuntime, nil, format, args...)
}

// wrapError converts any error into an *Error and records tok on its
// trace. Foreign errors become HostErrors carrying the Go stack.
func wrapError(err error, tok *Token) *Error {
	var se *Error
	if errors.As(err, &se) {
		se.addToken(tok)
		return se
	}
	if isAbort(err) {
		se = &Error{Type: ErrorTypeRuntime, Message: err.Error(), cause: err}
	} else {
		se = &Error{
			Type:      ErrorTypeHost,
			Message:   err.Error(),
			HostTrace: string(debug.Stack()),
			cause:     err,
		}
	}
	se.addToken(tok)
	return se
}

func wrapPanic(r any, tok *Token) *Error {
	if err, ok := r.(error); ok {
		se := wrapError(err, tok)
		if se.HostTrace == "" {
			se.HostTrace = string(debug.Stack())
		}
		return se
	}
	se := &Error{
		Type:      ErrorTypeHost,
		Message:   fmt.Sprint(r),
		HostTrace: string(debug.Stack()),
	}
	se.addToken(tok)
	return se
}

func (e *Error) addToken(tok *Token) {
	if tok == nil {
		return
	}
	e.Trace = append(e.Trace, tok)
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	render := func(tok *Token) {
		b.WriteString("\n")
		b.WriteString(tok.Location())
	}
	if len(e.Trace) <= traceHead+traceTail {
		for _, tok := range e.Trace {
			render(tok)
		}
		return b.String()
	}
	for _, tok := range e.Trace[:traceHead] {
		render(tok)
	}
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", len(e.Trace)-traceHead-traceTail)
	for _, tok := range e.Trace[len(e.Trace)-traceTail:] {
		render(tok)
	}
	return b.String()
}

// Verbose renders the error together with the Go stack captured when a
// host fault was wrapped.
func (e *Error) Verbose() string {
	if e.HostTrace == "" {
		return e.Error()
	}
	return e.Error() + "\n--- host trace ---\n" + e.HostTrace
}

func (e *Error) Unwrap() error {
	return e.cause
}
