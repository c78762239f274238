package slumber

import (
	"context"
	"errors"
)

var errGeneratorClosed = errors.New("generator abandoned: runtime closed or context done")

type generatorEvent struct {
	value *Object
	done  bool
	err   error
}

// generator runs a generator body on its own goroutine. Control passes
// back and forth over two unbuffered channels, so exactly one side runs
// at a time. A generator that is never drained stays parked until its
// context is done or the runtime is closed; it then unwinds without
// running further user code.
type generator struct {
	rt    *Runtime
	frame *frame
	body  Node
	ctx   context.Context

	resumes chan *Object
	events  chan generatorEvent

	started  bool
	running  bool
	finished bool
}

func (rt *Runtime) newGenerator(f *frame, body Node) *Object {
	g := &generator{
		rt:      rt,
		frame:   f,
		body:    body,
		ctx:     rt.context(),
		resumes: make(chan *Object),
		events:  make(chan generatorEvent),
	}
	f.gen = g
	return rt.newIterator(g)
}

// resume fails when the body tries to resume its own iterator.
func (g *generator) resume(v *Object) (*Object, bool, error) {
	if g.finished {
		return g.rt.Nil, true, nil
	}
	if g.running {
		return nil, false, Errorf("Generator is already running")
	}
	select {
	case <-g.rt.closed:
		g.finished = true
		return nil, true, errGeneratorClosed
	default:
	}
	if !g.started {
		g.started = true
		go g.run()
	}
	g.running = true
	defer func() { g.running = false }()
	select {
	case g.resumes <- v:
	case <-g.rt.closed:
		g.finished = true
		return nil, true, errGeneratorClosed
	case <-g.ctx.Done():
		g.finished = true
		return nil, true, g.ctx.Err()
	}
	select {
	case ev := <-g.events:
		if ev.done || ev.err != nil {
			g.finished = true
		}
		return ev.value, ev.done, ev.err
	case <-g.rt.closed:
		g.finished = true
		return nil, true, errGeneratorClosed
	case <-g.ctx.Done():
		g.finished = true
		return nil, true, g.ctx.Err()
	}
}

func (g *generator) run() {
	select {
	case <-g.resumes:
	case <-g.rt.closed:
		return
	case <-g.ctx.Done():
		return
	}
	g.rt.log.Debugf("generator started at %s", g.body.Token().Location())

	var ev generatorEvent
	func() {
		defer func() {
			if r := recover(); r != nil {
				ev = generatorEvent{done: true, err: wrapPanic(r, g.body.Token())}
			}
		}()
		value, err := g.frame.eval(g.body)
		ev = generatorEvent{value: value, done: true, err: err}
	}()
	if errors.Is(ev.err, errGeneratorClosed) {
		g.rt.log.Debugf("generator abandoned at %s", g.body.Token().Location())
		return
	}
	select {
	case g.events <- ev:
	case <-g.rt.closed:
	}
}

// suspend hands value to the driver and blocks until the next resume,
// returning the value the driver supplied. It runs on the generator's
// goroutine.
func (g *generator) suspend(value *Object) (*Object, error) {
	select {
	case g.events <- generatorEvent{value: value}:
	case <-g.rt.closed:
		return nil, errGeneratorClosed
	}
	select {
	case v := <-g.resumes:
		return v, nil
	case <-g.rt.closed:
		return nil, errGeneratorClosed
	case <-g.ctx.Done():
		return nil, errGeneratorClosed
	}
}

func (f *frame) checkYield(tok *Token) error {
	if !f.generator {
		return runtimeErrorf(tok, "You can't yield from a non-generator")
	}
	if f.gen == nil {
		return runtimeErrorf(tok, "Tried to run a generator like a function")
	}
	return nil
}

func (f *frame) evalYield(e *YieldExpr) (*Object, error) {
	if err := f.checkYield(e.tok); err != nil {
		return nil, err
	}
	value := f.rt.Nil
	if e.Value != nil {
		var err error
		if value, err = f.eval(e.Value); err != nil {
			return nil, err
		}
	}
	resumed, err := f.gen.suspend(value)
	if err != nil {
		return nil, err
	}
	return resumed, nil
}

// evalYieldStar re-suspends every value of the delegate and evaluates
// to the delegate's final result. Native iterators receive the resume
// values this generator is given; other iterables are driven through
// __more and __next.
func (f *frame) evalYieldStar(e *YieldStarExpr) (*Object, error) {
	if err := f.checkYield(e.tok); err != nil {
		return nil, err
	}
	iterable, err := f.eval(e.Iterable)
	if err != nil {
		return nil, err
	}
	iter, err := f.callWithTrace(e.tok, func() (*Object, error) {
		return iterable.CallMethod("__iter", nil)
	})
	if err != nil {
		return nil, err
	}
	if it, ok := iter.Dat.(*Iterator); ok && iter.IsA(f.rt.IteratorClass) {
		return f.delegateNative(e.tok, it)
	}
	for {
		more, err := f.callWithTrace(e.tok, func() (*Object, error) {
			more, err := iter.CallMethod("__more", nil)
			if err != nil {
				return nil, err
			}
			ok, err := more.Truthy()
			return f.rt.NewBool(ok), err
		})
		if err != nil {
			return nil, err
		}
		value, err := f.callWithTrace(e.tok, func() (*Object, error) {
			return iter.CallMethod("__next", nil)
		})
		if err != nil {
			return nil, err
		}
		if more == f.rt.False {
			return value, nil
		}
		if _, err := f.gen.suspend(value); err != nil {
			return nil, err
		}
	}
}

func (f *frame) delegateNative(tok *Token, it *Iterator) (*Object, error) {
	_, err := f.callWithTrace(tok, func() (*Object, error) {
		return nil, it.prime(f.rt)
	})
	if err != nil {
		return nil, err
	}
	for !it.done {
		resumed, err := f.gen.suspend(it.value)
		if err != nil {
			return nil, err
		}
		_, err = f.callWithTrace(tok, func() (*Object, error) {
			return nil, it.advance(f.rt, resumed)
		})
		if err != nil {
			return nil, err
		}
	}
	return it.value, nil
}
