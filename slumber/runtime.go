package slumber

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tliron/commonlog"
)

// Config controls evaluation limits and host integration.
type Config struct {
	// StepQuota bounds evaluation steps per top-level Run. Zero selects
	// the default; a negative value disables the quota.
	StepQuota int
	// RecursionLimit bounds nested function and method calls.
	RecursionLimit int
	// MaxCachedModules bounds the imported module cache.
	MaxCachedModules int
	// ApplyDecorators makes '@decorator' lines wrap the function they
	// precede. When false decorators are parsed, logged and ignored.
	ApplyDecorators bool
	// Print receives the __str text of every print(x) call.
	Print func(string)
	// Loader resolves import statements. With no loader imports are
	// skipped.
	Loader SourceLoader
	Logger commonlog.Logger
}

// Runtime owns the builtin classes, the global scope holding the
// prelude, and the module cache. A Runtime is not safe for concurrent
// use.
type Runtime struct {
	config    Config
	log       commonlog.Logger
	loaderLog commonlog.Logger
	globals   *Scope

	MetaClass     *Object
	ObjectClass   *Object
	NilClass      *Object
	BoolClass     *Object
	NumberClass   *Object
	StringClass   *Object
	ListClass     *Object
	FunctionClass *Object
	IteratorClass *Object
	ModuleClass   *Object

	Nil   *Object
	True  *Object
	False *Object

	exec *execution

	modules     map[string]*Object
	moduleOrder []string
	loadStack   []string

	closed    chan struct{}
	closeOnce sync.Once
}

type execution struct {
	ctx   context.Context
	quota int
	steps int
	depth int
	limit int
}

// NewRuntime builds the builtin classes and globals and runs the
// prelude into the global scope.
func NewRuntime(cfg Config) (*Runtime, error) {
	if cfg.StepQuota == 0 {
		cfg.StepQuota = 1_000_000
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 256
	}
	if cfg.MaxCachedModules <= 0 {
		cfg.MaxCachedModules = 1000
	}
	if cfg.Print == nil {
		cfg.Print = func(s string) { fmt.Fprintln(os.Stdout, s) }
	}
	if cfg.Logger == nil {
		cfg.Logger = commonlog.GetLogger("slumber")
	}

	rt := &Runtime{
		config:    cfg,
		log:       cfg.Logger,
		loaderLog: commonlog.GetLogger("slumber.loader"),
		globals:   NewScope(nil),
		modules:   make(map[string]*Object),
		closed:    make(chan struct{}),
	}
	rt.bootstrap()
	rt.registerGlobals()

	prelude := NewSource("<prelude>", preludeSource)
	if _, err := rt.Run(context.Background(), prelude, rt.globals); err != nil {
		return nil, fmt.Errorf("load prelude: %w", err)
	}
	rt.globals.Seal()
	rt.log.Debugf("prelude loaded, %d globals", len(rt.globals.values))
	return rt, nil
}

func MustNewRuntime(cfg Config) *Runtime {
	rt, err := NewRuntime(cfg)
	if err != nil {
		panic(err)
	}
	return rt
}

// Globals returns the shared scope holding builtins and the prelude.
func (rt *Runtime) Globals() *Scope {
	return rt.globals
}

// NewScope returns a fresh child of the global scope, the default
// scope of Run.
func (rt *Runtime) NewScope() *Scope {
	return rt.globals.NewChild()
}

// Close releases goroutines parked in generators that were never
// drained. The Runtime must not be used afterwards.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() { close(rt.closed) })
}

// Run parses src and evaluates it in scope, or in a fresh child of the
// global scope when scope is nil. The finished scope's own bindings
// are returned as a Module.
func (rt *Runtime) Run(ctx context.Context, src *Source, scope *Scope) (*Object, error) {
	file, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if scope == nil {
		scope = rt.NewScope()
	}
	done := rt.beginExecution(ctx)
	defer done()

	f := &frame{rt: rt, scope: scope}
	if _, err := f.eval(file); err != nil {
		return nil, err
	}
	return rt.newModule(src.URI, scope), nil
}

// RunToCompletion evaluates a single node with no suspension driver. A
// generator frame that reaches a yield fails instead of suspending.
func (rt *Runtime) RunToCompletion(ctx context.Context, node Node, scope *Scope, generator bool) (*Object, error) {
	if scope == nil {
		scope = rt.NewScope()
	}
	done := rt.beginExecution(ctx)
	defer done()
	f := &frame{rt: rt, scope: scope, generator: generator}
	return f.eval(node)
}

// beginExecution installs limits for a top-level run. Nested runs, such
// as imports, share the outer execution.
func (rt *Runtime) beginExecution(ctx context.Context) func() {
	if rt.exec != nil {
		return func() {}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rt.exec = &execution{ctx: ctx, quota: rt.config.StepQuota, limit: rt.config.RecursionLimit}
	return func() { rt.exec = nil }
}

func (rt *Runtime) context() context.Context {
	if rt.exec != nil {
		return rt.exec.ctx
	}
	return context.Background()
}

func (rt *Runtime) step() error {
	exec := rt.exec
	if exec == nil {
		return nil
	}
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, exec.quota)
	}
	select {
	case <-exec.ctx.Done():
		return exec.ctx.Err()
	default:
	}
	return nil
}

func (rt *Runtime) enterCall() error {
	exec := rt.exec
	if exec == nil {
		return nil
	}
	if exec.limit > 0 && exec.depth >= exec.limit {
		return fmt.Errorf("%w (limit %d)", ErrRecursionLimit, exec.limit)
	}
	exec.depth++
	return nil
}

func (rt *Runtime) leaveCall() {
	if rt.exec != nil && rt.exec.depth > 0 {
		rt.exec.depth--
	}
}
