package loader

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/GriffinCanCode/modloader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modloader/internal/logging"
	"github.com/GriffinCanCode/modloader/internal/sandbox"
	"github.com/GriffinCanCode/modloader/internal/shared/id"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Registry owns the identifier to module cache and implements require.
type Registry struct {
	id       id.RegistryID
	rt       *sandbox.Runtime
	modules  map[string]*Module
	provider Provider
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	// JS-visible require, shared by every module of this registry
	requireFn goja.Value

	// Context of the outermost Require/Load, used by nested provider lookups
	ctx context.Context

	// Serializes check, register and execute. Nested requires issued by
	// module code run inside the critical section without re-locking.
	mu sync.Mutex

	// Guards modules only, never held while module code runs, so
	// inspection works from host functions called by a module.
	stateMu sync.RWMutex
}

// New creates a registry with its own sandbox runtime.
func New(config sandbox.Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		id:      id.NewRegistryID(),
		modules: make(map[string]*Module),
		logger:  logging.NewNop(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("loader").With(logging.Registry(r.id.String()))

	rt, err := sandbox.New(config, r.logger)
	if err != nil {
		return nil, err
	}
	r.rt = rt
	r.requireFn = rt.VM().ToValue(r.jsRequire)

	return r, nil
}

// ID returns the registry id.
func (r *Registry) ID() id.RegistryID {
	return r.id
}

// Runtime returns the sandbox runtime hosting the modules.
func (r *Registry) Runtime() *sandbox.Runtime {
	return r.rt
}

// SetGlobal publishes an ambient host binding. Module code sees it only
// when name is whitelisted. It waits for any running require, so host
// functions invoked by module code must not call it.
func (r *Registry) SetGlobal(name string, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rt.SetGlobal(name, value)
}

// Require returns the exports of the module identified by id, compiling and
// running source on first use. On a cache hit source is ignored.
//
// Require holds the registry lock while module code runs. Host functions
// called from module code must not call Require, Load or SetGlobal; module
// code uses its own require for nested loads.
func (r *Registry) Require(ctx context.Context, id, source string) (goja.Value, error) {
	return r.resolve(ctx, id, &source)
}

// Load is Require without a source: on a miss the configured Provider is
// asked for the module text.
func (r *Registry) Load(ctx context.Context, id string) (goja.Value, error) {
	return r.resolve(ctx, id, nil)
}

func (r *Registry) resolve(ctx context.Context, id string, source *string) (goja.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.lookup(id); ok {
		r.hit(m)
		return m.Exports(), nil
	}

	r.ctx = ctx
	defer func() { r.ctx = context.Background() }()

	var exports goja.Value
	err := r.rt.Run(ctx, func() error {
		var err error
		exports, err = r.require(id, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	return exports, nil
}

// require is the lock-free core shared by resolve and jsRequire.
func (r *Registry) require(id string, source *string) (goja.Value, error) {
	if id == "" {
		return nil, sandbox.InvalidArgument("", "module identifier must not be empty")
	}

	if m, ok := r.lookup(id); ok {
		r.hit(m)
		return m.Exports(), nil
	}

	text, err := r.source(id, source)
	if err != nil {
		return nil, r.fail(id, err)
	}

	script, err := r.rt.Compile(id, text)
	if err != nil {
		return nil, r.fail(id, err)
	}

	// Registered before the body runs: a require cycle leading back to id
	// gets the in-progress exports instead of executing the body again.
	module := newModule(r.rt.VM(), id, text)
	r.store(module)
	r.logger.Debug("cache miss", logging.Module(id))

	timer := monitoring.NewTimer(r.metrics)
	if err := r.execute(module, script); err != nil {
		r.metrics.RecordEviction()
		r.metrics.SetModulesCached(r.evict(id))
		return nil, r.fail(id, err)
	}
	module.markLoaded()

	elapsed := timer.Miss()
	r.metrics.SetModulesCached(r.Len())
	r.logger.Debug("module loaded", logging.Module(id), zap.Duration("duration", elapsed))

	return module.Exports(), nil
}

func (r *Registry) source(id string, source *string) (string, error) {
	if source != nil {
		return *source, nil
	}
	if r.provider == nil {
		return "", sandbox.NotFound(id, nil)
	}
	text, err := r.provider.Source(r.ctx, id)
	if errors.Is(err, sandbox.ErrNotFound) {
		return "", sandbox.NotFound(id, err)
	}
	if err != nil {
		return "", sandbox.ProviderError(id, err)
	}
	return text, nil
}

func (r *Registry) execute(m *Module, script *sandbox.Script) error {
	restore := r.rt.Enter(m.ID)
	defer restore()

	body, err := script.Instantiate(r.rt.NewScope())
	if err != nil {
		return err
	}
	_, err = body(m.object, m.object, m.Exports(), r.requireFn)
	return sandbox.RuntimeError(m.ID, err)
}

// jsRequire is the require(id[, source]) function handed to module code.
// Failures are thrown into the calling module: JS exceptions are re-thrown
// as the same value, everything else as a Go error object.
func (r *Registry) jsRequire(call goja.FunctionCall) goja.Value {
	vm := r.rt.VM()

	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		panic(vm.NewTypeError("require: module identifier must be a non-empty string"))
	}

	var source *string
	if src := call.Argument(1); !goja.IsUndefined(src) && !goja.IsNull(src) {
		text := src.String()
		source = &text
	}

	exports, err := r.require(arg.String(), source)
	if err == nil {
		return exports
	}

	// Interrupts clear themselves once delivered; raise again so the
	// calling module cannot catch its way past a timeout.
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		vm.Interrupt(interrupted.Value())
	}
	if exc, ok := sandbox.Exception(err); ok {
		panic(exc)
	}
	panic(vm.NewGoError(err))
}

func (r *Registry) hit(m *Module) {
	r.metrics.RecordHit()
	r.logger.Debug("cache hit", logging.Module(m.ID))
}

func (r *Registry) fail(id string, err error) error {
	kind := string(sandbox.KindRuntime)
	var e *sandbox.Error
	if errors.As(err, &e) {
		kind = string(e.Kind)
	}
	r.metrics.RecordFailure(kind)
	r.logger.Warn("module failed", logging.Module(id), zap.String("kind", kind), zap.Error(err))
	return err
}

func (r *Registry) lookup(id string) (*Module, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

func (r *Registry) store(m *Module) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.modules[m.ID] = m
}

// evict drops id and returns the number of modules left.
func (r *Registry) evict(id string) int {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	delete(r.modules, id)
	return len(r.modules)
}

// Module returns the cached module for id. A module still executing is
// returned with Loaded() false.
func (r *Registry) Module(id string) (*Module, bool) {
	return r.lookup(id)
}

// Has reports whether id is cached.
func (r *Registry) Has(id string) bool {
	_, ok := r.Module(id)
	return ok
}

// IDs returns the cached identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of cached modules.
func (r *Registry) Len() int {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return len(r.modules)
}
