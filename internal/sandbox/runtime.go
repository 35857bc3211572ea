package sandbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/modloader/internal/logging"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime wraps the goja VM that hosts every module of one registry.
// The VM's global object is the ambient scope; module code only reaches it
// through the whitelist.
type Runtime struct {
	vm        *goja.Runtime
	config    Config
	whitelist map[string]struct{}
	logger    *logging.Logger

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// Module currently executing, attached to console entries
	current string
}

// New creates a new sandboxed runtime
func New(config Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Runtime{
		vm:        goja.New(),
		config:    config,
		whitelist: make(map[string]struct{}, len(config.Whitelist)),
		logger:    logger,
		console:   []LogEntry{},
	}
	for _, name := range config.Whitelist {
		name = strings.TrimSpace(name)
		if name != "" {
			r.whitelist[name] = struct{}{}
		}
	}

	if config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	return r, nil
}

// VM exposes the underlying goja runtime. Callers must not use it
// concurrently with a running module.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Whitelisted reports whether name falls through to the host scope.
func (r *Runtime) Whitelisted(name string) bool {
	_, ok := r.whitelist[name]
	return ok
}

// SetGlobal publishes an ambient binding on the host global object.
// Module code sees it only if name is whitelisted.
func (r *Runtime) SetGlobal(name string, value interface{}) error {
	return r.vm.Set(name, value)
}

// Run calls fn under the interrupt guard. Context cancellation and the
// configured timeout both interrupt the VM; the interrupt is cleared before
// Run returns so the runtime stays usable.
func (r *Runtime) Run(ctx context.Context, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	var timeout <-chan time.Time
	if r.config.Timeout > 0 {
		timer := time.NewTimer(r.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-timeout:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	err := fn()
	close(done)
	<-stopped
	r.vm.ClearInterrupt()
	return err
}

// Enter marks module as the one currently executing and returns a func
// restoring the previous value.
func (r *Runtime) Enter(module string) func() {
	prev := r.current
	r.current = module
	return func() { r.current = prev }
}

// setupGlobals configures the host's ambient bindings
func (r *Runtime) setupGlobals() error {
	if !r.config.EnableConsole {
		return nil
	}

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	return r.vm.Set(ConsoleName, console)
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	log := r.logger.Named(ConsoleName)
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		msg := strings.Join(parts, " ")

		entry := LogEntry{
			Level:   level,
			Message: msg,
			Module:  r.current,
			Time:    time.Now(),
		}
		r.consoleMu.Lock()
		r.console = append(r.console, entry)
		r.consoleMu.Unlock()

		fields := []zap.Field{logging.Module(entry.Module)}
		switch level {
		case "warn":
			log.Warn(msg, fields...)
		case "error":
			log.Error(msg, fields...)
		case "debug":
			log.Debug(msg, fields...)
		default:
			log.Info(msg, fields...)
		}
		return goja.Undefined()
	}
}

// Console returns a copy of the captured console output
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// ResetConsole clears the captured console output
func (r *Runtime) ResetConsole() {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	r.console = []LogEntry{}
}
