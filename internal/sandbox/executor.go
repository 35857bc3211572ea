package sandbox

import (
	"github.com/dop251/goja"
)

// The source starts on the first line of the wrapper so that positions in
// syntax errors and stack traces match the module text.
const (
	wrapperHead = "(function (sandbox) { with (sandbox) { return (function (module, exports, require) {"
	wrapperTail = "\n}); } })"
)

// Wrap embeds source inside the module function shell. It does not parse or
// validate the source.
func Wrap(source string) string {
	return wrapperHead + source + wrapperTail
}

// Script is a compiled module body, reusable across instantiations.
type Script struct {
	name    string
	program *goja.Program
	rt      *Runtime
}

// Compile wraps and compiles source once. Syntax errors are reported as
// KindCompile before any code runs.
func (r *Runtime) Compile(name, source string) (*Script, error) {
	program, err := goja.Compile(name, Wrap(source), false)
	if err != nil {
		return nil, &Error{Kind: KindCompile, Module: name, Cause: err}
	}
	return &Script{name: name, program: program, rt: r}, nil
}

// Name returns the name the script was compiled under.
func (s *Script) Name() string {
	return s.name
}

// NewScope returns an empty scope object for Instantiate. It has no
// prototype, so names like constructor or toString stay unresolved.
func (r *Runtime) NewScope() *goja.Object {
	scope := r.vm.NewObject()
	_ = scope.SetPrototype(nil)
	return scope
}

// Instantiate evaluates the wrapper against scope and returns the
// (module, exports, require) function. Free variables of the module body
// resolve against scope unless they are whitelisted.
func (s *Script) Instantiate(scope goja.Value) (goja.Callable, error) {
	target, ok := scope.(*goja.Object)
	if !ok || target == nil {
		return nil, InvalidArgument(s.name, "sandbox parameter must be an object")
	}
	if _, callable := goja.AssertFunction(target); callable {
		return nil, InvalidArgument(s.name, "sandbox parameter must be an object")
	}

	outer, err := s.rt.vm.RunProgram(s.program)
	if err != nil {
		return nil, RuntimeError(s.name, err)
	}
	enter, ok := goja.AssertFunction(outer)
	if !ok {
		return nil, newError(KindRuntime, s.name, "wrapper did not produce a function")
	}

	inner, err := enter(goja.Undefined(), s.rt.scope(target))
	if err != nil {
		return nil, RuntimeError(s.name, err)
	}
	body, ok := goja.AssertFunction(inner)
	if !ok {
		return nil, newError(KindRuntime, s.name, "wrapper did not produce a module function")
	}
	return body, nil
}

// scope builds the interception layer between module code and target.
// Every name outside the whitelist is reported present so the with-lookup
// never falls through to the host global object.
func (r *Runtime) scope(target *goja.Object) goja.Value {
	proxy := r.vm.NewProxy(target, &goja.ProxyTrapConfig{
		Has: func(_ *goja.Object, property string) bool {
			return !r.Whitelisted(property)
		},
		HasSym: func(_ *goja.Object, _ *goja.Symbol) bool {
			return false
		},
		Get: func(target *goja.Object, property string, _ goja.Value) goja.Value {
			return ownValue(target, property)
		},
		// The with-lookup only asks for Symbol.unscopables, which must read
		// as absent. Module code never holds the proxy itself.
		GetSym: func(*goja.Object, *goja.Symbol, goja.Value) goja.Value {
			return goja.Undefined()
		},
	})
	return r.vm.ToValue(proxy)
}

// ownValue reads name from target without consulting its prototype chain.
// Inherited members such as constructor would otherwise hand out host
// functions.
func ownValue(target *goja.Object, name string) goja.Value {
	for _, key := range target.GetOwnPropertyNames() {
		if key == name {
			if v := target.Get(name); v != nil {
				return v
			}
			break
		}
	}
	return goja.Undefined()
}
