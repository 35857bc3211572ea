package loader

import (
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
)

// Module is a registry entry. Its JS counterpart is the object passed to the
// module body as `module` (and bound as `this`): {id, exports, loaded}.
type Module struct {
	ID     string
	Source string

	object *goja.Object

	// Unix nanoseconds of completion, zero while the body runs. Atomic since
	// Registry.Module may be called while the body is executing.
	loadedAt atomic.Int64
}

func newModule(vm *goja.Runtime, id, source string) *Module {
	object := vm.NewObject()
	_ = object.Set("id", id)
	_ = object.Set("exports", vm.NewObject())
	_ = object.Set("loaded", false)

	return &Module{
		ID:     id,
		Source: source,
		object: object,
	}
}

// Exports returns the current value of module.exports. Reading it live keeps
// `module.exports = ...` reassignments made by the body visible.
func (m *Module) Exports() goja.Value {
	return m.object.Get("exports")
}

// Object returns the JS module object.
func (m *Module) Object() *goja.Object {
	return m.object
}

// Loaded reports whether the module body ran to completion.
func (m *Module) Loaded() bool {
	return m.loadedAt.Load() != 0
}

// LoadedAt returns when the body completed, or the zero time.
func (m *Module) LoadedAt() time.Time {
	ns := m.loadedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (m *Module) markLoaded() {
	_ = m.object.Set("loaded", true)
	m.loadedAt.Store(time.Now().UnixNano())
}
