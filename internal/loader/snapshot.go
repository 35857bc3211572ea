package loader

import (
	"strconv"

	"github.com/dop251/goja"
)

const maxSnapshotDepth = 16

// Snapshot converts an exports value into plain Go values suitable for JSON
// encoding. Functions become "[Function: name]" strings and objects nested
// deeper than maxSnapshotDepth become "[Object]", which also bounds cycles.
func Snapshot(v goja.Value) interface{} {
	return snapshot(v, 0)
}

func snapshot(v goja.Value, depth int) interface{} {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export()
	}

	if _, isFn := goja.AssertFunction(obj); isFn {
		name := ""
		if n := obj.Get("name"); n != nil {
			name = n.String()
		}
		if name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name + "]"
	}
	if depth >= maxSnapshotDepth {
		return "[Object]"
	}

	if obj.ClassName() == "Array" {
		length := obj.Get("length").ToInteger()
		out := make([]interface{}, 0, length)
		for i := int64(0); i < length; i++ {
			out = append(out, snapshot(obj.Get(strconv.FormatInt(i, 10)), depth+1))
		}
		return out
	}

	out := make(map[string]interface{})
	for _, key := range obj.Keys() {
		out[key] = snapshot(obj.Get(key), depth+1)
	}
	return out
}
