/*
Package sandbox provides the isolated executor used by the module loader.

# Overview

Module bodies run inside one goja runtime per registry. The runtime's global
object is the host's ambient scope; module code never sees it directly.

# Wrapping

Source text is embedded verbatim in a function shell:

	(function (sandbox) { with (sandbox) { return (function (module, exports, require) {
	<source>
	}); } })

and compiled once with goja.Compile. Syntax errors surface as KindCompile.

# Isolation

The sandbox argument is a goja Proxy over a caller supplied scope object:

  - has(name) is false for whitelisted names, so lookups fall through to the
    host (console by default)
  - has(name) is true for every other name, so lookups resolve against the
    scope object and yield undefined instead of a host value
  - Symbol.unscopables reads as undefined

This is ergonomic isolation, not a security boundary: a sloppy-mode function
called without a receiver still sees the global object as this.

# Usage Example

	rt, err := sandbox.New(sandbox.DefaultConfig(), logger)
	script, err := rt.Compile("a.js", "exports.answer = 42")
	body, err := script.Instantiate(rt.NewScope())
	_, err = body(module, module, exports, require)
*/
package sandbox
