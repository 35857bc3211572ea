/*
Package loader implements a CommonJS style module registry on top of the
sandbox executor.

# Require

Require(ctx, id, source) returns the exports of id. The first call compiles
and runs source; later calls return the cached exports and ignore their
source argument, so a module body runs at most once per registry.

Module code receives module, exports and require as its only free bindings
besides the runtime whitelist. Inside module code require(id) consults the
configured Provider, require(id, source) behaves like Require.

# Cycles

A module is registered before its body runs. A cycle A -> B -> A therefore
hands B the exports A has populated so far instead of re-executing A.

# Failures

  - KindInvalidArgument: empty identifier
  - KindNotFound: no source given and the provider has none
  - KindCompile: syntax error, the module is never registered
  - KindRuntime: the body threw, the module is evicted again

Nested failures are thrown into the requiring module and, unless caught,
reach the caller of the outermost Require.

# Concurrency

Require and Load serialize on the registry mutex for the whole
check, register, execute sequence.
*/
package loader
