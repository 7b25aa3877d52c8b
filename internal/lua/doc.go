// Package lua runs user scripts in a sandboxed gopher-lua VM and turns
// their values into inspect values.
//
// A State owns one VM. Script output goes to a console, which formats every
// print argument with the inspector:
//
//	out := console.New()
//	state, err := lua.NewState(lua.WithConsole(out))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//	err = state.DoString(ctx, `print({ a = 1 })`) // out holds "{ a: 1 }"
//
// Only base, table, string, math, coroutine and a filtered package library
// are opened. dofile, loadfile and load are removed, and require resolves
// just those safe modules. Capabilities open small, read-only slices of os
// and io: clock, env and filesystem.read. unsafe opens the debug library.
//
// Scripts also see constructors for the value kinds a Lua table cannot
// express on its own:
//
//	inspect(v [, depth])          string form of v; math.huge is unlimited
//	Date(ms | iso), RegExp(src, flags), Error(msg, name)
//	box(v | fn), symbol(desc), defineProperty(t, key, {get, set})
//
// ToInspectValue walks a Lua value once. A table is an array when its
// positive integer keys are dense, and an object in insertion order
// otherwise. Each table maps to a single composite so self references
// print as [Circular].
//
// gopher-lua VMs must stay on one goroutine. An Executor serves tasks for a
// VM from the goroutine that calls Run.
package lua
