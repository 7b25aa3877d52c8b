package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/console"
)

// DefaultExecutionTimeout bounds a single chunk execution.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with a sandbox and a capturing console.
//
// gopher-lua's LState is not goroutine-safe. The mutex guards calls made from
// Go; use an Executor to funnel work from several goroutines onto one.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	capabilities     []Capability

	sandbox *Sandbox
	console *console.Console

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the deadline applied to each chunk. Zero or a
// negative value disables it; the caller's context still applies.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithCapabilities grants capabilities before any code runs.
func WithCapabilities(caps ...Capability) StateOption {
	return func(s *State) {
		s.capabilities = append(s.capabilities, caps...)
	}
}

// WithConsole routes print and console.* into c.
func WithConsole(c *console.Console) StateOption {
	return func(s *State) {
		s.console = c
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(state)
	}
	if state.console == nil {
		state.console = console.New()
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.console)
	state.sandbox.Install()
	for _, c := range state.capabilities {
		if err := state.sandbox.Grant(c); err != nil {
			L.Close()
			return nil, err
		}
	}

	return state, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenPackage(L)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenCoroutine(L)

	// io, os and debug stay closed; see Sandbox.Grant.
}

// locked runs fn under the state mutex unless the state is closed.
func (s *State) locked(fn func(L *lua.LState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return fn(s.L)
}

// DoString loads code as an anonymous chunk and calls it.
func (s *State) DoString(ctx context.Context, code string) error {
	var fn *lua.LFunction
	err := s.locked(func(L *lua.LState) (err error) {
		fn, err = L.LoadString(code)
		return err
	})
	if err != nil {
		return err
	}
	return s.Call(ctx, fn)
}

// Run calls a chunk produced by the compiler.
func (s *State) Run(ctx context.Context, proto *lua.FunctionProto) error {
	var fn *lua.LFunction
	if err := s.locked(func(L *lua.LState) error {
		fn = L.NewFunctionFromProto(proto)
		return nil
	}); err != nil {
		return err
	}
	return s.Call(ctx, fn)
}

// Call invokes fn without arguments. The execution timeout, when set,
// shortens ctx; running past it yields a *TimeoutError.
func (s *State) Call(ctx context.Context, fn *lua.LFunction) error {
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}

	err := s.locked(func(L *lua.LState) error {
		L.SetContext(ctx)
		defer L.RemoveContext()
		defer L.SetTop(L.GetTop())
		return protect(func() error {
			L.Push(fn)
			return L.PCall(0, lua.MultRet, nil)
		})
	})

	switch {
	case err == nil, errors.Is(err, ErrStateClosed):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &TimeoutError{Limit: s.executionTimeout, Err: err}
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return err
}

// protect turns a Go panic raised inside the VM into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns the named global, or nil once the state is closed.
func (s *State) GetGlobal(name string) lua.LValue {
	v := lua.LValue(lua.LNil)
	_ = s.locked(func(L *lua.LState) error {
		v = L.GetGlobal(name)
		return nil
	})
	return v
}

// SetGlobal assigns a global. It does nothing on a closed state.
func (s *State) SetGlobal(name string, value lua.LValue) {
	_ = s.locked(func(L *lua.LState) error {
		L.SetGlobal(name, value)
		return nil
	})
}

// LuaState exposes the raw VM without locking. Only the goroutine that
// owns the state may use it, usually from inside an Executor task.
func (s *State) LuaState() *lua.LState { return s.L }

// Sandbox returns the sandbox that grants capabilities.
func (s *State) Sandbox() *Sandbox { return s.sandbox }

// Console returns the console that receives script output.
func (s *State) Console() *console.Console { return s.console }

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	return s.locked(func(*lua.LState) error { return nil }) != nil
}

// Close shuts the VM down. Later calls are no-ops.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.L.Close()
	}
	return nil
}
