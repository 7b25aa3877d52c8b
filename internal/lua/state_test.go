package lua

import (
	"context"
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/console"
)

func TestNewState(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if state.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if state.LuaState() == nil {
		t.Error("NewState() LuaState() is nil")
	}
	if state.Console() == nil {
		t.Error("NewState() Console() is nil")
	}
}

func TestStateWithOptions(t *testing.T) {
	out := console.New()
	state, err := NewState(
		WithExecutionTimeout(2*time.Second),
		WithConsole(out),
		WithCapabilities(CapabilityClock),
	)
	if err != nil {
		t.Fatalf("NewState() with options error = %v", err)
	}
	defer state.Close()

	if state.Console() != out {
		t.Error("WithConsole() console not used")
	}
	if !state.Sandbox().HasCapability(CapabilityClock) {
		t.Error("WithCapabilities() capability not granted")
	}
}

func TestStateUnknownCapability(t *testing.T) {
	_, err := NewState(WithCapabilities("network"))
	if !errors.Is(err, ErrUnknownCapability) {
		t.Fatalf("NewState() error = %v, want ErrUnknownCapability", err)
	}
}

func TestStateDoString(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	v := state.GetGlobal("x")
	if n, ok := v.(glua.LNumber); !ok || n != 2 {
		t.Errorf("GetGlobal(x) = %v, want 2", v)
	}
}

func TestStateDoStringError(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(context.Background(), `error("boom")`); err == nil {
		t.Error("DoString() should return the runtime error")
	}
	if err := state.DoString(context.Background(), `x = `); err == nil {
		t.Error("DoString() should return the syntax error")
	}
}

func TestStateRunProto(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	fn, err := state.LuaState().LoadString(`print("hi")`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if err := state.Run(context.Background(), fn.Proto); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := state.Console().String(); got != "'hi'" {
		t.Errorf("console = %q, want %q", got, "'hi'")
	}
}

func TestStateExecutionTimeout(t *testing.T) {
	state, err := NewState(WithExecutionTimeout(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	err = state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	var te *TimeoutError
	if !errors.As(err, &te) || te.Limit != 50*time.Millisecond {
		t.Errorf("DoString() error = %#v, want *TimeoutError with 50ms limit", err)
	}
}

func TestStateContextCancel(t *testing.T) {
	state, err := NewState(WithExecutionTimeout(0))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err = state.DoString(ctx, `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DoString() error = %v, want context.Canceled", err)
	}
}

func TestStateSetGlobal(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	state.SetGlobal("greeting", glua.LString("hello"))
	if err := state.DoString(context.Background(), `result = greeting .. " world"`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if got := state.GetGlobal("result"); got.String() != "hello world" {
		t.Errorf("result = %v, want 'hello world'", got)
	}
}

func TestStateClose(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}

	if err := state.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close()")
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close error = %v, want ErrStateClosed", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() after Close = %v, want nil", v)
	}
}

func TestStateSafeLibraries(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	available := []string{"string", "table", "math", "coroutine", "print", "inspect", "console"}
	for _, name := range available {
		if state.GetGlobal(name) == glua.LNil {
			t.Errorf("%s should be available", name)
		}
	}

	removed := []string{"io", "os", "debug", "dofile", "loadfile", "load", "loadstring"}
	for _, name := range removed {
		if state.GetGlobal(name) != glua.LNil {
			t.Errorf("%s should not be available", name)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	err = state.DoString(context.Background(), `error("boom", 0)`)
	if got := ErrorMessage(err); got != "boom" {
		t.Errorf("ErrorMessage() = %q, want boom", got)
	}

	err = state.DoString(context.Background(), `error(Error("typed"))`)
	if got := ErrorMessage(err); got != "typed" {
		t.Errorf("ErrorMessage() = %q, want typed", got)
	}

	timeout := &TimeoutError{Limit: time.Second, Err: errors.New("deadline")}
	if got, want := ErrorMessage(timeout), "lua execution timeout after 1s"; got != want {
		t.Errorf("ErrorMessage() = %q, want %q", got, want)
	}

	plain := errors.New("plain")
	if got := ErrorMessage(plain); got != "plain" {
		t.Errorf("ErrorMessage() = %q, want plain", got)
	}
}
