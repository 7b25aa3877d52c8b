package repl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/compiler"
	"github.com/dshills/stormrepl/internal/console"
	"github.com/dshills/stormrepl/internal/inspect"
	"github.com/dshills/stormrepl/internal/logging"
	"github.com/dshills/stormrepl/internal/lua"
)

// Session compiles and evaluates scripts with fixed settings. It is safe
// for concurrent use; every run gets its own state.
type Session struct {
	opts Options
	caps []lua.Capability
	log  *logging.Logger
}

// New creates a session. An unknown capability name is a
// *lua.CapabilityError.
func New(opts ...Option) (*Session, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	caps := make([]lua.Capability, 0, len(o.Capabilities))
	for _, name := range o.Capabilities {
		c, err := lua.ParseCapability(name)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}

	log := o.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Session{
		opts: o,
		caps: caps,
		log:  log.WithComponent("repl"),
	}, nil
}

// Options returns the session settings.
func (s *Session) Options() Options {
	o := s.opts
	o.Capabilities = append([]string(nil), s.opts.Capabilities...)
	return o
}

// inspectOptions returns the options used for console output.
func (s *Session) inspectOptions() []inspect.Option {
	return []inspect.Option{
		inspect.WithBudget(s.opts.Depth),
		inspect.WithColors(s.opts.Colors),
	}
}

// Run compiles source and, when evaluation is enabled, runs it.
func (s *Session) Run(ctx context.Context, name, source string) *Result {
	start := time.Now()
	if name == "" {
		name = compiler.DefaultName
	}
	res := &Result{RunID: uuid.New(), Name: name}
	log := s.log.WithField("run", res.RunID.String())

	out := console.New(console.WithInspectOptions(s.inspectOptions()...))
	defer func() {
		_ = out.Flush()
		res.Console = out.Lines()
		res.Duration = time.Since(start)
		log.Debug("run %s finished in %s", name, res.Duration)
	}()

	prog, err := compiler.Compile(name, source, compiler.Options{Listing: s.opts.ShowListing})
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		log.Info("compile failed: %v", err)
		return res
	}
	res.Listing = prog.Listing

	if !s.opts.Evaluate {
		return res
	}

	if err := s.evaluate(ctx, prog, out, log); err != nil {
		msg := lua.ErrorMessage(err)
		out.Write(msg)
		res.Err = err
		res.Error = msg
		log.Info("evaluation failed: %s", msg)
	}
	return res
}

// RunFile reads path and runs it under its base name.
func (s *Session) RunFile(ctx context.Context, path string) *Result {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("reading %s: %w", path, err)
		return &Result{RunID: uuid.New(), Name: name, Err: err, Error: err.Error()}
	}
	return s.Run(ctx, name, string(data))
}

// evaluate runs prog in a fresh sandboxed state on its own executor
// goroutine and waits for that goroutine to exit.
func (s *Session) evaluate(ctx context.Context, prog *compiler.Program, out *console.Console, log *logging.Logger) error {
	state, err := lua.NewState(
		lua.WithConsole(out),
		lua.WithExecutionTimeout(s.opts.Timeout),
		lua.WithCapabilities(s.caps...),
	)
	if err != nil {
		return err
	}
	defer state.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exec := lua.NewExecutor(state.LuaState(), 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		exec.Run(runCtx)
	}()

	err = exec.Execute(ctx, func(*glua.LState) error {
		return state.Run(ctx, prog.Proto)
	})

	exec.Close()
	<-done
	log.Debug("lua executor finished: %+v", exec.Stats())

	if errors.Is(err, lua.ErrExecutorClosed) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
