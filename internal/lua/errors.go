package lua

import (
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/inspect"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrExecutorClosed is returned when attempting to use a closed executor.
	ErrExecutorClosed = errors.New("lua executor is closed")
)

// TimeoutError reports a chunk stopped by the execution timeout.
type TimeoutError struct {
	Limit time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v after %s: %v", ErrExecutionTimeout, e.Limit, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrExecutionTimeout }

// ErrUnknownCapability is wrapped by a CapabilityError for names the sandbox
// does not know.
var ErrUnknownCapability = errors.New("unknown capability")

// CapabilityError is returned when a script needs a capability it lacks, or
// when an unknown capability is granted.
type CapabilityError struct {
	Capability Capability
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return e.Err.Error() + ": " + string(e.Capability)
	}
	return "capability not granted: " + string(e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// ErrorMessage returns the message a script error reports, without the
// stack trace. A value raised with error(Error(msg)) reports msg.
func ErrorMessage(err error) string {
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return fmt.Sprintf("%v after %s", ErrExecutionTimeout, timeout.Limit)
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) || apiErr.Object == nil {
		return err.Error()
	}
	if ud, ok := apiErr.Object.(*lua.LUserData); ok {
		if h, ok := ud.Value.(*Handle); ok {
			if e, ok := h.Value.(*inspect.Error); ok {
				return e.Message
			}
		}
	}
	return apiErr.Object.String()
}
