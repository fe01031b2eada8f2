package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoModules = errors.New("engine: no modules to schedule")

	// ErrDestroyed is returned by calls made after Destroy.
	ErrDestroyed = errors.New("engine: scheduler destroyed")

	ErrUnknownModule = errors.New("engine: unknown module")
)

// ModuleError records a module that panicked during Update. The module stays
// out of rotation until ResetModule is called for it.
type ModuleError struct {
	Module string
	Frame  uint64
	Cause  error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("engine: module %s faulted at frame %d: %v", e.Module, e.Frame, e.Cause)
}

func (e *ModuleError) Unwrap() error {
	return e.Cause
}

// panicError turns a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
