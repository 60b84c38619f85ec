package runtime

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// ComponentError is returned when evaluating a component fails, either with an
// error or a panic. The pass is discarded; the host tree is untouched.
type ComponentError struct {
	Component string
	Path      string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %s at %q failed: %v", e.Component, e.Path, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }

// HookMismatchError reports a component that used a different number of state
// cells than in its previous render.
type HookMismatchError struct {
	Component string
	Path      string
	Previous  int
	Current   int
}

func (e *HookMismatchError) Error() string {
	return fmt.Sprintf("component %s at %q called %d hooks, previous render called %d: hooks must not be called conditionally",
		e.Component, e.Path, e.Current, e.Previous)
}

// Is lets errors.Is match domain.ErrHookMismatch.
func (e *HookMismatchError) Is(target error) bool { return target == domain.ErrHookMismatch }

// HostError wraps a failure of a host primitive during commit.
type HostError struct {
	Op   string
	Kind string
	Path string
	Err  error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host %s failed for %s at %q: %v", e.Op, e.Kind, e.Path, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }
