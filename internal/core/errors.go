package core

import (
	"fmt"

	"github.com/giantswarm/httpenv/internal/sentinel"
)

const (
	// ErrConfiguration is returned when a Descriptor is built without a
	// mandatory field. It is only returned by NewDescriptor.
	ErrConfiguration = sentinel.Error("invalid fixture configuration")

	// ErrLifecycle is returned when a lifecycle event arrives out of order,
	// e.g. CaseStart in Shared mode before SuiteStart.
	ErrLifecycle = sentinel.Error("lifecycle event out of order")

	// ErrStartup is returned when a fixture could not be built or started.
	ErrStartup = sentinel.Error("fixture startup failed")

	// ErrTeardown is returned when a fixture failed to stop. The store
	// entries are removed regardless.
	ErrTeardown = sentinel.Error("fixture teardown failed")

	// ErrResolution is returned when a handle is requested while none is
	// published in the scope.
	ErrResolution = sentinel.Error("resource not available")

	// ErrUnsupportedKind is returned, together with ErrResolution, when a
	// kind that cannot be injected is requested.
	ErrUnsupportedKind = sentinel.Error("resource kind not injectable")

	// ErrNotBuilt is returned by every operation on a Descriptor or
	// Orchestrator that was not created by its constructor.
	ErrNotBuilt = sentinel.Error("fixture descriptor not built; use the constructor")
)

// PhaseError reports a failure attributable to one lifecycle event and
// scope. errors.Is matches both Kind and the underlying cause.
type PhaseError struct {
	Kind  error // ErrLifecycle, ErrStartup or ErrTeardown
	Event Event
	Scope *Scope
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s %s", e.Kind, e.Event, e.Scope)
	}
	return fmt.Sprintf("%v: %s %s: %v", e.Kind, e.Event, e.Scope, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *PhaseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func phaseError(kind error, ev Event, s *Scope, err error) *PhaseError {
	return &PhaseError{Kind: kind, Event: ev, Scope: s, Err: err}
}
