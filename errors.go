package httpenv

import "github.com/giantswarm/httpenv/internal/core"

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrConfiguration is returned by New when a mandatory option is
	// missing or a deployment file cannot be loaded.
	ErrConfiguration = core.ErrConfiguration

	// ErrLifecycle is returned when a lifecycle hook is called out of
	// order, e.g. CaseStart in Shared mode before SuiteStart.
	ErrLifecycle = core.ErrLifecycle

	// ErrStartup is returned when the fixture could not be built or
	// started. The underlying cause is also reachable through errors.Is.
	ErrStartup = core.ErrStartup

	// ErrTeardown is returned when the fixture failed to stop. The fixture
	// is forgotten regardless, so the next lifecycle event is unaffected.
	ErrTeardown = core.ErrTeardown

	// ErrResolution is returned when a handle is requested outside the
	// CaseStart..CaseEnd window of a case.
	ErrResolution = core.ErrResolution

	// ErrUnsupportedKind accompanies ErrResolution when the requested kind
	// is not a handle kind.
	ErrUnsupportedKind = core.ErrUnsupportedKind

	// ErrNotBuilt is returned by every method of an Extension that was not
	// created by New.
	ErrNotBuilt = core.ErrNotBuilt
)

// PhaseError reports which lifecycle event failed for which scope.
type PhaseError = core.PhaseError
