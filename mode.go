package httpenv

import (
	"testing"

	"github.com/giantswarm/httpenv/internal/core"
)

// SharingMode controls whether cases share one fixture.
type SharingMode = core.SharingMode

const (
	// PerCase starts a fresh fixture for every case. This is the default.
	PerCase = core.PerCase

	// Shared starts one fixture per suite, shared by all its cases.
	Shared = core.Shared
)

// Kind names a handle a case can request with Resolve.
type Kind = core.Kind

const (
	// KindClient resolves to the fixture's *http.Client.
	KindClient = core.KindClient

	// KindTarget resolves to the fixture's *Target.
	KindTarget = core.KindTarget

	// KindAddress resolves to the fixture's base *url.URL.
	KindAddress = core.KindAddress
)

// RunContext identifies the suite or case currently running. It is passed
// to every provider.
type RunContext = core.Scope

// NewSuiteContext returns the run context of a suite. tb may be nil. Use
// RunContext.NewCase for its cases.
func NewSuiteContext(name string, tb testing.TB) *RunContext {
	return core.NewSuiteScope(name, tb)
}
