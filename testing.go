package httpenv

import (
	"context"
	"net/http"
	"net/url"
	"testing"
)

// Suite binds an Extension to a *testing.T. Cases are run as subtests.
type Suite struct {
	ext *Extension
	rc  *RunContext
	t   *testing.T
}

// Suite calls SuiteStart for t and registers SuiteEnd as a cleanup, which
// the testing package runs after all subtests, parallel ones included, have
// finished. A startup failure fails t immediately.
func (e *Extension) Suite(t *testing.T) *Suite {
	t.Helper()

	rc := NewSuiteContext(t.Name(), t)
	if err := e.SuiteStart(t.Context(), rc); err != nil {
		t.Fatalf("httpenv: %v", err)
	}
	t.Cleanup(func() {
		// t.Context is already canceled when cleanups run.
		if err := e.SuiteEnd(context.Background(), rc); err != nil {
			t.Errorf("httpenv: %v", err)
		}
	})
	return &Suite{ext: e, rc: rc, t: t}
}

// RunContext returns the suite run context.
func (s *Suite) RunContext() *RunContext {
	return s.rc
}

// Run runs fn as subtest name with a started fixture, like t.Run.
func (s *Suite) Run(name string, fn func(t *testing.T, c *Case)) bool {
	return s.t.Run(name, func(t *testing.T) {
		s.runCase(t, fn)
	})
}

// RunParallel is Run with t.Parallel called before the fixture is
// requested.
func (s *Suite) RunParallel(name string, fn func(t *testing.T, c *Case)) bool {
	return s.t.Run(name, func(t *testing.T) {
		t.Parallel()
		s.runCase(t, fn)
	})
}

func (s *Suite) runCase(t *testing.T, fn func(*testing.T, *Case)) {
	t.Helper()

	rc := s.rc.NewCase(t.Name(), t)
	// Registered first so the case scope is cleared even if CaseStart fails.
	t.Cleanup(func() {
		if err := s.ext.CaseEnd(context.Background(), rc); err != nil {
			t.Errorf("httpenv: %v", err)
		}
	})
	if err := s.ext.CaseStart(t.Context(), rc); err != nil {
		t.Fatalf("httpenv: %v", err)
	}
	fn(t, &Case{ext: s.ext, rc: rc, t: t})
}

// Case gives a running subtest access to its fixture handles. The typed
// accessors fail the test when called outside the case.
type Case struct {
	ext *Extension
	rc  *RunContext
	t   testing.TB
}

// RunContext returns the case run context.
func (c *Case) RunContext() *RunContext {
	return c.rc
}

// Resolve returns the handle of kind k.
func (c *Case) Resolve(k Kind) (any, error) {
	return c.ext.Resolve(k, c.rc)
}

// Client returns the fixture client.
func (c *Case) Client() *http.Client {
	c.t.Helper()
	client, err := c.ext.Client(c.rc)
	if err != nil {
		c.t.Fatalf("httpenv: %v", err)
	}
	return client
}

// Target returns the base-address handle.
func (c *Case) Target() *Target {
	c.t.Helper()
	target, err := c.ext.Target(c.rc)
	if err != nil {
		c.t.Fatalf("httpenv: %v", err)
	}
	return target
}

// URL returns the base address. Do not modify it.
func (c *Case) URL() *url.URL {
	c.t.Helper()
	u, err := c.ext.Address(c.rc)
	if err != nil {
		c.t.Fatalf("httpenv: %v", err)
	}
	return u
}
