// Package httpenv manages the lifecycle of HTTP test fixtures.
//
// An Extension starts an HTTP service (the fixture) around the cases of a
// test suite, hands each case ready-made handles to it and stops it again
// deterministically. The fixture is either an http.Handler served
// in-process or an external command run as a child process.
//
// # Basic Usage
//
//	var env = httpenv.Must(httpenv.New(
//	    httpenv.WithHandler(api.NewRouter()),
//	))
//
//	func TestAPI(t *testing.T) {
//	    suite := env.Suite(t)
//
//	    suite.Run("health", func(t *testing.T, c *httpenv.Case) {
//	        resp, err := c.Target().Path("healthz").Get(t.Context())
//	        if err != nil {
//	            t.Fatal(err)
//	        }
//	        defer resp.Body.Close()
//	        // ...
//	    })
//	}
//
// # Sharing Modes
//
// In PerCase mode (the default) every case gets a fresh fixture, started
// before the case and stopped after it. In Shared mode one fixture is
// started for the whole suite and every case, including parallel ones,
// receives the identical client, target and address handles:
//
//	env := httpenv.Must(httpenv.New(
//	    httpenv.WithHandler(h),
//	    httpenv.WithSharingMode(httpenv.Shared),
//	))
//
//	suite := env.Suite(t)
//	for _, name := range []string{"a", "b", "c"} {
//	    suite.RunParallel(name, func(t *testing.T, c *httpenv.Case) { ... })
//	}
//
// # Lifecycle Hooks
//
// Host runners other than the testing package drive an Extension through
// SuiteStart, CaseStart, CaseEnd and SuiteEnd directly and request handles
// with Resolve. Handles exist only between CaseStart and CaseEnd of a case;
// Resolve outside that window fails with ErrResolution.
//
// # Container Factories
//
// The container factory decides how a Deployment is hosted. The default is
// chosen by the HTTPENV_CONTAINER_FACTORY environment variable:
// "inprocess" (default), "inprocess-tls" or "process". Use
// WithContainerFactory to pin one.
//
// # Error Handling
//
// All errors can be inspected with errors.Is against ErrConfiguration,
// ErrLifecycle, ErrStartup, ErrTeardown, ErrResolution and ErrNotBuilt.
// Lifecycle failures are *PhaseError values naming the event and scope.
package httpenv
