package httpenv_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/httpenv"
)

// startCounter counts fixture starts and stops through an Observer.
type startCounter struct {
	mu     sync.Mutex
	starts int
	stops  int
	events []httpenv.Event
}

func (c *startCounter) Observe(r httpenv.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, r.Event)
	switch r.Event {
	case httpenv.EventFixtureStart:
		if r.Err == nil {
			c.starts++
		}
	case httpenv.EventFixtureStop:
		c.stops++
	}
}

func (c *startCounter) counts() (starts, stops int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts, c.stops
}

func pathHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	})
}

func TestNew_Configuration(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts    []httpenv.Option
		wantErr error
		wantMsg string
	}{
		"no options": {
			wantErr: httpenv.ErrConfiguration,
			wantMsg: "a deployment is required",
		},
		"only a mode": {
			opts:    []httpenv.Option{httpenv.WithSharingMode(httpenv.Shared)},
			wantErr: httpenv.ErrConfiguration,
		},
		"missing deployment file": {
			opts:    []httpenv.Option{httpenv.WithDeploymentFile(filepath.Join("testdata", "missing.yaml"))},
			wantErr: httpenv.ErrConfiguration,
			wantMsg: "read deployment file",
		},
		"deployment file": {
			opts: []httpenv.Option{httpenv.WithDeploymentFile(filepath.Join("testdata", "deployment.yaml"))},
		},
		"handler": {
			opts: []httpenv.Option{httpenv.WithHandler(pathHandler())},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ext, err := httpenv.New(tc.opts...)
			if tc.wantErr == nil {
				require.NoError(t, err)
				require.NotNil(t, ext)
				assert.NoError(t, ext.Close())
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, ext)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestMust(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpenv.Must(httpenv.New()) })
	assert.NotPanics(t, func() { httpenv.Must(httpenv.New(httpenv.WithHandler(pathHandler()))) })
}

func TestZeroExtension(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var ext httpenv.Extension
	suite := httpenv.NewSuiteContext("TestZeroExtension", nil)
	c := suite.NewCase("case", nil)

	assert.ErrorIs(t, ext.SuiteStart(ctx, suite), httpenv.ErrNotBuilt)
	assert.ErrorIs(t, ext.CaseStart(ctx, c), httpenv.ErrNotBuilt)
	assert.ErrorIs(t, ext.CaseEnd(ctx, c), httpenv.ErrNotBuilt)
	assert.ErrorIs(t, ext.SuiteEnd(ctx, suite), httpenv.ErrNotBuilt)
	_, err := ext.Client(c)
	assert.ErrorIs(t, err, httpenv.ErrNotBuilt)
	assert.ErrorIs(t, ext.Close(), httpenv.ErrNotBuilt)
	assert.Equal(t, httpenv.DefaultSharingMode, ext.Mode())
}

func TestSupports(t *testing.T) {
	t.Parallel()

	ext := httpenv.Must(httpenv.New(httpenv.WithHandler(pathHandler())))
	for _, k := range []httpenv.Kind{httpenv.KindClient, httpenv.KindTarget, httpenv.KindAddress} {
		assert.True(t, ext.Supports(k), k.String())
	}
	assert.False(t, ext.Supports(httpenv.Kind(0)), "the fixture itself is not injectable")
}

// TestHooks_PerCase drives the hooks by hand, as a non-testing host runner
// would.
func TestHooks_PerCase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	counter := &startCounter{}
	ext := httpenv.Must(httpenv.New(
		httpenv.WithDeployment(httpenv.Deployment{Handler: pathHandler(), BasePath: "/api"}),
		httpenv.WithContainerFactory(httpenv.InProcessFactory{}),
		httpenv.WithObserver(counter),
	))
	suite := httpenv.NewSuiteContext("TestHooks_PerCase", t)
	require.NoError(t, ext.SuiteStart(ctx, suite))

	var addrs []string
	for _, name := range []string{"first", "second"} {
		c := suite.NewCase(name, t)

		_, err := ext.Target(c)
		require.ErrorIs(t, err, httpenv.ErrResolution, "before CaseStart")

		require.NoError(t, ext.CaseStart(ctx, c))
		starts, stops := counter.counts()
		assert.Equal(t, stops+1, starts, "exactly one fixture is live during a case")

		target, err := ext.Target(c)
		require.NoError(t, err)
		resp, err := target.Path("users").Get(ctx)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, "/api/users", string(body))

		addr, err := ext.Address(c)
		require.NoError(t, err)
		assert.Equal(t, "/api", addr.Path, "the raw address carries a rooted base path")
		assert.Equal(t, "/api", target.URL().Path)
		addrs = append(addrs, addr.String())

		require.NoError(t, ext.CaseEnd(ctx, c))
		_, err = ext.Client(c)
		require.ErrorIs(t, err, httpenv.ErrResolution, "after CaseEnd")
	}
	require.NoError(t, ext.SuiteEnd(ctx, suite))

	starts, stops := counter.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, stops)
	assert.NotEqual(t, addrs[0], addrs[1], "each case gets its own server")
}

func TestHooks_SharedWithoutSuiteStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	counter := &startCounter{}
	ext := httpenv.Must(httpenv.New(
		httpenv.WithHandler(pathHandler()),
		httpenv.WithSharingMode(httpenv.Shared),
		httpenv.WithObserver(counter),
	))
	c := httpenv.NewSuiteContext("TestHooks_SharedWithoutSuiteStart", nil).NewCase("case", nil)

	err := ext.CaseStart(ctx, c)
	require.ErrorIs(t, err, httpenv.ErrLifecycle)

	var pe *httpenv.PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, httpenv.EventCaseStart, pe.Event)

	starts, _ := counter.counts()
	assert.Zero(t, starts)
}

func TestHooks_ZeroRunContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	counter := &startCounter{}
	ext := httpenv.Must(httpenv.New(
		httpenv.WithHandler(pathHandler()),
		httpenv.WithSharingMode(httpenv.Shared),
		httpenv.WithObserver(counter),
	))

	for range 2 {
		require.ErrorIs(t, ext.SuiteStart(ctx, new(httpenv.RunContext)), httpenv.ErrLifecycle)
	}

	starts, _ := counter.counts()
	assert.Zero(t, starts, "no fixture starts for a run context without identity")
}

func TestHooks_StartupError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	errDeploy := errors.New("deployment unavailable")
	ext := httpenv.Must(httpenv.New(
		httpenv.WithDeploymentProvider(func(*httpenv.RunContext) (httpenv.Deployment, error) {
			return httpenv.Deployment{}, errDeploy
		}),
	))
	suite := httpenv.NewSuiteContext("TestHooks_StartupError", nil)
	c := suite.NewCase("case", nil)
	require.NoError(t, ext.SuiteStart(ctx, suite))

	err := ext.CaseStart(ctx, c)
	require.ErrorIs(t, err, httpenv.ErrStartup)
	require.ErrorIs(t, err, errDeploy)

	assert.NoError(t, ext.CaseEnd(ctx, c))
	assert.NoError(t, ext.SuiteEnd(ctx, suite))
}

func TestClientConfigCustomizer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusNoContent))
	ext := httpenv.Must(httpenv.New(
		httpenv.WithHandler(handler),
		httpenv.WithContainerFactory(httpenv.InProcessFactory{TLS: true}),
		httpenv.WithClientConfig(func(rc *httpenv.RunContext, cfg *httpenv.ClientConfig) {
			cfg.Header.Set("X-Test-Case", rc.Name())
		}),
	))

	suite := httpenv.NewSuiteContext("TestClientConfigCustomizer", t)
	c := suite.NewCase("custom-header", t)
	require.NoError(t, ext.SuiteStart(ctx, suite))
	require.NoError(t, ext.CaseStart(ctx, c))
	t.Cleanup(func() {
		_ = ext.CaseEnd(ctx, c)
		_ = ext.SuiteEnd(ctx, suite)
	})

	client, err := ext.Client(c)
	require.NoError(t, err)
	addr, err := ext.Address(c)
	require.NoError(t, err)
	assert.Equal(t, "https", addr.Scheme)

	resp, err := client.Get(addr.String())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	got := <-requests
	assert.Equal(t, "custom-header", got.Request.Header.Get("X-Test-Case"))
}

func TestResolveTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ext := httpenv.Must(httpenv.New(httpenv.WithHandler(pathHandler())))
	suite := httpenv.NewSuiteContext("TestResolveTypes", nil)
	c := suite.NewCase("case", nil)
	require.NoError(t, ext.SuiteStart(ctx, suite))
	require.NoError(t, ext.CaseStart(ctx, c))
	t.Cleanup(func() { _ = ext.CaseEnd(ctx, c) })

	client, err := ext.Resolve(httpenv.KindClient, c)
	require.NoError(t, err)
	target, err := ext.Resolve(httpenv.KindTarget, c)
	require.NoError(t, err)
	addr, err := ext.Resolve(httpenv.KindAddress, c)
	require.NoError(t, err)

	assert.IsType(t, &http.Client{}, client)
	assert.IsType(t, &httpenv.Target{}, target)
	assert.Same(t, client, target.(*httpenv.Target).Client(), "target uses the fixture client")
	assert.Equal(t, target.(*httpenv.Target).String(), addr.(interface{ String() string }).String())

	_, err = ext.Resolve(httpenv.Kind(0), c)
	assert.ErrorIs(t, err, httpenv.ErrResolution)
	assert.ErrorIs(t, err, httpenv.ErrUnsupportedKind)
}
