package httpenv

import (
	"fmt"
	"net/http"

	"github.com/giantswarm/httpenv/internal/core"
)

// requireNonNil panics if v is nil with a descriptive message.
func requireNonNil(name string, isNil bool) {
	if isNil {
		panic(fmt.Sprintf("httpenv: %s must not be nil", name))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("httpenv: %s must not be empty", name))
	}
}

// Option configures an Extension during construction via New.
//
// Options panic on nil or empty arguments. Option values are normally
// fixed in test code, so an invalid value is a programmer error, as with
// regexp.MustCompile.
//
// Exactly one deployment option is required. When several are given, the
// last one wins.
type Option func(*descriptorConfig)

// WithHandler serves h in-process for every fixture. Panics if h is nil.
func WithHandler(h http.Handler) Option {
	requireNonNil("handler", h == nil)
	return WithDeployment(Deployment{Handler: h})
}

// WithHandlerProvider serves the handler returned by fn for the run
// context a fixture is started for. A nil handler fails the startup.
// Panics if fn is nil.
func WithHandlerProvider(fn func(*RunContext) http.Handler) Option {
	requireNonNil("handler provider", fn == nil)
	return WithDeploymentProvider(func(rc *RunContext) (Deployment, error) {
		h := fn(rc)
		if h == nil {
			return Deployment{}, fmt.Errorf("handler provider returned nil for %s", rc)
		}
		return Deployment{Handler: h}, nil
	})
}

// WithDeployment uses d for every fixture. Panics if d sets neither a
// Handler nor a Command.
func WithDeployment(d Deployment) Option {
	requireNonNil("deployment handler or command", d.Handler == nil && d.Command == "")
	return WithDeploymentProvider(func(*RunContext) (Deployment, error) {
		return d, nil
	})
}

// WithDeploymentProvider resolves the deployment per run context: the
// suite in Shared mode, the case in PerCase mode. An error fails the
// startup with ErrStartup. Panics if fn is nil.
func WithDeploymentProvider(fn func(*RunContext) (Deployment, error)) Option {
	requireNonNil("deployment provider", fn == nil)
	return func(c *descriptorConfig) {
		c.Deployment = fn
		c.deploymentFile = ""
	}
}

// WithDeploymentFile loads a process deployment from a YAML file when New
// is called. A missing or invalid file makes New fail with
// ErrConfiguration. See LoadDeployment for the format. Panics if path is
// empty.
func WithDeploymentFile(path string) Option {
	requireNonEmpty("deployment file path", path)
	return func(c *descriptorConfig) {
		c.Deployment = nil
		c.deploymentFile = path
	}
}

// WithContainerFactory hosts every fixture with f. Panics if f is nil.
//
// Default: DefaultContainerFactory().
func WithContainerFactory(f ContainerFactory) Option {
	requireNonNil("container factory", f == nil)
	return WithContainerFactoryProvider(func(*RunContext) ContainerFactory { return f })
}

// WithContainerFactoryProvider selects the container factory per run
// context. Returning nil fails the startup. Panics if fn is nil.
func WithContainerFactoryProvider(fn func(*RunContext) ContainerFactory) Option {
	requireNonNil("container factory provider", fn == nil)
	return func(c *descriptorConfig) {
		c.Factory = core.FactoryProvider(fn)
	}
}

// WithClientConfig customizes the client configuration of each fixture
// before its client is built. cfg starts from the container's base
// configuration and is modified in place. Panics if fn is nil.
func WithClientConfig(fn func(rc *RunContext, cfg *ClientConfig)) Option {
	requireNonNil("client config customizer", fn == nil)
	return func(c *descriptorConfig) {
		c.ClientConfig = core.ClientCustomizer(fn)
	}
}

// WithSharingMode sets whether cases share one fixture.
//
// Default: PerCase.
//
// Panics if m is not a known mode.
func WithSharingMode(m SharingMode) Option {
	if !m.IsValid() {
		panic(fmt.Sprintf("httpenv: invalid sharing mode: %v", m))
	}
	return func(c *descriptorConfig) {
		c.Mode = m
	}
}

// WithObserver adds an observer notified of every lifecycle step.
// Observers are called in the order they were added. Panics if o is nil.
func WithObserver(o Observer) Option {
	requireNonNil("observer", o == nil)
	return func(c *descriptorConfig) {
		c.observers = append(c.observers, o)
	}
}

// WithJournal records every lifecycle step in a SQLite database at path.
// The database is created if needed and may be shared by several test
// binaries. Read it back with ReadJournal. Close the Extension to release
// the file. Panics if path is empty.
func WithJournal(path string) Option {
	requireNonEmpty("journal path", path)
	return func(c *descriptorConfig) {
		c.journalPath = path
	}
}
