package httpenv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/giantswarm/httpenv/internal/core"
	"github.com/giantswarm/httpenv/internal/journal"
	"github.com/giantswarm/httpenv/internal/platform"
)

// Extension manages the fixture lifecycle for one fixture description. It
// is safe for concurrent use and is typically a package-level variable
// shared by the tests of a package.
//
// The zero value is unusable; every method returns ErrNotBuilt. Create an
// Extension with New.
//
// The core.Orchestrator is stored as a named field rather than embedded so
// that its store and descriptor stay out of the public API.
type Extension struct {
	orch *core.Orchestrator

	journal   *journal.Journal
	closeOnce sync.Once
	closeErr  error
}

// New builds an Extension from opts. It starts nothing. It fails with
// ErrConfiguration when no deployment option was given or the deployment
// file or journal cannot be opened.
func New(opts ...Option) (*Extension, error) {
	cfg := defaultDescriptorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.deploymentFile != "" {
		d, err := platform.LoadDeployment(cfg.deploymentFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		cfg.Deployment = func(*RunContext) (Deployment, error) { return d, nil }
	}

	// Validate before touching the journal file.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	observers := append([]Observer(nil), cfg.observers...)
	var j *journal.Journal
	if cfg.journalPath != "" {
		var err error
		j, err = journal.Open(context.Background(), cfg.journalPath, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: open journal: %w", ErrConfiguration, err)
		}
		observers = append(observers, journalObserver{j: j})
	}
	switch len(observers) {
	case 0:
	case 1:
		cfg.Observer = observers[0]
	default:
		cfg.Observer = multiObserver(observers)
	}

	desc, err := core.NewDescriptor(cfg.DescriptorConfig)
	if err != nil {
		closeJournal(j)
		return nil, err
	}
	orch, err := core.NewOrchestrator(desc)
	if err != nil {
		closeJournal(j)
		return nil, err
	}
	return &Extension{orch: orch, journal: j}, nil
}

// Must returns e or panics if err is non-nil. It is intended for
// package-level Extension variables.
func Must(e *Extension, err error) *Extension {
	if err != nil {
		panic(fmt.Sprintf("httpenv: %v", err))
	}
	return e
}

func closeJournal(j *journal.Journal) {
	if j == nil {
		return
	}
	if err := j.Close(); err != nil {
		Logger().Warn("close journal", "error", err)
	}
}

func (e *Extension) check() error {
	if e == nil || e.orch == nil {
		return ErrNotBuilt
	}
	return nil
}

// Mode returns the sharing mode, or DefaultSharingMode for an Extension
// not built by New.
func (e *Extension) Mode() SharingMode {
	if e.check() != nil {
		return DefaultSharingMode
	}
	return e.orch.Descriptor().Mode()
}

// SuiteStart must be called once before the cases of the suite rc. In
// Shared mode it starts the suite fixture.
func (e *Extension) SuiteStart(ctx context.Context, rc *RunContext) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.orch.SuiteStart(ctx, rc)
}

// CaseStart must be called before case rc uses any handle. In PerCase mode
// it starts the case fixture.
func (e *Extension) CaseStart(ctx context.Context, rc *RunContext) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.orch.CaseStart(ctx, rc)
}

// CaseEnd must be called after case rc finished, also when CaseStart
// failed. In PerCase mode it stops the case fixture.
func (e *Extension) CaseEnd(ctx context.Context, rc *RunContext) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.orch.CaseEnd(ctx, rc)
}

// SuiteEnd must be called after every case of the suite rc ended. In
// Shared mode it stops the suite fixture.
func (e *Extension) SuiteEnd(ctx context.Context, rc *RunContext) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.orch.SuiteEnd(ctx, rc)
}

// Supports reports whether k is a handle kind that Resolve can serve.
func (e *Extension) Supports(k Kind) bool {
	return k.Injectable()
}

// Resolve returns the handle of kind k for case rc. The value is a
// *http.Client, *Target or *url.URL depending on k.
func (e *Extension) Resolve(k Kind, rc *RunContext) (any, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.orch.Resolve(k, rc)
}

// Client returns the fixture client of case rc.
func (e *Extension) Client(rc *RunContext) (*http.Client, error) {
	return resolveAs[*http.Client](e, KindClient, rc)
}

// Target returns the base-address handle of case rc.
func (e *Extension) Target(rc *RunContext) (*Target, error) {
	return resolveAs[*Target](e, KindTarget, rc)
}

// Address returns the base address of case rc. Callers must not modify
// the returned URL; it is shared by every case of a Shared suite.
func (e *Extension) Address(rc *RunContext) (*url.URL, error) {
	return resolveAs[*url.URL](e, KindAddress, rc)
}

func resolveAs[T any](e *Extension, k Kind, rc *RunContext) (T, error) {
	var zero T
	v, err := e.Resolve(k, rc)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has unexpected type %T", ErrResolution, k, v)
	}
	return t, nil
}

// Close releases the journal, if any. It does not stop fixtures; those
// belong to the lifecycle hooks. Calling Close more than once returns the
// first result.
func (e *Extension) Close() error {
	if err := e.check(); err != nil {
		return err
	}
	e.closeOnce.Do(func() {
		if e.journal != nil {
			e.closeErr = e.journal.Close()
		}
	})
	return e.closeErr
}
