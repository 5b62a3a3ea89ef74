package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/httpenv/internal/logging"
)

// Orchestrator drives one Descriptor through the suite and case lifecycle.
// It is safe for concurrent use: cases of a suite may start and end on
// different goroutines. Each event runs synchronously and returns once the
// fixture has started or stopped. No timeouts are imposed; ctx is passed to
// the container.
//
// The host runner must call SuiteEnd only after every CaseEnd of the suite
// has returned, and may call CaseEnd even when CaseStart failed.
type Orchestrator struct {
	desc     *Descriptor
	store    *Store
	resolver *Resolver
}

// NewOrchestrator returns an Orchestrator for d with an empty Store.
func NewOrchestrator(d *Descriptor) (*Orchestrator, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	st := NewStore()
	return &Orchestrator{
		desc:     d,
		store:    st,
		resolver: NewResolver(st),
	}, nil
}

// Descriptor returns the descriptor o was built from.
func (o *Orchestrator) Descriptor() *Descriptor {
	return o.desc
}

func (o *Orchestrator) check() error {
	if o == nil || o.store == nil {
		return ErrNotBuilt
	}
	return o.desc.check()
}

// SuiteStart starts the suite fixture in Shared mode. In PerCase mode it
// only validates s.
func (o *Orchestrator) SuiteStart(ctx context.Context, s *Scope) (err error) {
	if err := o.check(); err != nil {
		return err
	}
	if err := expectLevel(EventSuiteStart, s, LevelSuite); err != nil {
		return err
	}
	defer func() { o.observe(EventSuiteStart, s, nil, err) }()

	if o.desc.Mode() != Shared {
		return nil
	}
	if _, ok := o.store.Get(s, KindFixture); ok {
		return phaseError(ErrLifecycle, EventSuiteStart, s, errors.New("suite already holds a fixture"))
	}

	f, err := o.start(ctx, EventSuiteStart, s)
	if err != nil {
		return err
	}
	o.store.Put(s, KindFixture, f)
	return nil
}

// CaseStart makes a fixture available to case s and publishes its handles
// into s. In Shared mode the fixture is read from the parent suite scope; in
// PerCase mode a new one is started and kept in s.
func (o *Orchestrator) CaseStart(ctx context.Context, s *Scope) (err error) {
	if err := o.check(); err != nil {
		return err
	}
	if err := expectLevel(EventCaseStart, s, LevelCase); err != nil {
		return err
	}

	var f *Fixture
	defer func() { o.observe(EventCaseStart, s, f, err) }()

	switch o.desc.Mode() {
	case Shared:
		var ok bool
		f, ok = Lookup[*Fixture](o.store, s.Parent(), KindFixture)
		if !ok {
			return phaseError(ErrLifecycle, EventCaseStart, s,
				errors.New("fixture not initialized: Shared mode requires suite-level registration"))
		}
	default:
		if _, ok := o.store.Get(s, KindFixture); ok {
			return phaseError(ErrLifecycle, EventCaseStart, s, errors.New("case already holds a fixture"))
		}
		started, err := o.start(ctx, EventCaseStart, s)
		if err != nil {
			return err
		}
		f = started
		o.store.Put(s, KindFixture, f)
	}

	o.store.Put(s, KindClient, f.Client())
	o.store.Put(s, KindTarget, f.Target())
	o.store.Put(s, KindAddress, f.Address())
	return nil
}

// CaseEnd withdraws the handles of case s and, in PerCase mode, stops its
// fixture. The scope is empty afterwards even when the stop fails. Calling
// CaseEnd for a case without a fixture is a no-op.
func (o *Orchestrator) CaseEnd(ctx context.Context, s *Scope) (err error) {
	if err := o.check(); err != nil {
		return err
	}
	if err := expectLevel(EventCaseEnd, s, LevelCase); err != nil {
		return err
	}

	var f *Fixture
	defer func() { o.observe(EventCaseEnd, s, f, err) }()

	for _, k := range injectableKinds {
		o.store.Remove(s, k)
	}
	if o.desc.Mode() == PerCase {
		f, _ = removeFixture(o.store, s)
	}
	o.store.Clear(s)

	return o.stop(ctx, EventCaseEnd, s, f)
}

// SuiteEnd stops the suite fixture in Shared mode and clears the suite
// scope. The store entry is gone even when the stop fails.
func (o *Orchestrator) SuiteEnd(ctx context.Context, s *Scope) (err error) {
	if err := o.check(); err != nil {
		return err
	}
	if err := expectLevel(EventSuiteEnd, s, LevelSuite); err != nil {
		return err
	}

	var f *Fixture
	defer func() { o.observe(EventSuiteEnd, s, f, err) }()

	if o.desc.Mode() == Shared {
		f, _ = removeFixture(o.store, s)
	}
	o.store.Clear(s)

	return o.stop(ctx, EventSuiteEnd, s, f)
}

// Supports reports whether k can be resolved.
func (o *Orchestrator) Supports(k Kind) bool {
	return k.Injectable()
}

// Resolve returns the value of k published in case scope s.
func (o *Orchestrator) Resolve(k Kind, s *Scope) (any, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	return o.resolver.Resolve(k, s)
}

// Store returns the store backing o.
func (o *Orchestrator) Store() *Store {
	return o.store
}

func (o *Orchestrator) start(ctx context.Context, ev Event, s *Scope) (*Fixture, error) {
	f, err := startFixture(ctx, o.desc, s, logging.Logger())
	if err != nil {
		o.observe(EventFixtureStart, s, nil, err)
		return nil, phaseError(ErrStartup, ev, s, err)
	}
	o.observe(EventFixtureStart, s, f, nil)
	return f, nil
}

func (o *Orchestrator) stop(ctx context.Context, ev Event, s *Scope, f *Fixture) error {
	if f == nil {
		return nil
	}
	err := f.Stop(ctx)
	o.observe(EventFixtureStop, s, f, err)
	if err != nil {
		return phaseError(ErrTeardown, ev, s, err)
	}
	return nil
}

func (o *Orchestrator) observe(ev Event, s *Scope, f *Fixture, err error) {
	if err != nil {
		logging.Logger().Debug("lifecycle step failed", "event", ev, "scope", s.String(), "error", err)
	}
	obs := o.desc.cfg.Observer
	if obs == nil {
		return
	}
	r := Record{Time: time.Now(), Event: ev, Scope: s, Err: err}
	if f != nil {
		r.FixtureID = f.ID()
		r.Address = f.Address().String()
	}
	obs.Observe(r)
}

func removeFixture(st *Store, s *Scope) (*Fixture, bool) {
	v, ok := st.Remove(s, KindFixture)
	if !ok {
		return nil, false
	}
	f, ok := v.(*Fixture)
	return f, ok
}

func expectLevel(ev Event, s *Scope, want Level) error {
	switch {
	case s == nil:
		return phaseError(ErrLifecycle, ev, s, errors.New("scope must not be nil"))
	case s.ID() == "":
		return phaseError(ErrLifecycle, ev, s, errors.New("scope has no ID: create it with NewSuiteScope or NewCase"))
	case s.Level() != want:
		return phaseError(ErrLifecycle, ev, s, fmt.Errorf("expected a %s scope", want))
	case want == LevelCase && s.Parent() == nil:
		return phaseError(ErrLifecycle, ev, s, errors.New("case scope has no suite"))
	case want == LevelCase && s.Parent().ID() == "":
		return phaseError(ErrLifecycle, ev, s, errors.New("case scope has a suite without ID"))
	}
	return nil
}
