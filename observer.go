package httpenv

import (
	"context"
	"time"

	"github.com/giantswarm/httpenv/internal/core"
	"github.com/giantswarm/httpenv/internal/journal"
)

// Event names a lifecycle step reported to an Observer.
type Event = core.Event

// Lifecycle steps.
const (
	EventSuiteStart   = core.EventSuiteStart
	EventCaseStart    = core.EventCaseStart
	EventCaseEnd      = core.EventCaseEnd
	EventSuiteEnd     = core.EventSuiteEnd
	EventFixtureStart = core.EventFixtureStart
	EventFixtureStop  = core.EventFixtureStop
)

// Record describes one lifecycle step.
type Record = core.Record

// Observer is notified synchronously of every lifecycle step. In Shared
// mode Observe may be called from several goroutines at once.
type Observer = core.Observer

// ObserverFunc adapts a function to Observer.
type ObserverFunc = core.ObserverFunc

// JournalEntry is one row of a lifecycle journal.
type JournalEntry = journal.Entry

// journalWriteTimeout bounds a single journal insert.
const journalWriteTimeout = 5 * time.Second

// multiObserver fans a record out to several observers in order.
type multiObserver []Observer

func (m multiObserver) Observe(r Record) {
	for _, o := range m {
		o.Observe(r)
	}
}

// journalObserver writes records to a SQLite journal. Write failures are
// logged and otherwise ignored so that a broken journal never fails a test.
type journalObserver struct {
	j *journal.Journal
}

func (o journalObserver) Observe(r Record) {
	e := journal.Entry{
		Time:      r.Time,
		Event:     string(r.Event),
		FixtureID: r.FixtureID,
		Address:   r.Address,
	}
	if r.Scope != nil {
		e.ScopeID = r.Scope.ID()
		e.ScopeName = r.Scope.Name()
		e.Level = r.Scope.Level().String()
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	if _, err := o.j.Record(ctx, e); err != nil {
		Logger().Warn("journal write failed", "path", o.j.Path(), "event", r.Event, "error", err)
	}
}

// ReadJournal returns every entry of the journal at path in the order they
// were recorded, for inspection after a test run.
func ReadJournal(ctx context.Context, path string) ([]JournalEntry, error) {
	j, err := journal.Open(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	entries, err := j.Entries(ctx, journal.Filter{})
	if closeErr := j.Close(); err == nil {
		err = closeErr
	}
	return entries, err
}
