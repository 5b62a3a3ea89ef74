package core

import "time"

// Event names a lifecycle step.
type Event string

const (
	EventSuiteStart   Event = "suite-start"
	EventCaseStart    Event = "case-start"
	EventCaseEnd      Event = "case-end"
	EventSuiteEnd     Event = "suite-end"
	EventFixtureStart Event = "fixture-start"
	EventFixtureStop  Event = "fixture-stop"
)

// Record describes one observed lifecycle step.
type Record struct {
	Time  time.Time
	Event Event
	Scope *Scope

	// FixtureID and Address are set once a fixture is involved.
	FixtureID string
	Address   string

	// Err is the error the step returned, if any.
	Err error
}

// Observer is notified of every lifecycle step. Observe is called
// synchronously from the goroutine driving the lifecycle, possibly from
// several goroutines at once in Shared mode.
type Observer interface {
	Observe(Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Record)

// Observe calls f(r).
func (f ObserverFunc) Observe(r Record) { f(r) }
