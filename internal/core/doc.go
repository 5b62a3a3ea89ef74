// Package core implements the fixture lifecycle behind httpenv.
//
// A Descriptor describes how to build a fixture: a deployment provider, an
// optional container factory provider, an optional client config customizer
// and a sharing mode. An Orchestrator drives a Descriptor through four
// lifecycle events (SuiteStart, CaseStart, CaseEnd, SuiteEnd), keeping the
// running Fixture and the handles derived from it in a Store keyed by Scope.
// The Resolver answers handle requests from test cases by reading the Store.
//
// In PerCase mode every case gets its own Fixture, started at CaseStart and
// stopped at CaseEnd. In Shared mode one Fixture is started at SuiteStart,
// handed to every case of the suite and stopped at SuiteEnd.
package core
