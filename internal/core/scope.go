package core

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// Level is the lifecycle level of a Scope.
type Level int

const (
	LevelSuite Level = iota
	LevelCase
)

func (l Level) String() string {
	switch l {
	case LevelSuite:
		return "suite"
	case LevelCase:
		return "case"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Scope identifies one suite or case while it runs. It is the run context
// handed to every provider and the key under which the Store keeps state.
//
// A Scope is immutable and safe for concurrent use. Two scopes are the same
// scope only if they are the same pointer; every scope carries a unique ID.
type Scope struct {
	id     string
	name   string
	level  Level
	parent *Scope
	tb     testing.TB
}

// NewSuiteScope returns a root scope. tb may be nil when the host runner is
// not the testing package.
func NewSuiteScope(name string, tb testing.TB) *Scope {
	return &Scope{id: uuid.NewString(), name: name, level: LevelSuite, tb: tb}
}

// NewCase returns a case scope whose parent is s.
func (s *Scope) NewCase(name string, tb testing.TB) *Scope {
	return &Scope{id: uuid.NewString(), name: name, level: LevelCase, parent: s, tb: tb}
}

// ID returns the unique scope identifier.
func (s *Scope) ID() string { return s.id }

// Name returns the suite or case name given by the host runner.
func (s *Scope) Name() string { return s.name }

// Level reports whether s is a suite or a case.
func (s *Scope) Level() Level { return s.level }

// Parent returns the enclosing scope, or nil for a suite.
func (s *Scope) Parent() *Scope { return s.parent }

// TB returns the test handle of the scope, or nil.
func (s *Scope) TB() testing.TB { return s.tb }

// String formats s as `case "TestAPI/get" (8c5e...)`.
func (s *Scope) String() string {
	if s == nil {
		return "<nil scope>"
	}
	return fmt.Sprintf("%s %q (%s)", s.level, s.name, s.id)
}
