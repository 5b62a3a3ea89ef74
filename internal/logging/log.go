// Package logging holds the package-level logger shared by httpenv's
// internal packages.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger is the custom logger installed by SetLogger. Named "logger" to
// avoid shadowing the stdlib "log" package.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches slog.Default() with the component attribute so it is
// not rebuilt on every call. SetLogger(nil) clears it, which is how callers
// pick up a later slog.SetDefault.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the custom logger if one is set, otherwise the cached
// default. Safe for concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	// Another goroutine won, or SetLogger cleared the cache in between.
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "httpenv")
}

// SetLogger installs l. A nil l restores the default derived from
// slog.Default() on the next Logger call.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
