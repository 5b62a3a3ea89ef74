package httpenv

import (
	"log/slog"

	"github.com/giantswarm/httpenv/internal/logging"
)

// SetLogger replaces the logger used by httpenv. The provided logger should
// already carry any desired attributes; httpenv adds none.
//
// If l is nil, the logger resets to slog.Default() with a "component"
// attribute, re-derived on the next use. Call SetLogger(nil) after
// slog.SetDefault() to pick up the change.
//
// SetLogger is safe to call concurrently with other httpenv operations and
// takes effect for every later log call, including on existing Extensions.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the logger currently used by httpenv.
func Logger() *slog.Logger {
	return logging.Logger()
}
