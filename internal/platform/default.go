package platform

import (
	"os"
	"strings"
	"sync"

	"github.com/giantswarm/httpenv/internal/logging"
)

// FactoryEnv selects the factory returned by DefaultFactory:
// "inprocess" (default), "inprocess-tls" or "process".
const FactoryEnv = "HTTPENV_CONTAINER_FACTORY"

// sharedProcessFactory is created on first use so that all fixtures of a
// test binary share one port registry and one stale-dir purge.
var sharedProcessFactory = sync.OnceValue(func() *ProcessFactory {
	return NewProcessFactory(DefaultProcessConfig())
})

// DefaultFactory returns the factory named by FactoryEnv. Unknown values
// fall back to the in-process factory with a warning.
func DefaultFactory() Factory {
	name := strings.ToLower(strings.TrimSpace(os.Getenv(FactoryEnv)))
	switch name {
	case "", "inprocess":
		return InProcessFactory{}
	case "inprocess-tls":
		return InProcessFactory{TLS: true}
	case "process":
		return sharedProcessFactory()
	default:
		logging.Logger().Warn("unknown container factory, using in-process",
			"env", FactoryEnv, "value", name)
		return InProcessFactory{}
	}
}
